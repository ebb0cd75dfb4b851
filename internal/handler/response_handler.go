package handler

import (
	"net/http"
	"time"

	"polling-service/internal/middleware"
	"polling-service/internal/service"
	"polling-service/pkg/logger"
	"polling-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ResponseHandler struct {
	responses *service.ResponseService
}

func NewResponseHandler(responses *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responses: responses}
}

func (h *ResponseHandler) Submit(c echo.Context) error {
	log := logger.FromContext(c)
	claims := middleware.ClaimsFrom(c)

	var req struct {
		QuestionID       string `json:"question_id"`
		SelectedOptionID string `json:"selected_option_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse submit response request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	response, err := h.responses.Submit(c.Request().Context(),
		claims.TenantKey, claims.UserID, claims.Email, req.QuestionID, req.SelectedOptionID)
	if err != nil {
		return respondErr(c, err)
	}

	prometheus.ResponseCounter.Inc()
	log.Info("Response submitted",
		zap.String("tenant_key", claims.TenantKey),
		zap.String("question_id", req.QuestionID),
		zap.String("user_id", claims.UserID))

	return respondOK(c, http.StatusCreated, "Response submitted", echo.Map{"response": response})
}

func (h *ResponseHandler) ListAll(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	responses, err := h.responses.ListAll(c.Request().Context(), claims.TenantKey)
	if err != nil {
		return respondErr(c, err)
	}

	return respondOK(c, http.StatusOK, "", echo.Map{"responses": responses})
}

func (h *ResponseHandler) ListByQuestion(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	responses, err := h.responses.ListByQuestion(c.Request().Context(), claims.TenantKey, c.Param("questionId"))
	if err != nil {
		return respondErr(c, err)
	}

	return respondOK(c, http.StatusOK, "", echo.Map{"responses": responses})
}

// OwnResponse answers with the caller's response to a question; data.response
// is null when the caller has not responded.
func (h *ResponseHandler) OwnResponse(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	response, err := h.responses.OwnResponse(c.Request().Context(), claims.TenantKey, claims.UserID, c.Param("questionId"))
	if err != nil {
		return respondErr(c, err)
	}

	return respondOK(c, http.StatusOK, "", echo.Map{"response": response})
}
