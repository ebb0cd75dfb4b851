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

type QuestionHandler struct {
	questions *service.QuestionService
}

func NewQuestionHandler(questions *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

func (h *QuestionHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	claims := middleware.ClaimsFrom(c)
	prometheus.RecordQuestionOperation("create")

	var req struct {
		Text    string                `json:"text"`
		Options []service.OptionInput `json:"options"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse create question request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	question, err := h.questions.Create(c.Request().Context(), claims.TenantKey, claims.Email, req.Text, req.Options)
	if err != nil {
		return respondErr(c, err)
	}

	log.Info("Question created",
		zap.String("tenant_key", claims.TenantKey),
		zap.String("question_id", question.ID))

	return respondOK(c, http.StatusCreated, "Question created", echo.Map{"question": question})
}

func (h *QuestionHandler) List(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	questions, err := h.questions.List(c.Request().Context(), claims.TenantKey)
	if err != nil {
		return respondErr(c, err)
	}

	return respondOK(c, http.StatusOK, "", echo.Map{"questions": questions})
}

func (h *QuestionHandler) Get(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	question, err := h.questions.Get(c.Request().Context(), claims.TenantKey, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}

	return respondOK(c, http.StatusOK, "", echo.Map{"question": question})
}

func (h *QuestionHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	claims := middleware.ClaimsFrom(c)
	prometheus.RecordQuestionOperation("update")

	var req service.UpdateQuestionInput
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse update question request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	question, err := h.questions.Update(c.Request().Context(), claims.TenantKey, c.Param("id"), req)
	if err != nil {
		return respondErr(c, err)
	}

	return respondOK(c, http.StatusOK, "Question updated", echo.Map{"question": question})
}

func (h *QuestionHandler) Delete(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	prometheus.RecordQuestionOperation("delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.questions.Delete(c.Request().Context(), claims.TenantKey, c.Param("id")); err != nil {
		return respondErr(c, err)
	}

	return respondOK(c, http.StatusOK, "Question deleted", nil)
}

func (h *QuestionHandler) Stats(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	prometheus.RecordQuestionOperation("stats")

	defer prometheus.TrackDBOperation("query")(time.Now())
	stats, err := h.questions.Stats(c.Request().Context(), claims.TenantKey, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}

	return respondOK(c, http.StatusOK, "", echo.Map{
		"question":        stats.Question,
		"total_responses": stats.TotalResponses,
		"stats":           stats.Stats,
	})
}
