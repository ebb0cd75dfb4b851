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

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	users, err := h.users.List(c.Request().Context(), claims.TenantKey)
	if err != nil {
		return respondErr(c, err)
	}

	return respondOK(c, http.StatusOK, "", echo.Map{"users": users})
}

func (h *UserHandler) Add(c echo.Context) error {
	log := logger.FromContext(c)
	claims := middleware.ClaimsFrom(c)

	var req service.AddUserInput
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse add user request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	user, err := h.users.Add(c.Request().Context(), claims.TenantKey, req)
	if err != nil {
		return respondErr(c, err)
	}

	log.Info("User added",
		zap.String("tenant_key", claims.TenantKey),
		zap.String("email", user.Email),
		zap.String("role", user.Role))

	return respondOK(c, http.StatusCreated, "User added successfully", echo.Map{"user": user})
}

func (h *UserHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	claims := middleware.ClaimsFrom(c)
	id := c.Param("id")

	var req service.UpdateUserInput
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse update user request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	user, err := h.users.Update(c.Request().Context(), claims.TenantKey, id, req)
	if err != nil {
		return respondErr(c, err)
	}

	return respondOK(c, http.StatusOK, "User updated", echo.Map{"user": user})
}

func (h *UserHandler) Delete(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.users.Delete(c.Request().Context(), claims.TenantKey, claims.UserID, id); err != nil {
		return respondErr(c, err)
	}

	return respondOK(c, http.StatusOK, "User deleted", nil)
}
