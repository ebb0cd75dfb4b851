package handler

import (
	"net/http"
	"strings"
	"time"

	"polling-service/internal/middleware"
	"polling-service/internal/model"
	"polling-service/internal/service"
	"polling-service/pkg/logger"
	"polling-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func userPayload(u *model.User, tenantKey, orgName string) echo.Map {
	return echo.Map{
		"id":                u.ID,
		"name":              u.Name,
		"email":             u.Email,
		"role":              u.Role,
		"tenant_key":        tenantKey,
		"organization_name": orgName,
	}
}

// Signup registers a new organization and answers with the admin's first
// session token.
func (h *AuthHandler) Signup(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SignupCounter.Inc()

	var req service.SignupInput
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse signup request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	result, err := h.auth.Signup(c.Request().Context(), req)
	if err != nil {
		prometheus.RecordAuthError("signup_failed")
		return respondErr(c, err)
	}

	prometheus.IncreaseActiveTokens()
	log.Info("Organization registered",
		zap.String("tenant_key", result.TenantKey),
		zap.String("admin_email", result.User.Email))

	return respondOK(c, http.StatusCreated, "Organization registered successfully", echo.Map{
		"token": result.Token,
		"user":  userPayload(result.User, result.TenantKey, result.OrganizationName),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		prometheus.RecordAuthError("invalid_credentials")
		return respondErr(c, err)
	}

	prometheus.IncreaseActiveTokens()
	log.Info("User logged in",
		zap.String("email", result.User.Email),
		zap.String("tenant_key", result.TenantKey),
		zap.String("role", result.User.Role))

	return respondOK(c, http.StatusOK, "Login successful", echo.Map{
		"token": result.Token,
		"user":  userPayload(result.User, result.TenantKey, result.OrganizationName),
	})
}

// Logout revokes exactly the token presented in the Authorization header.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	token := ""
	if parts := strings.SplitN(c.Request().Header.Get("Authorization"), " ", 2); len(parts) == 2 {
		token = parts[1]
	}

	if err := h.auth.Logout(c.Request().Context(), claims.TenantKey, token); err != nil {
		return respondErr(c, err)
	}

	prometheus.DecreaseActiveTokens()
	return respondOK(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) Me(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	user, orgName, err := h.auth.Me(c.Request().Context(), claims.TenantKey, claims.UserID)
	if err != nil {
		return respondErr(c, err)
	}

	return respondOK(c, http.StatusOK, "", echo.Map{
		"user": userPayload(user, claims.TenantKey, orgName),
	})
}
