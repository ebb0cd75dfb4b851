package handler

import (
	"net/http"

	"polling-service/internal/middleware"
	"polling-service/internal/model"

	"github.com/labstack/echo/v4"
)

// BeamsAuth is the push-channel handshake: it hands the client its
// subject-scoped identifier and the interest topics to subscribe to.
func BeamsAuth(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	interests := []string{
		"org-" + claims.TenantKey,
		"user-" + claims.UserID,
	}
	if claims.Role == model.RoleAdmin {
		interests = append(interests, "admin-"+claims.TenantKey)
	}

	return respondOK(c, http.StatusOK, "", echo.Map{
		"beams_user_id": claims.TenantKey + "_" + claims.UserID,
		"tenant_key":    claims.TenantKey,
		"role":          claims.Role,
		"interests":     interests,
	})
}
