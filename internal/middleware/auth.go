package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"polling-service/internal/apperr"
	"polling-service/internal/model"
	"polling-service/pkg/jwtutil"
	"polling-service/pkg/logger"
	"polling-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// TokenValidator is the authentication authority behind the bearer check.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*jwtutil.Claims, error)
}

// Authenticate validates the bearer token from the Authorization header and
// stores the resulting claims in the request context.
func Authenticate(auth TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Debug("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "No token provided"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Debug("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "No token provided"})
			}

			token := parts[1]

			claims, err := auth.Validate(c.Request().Context(), token)
			if err != nil {
				prometheus.RecordAuthError("invalid_token")

				var ae *apperr.Error
				if errors.As(err, &ae) && ae.Code == apperr.Unavailable {
					log.Error("Token validation hit unavailable storage", zap.Error(err))
					return c.JSON(http.StatusServiceUnavailable, echo.Map{"success": false, "message": "Service temporarily unavailable"})
				}

				log.Debug("Token rejected", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Token is invalid or expired"})
			}

			c.Set(claimsKey, claims)
			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)
			c.Set("tenant_key", claims.TenantKey)

			return next(c)
		}
	}
}

// RequireAdmin gates a route on the admin role. It is stacked after
// Authenticate and never runs against an unauthenticated request.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := ClaimsFrom(c)
		if claims == nil || claims.Role != model.RoleAdmin {
			prometheus.RecordAuthError("forbidden")
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "Admin access required"})
		}
		return next(c)
	}
}

// ClaimsFrom returns the authenticated claims set by Authenticate, or nil.
func ClaimsFrom(c echo.Context) *jwtutil.Claims {
	claims, _ := c.Get(claimsKey).(*jwtutil.Claims)
	return claims
}
