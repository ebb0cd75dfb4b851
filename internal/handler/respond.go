package handler

import (
	"errors"
	"net/http"

	"polling-service/internal/apperr"
	"polling-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func statusOf(code apperr.Code) int {
	switch code {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondOK writes the success envelope shared by every endpoint.
func respondOK(c echo.Context, status int, message string, data echo.Map) error {
	body := echo.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

// respondErr maps a coded error to its status. Domain-identifiable failures
// carry their message to the client; anything else is logged with full detail
// and answered generically.
func respondErr(c echo.Context, err error) error {
	log := logger.FromContext(c)

	var ae *apperr.Error
	if errors.As(err, &ae) {
		status := statusOf(ae.Code)
		message := ae.Message
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", zap.Error(err))
			if ae.Code == apperr.Internal {
				message = "Internal server error"
			}
		}
		return c.JSON(status, echo.Map{"success": false, "message": message})
	}

	log.Error("Unexpected error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Internal server error"})
}
