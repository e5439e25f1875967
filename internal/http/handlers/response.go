// Package handlers implements the hydration planner's HTTP endpoints:
// entries, export, notification authorization/settings and reminders.
//
// Every failure answers with ErrorResponse; service sentinel errors are
// mapped to status and code in one place (failFor).
//
//	HTTP/1.1 403 Forbidden
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "notifications_not_authorized",
//	  "message": "notifications are disabled; enable them in settings to schedule reminders"
//	}
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-hydration-backend/internal/http/middleware"
	"github.com/tbourn/go-hydration-backend/internal/services"
)

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable code, see errors.go
	Code    string `json:"code" example:"invalid_amount"`
	Message string `json:"message" example:"amount must be a positive number"`
}

// fail aborts with the envelope. 5xx answers are logged on the request logger.
func fail(c *gin.Context, status int, code, msg string) {
	rid := c.Writer.Header().Get("X-Request-ID")
	if rid == "" {
		rid = middleware.GetRequestID(c)
	}
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{RequestID: rid, Code: code, Message: msg})
}

// Fail lets the router answer fallbacks (404/405) with the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }

// failFor maps a service error to its status and code. Unknown errors become
// 500 with fallbackCode and a generic message.
func failFor(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		fail(c, http.StatusBadRequest, ErrCodeInvalidAmount, err.Error())
	case errors.Is(err, services.ErrMissingTimestamp),
		errors.Is(err, services.ErrNoteTooLong),
		errors.Is(err, services.ErrInvalidDestination):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidTime):
		fail(c, http.StatusBadRequest, ErrCodeInvalidTime, err.Error())
	case errors.Is(err, services.ErrDuplicateEntry):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrEntryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrNotAuthorized):
		fail(c, http.StatusForbidden, ErrCodeNotAuthorized, notAuthorizedMessage)
	case errors.Is(err, services.ErrUnknownAction):
		fail(c, http.StatusNotFound, ErrCodeUnknownAction, err.Error())
	case errors.Is(err, services.ErrExportFailed):
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, "export failed")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusServiceUnavailable, ErrCodeInternal, "request cancelled")
	default:
		middleware.LoggerFrom(c).Error().Err(err).Str("code", fallbackCode).Msg("unhandled service error")
		fail(c, http.StatusInternalServerError, fallbackCode, "internal error")
	}
}
