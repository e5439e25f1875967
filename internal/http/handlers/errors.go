// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are stable, lowercase snake_case strings returned in the `code` field
// of ErrorResponse. Generic codes mirror HTTP status semantics; domain codes
// name failures a status alone cannot convey. Clients branch on codes, never
// on messages.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "notifications_not_authorized",
//	  "message": "notifications are disabled; enable them in settings"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeInvalidAmount      = "invalid_amount"
	ErrCodeInvalidTime        = "invalid_time"
	ErrCodeNotAuthorized      = "notifications_not_authorized"
	ErrCodeUnknownAction      = "unknown_action"
	ErrCodeCreateFailed       = "create_failed"
	ErrCodeListFailed         = "list_failed"
	ErrCodeScheduleFailed     = "schedule_failed"
	ErrCodeExportFailed       = "export_failed"
	ErrCodeNotificationFailed = "notification_failed"
)

// notAuthorizedMessage points the user to the setting that fixes the error.
const notAuthorizedMessage = "notifications are disabled; enable them in settings to schedule reminders"
