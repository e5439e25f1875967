// Reminder and notification HTTP handlers.
//
// Endpoints:
//   - GET    /notifications/authorization    (live status)
//   - POST   /notifications/authorization    (ask once; answer is remembered)
//   - GET    /notifications/settings         (status and badge)
//   - DELETE /notifications/badge            (reset badge)
//   - GET    /reminders                      (pending reminders)
//   - POST   /reminders                      (replace with a daily reminder)
//   - DELETE /reminders                      (cancel all)
//   - DELETE /reminders/{id}                 (cancel one)
//   - POST   /reminders/{id}/actions/{action} (user tapped an action)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-hydration-backend/internal/domain"
)

// AuthorizationResponse carries the notification permission state.
type AuthorizationResponse struct {
	Status     domain.AuthorizationStatus `json:"status" example:"authorized"`
	Authorized bool                       `json:"authorized" example:"true"`
}

// ScheduleReminderRequest is the JSON payload for the daily reminder.
type ScheduleReminderRequest struct {
	// Time is "HH:MM" in the server zone or an RFC 3339 timestamp; only the
	// hour and minute are used.
	Time     string  `json:"time" binding:"required" example:"09:00"`
	AmountML float64 `json:"amount_ml" binding:"required" example:"250"`
}

// ReminderResponse wraps one reminder request.
type ReminderResponse struct {
	Reminder domain.ReminderRequest `json:"reminder"`
}

// ListRemindersResponse lists pending reminders, soonest first.
type ListRemindersResponse struct {
	Reminders []domain.ReminderRequest `json:"reminders"`
}

func authorizationResponse(st domain.AuthorizationStatus) AuthorizationResponse {
	return AuthorizationResponse{Status: st, Authorized: st == domain.AuthorizationAuthorized}
}

// GetAuthorization godoc
// @ID          getAuthorization
// @Summary     Notification authorization status
// @Tags        Notifications
// @Produce     json
// @Success     200  {object} handlers.AuthorizationResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications/authorization [get]
func (h *Handlers) GetAuthorization(c *gin.Context) {
	st, err := h.reminders.Authorization(c.Request.Context())
	if err != nil {
		failFor(c, err, ErrCodeNotificationFailed)
		return
	}
	ok(c, http.StatusOK, authorizationResponse(st))
}

// RequestAuthorization godoc
// @ID          requestAuthorization
// @Summary     Ask for notification permission
// @Description Prompts only while the status is not_determined; later calls return the remembered answer.
// @Tags        Notifications
// @Produce     json
// @Success     200  {object} handlers.AuthorizationResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications/authorization [post]
func (h *Handlers) RequestAuthorization(c *gin.Context) {
	st, err := h.reminders.RequestAuthorization(c.Request.Context())
	if err != nil {
		failFor(c, err, ErrCodeNotificationFailed)
		return
	}
	ok(c, http.StatusOK, authorizationResponse(st))
}

// GetNotificationSettings godoc
// @ID          getNotificationSettings
// @Summary     Notification settings
// @Tags        Notifications
// @Produce     json
// @Success     200  {object} notify.Settings
// @Router      /notifications/settings [get]
func (h *Handlers) GetNotificationSettings(c *gin.Context) {
	s, err := h.reminders.NotificationSettings(c.Request.Context())
	if err != nil {
		failFor(c, err, ErrCodeNotificationFailed)
		return
	}
	ok(c, http.StatusOK, s)
}

// ResetBadge godoc
// @ID          resetBadge
// @Summary     Reset the badge count
// @Tags        Notifications
// @Success     204  "No Content"
// @Router      /notifications/badge [delete]
func (h *Handlers) ResetBadge(c *gin.Context) {
	if err := h.reminders.ResetBadge(c.Request.Context()); err != nil {
		failFor(c, err, ErrCodeNotificationFailed)
		return
	}
	noContent(c)
}

// ListReminders godoc
// @ID          listReminders
// @Summary     Pending reminders
// @Tags        Reminders
// @Produce     json
// @Success     200  {object} handlers.ListRemindersResponse
// @Router      /reminders [get]
func (h *Handlers) ListReminders(c *gin.Context) {
	items, err := h.reminders.Pending(c.Request.Context())
	if err != nil {
		failFor(c, err, ErrCodeListFailed)
		return
	}
	if items == nil {
		items = []domain.ReminderRequest{}
	}
	ok(c, http.StatusOK, ListRemindersResponse{Reminders: items})
}

// ScheduleReminder godoc
// @ID          scheduleReminder
// @Summary     Schedule the daily reminder
// @Description Replaces every pending reminder with one firing daily at the given hour and minute.
// @Tags        Reminders
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ScheduleReminderRequest  true  "Reminder"
// @Success     201  {object} handlers.ReminderResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Notifications not authorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /reminders [post]
func (h *Handlers) ScheduleReminder(c *gin.Context) {
	var req ScheduleReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "time and a positive amount_ml required")
		return
	}
	r, err := h.reminders.Schedule(c.Request.Context(), req.Time, req.AmountML)
	if err != nil {
		failFor(c, err, ErrCodeScheduleFailed)
		return
	}
	ok(c, http.StatusCreated, ReminderResponse{Reminder: r})
}

// CancelReminders godoc
// @ID          cancelReminders
// @Summary     Cancel every pending reminder
// @Tags        Reminders
// @Success     204  "No Content"
// @Router      /reminders [delete]
func (h *Handlers) CancelReminders(c *gin.Context) {
	if err := h.reminders.CancelAll(c.Request.Context()); err != nil {
		failFor(c, err, ErrCodeScheduleFailed)
		return
	}
	noContent(c)
}

// CancelReminder godoc
// @ID          cancelReminder
// @Summary     Cancel one pending reminder
// @Description Unknown ids are ignored.
// @Tags        Reminders
// @Param       id   path  string  true  "Reminder ID"
// @Success     204  "No Content"
// @Router      /reminders/{id} [delete]
func (h *Handlers) CancelReminder(c *gin.Context) {
	if err := h.reminders.CancelOne(c.Request.Context(), c.Param("id")); err != nil {
		failFor(c, err, ErrCodeScheduleFailed)
		return
	}
	noContent(c)
}

// ReminderAction godoc
// @ID          reminderAction
// @Summary     Report a reminder action
// @Description Records the user's response (e.g. DRINK_ACTION, SNOOZE_ACTION, default, dismiss).
// @Tags        Reminders
// @Param       id      path  string  true  "Reminder ID"
// @Param       action  path  string  true  "Action ID"
// @Success     204  "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Unknown action or reminder"
// @Router      /reminders/{id}/actions/{action} [post]
func (h *Handlers) ReminderAction(c *gin.Context) {
	if err := h.reminders.HandleAction(c.Request.Context(), c.Param("id"), c.Param("action")); err != nil {
		failFor(c, err, ErrCodeNotificationFailed)
		return
	}
	noContent(c)
}
