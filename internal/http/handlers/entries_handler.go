// Entry HTTP handlers.
//
// This file exposes REST endpoints for water-intake entries:
//   - GET    /entries              (list or filter, paginated)
//   - GET    /entries/{id}         (fetch one)
//   - POST   /entries              (add; optional daily reminder)
//   - PUT    /entries/{id}         (replace; updated=false on unknown id)
//   - DELETE /entries/{id}         (remove; always 204)
//
// Idempotency:
// With an Idempotency-Key header a retried POST returns the originally
// created entry with status 200 and `Idempotency-Replayed: true`.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-hydration-backend/internal/domain"
	"github.com/tbourn/go-hydration-backend/internal/http/middleware"
	"github.com/tbourn/go-hydration-backend/internal/services"
	"github.com/tbourn/go-hydration-backend/internal/store"
)

//
// DTOs
//

// CreateEntryRequest is the JSON payload for logging water.
type CreateEntryRequest struct {
	// ID is optional; the server assigns an upper-case UUID when empty.
	ID string `json:"id" example:"6F9619FF-8B86-D011-B42D-00C04FC964FF"`
	// Timestamp defaults to now. Sub-second precision is dropped.
	Timestamp *time.Time `json:"timestamp" example:"2024-03-10T08:00:00Z"`
	// AmountML must be a positive number.
	AmountML *float64 `json:"amount_ml" binding:"required" example:"250"`
	Note     string   `json:"note" example:"Morning"`
	// ReminderTime, when set, also schedules the daily reminder
	// ("HH:MM" or RFC 3339) for AmountML.
	ReminderTime string `json:"reminder_time,omitempty" example:"09:00"`
}

// CreateEntryResponse wraps the stored entry and the optional reminder.
type CreateEntryResponse struct {
	Entry    domain.Entry            `json:"entry"`
	Reminder *domain.ReminderRequest `json:"reminder,omitempty"`
	// ReminderError carries the error code when the entry was stored but the
	// reminder could not be scheduled.
	ReminderError string `json:"reminder_error,omitempty" example:"notifications_not_authorized"`
}

// UpdateEntryRequest is the JSON payload replacing an entry's fields.
type UpdateEntryRequest struct {
	Timestamp *time.Time `json:"timestamp" binding:"required" example:"2024-03-10T08:00:00Z"`
	AmountML  *float64   `json:"amount_ml" binding:"required" example:"500"`
	Note      string     `json:"note" example:"Morning"`
}

// UpdateEntryResponse reports whether an entry with the id existed.
type UpdateEntryResponse struct {
	Updated bool          `json:"updated"`
	Entry   *domain.Entry `json:"entry,omitempty"`
}

// ListEntriesResponse contains a page of entries, newest first.
type ListEntriesResponse struct {
	Entries    []domain.Entry `json:"entries"`
	Pagination Pagination     `json:"pagination"`
}

//
// Helpers
//

// parseDay reads YYYY-MM-DD as a calendar day in loc.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
}

//
// Handlers
//

// ListEntries godoc
// @ID          listEntries
// @Summary     List or filter entries
// @Description Returns entries newest first. With q, entries whose note contains q
// @Description (case-insensitive) are returned and day is ignored; with day, entries
// @Description on that local calendar day. An empty q matches every entry.
// @Tags        Entries
// @Produce     json
//
// @Param       q          query  string  false "Keyword in note"           example(morn)
// @Param       day        query  string  false "Local day (YYYY-MM-DD)"    example(2024-03-10)
// @Param       page       query  int     false "Page number"               minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"            minimum(1) maximum(500) default(50)
//
// @Success     200  {object} handlers.ListEntriesResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /entries [get]
func (h *Handlers) ListEntries(c *gin.Context) {
	q := store.Query{Keyword: c.Query("q")}
	if raw := c.Query("day"); raw != "" && q.Keyword == "" {
		day, err := parseDay(raw, h.entries.Location())
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "day must be YYYY-MM-DD")
			return
		}
		q.Day = &day
	}

	page, pageSize := clampPagination(c)
	items, total, err := h.entries.ListPage(c.Request.Context(), q, page, pageSize)
	if err != nil {
		failFor(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListEntriesResponse{
		Entries:    items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetEntry godoc
// @ID          getEntry
// @Summary     Get one entry
// @Tags        Entries
// @Produce     json
// @Param       id   path  string  true  "Entry ID"
// @Success     200  {object} domain.Entry
// @Failure     404  {object} handlers.ErrorResponse "Entry not found"
// @Router      /entries/{id} [get]
func (h *Handlers) GetEntry(c *gin.Context) {
	e, found, err := h.entries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFor(c, err, ErrCodeInternal)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "entry not found")
		return
	}
	ok(c, http.StatusOK, e)
}

// CreateEntry godoc
// @ID          createEntry
// @Summary     Log water intake
// @Description Adds an entry. With reminder_time the daily reminder is (re)scheduled
// @Description for amount_ml; a scheduling failure does not undo the entry and is
// @Description reported in reminder_error. Supports Idempotency-Key.
// @Tags        Entries
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateEntryRequest  true  "Entry"
//
// @Success     201  {object}  handlers.CreateEntryResponse  "Created"
// @Success     200  {object}  handlers.CreateEntryResponse  "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse        "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse        "Entry id already exists"
// @Failure     500  {object}  handlers.ErrorResponse        "Internal error"
// @Router      /entries [post]
func (h *Handlers) CreateEntry(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "amount_ml required")
		return
	}
	ts := h.now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}
	in := services.CreateInput{
		ID:        strings.TrimSpace(req.ID),
		Timestamp: ts.Truncate(time.Second),
		AmountML:  *req.AmountML,
		Note:      req.Note,
	}

	idemKey, _ := middleware.GetIdempotencyKey(c)
	e, replayed, err := h.entries.Create(ctx, in, idemKey)
	if err != nil {
		failFor(c, err, ErrCodeCreateFailed)
		return
	}
	if replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
		ok(c, http.StatusOK, CreateEntryResponse{Entry: e})
		return
	}

	resp := CreateEntryResponse{Entry: e}
	if req.ReminderTime != "" {
		r, rerr := h.reminders.Schedule(ctx, req.ReminderTime, e.AmountML)
		switch {
		case rerr == nil:
			resp.Reminder = &r
		case errors.Is(rerr, services.ErrNotAuthorized):
			resp.ReminderError = ErrCodeNotAuthorized
		case errors.Is(rerr, services.ErrInvalidTime):
			resp.ReminderError = ErrCodeInvalidTime
		default:
			middleware.LoggerFrom(c).Error().Err(rerr).Msg("schedule reminder with entry")
			resp.ReminderError = ErrCodeScheduleFailed
		}
	}
	ok(c, http.StatusCreated, resp)
}

// UpdateEntry godoc
// @ID          updateEntry
// @Summary     Replace an entry
// @Description Replaces timestamp, amount and note of the entry with this id.
// @Description An unknown id changes nothing and answers updated=false.
// @Tags        Entries
// @Accept      json
// @Produce     json
// @Param       id    path  string                        true  "Entry ID"
// @Param       body  body  handlers.UpdateEntryRequest   true  "New values"
// @Success     200  {object} handlers.UpdateEntryResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /entries/{id} [put]
func (h *Handlers) UpdateEntry(c *gin.Context) {
	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "timestamp and amount_ml required")
		return
	}
	e := domain.Entry{
		ID:        c.Param("id"),
		Timestamp: req.Timestamp.Truncate(time.Second),
		AmountML:  *req.AmountML,
		Note:      req.Note,
	}
	updated, err := h.entries.Update(c.Request.Context(), e)
	if err != nil {
		failFor(c, err, ErrCodeInternal)
		return
	}
	resp := UpdateEntryResponse{Updated: updated}
	if updated {
		resp.Entry = &e
	}
	ok(c, http.StatusOK, resp)
}

// DeleteEntry godoc
// @ID          deleteEntry
// @Summary     Remove an entry
// @Description Removing an unknown id is a no-op; the answer is always 204.
// @Tags        Entries
// @Param       id   path  string  true  "Entry ID"
// @Success     204  "No Content"
// @Router      /entries/{id} [delete]
func (h *Handlers) DeleteEntry(c *gin.Context) {
	if _, err := h.entries.Remove(c.Request.Context(), c.Param("id")); err != nil {
		failFor(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}
