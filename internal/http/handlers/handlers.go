// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they bind and validate input, call the
// application services and translate results into the shared response
// envelope. They depend on the service contracts declared here so tests can
// substitute stubs.
package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-hydration-backend/internal/domain"
	"github.com/tbourn/go-hydration-backend/internal/notify"
	"github.com/tbourn/go-hydration-backend/internal/services"
	"github.com/tbourn/go-hydration-backend/internal/store"
	"github.com/tbourn/go-hydration-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// EntryService is implemented by *services.EntryService.
type EntryService interface {
	Create(ctx context.Context, in services.CreateInput, idemKey string) (domain.Entry, bool, error)
	Get(ctx context.Context, id string) (domain.Entry, bool, error)
	Update(ctx context.Context, e domain.Entry) (bool, error)
	Remove(ctx context.Context, id string) (int, error)
	ListPage(ctx context.Context, q store.Query, page, pageSize int) ([]domain.Entry, int, error)
	Export(ctx context.Context, dest string) error
	Download(ctx context.Context, w io.Writer) (int64, error)
	Location() *time.Location
}

// ReminderService is implemented by *services.ReminderService.
type ReminderService interface {
	Authorization(ctx context.Context) (domain.AuthorizationStatus, error)
	RequestAuthorization(ctx context.Context) (domain.AuthorizationStatus, error)
	Schedule(ctx context.Context, at string, amountML float64) (domain.ReminderRequest, error)
	Pending(ctx context.Context) ([]domain.ReminderRequest, error)
	CancelAll(ctx context.Context) error
	CancelOne(ctx context.Context, id string) error
	HandleAction(ctx context.Context, requestID, actionID string) error
	NotificationSettings(ctx context.Context) (notify.Settings, error)
	ResetBadge(ctx context.Context) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for entries, export, reminders and
// notification settings.
type Handlers struct {
	entries   EntryService
	reminders ReminderService

	// now stamps entries created without a timestamp.
	now func() time.Time
}

// New constructs Handlers bound to the given services.
func New(entries EntryService, reminders ReminderService) *Handlers {
	return &Handlers{entries: entries, reminders: reminders, now: time.Now}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

func newPagination(page, pageSize, total int) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses page and page_size, defaulting to 1 and 50 and
// capping page_size at 500.
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.ParsePage(c.Query("page"), c.Query("page_size"))
}
