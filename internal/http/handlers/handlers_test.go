package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-hydration-backend/internal/domain"
	"github.com/tbourn/go-hydration-backend/internal/notify"
	"github.com/tbourn/go-hydration-backend/internal/services"
	"github.com/tbourn/go-hydration-backend/internal/store"
)

// ---------- test plumbing ----------

// stubEntrySvc satisfies EntryService; unset funcs return zero values.
type stubEntrySvc struct {
	create   func(ctx context.Context, in services.CreateInput, key string) (domain.Entry, bool, error)
	get      func(ctx context.Context, id string) (domain.Entry, bool, error)
	update   func(ctx context.Context, e domain.Entry) (bool, error)
	remove   func(ctx context.Context, id string) (int, error)
	list     func(ctx context.Context, q store.Query, page, pageSize int) ([]domain.Entry, int, error)
	export   func(ctx context.Context, dest string) error
	download func(ctx context.Context, w io.Writer) (int64, error)
}

func (s stubEntrySvc) Create(ctx context.Context, in services.CreateInput, key string) (domain.Entry, bool, error) {
	if s.create == nil {
		return domain.Entry{}, false, nil
	}
	return s.create(ctx, in, key)
}

func (s stubEntrySvc) Get(ctx context.Context, id string) (domain.Entry, bool, error) {
	if s.get == nil {
		return domain.Entry{}, false, nil
	}
	return s.get(ctx, id)
}

func (s stubEntrySvc) Update(ctx context.Context, e domain.Entry) (bool, error) {
	if s.update == nil {
		return false, nil
	}
	return s.update(ctx, e)
}

func (s stubEntrySvc) Remove(ctx context.Context, id string) (int, error) {
	if s.remove == nil {
		return 0, nil
	}
	return s.remove(ctx, id)
}

func (s stubEntrySvc) ListPage(ctx context.Context, q store.Query, page, pageSize int) ([]domain.Entry, int, error) {
	if s.list == nil {
		return []domain.Entry{}, 0, nil
	}
	return s.list(ctx, q, page, pageSize)
}

func (s stubEntrySvc) Export(ctx context.Context, dest string) error {
	if s.export == nil {
		return nil
	}
	return s.export(ctx, dest)
}

func (s stubEntrySvc) Download(ctx context.Context, w io.Writer) (int64, error) {
	if s.download == nil {
		return 0, nil
	}
	return s.download(ctx, w)
}

func (stubEntrySvc) Location() *time.Location { return time.UTC }

// stubReminderSvc satisfies ReminderService.
type stubReminderSvc struct {
	status   domain.AuthorizationStatus
	pending  []domain.ReminderRequest
	schedule func(ctx context.Context, at string, amount float64) (domain.ReminderRequest, error)
	action   func(ctx context.Context, requestID, actionID string) error

	cancelledAll bool
	cancelled    []string
	badgeReset   bool
	prompted     int
}

func (s *stubReminderSvc) Authorization(context.Context) (domain.AuthorizationStatus, error) {
	return s.status, nil
}

func (s *stubReminderSvc) RequestAuthorization(context.Context) (domain.AuthorizationStatus, error) {
	s.prompted++
	if s.status == domain.AuthorizationNotDetermined {
		s.status = domain.AuthorizationAuthorized
	}
	return s.status, nil
}

func (s *stubReminderSvc) Schedule(ctx context.Context, at string, amount float64) (domain.ReminderRequest, error) {
	if s.schedule == nil {
		return domain.ReminderRequest{ID: "r1", Trigger: domain.DailyAt(9, 0)}, nil
	}
	return s.schedule(ctx, at, amount)
}

func (s *stubReminderSvc) Pending(context.Context) ([]domain.ReminderRequest, error) {
	return s.pending, nil
}

func (s *stubReminderSvc) CancelAll(context.Context) error {
	s.cancelledAll = true
	return nil
}

func (s *stubReminderSvc) CancelOne(_ context.Context, id string) error {
	s.cancelled = append(s.cancelled, id)
	return nil
}

func (s *stubReminderSvc) HandleAction(ctx context.Context, requestID, actionID string) error {
	if s.action == nil {
		return nil
	}
	return s.action(ctx, requestID, actionID)
}

func (s *stubReminderSvc) NotificationSettings(context.Context) (notify.Settings, error) {
	return notify.Settings{Authorization: s.status, BadgeCount: 3}, nil
}

func (s *stubReminderSvc) ResetBadge(context.Context) error {
	s.badgeReset = true
	return nil
}

func newTestRouter(es EntryService, rs ReminderService) (*gin.Engine, *Handlers) {
	gin.SetMode(gin.TestMode)
	h := New(es, rs)
	h.now = func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 500, time.UTC) }

	r := gin.New()
	r.GET("/entries", h.ListEntries)
	r.GET("/entries/:id", h.GetEntry)
	r.POST("/entries", h.CreateEntry)
	r.PUT("/entries/:id", h.UpdateEntry)
	r.DELETE("/entries/:id", h.DeleteEntry)
	r.GET("/export", h.DownloadExport)
	r.POST("/export", h.ExportToPath)
	r.GET("/notifications/authorization", h.GetAuthorization)
	r.POST("/notifications/authorization", h.RequestAuthorization)
	r.GET("/notifications/settings", h.GetNotificationSettings)
	r.DELETE("/notifications/badge", h.ResetBadge)
	r.GET("/reminders", h.ListReminders)
	r.POST("/reminders", h.ScheduleReminder)
	r.DELETE("/reminders", h.CancelReminders)
	r.DELETE("/reminders/:id", h.CancelReminder)
	r.POST("/reminders/:id/actions/:action", h.ReminderAction)
	return r, h
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v body=%s", err, w.Body.String())
	}
	return v
}

// ---------- helpers ----------

func Test_newPagination(t *testing.T) {
	p := newPagination(2, 10, 25)
	if p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("got %+v", p)
	}
	p = newPagination(3, 10, 25)
	if p.HasNext {
		t.Fatalf("last page reports next: %+v", p)
	}
	if p := newPagination(1, 50, 0); p.TotalPages != 0 || p.HasNext {
		t.Fatalf("empty: %+v", p)
	}
}

func Test_clampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query      string
		page, size int
	}{
		{"", 1, 50},
		{"?page=0&page_size=0", 1, 1},
		{"?page=3&page_size=9999", 3, 500},
		{"?page=x&page_size=y", 1, 50},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/entries"+tc.query, nil)
		page, size := clampPagination(c)
		if page != tc.page || size != tc.size {
			t.Fatalf("%q: got %d,%d want %d,%d", tc.query, page, size, tc.page, tc.size)
		}
	}
}
