// Package notify is the embedded notification center: it holds pending
// reminder requests in SQLite, remembers the user's authorization answer,
// and a Dispatcher delivers due requests through pluggable channels.
//
// It stands in for a host operating system's local-notification facility.
// Callers (the reminder scheduler) never keep copies of requests; every
// read is a query against the center's tables.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-hydration-backend/internal/domain"
	"github.com/tbourn/go-hydration-backend/internal/repo"
)

// ErrInvalidRequest is returned by Add for requests missing an id or title.
var ErrInvalidRequest = errors.New("invalid notification request")

// Settings is the user-visible state of the center.
type Settings struct {
	Authorization domain.AuthorizationStatus `json:"authorization"`
	BadgeCount    int                        `json:"badge_count"`
}

// Option configures a Center.
type Option func(*Center)

// WithLocation sets the wall clock used for calendar triggers.
func WithLocation(loc *time.Location) Option {
	return func(c *Center) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Center) {
		if now != nil {
			c.now = now
		}
	}
}

// Center is safe for concurrent use; state lives in the database.
type Center struct {
	db       *gorm.DB
	prompter Prompter
	loc      *time.Location
	now      func() time.Time
	log      zerolog.Logger

	// promptMu serializes authorization prompts so only one is ever shown.
	promptMu sync.Mutex

	wakeMu sync.RWMutex
	wake   func()
}

// NewCenter builds a center over db. The prompter answers the one-time
// authorization request.
func NewCenter(db *gorm.DB, prompter Prompter, opts ...Option) *Center {
	c := &Center{
		db:       db,
		prompter: prompter,
		loc:      time.Local,
		now:      time.Now,
		log:      log.With().Str("component", "notify").Logger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Location is the wall clock used for calendar triggers.
func (c *Center) Location() *time.Location { return c.loc }

// OnChange registers fn to be called after pending requests change.
// The dispatcher uses it to re-scan immediately.
func (c *Center) OnChange(fn func()) {
	c.wakeMu.Lock()
	c.wake = fn
	c.wakeMu.Unlock()
}

func (c *Center) changed() {
	c.wakeMu.RLock()
	fn := c.wake
	c.wakeMu.RUnlock()
	if fn != nil {
		fn()
	}
}

// RequestAuthorization asks the user once. Later calls return the stored
// answer without prompting again.
func (c *Center) RequestAuthorization(ctx context.Context) (bool, error) {
	c.promptMu.Lock()
	defer c.promptMu.Unlock()

	s, err := repo.GetSettings(ctx, c.db)
	if err != nil {
		return false, fmt.Errorf("load settings: %w", err)
	}
	status := domain.AuthorizationStatus(s.Authorization)
	if status != domain.AuthorizationNotDetermined {
		return status == domain.AuthorizationAuthorized, nil
	}

	granted, err := c.prompter.Prompt(ctx)
	if err != nil {
		return false, fmt.Errorf("prompt: %w", err)
	}
	status = domain.AuthorizationDenied
	if granted {
		status = domain.AuthorizationAuthorized
	}
	if err := repo.SetAuthorization(ctx, c.db, status); err != nil {
		return false, fmt.Errorf("store authorization: %w", err)
	}
	c.log.Info().Str("status", string(status)).Msg("notification authorization answered")
	return granted, nil
}

// AuthorizationStatus reads the stored status.
func (c *Center) AuthorizationStatus(ctx context.Context) (domain.AuthorizationStatus, error) {
	s, err := repo.GetSettings(ctx, c.db)
	if err != nil {
		return domain.AuthorizationNotDetermined, err
	}
	status := domain.AuthorizationStatus(s.Authorization)
	if !status.Valid() {
		return domain.AuthorizationNotDetermined, nil
	}
	return status, nil
}

// SetAuthorization overrides the stored answer, like the user flipping the
// switch in system settings.
func (c *Center) SetAuthorization(ctx context.Context, status domain.AuthorizationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown authorization status %q", status)
	}
	return repo.SetAuthorization(ctx, c.db, status)
}

// SetCategories replaces the registered categories.
func (c *Center) SetCategories(ctx context.Context, cats []domain.NotificationCategory) error {
	recs := make([]domain.CategoryRecord, 0, len(cats))
	for _, cat := range cats {
		recs = append(recs, domain.CategoryRecord{ID: cat.ID, Actions: cat.Actions})
	}
	return repo.ReplaceCategories(ctx, c.db, recs)
}

// Categories lists the registered categories.
func (c *Center) Categories(ctx context.Context) ([]domain.NotificationCategory, error) {
	recs, err := repo.ListCategories(ctx, c.db)
	if err != nil {
		return nil, err
	}
	out := make([]domain.NotificationCategory, 0, len(recs))
	for _, r := range recs {
		out = append(out, domain.NotificationCategory{ID: r.ID, Actions: r.Actions})
	}
	return out, nil
}

// Category returns one registered category, or nil when unknown.
func (c *Center) Category(ctx context.Context, id string) (*domain.NotificationCategory, error) {
	if id == "" {
		return nil, nil
	}
	r, err := repo.GetCategory(ctx, c.db, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.NotificationCategory{ID: r.ID, Actions: r.Actions}, nil
}

// Add registers req. A request with the same id replaces the previous one.
func (c *Center) Add(ctx context.Context, req domain.ReminderRequest) error {
	if strings.TrimSpace(req.ID) == "" || strings.TrimSpace(req.Content.Title) == "" {
		return ErrInvalidRequest
	}
	next, err := NextFire(req.Trigger, c.now(), c.loc)
	if err != nil {
		return err
	}
	rec := domain.NotificationRecord{
		ID:         req.ID,
		Kind:       string(req.Trigger.Kind),
		Repeats:    req.Trigger.Repeats(),
		Title:      req.Content.Title,
		Body:       req.Content.Body,
		Sound:      req.Content.Sound,
		Badge:      req.Content.Badge,
		CategoryID: req.Content.CategoryID,
		NextFireAt: next,
	}
	switch req.Trigger.Kind {
	case domain.TriggerCalendar:
		rec.Hour, rec.Minute = req.Trigger.Calendar.Hour, req.Trigger.Calendar.Minute
	case domain.TriggerInterval:
		rec.IntervalSeconds = req.Trigger.Interval.Seconds
	}
	if err := repo.SaveNotification(ctx, c.db, &rec); err != nil {
		return fmt.Errorf("save request: %w", err)
	}
	c.log.Debug().Str("id", req.ID).Time("next_fire_at", next).Msg("notification request added")
	c.changed()
	return nil
}

// Pending lists registered requests, soonest first.
func (c *Center) Pending(ctx context.Context) ([]domain.ReminderRequest, error) {
	recs, err := repo.ListNotifications(ctx, c.db)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ReminderRequest, 0, len(recs))
	for _, r := range recs {
		out = append(out, c.toRequest(r))
	}
	return out, nil
}

// Get returns one pending request, or repo.ErrNotFound.
func (c *Center) Get(ctx context.Context, id string) (domain.ReminderRequest, error) {
	r, err := repo.GetNotification(ctx, c.db, id)
	if err != nil {
		return domain.ReminderRequest{}, err
	}
	return c.toRequest(*r), nil
}

// Remove deletes the given requests; unknown ids are ignored.
func (c *Center) Remove(ctx context.Context, ids ...string) error {
	n, err := repo.DeleteNotifications(ctx, c.db, ids...)
	if err != nil {
		return err
	}
	if n > 0 {
		c.changed()
	}
	return nil
}

// RemoveAll deletes every pending request.
func (c *Center) RemoveAll(ctx context.Context) error {
	n, err := repo.DeleteAllNotifications(ctx, c.db)
	if err != nil {
		return err
	}
	if n > 0 {
		c.log.Debug().Int64("removed", n).Msg("pending requests cleared")
		c.changed()
	}
	return nil
}

// Settings returns authorization status and badge count.
func (c *Center) Settings(ctx context.Context) (Settings, error) {
	s, err := repo.GetSettings(ctx, c.db)
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Authorization: domain.AuthorizationStatus(s.Authorization),
		BadgeCount:    s.BadgeCount,
	}, nil
}

// ResetBadge clears the badge count.
func (c *Center) ResetBadge(ctx context.Context) error {
	return repo.SetBadge(ctx, c.db, 0)
}

func (c *Center) toRequest(r domain.NotificationRecord) domain.ReminderRequest {
	next := r.NextFireAt.In(c.loc)
	return domain.ReminderRequest{
		ID: r.ID,
		Content: domain.NotificationContent{
			Title:      r.Title,
			Body:       r.Body,
			Sound:      r.Sound,
			Badge:      r.Badge,
			CategoryID: r.CategoryID,
		},
		Trigger:       triggerFromRecord(r),
		NextTriggerAt: &next,
		CreatedAt:     r.CreatedAt,
	}
}
