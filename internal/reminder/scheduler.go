// Package reminder schedules the daily "drink water" reminder on a
// notification center.
//
// The scheduler is gated on notification authorization: every Schedule
// call re-reads the live status first and never trusts a cached value. At
// most one reminder is active; scheduling clears everything pending before
// registering the new request.
//
// Status observed by readers (Status) is applied on the owning event loop
// through a mainloop.Executor, never written from the caller's goroutine.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-hydration-backend/internal/domain"
	"github.com/tbourn/go-hydration-backend/internal/mainloop"
	"github.com/tbourn/go-hydration-backend/internal/metrics"
	"github.com/tbourn/go-hydration-backend/internal/notify"
)

// ErrNotAuthorized is returned by Schedule when notifications are not
// authorized. No request is registered.
var ErrNotAuthorized = errors.New("notifications not authorized")

// Identifiers of the reminder category and its actions.
const (
	CategoryID   = "WATER_REMINDER"
	ActionDrink  = "DRINK_ACTION"
	ActionSnooze = "SNOOZE_ACTION"

	// RequestIDPrefix prefixes every reminder request id.
	RequestIDPrefix = "water-reminder-"
)

// Content strings shown to the user.
const (
	Title            = "Time to drink water!"
	bodyFormat       = "Remember to drink %d ml of water to reach your goal."
	drinkActionTitle = "I drank it"
	snoozeTitle      = "Snooze 30 minutes"
)

// Center is the notification facility the scheduler drives.
type Center interface {
	RequestAuthorization(ctx context.Context) (bool, error)
	AuthorizationStatus(ctx context.Context) (domain.AuthorizationStatus, error)
	SetCategories(ctx context.Context, cats []domain.NotificationCategory) error
	Add(ctx context.Context, req domain.ReminderRequest) error
	Pending(ctx context.Context) ([]domain.ReminderRequest, error)
	Remove(ctx context.Context, ids ...string) error
	RemoveAll(ctx context.Context) error
}

// Scheduler is the reminder front end over a Center.
type Scheduler struct {
	center Center
	loop   mainloop.Executor
	loc    *time.Location
	newID  func() string
	log    zerolog.Logger

	// status is owned by loop.
	status domain.AuthorizationStatus
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocation sets the zone hour and minute are read in (default time.Local).
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIDGenerator overrides request id generation (tests).
func WithIDGenerator(fn func() string) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New returns a scheduler over center whose published status lives on loop.
func New(center Center, loop mainloop.Executor, opts ...Option) *Scheduler {
	s := &Scheduler{
		center: center,
		loop:   loop,
		loc:    time.Local,
		newID:  func() string { return RequestIDPrefix + uuid.NewString() },
		log:    log.With().Str("component", "reminder").Logger(),
		status: domain.AuthorizationNotDetermined,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Category is the reminder category with its two actions.
func Category() domain.NotificationCategory {
	return domain.NotificationCategory{
		ID: CategoryID,
		Actions: []domain.NotificationAction{
			{ID: ActionDrink, Title: drinkActionTitle, Foreground: true},
			{ID: ActionSnooze, Title: snoozeTitle, Foreground: true},
		},
	}
}

// Body renders the reminder text for amountML, truncated to whole ml.
func Body(amountML float64) string {
	return fmt.Sprintf(bodyFormat, int(math.Trunc(amountML)))
}

// Status returns the last published authorization status. Call it from the
// loop, or through Loop.Do.
func (s *Scheduler) Status() domain.AuthorizationStatus { return s.status }

// publish applies st on the loop and waits for it to be visible.
func (s *Scheduler) publish(ctx context.Context, st domain.AuthorizationStatus) {
	if err := s.loop.Do(ctx, func() { s.status = st }); err != nil {
		s.log.Warn().Err(err).Str("status", string(st)).Msg("publish authorization status")
	}
}

// RequestAuthorization asks the center for permission. On grant the
// reminder category is registered.
func (s *Scheduler) RequestAuthorization(ctx context.Context) (domain.AuthorizationStatus, error) {
	granted, err := s.center.RequestAuthorization(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("authorization request failed")
		return s.CheckAuthorization(ctx)
	}
	if granted {
		if err := s.center.SetCategories(ctx, []domain.NotificationCategory{Category()}); err != nil {
			return domain.AuthorizationAuthorized, fmt.Errorf("register category: %w", err)
		}
		s.log.Info().Msg("notifications authorized")
	} else {
		s.log.Info().Msg("notifications denied")
	}
	return s.CheckAuthorization(ctx)
}

// CheckAuthorization queries the live status and publishes it.
func (s *Scheduler) CheckAuthorization(ctx context.Context) (domain.AuthorizationStatus, error) {
	st, err := s.center.AuthorizationStatus(ctx)
	if err != nil {
		return domain.AuthorizationNotDetermined, fmt.Errorf("authorization status: %w", err)
	}
	s.publish(ctx, st)
	return st, nil
}

// Schedule replaces any pending reminder with a daily one at the hour and
// minute of timeOfDay (read in the scheduler's zone; the date is ignored).
func (s *Scheduler) Schedule(ctx context.Context, timeOfDay time.Time, amountML float64) (domain.ReminderRequest, error) {
	st, err := s.CheckAuthorization(ctx)
	if err != nil {
		metrics.RemindersScheduled.WithLabelValues("error").Inc()
		return domain.ReminderRequest{}, err
	}
	if st != domain.AuthorizationAuthorized {
		metrics.RemindersScheduled.WithLabelValues("not_authorized").Inc()
		s.log.Warn().Str("status", string(st)).Msg("schedule refused")
		return domain.ReminderRequest{}, ErrNotAuthorized
	}

	badge := 1
	local := timeOfDay.In(s.loc)
	req := domain.ReminderRequest{
		ID: s.newID(),
		Content: domain.NotificationContent{
			Title:      Title,
			Body:       Body(amountML),
			Sound:      true,
			Badge:      &badge,
			CategoryID: CategoryID,
		},
		Trigger: domain.DailyAt(local.Hour(), local.Minute()),
	}

	if err := s.center.RemoveAll(ctx); err != nil {
		metrics.RemindersScheduled.WithLabelValues("error").Inc()
		return domain.ReminderRequest{}, fmt.Errorf("clear pending: %w", err)
	}
	if err := s.center.Add(ctx, req); err != nil {
		metrics.RemindersScheduled.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("register reminder")
		return domain.ReminderRequest{}, fmt.Errorf("register reminder: %w", err)
	}
	metrics.RemindersScheduled.WithLabelValues("ok").Inc()
	s.log.Info().
		Str("id", req.ID).
		Int("hour", local.Hour()).
		Int("minute", local.Minute()).
		Msg("daily reminder scheduled")
	return req, nil
}

// ListPending is a live query of the center.
func (s *Scheduler) ListPending(ctx context.Context) ([]domain.ReminderRequest, error) {
	return s.center.Pending(ctx)
}

// CancelAll clears every pending reminder.
func (s *Scheduler) CancelAll(ctx context.Context) error {
	return s.center.RemoveAll(ctx)
}

// CancelOne clears the pending reminder with id; unknown ids are ignored.
func (s *Scheduler) CancelOne(ctx context.Context, id string) error {
	return s.center.Remove(ctx, id)
}

// Delegate returns the presentation/response handler for a dispatcher.
func (s *Scheduler) Delegate() notify.Delegate { return delegate{log: s.log} }

type delegate struct {
	log zerolog.Logger
}

// WillPresent always shows banner, sound and badge, also in the foreground.
func (delegate) WillPresent(context.Context, domain.ReminderRequest) domain.PresentationOptions {
	return domain.PresentBanner | domain.PresentSound | domain.PresentBadge
}

// DidReceive logs the action. Snooze has no scheduling effect.
func (d delegate) DidReceive(_ context.Context, r domain.ActionResponse) {
	switch r.ActionID {
	case ActionDrink:
		d.log.Info().Str("id", r.RequestID).Msg("user drank water")
	case ActionSnooze:
		d.log.Info().Str("id", r.RequestID).Msg("user snoozed reminder")
	default:
		d.log.Debug().Str("id", r.RequestID).Str("action", r.ActionID).Msg("notification response")
	}
}
