// Package services – ReminderService
//
// ReminderService exposes the daily reminder and the notification center
// settings to the transport layer. Scheduling is delegated to the reminder
// scheduler (authorization gated); user actions go through the dispatcher so
// they are validated against the reminder category.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tbourn/go-hydration-backend/internal/domain"
	"github.com/tbourn/go-hydration-backend/internal/notify"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ReminderScheduler is implemented by *reminder.Scheduler.
type ReminderScheduler interface {
	RequestAuthorization(ctx context.Context) (domain.AuthorizationStatus, error)
	CheckAuthorization(ctx context.Context) (domain.AuthorizationStatus, error)
	Schedule(ctx context.Context, timeOfDay time.Time, amountML float64) (domain.ReminderRequest, error)
	ListPending(ctx context.Context) ([]domain.ReminderRequest, error)
	CancelAll(ctx context.Context) error
	CancelOne(ctx context.Context, id string) error
}

// ActionHandler is implemented by *notify.Dispatcher.
type ActionHandler interface {
	HandleAction(ctx context.Context, requestID, actionID string) error
}

// SettingsStore is implemented by *notify.Center.
type SettingsStore interface {
	Settings(ctx context.Context) (notify.Settings, error)
	ResetBadge(ctx context.Context) error
}

// ReminderService groups reminder and notification operations.
type ReminderService struct {
	Scheduler ReminderScheduler
	Actions   ActionHandler
	Settings  SettingsStore

	// Location interprets "HH:MM" reminder times.
	Location *time.Location
}

// NewReminderService wires a ReminderService.
func NewReminderService(s ReminderScheduler, a ActionHandler, st SettingsStore, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderService{Scheduler: s, Actions: a, Settings: st, Location: loc}
}

// ParseTimeOfDay accepts "HH:MM" (today in loc) or an RFC 3339 timestamp.
func ParseTimeOfDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidTime
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation("15:04", s, loc); err == nil {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidTime
}

// Authorization returns the live authorization status.
func (s *ReminderService) Authorization(ctx context.Context) (domain.AuthorizationStatus, error) {
	return s.Scheduler.CheckAuthorization(ctx)
}

// RequestAuthorization prompts for permission (once) and returns the
// resulting status.
func (s *ReminderService) RequestAuthorization(ctx context.Context) (domain.AuthorizationStatus, error) {
	tr := otel.Tracer("services/ReminderService")
	ctx, span := tr.Start(ctx, "RequestAuthorization")
	defer span.End()

	st, err := s.Scheduler.RequestAuthorization(ctx)
	span.SetAttributes(attribute.String("notify.authorization", string(st)))
	return st, err
}

// Schedule replaces the pending reminder with a daily one at the time of
// day given by at ("HH:MM" or RFC 3339).
func (s *ReminderService) Schedule(ctx context.Context, at string, amountML float64) (domain.ReminderRequest, error) {
	tr := otel.Tracer("services/ReminderService")
	ctx, span := tr.Start(ctx, "Schedule",
		trace.WithAttributes(attribute.Float64("reminder.amount_ml", amountML)),
	)
	defer span.End()

	if !validAmount(amountML) {
		return domain.ReminderRequest{}, ErrInvalidAmount
	}
	tod, err := ParseTimeOfDay(at, s.Location)
	if err != nil {
		return domain.ReminderRequest{}, err
	}
	req, err := s.Scheduler.Schedule(ctx, tod, amountML)
	if err != nil {
		return domain.ReminderRequest{}, err
	}
	span.SetAttributes(attribute.String("reminder.id", req.ID))
	return req, nil
}

// Pending lists the pending reminders.
func (s *ReminderService) Pending(ctx context.Context) ([]domain.ReminderRequest, error) {
	return s.Scheduler.ListPending(ctx)
}

// CancelAll removes every pending reminder.
func (s *ReminderService) CancelAll(ctx context.Context) error {
	tr := otel.Tracer("services/ReminderService")
	ctx, span := tr.Start(ctx, "CancelAll")
	defer span.End()
	return s.Scheduler.CancelAll(ctx)
}

// CancelOne removes the reminder with id; unknown ids are ignored.
func (s *ReminderService) CancelOne(ctx context.Context, id string) error {
	tr := otel.Tracer("services/ReminderService")
	ctx, span := tr.Start(ctx, "CancelOne",
		trace.WithAttributes(attribute.String("reminder.id", id)),
	)
	defer span.End()
	return s.Scheduler.CancelOne(ctx, id)
}

// HandleAction reports the user's response to a delivered reminder.
func (s *ReminderService) HandleAction(ctx context.Context, requestID, actionID string) error {
	tr := otel.Tracer("services/ReminderService")
	ctx, span := tr.Start(ctx, "HandleAction",
		trace.WithAttributes(
			attribute.String("reminder.id", requestID),
			attribute.String("reminder.action", actionID),
		),
	)
	defer span.End()

	if err := s.Actions.HandleAction(ctx, requestID, actionID); err != nil {
		if errors.Is(err, notify.ErrUnknownAction) {
			return fmt.Errorf("%w: %s", ErrUnknownAction, strings.TrimPrefix(err.Error(), notify.ErrUnknownAction.Error()+": "))
		}
		return err
	}
	return nil
}

// NotificationSettings returns authorization status and the badge count.
func (s *ReminderService) NotificationSettings(ctx context.Context) (notify.Settings, error) {
	return s.Settings.Settings(ctx)
}

// ResetBadge clears the badge count.
func (s *ReminderService) ResetBadge(ctx context.Context) error {
	return s.Settings.ResetBadge(ctx)
}
