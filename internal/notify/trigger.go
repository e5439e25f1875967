package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/tbourn/go-hydration-backend/internal/domain"
)

// ErrInvalidTrigger is returned for triggers the center cannot arm.
var ErrInvalidTrigger = errors.New("invalid trigger")

// MinRepeatInterval is the shortest accepted period of a repeating interval
// trigger.
const MinRepeatInterval = 60 * time.Second

// DailyRule renders the RFC 5545 rule of a calendar trigger.
func DailyRule(hour, minute int) string {
	return fmt.Sprintf("FREQ=DAILY;BYHOUR=%d;BYMINUTE=%d;BYSECOND=0", hour, minute)
}

// ValidateTrigger checks that exactly the payload matching Kind is present
// and within range.
func ValidateTrigger(t domain.Trigger) error {
	switch t.Kind {
	case domain.TriggerCalendar:
		c := t.Calendar
		if c == nil || t.Interval != nil {
			return fmt.Errorf("%w: calendar payload required", ErrInvalidTrigger)
		}
		if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
			return fmt.Errorf("%w: time %02d:%02d out of range", ErrInvalidTrigger, c.Hour, c.Minute)
		}
	case domain.TriggerInterval:
		i := t.Interval
		if i == nil || t.Calendar != nil {
			return fmt.Errorf("%w: interval payload required", ErrInvalidTrigger)
		}
		if i.Seconds <= 0 {
			return fmt.Errorf("%w: interval must be positive", ErrInvalidTrigger)
		}
		if i.Repeats && time.Duration(i.Seconds*float64(time.Second)) < MinRepeatInterval {
			return fmt.Errorf("%w: repeating interval must be at least %s", ErrInvalidTrigger, MinRepeatInterval)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTrigger, t.Kind)
	}
	return nil
}

// NextFire returns the first fire time strictly after after. Calendar
// triggers are evaluated on the wall clock of loc.
func NextFire(t domain.Trigger, after time.Time, loc *time.Location) (time.Time, error) {
	if err := ValidateTrigger(t); err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	switch t.Kind {
	case domain.TriggerCalendar:
		opt, err := rrule.StrToROption(DailyRule(t.Calendar.Hour, t.Calendar.Minute))
		if err != nil {
			return time.Time{}, fmt.Errorf("parse rule: %w", err)
		}
		start := after.In(loc)
		opt.Dtstart = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		rule, err := rrule.NewRRule(*opt)
		if err != nil {
			return time.Time{}, fmt.Errorf("build rule: %w", err)
		}
		next := rule.After(after, false)
		if next.IsZero() {
			return time.Time{}, fmt.Errorf("%w: no occurrence after %s", ErrInvalidTrigger, after)
		}
		return next, nil
	default:
		d := time.Duration(t.Interval.Seconds * float64(time.Second))
		return after.Add(d), nil
	}
}

func triggerFromRecord(r domain.NotificationRecord) domain.Trigger {
	if domain.TriggerKind(r.Kind) == domain.TriggerInterval {
		return domain.Trigger{
			Kind:     domain.TriggerInterval,
			Interval: &domain.IntervalTrigger{Seconds: r.IntervalSeconds, Repeats: r.Repeats},
		}
	}
	return domain.Trigger{
		Kind:     domain.TriggerCalendar,
		Calendar: &domain.CalendarTrigger{Hour: r.Hour, Minute: r.Minute, Repeats: r.Repeats},
	}
}
