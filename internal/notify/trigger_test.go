package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-hydration-backend/internal/domain"
)

func TestValidateTrigger(t *testing.T) {
	good := []domain.Trigger{
		domain.DailyAt(0, 0),
		domain.DailyAt(23, 59),
		domain.After(10 * time.Second),
		{Kind: domain.TriggerInterval, Interval: &domain.IntervalTrigger{Seconds: 60, Repeats: true}},
	}
	for _, tr := range good {
		if err := ValidateTrigger(tr); err != nil {
			t.Fatalf("ValidateTrigger(%+v) = %v", tr, err)
		}
	}

	bad := []domain.Trigger{
		{},
		{Kind: domain.TriggerCalendar},
		{Kind: domain.TriggerInterval},
		domain.DailyAt(24, 0),
		domain.DailyAt(9, 60),
		domain.DailyAt(-1, 0),
		domain.After(0),
		{Kind: domain.TriggerInterval, Interval: &domain.IntervalTrigger{Seconds: 30, Repeats: true}},
		{Kind: domain.TriggerCalendar, Calendar: &domain.CalendarTrigger{Hour: 1}, Interval: &domain.IntervalTrigger{Seconds: 1}},
	}
	for _, tr := range bad {
		if err := ValidateTrigger(tr); !errors.Is(err, ErrInvalidTrigger) {
			t.Fatalf("ValidateTrigger(%+v) = %v, want ErrInvalidTrigger", tr, err)
		}
	}
}

func TestNextFire_Calendar(t *testing.T) {
	loc := time.FixedZone("EET", 2*3600)
	cases := []struct {
		name  string
		after time.Time
		want  time.Time
	}{
		{"later today", time.Date(2024, 1, 1, 8, 0, 0, 0, loc), time.Date(2024, 1, 1, 14, 30, 0, 0, loc)},
		{"tomorrow", time.Date(2024, 1, 1, 15, 0, 0, 0, loc), time.Date(2024, 1, 2, 14, 30, 0, 0, loc)},
		{"exact time is strict", time.Date(2024, 1, 1, 14, 30, 0, 0, loc), time.Date(2024, 1, 2, 14, 30, 0, 0, loc)},
		{"month rollover", time.Date(2024, 1, 31, 20, 0, 0, 0, loc), time.Date(2024, 2, 1, 14, 30, 0, 0, loc)},
		// 13:00 UTC is 15:00 local, so the next 14:30 local is the following day.
		{"after given in UTC", time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC), time.Date(2024, 1, 2, 14, 30, 0, 0, loc)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextFire(domain.DailyAt(14, 30), tc.after, loc)
			if err != nil {
				t.Fatalf("NextFire: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("NextFire = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNextFire_Interval(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	got, err := NextFire(domain.After(90*time.Second), now, time.UTC)
	if err != nil {
		t.Fatalf("NextFire: %v", err)
	}
	if !got.Equal(now.Add(90 * time.Second)) {
		t.Fatalf("NextFire = %v", got)
	}
	if _, err := NextFire(domain.Trigger{Kind: "x"}, now, nil); !errors.Is(err, ErrInvalidTrigger) {
		t.Fatalf("expected ErrInvalidTrigger, got %v", err)
	}
}

func TestDailyRule(t *testing.T) {
	if got := DailyRule(9, 5); got != "FREQ=DAILY;BYHOUR=9;BYMINUTE=5;BYSECOND=0" {
		t.Fatalf("DailyRule = %q", got)
	}
}

func TestTriggerFromRecord(t *testing.T) {
	cal := triggerFromRecord(domain.NotificationRecord{Kind: "calendar", Hour: 9, Minute: 15, Repeats: true})
	if cal.Kind != domain.TriggerCalendar || cal.Calendar.Hour != 9 || cal.Calendar.Minute != 15 || !cal.Repeats() {
		t.Fatalf("calendar = %+v", cal)
	}
	iv := triggerFromRecord(domain.NotificationRecord{Kind: "interval", IntervalSeconds: 10})
	if iv.Kind != domain.TriggerInterval || iv.Interval.Seconds != 10 || iv.Repeats() {
		t.Fatalf("interval = %+v", iv)
	}
}
