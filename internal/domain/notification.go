package domain

import "time"

// AuthorizationStatus is the notification permission state.
type AuthorizationStatus string

const (
	AuthorizationNotDetermined AuthorizationStatus = "not_determined"
	AuthorizationAuthorized    AuthorizationStatus = "authorized"
	AuthorizationDenied        AuthorizationStatus = "denied"
)

// Valid reports whether s is one of the known states.
func (s AuthorizationStatus) Valid() bool {
	switch s {
	case AuthorizationNotDetermined, AuthorizationAuthorized, AuthorizationDenied:
		return true
	}
	return false
}

// TriggerKind tags which variant of Trigger is populated.
type TriggerKind string

const (
	TriggerCalendar TriggerKind = "calendar"
	TriggerInterval TriggerKind = "interval"
)

// CalendarTrigger fires when the wall clock matches Hour:Minute in the
// center's location. The date part is never stored.
type CalendarTrigger struct {
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
	Repeats bool `json:"repeats"`
}

// IntervalTrigger fires Seconds after registration (and every Seconds after
// that when Repeats is set).
type IntervalTrigger struct {
	Seconds float64 `json:"seconds"`
	Repeats bool    `json:"repeats"`
}

// Trigger is a tagged variant: exactly one of Calendar or Interval is set,
// matching Kind. Consumers switch on Kind instead of inspecting types.
type Trigger struct {
	Kind     TriggerKind      `json:"kind"`
	Calendar *CalendarTrigger `json:"calendar,omitempty"`
	Interval *IntervalTrigger `json:"interval,omitempty"`
}

// DailyAt builds a repeating calendar trigger at hour:minute.
func DailyAt(hour, minute int) Trigger {
	return Trigger{
		Kind:     TriggerCalendar,
		Calendar: &CalendarTrigger{Hour: hour, Minute: minute, Repeats: true},
	}
}

// After builds an interval trigger firing once after d.
func After(d time.Duration) Trigger {
	return Trigger{
		Kind:     TriggerInterval,
		Interval: &IntervalTrigger{Seconds: d.Seconds()},
	}
}

// Repeats reports whether the trigger re-arms after firing.
func (t Trigger) Repeats() bool {
	switch t.Kind {
	case TriggerCalendar:
		return t.Calendar != nil && t.Calendar.Repeats
	case TriggerInterval:
		return t.Interval != nil && t.Interval.Repeats
	}
	return false
}

// NotificationContent is what the user sees when a request fires.
type NotificationContent struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Sound      bool   `json:"sound"`
	Badge      *int   `json:"badge,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
}

// ReminderRequest is one registration held by the notification center.
// NextTriggerAt is filled by the center when listing.
type ReminderRequest struct {
	ID            string              `json:"id"`
	Content       NotificationContent `json:"content"`
	Trigger       Trigger             `json:"trigger"`
	NextTriggerAt *time.Time          `json:"next_trigger_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// NotificationAction is a button attached to a category.
type NotificationAction struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Foreground bool   `json:"foreground"`
}

// NotificationCategory groups actions under an identifier referenced by
// NotificationContent.CategoryID.
type NotificationCategory struct {
	ID      string               `json:"id"`
	Actions []NotificationAction `json:"actions"`
}

// PresentationOptions is a bit set chosen by the delegate for each delivery.
type PresentationOptions uint8

const (
	PresentBanner PresentationOptions = 1 << iota
	PresentSound
	PresentBadge
)

// Has reports whether all bits of o are set.
func (p PresentationOptions) Has(o PresentationOptions) bool { return p&o == o }

// Strings lists the set options by name.
func (p PresentationOptions) Strings() []string {
	out := make([]string, 0, 3)
	if p.Has(PresentBanner) {
		out = append(out, "banner")
	}
	if p.Has(PresentSound) {
		out = append(out, "sound")
	}
	if p.Has(PresentBadge) {
		out = append(out, "badge")
	}
	return out
}

// Delivery is a request that fired, with the options it is presented with.
type Delivery struct {
	Request     ReminderRequest
	Category    *NotificationCategory
	Options     PresentationOptions
	DeliveredAt time.Time
}

// ActionResponse is the user's reaction to a delivered notification.
type ActionResponse struct {
	RequestID string    `json:"request_id"`
	ActionID  string    `json:"action_id"`
	At        time.Time `json:"at"`
}
