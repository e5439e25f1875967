package domain

import "time"

// NotificationRecord is the persisted form of a ReminderRequest in the
// notification center. The trigger variant is flattened into columns keyed
// by Kind.
//
// Fields:
//   - ID: request identifier chosen by the caller (primary key).
//   - Kind: "calendar" or "interval" (enforced by DB constraint).
//   - Hour / Minute: calendar trigger time, zero for interval triggers.
//   - IntervalSeconds: interval trigger delay, zero for calendar triggers.
//   - NextFireAt: next due time; the dispatcher scans this index.
type NotificationRecord struct {
	ID              string    `gorm:"type:varchar(128);primaryKey"`
	Kind            string    `gorm:"type:varchar(16);not null;check:kind IN ('calendar','interval')"`
	Hour            int       `gorm:"not null;default:0"`
	Minute          int       `gorm:"not null;default:0"`
	IntervalSeconds float64   `gorm:"not null;default:0"`
	Repeats         bool      `gorm:"not null;default:false"`
	Title           string    `gorm:"type:varchar(255);not null"`
	Body            string    `gorm:"type:text;not null"`
	Sound           bool      `gorm:"not null;default:false"`
	Badge           *int      `gorm:""`
	CategoryID      string    `gorm:"type:varchar(64)"`
	NextFireAt      time.Time `gorm:"not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the database table name for NotificationRecord.
func (NotificationRecord) TableName() string { return "notification_requests" }

// NotificationSettings is the single-row settings table of the center.
type NotificationSettings struct {
	ID            int    `gorm:"primaryKey"`
	Authorization string `gorm:"type:varchar(32);not null;default:'not_determined'"`
	BadgeCount    int    `gorm:"not null;default:0"`
	UpdatedAt     time.Time
}

// TableName returns the database table name for NotificationSettings.
func (NotificationSettings) TableName() string { return "notification_settings" }

// CategoryRecord stores a registered category; actions are kept as JSON.
type CategoryRecord struct {
	ID        string               `gorm:"type:varchar(64);primaryKey"`
	Actions   []NotificationAction `gorm:"serializer:json"`
	CreatedAt time.Time
}

// TableName returns the database table name for CategoryRecord.
func (CategoryRecord) TableName() string { return "notification_categories" }
