package domain

import "time"

// Idempotency ties a client-chosen Idempotency-Key to the entry its first
// request created. Keys are unique per Scope (the operation name, e.g.
// "entries.create"); a record stops matching once ExpiresAt has passed.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Scope     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_scope_key,priority:1"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_scope_key,priority:2"`
	EntryID   string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// NewIdempotency builds a record created at now that lives for ttl.
func NewIdempotency(id, scope, key, entryID string, status int, now time.Time, ttl time.Duration) Idempotency {
	now = now.UTC()
	return Idempotency{
		ID:        id,
		Scope:     scope,
		Key:       key,
		EntryID:   entryID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the record no longer replays at now.
func (r Idempotency) Expired(now time.Time) bool { return !now.Before(r.ExpiresAt) }
