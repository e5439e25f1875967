// Package domain defines the core types of the hydration planner: logged
// water-intake entries, scheduled reminder requests and the notification
// vocabulary (authorization, categories, actions, presentation options)
// shared by the store, the reminder scheduler and the notification center.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one logged water-intake record.
//
// Fields:
//   - ID: opaque unique identity, immutable after creation.
//   - Timestamp: when the water was drunk (user-editable, no range check).
//   - AmountML: amount in millilitres; the store never validates it.
//   - Note: free text, may be empty.
//
// The plist keys match the file written by the mobile app, so an existing
// waterEntries.xml hydrates unchanged.
type Entry struct {
	ID        string    `json:"id"        plist:"id"`
	Timestamp time.Time `json:"timestamp" plist:"date"`
	AmountML  float64   `json:"amount_ml" plist:"amount"`
	Note      string    `json:"note"      plist:"note"`
}

// NewEntryID returns a fresh entry identifier in the upper-case UUID form
// the mobile app generates.
func NewEntryID() string {
	return strings.ToUpper(uuid.NewString())
}
