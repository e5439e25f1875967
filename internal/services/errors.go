// Package services defines the application logic for entries, reminders and
// export. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import (
	"errors"

	"github.com/tbourn/go-hydration-backend/internal/reminder"
)

// Entry-related errors.
var (
	// ErrInvalidAmount is returned when an amount is zero, negative or not a
	// finite number.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrMissingTimestamp is returned when an entry has no timestamp.
	ErrMissingTimestamp = errors.New("timestamp is required")

	// ErrEntryNotFound indicates that no entry has the requested id.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrDuplicateEntry is returned when a caller-chosen id is already used.
	ErrDuplicateEntry = errors.New("entry id already exists")

	// ErrNoteTooLong is returned when a note exceeds the configured limit.
	ErrNoteTooLong = errors.New("note too long")
)

// Reminder-related errors.
var (
	// ErrNotAuthorized is returned when notifications are not authorized.
	// It is the scheduler's sentinel, re-exported for handlers.
	ErrNotAuthorized = reminder.ErrNotAuthorized

	// ErrInvalidTime is returned for unparseable reminder times.
	ErrInvalidTime = errors.New("time must be HH:MM or RFC 3339")

	// ErrUnknownAction is returned for actions the reminder category does not
	// declare.
	ErrUnknownAction = errors.New("unknown reminder action")
)

// Export-related errors.
var (
	// ErrExportFailed is returned when the entries file could not be exported.
	ErrExportFailed = errors.New("export failed")

	// ErrInvalidDestination is returned for empty or relative export paths.
	ErrInvalidDestination = errors.New("destination must be an absolute path")
)
