// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// each one to a distinct HTTP status. Conflicts caused by a losing
// concurrent call (duplicate RSVP, duplicate favorite) get their own
// sentinels rather than a generic error so the caller can report a
// benign conflict instead of a server failure.
package repository

import (
	"errors"
	"strings"
)

// ErrEventNotFound is returned when the referenced event does not
// exist. Handlers should translate this into an HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrEventClosed is returned when an RSVP is attempted against an
// event that has already ended. Handlers should translate this into
// an HTTP 409 response.
var ErrEventClosed = errors.New("event closed")

// ErrInvalidGuestCount is returned when a reservation asks for fewer
// than one guest. Nothing is written. Maps to HTTP 400.
var ErrInvalidGuestCount = errors.New("invalid guest count")

// ErrAlreadyRegistered is returned when the user already holds an
// active (confirmed or waiting) registration for the event. The
// existing row is left untouched. Maps to HTTP 409.
var ErrAlreadyRegistered = errors.New("already registered")

// ErrNotRegistered is returned when a cancel targets a (user, event)
// pair with no active registration. Maps to HTTP 404.
var ErrNotRegistered = errors.New("not registered")

// ErrAlreadyFavorited is returned when the (user, item type, item)
// triple is already favorited. Maps to HTTP 409.
var ErrAlreadyFavorited = errors.New("already favorited")

// ErrNotFavorited is returned when removing a favorite that does not
// exist. Maps to HTTP 404.
var ErrNotFavorited = errors.New("not favorited")

// ErrConflict is returned when storage-level contention (deadlocks,
// lock waits) persists past the retry budget. The operation left no
// partial state behind and the whole request may be retried by the
// caller. Maps to HTTP 503.
var ErrConflict = errors.New("conflict, retry")

// isDuplicateKey reports whether err is a MySQL duplicate-entry
// violation (error 1062), i.e. the unique index caught a concurrent
// duplicate that slipped past the application-level pre-check.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "Error 1062")
}

// isRetryable reports whether err is a transient MySQL locking
// failure: 1213 (deadlock victim) or 1205 (lock wait timeout).
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1213") || strings.Contains(msg, "Error 1205")
}
