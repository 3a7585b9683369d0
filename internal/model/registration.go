package model

import "time"

// Registration statuses.  A registration is "active" while it is
// CONFIRMED or WAITING; cancellation is a status change, never a
// delete, so past sign-ups stay auditable and a later re-RSVP is
// treated as a brand new request.
const (
	StatusConfirmed = "CONFIRMED"
	StatusWaiting   = "WAITING"
	StatusCancelled = "CANCELLED"
)

// StatusNone is returned by status lookups when a user holds no
// active registration for an event.  It is never stored.
const StatusNone = "none"

// Registration records a user's RSVP for an event.  At most one
// non-cancelled row may exist per (user, event); the registrations
// table enforces this with a unique index over (user_id, event_id,
// active) where active is NULL on cancelled rows.
//
// Fields:
//
//	ID         – primary key identifier.
//	UserID     – user who registered.
//	EventID    – event being registered for.
//	Status     – CONFIRMED, WAITING or CANCELLED.
//	GuestCount – number of seats this registration claims (>= 1).
//	CheckedIn  – set by an admin once the event has started.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type Registration struct {
	ID         uint64    // registrations.id
	UserID     uint64    // registrations.user_id
	EventID    uint64    // registrations.event_id
	Status     string    // registrations.status
	GuestCount uint32    // registrations.guest_count
	CheckedIn  bool      // registrations.checked_in
	CreatedAt  time.Time // registrations.created_at
	UpdatedAt  time.Time // registrations.updated_at
}

// Active reports whether the registration still counts toward the
// uniqueness rule, i.e. it has not been cancelled.
func (r *Registration) Active() bool {
	return r.Status == StatusConfirmed || r.Status == StatusWaiting
}

// ValidGuestCount reports whether a requested guest count is
// acceptable for a reservation.  Zero (or anything below one) is a
// validation failure and must be rejected before any write.
func ValidGuestCount(n uint32) bool {
	return n >= 1
}

// AdmissionStatus decides the status of a new registration given the
// current confirmed guest total for the event.  The request is
// admitted when it fits fully within capacity, otherwise it is
// waitlisted; capacity exhaustion never rejects outright.  The sums
// are widened to uint64 so a large guest count cannot wrap around.
func AdmissionStatus(confirmedGuests uint64, capacity, guestCount uint32) string {
	if confirmedGuests+uint64(guestCount) <= uint64(capacity) {
		return StatusConfirmed
	}
	return StatusWaiting
}
