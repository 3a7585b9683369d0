package model

import "time"

// Event represents a congregation event that members can RSVP to.
// Capacity bounds the number of confirmed guests; the confirmed
// total itself is never stored on the event row but derived from
// registrations so the two can never drift apart.
//
// Fields:
//
//	ID          – primary key identifier.
//	Title       – event title shown on the site.
//	Description – longer free-form description.
//	Location    – where the event takes place.
//	Capacity    – maximum number of confirmed guests (0 means every
//	              RSVP goes straight to the waitlist).
//	StartsAt    – when the event begins.
//	EndsAt      – when the event ends (must be after StartsAt).
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type Event struct {
	ID          uint64    // events.id
	Title       string    // events.title
	Description string    // events.description
	Location    string    // events.location
	Capacity    uint32    // events.capacity
	StartsAt    time.Time // events.starts_at
	EndsAt      time.Time // events.ends_at
	CreatedAt   time.Time // events.created_at
	UpdatedAt   time.Time // events.updated_at
}

// Started reports whether the event has begun at the given instant.
// Check-in is only allowed once this returns true.
func (e *Event) Started(now time.Time) bool {
	return !now.Before(e.StartsAt)
}

// Closed reports whether the event has ended at the given instant.
// Closed events accept no further RSVPs.
func (e *Event) Closed(now time.Time) bool {
	return !now.Before(e.EndsAt)
}
