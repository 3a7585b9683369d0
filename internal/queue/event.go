// Package queue defines message payloads exchanged over the message broker.
package queue

// RegistrationConfirmedEvent is published when an RSVP is admitted
// within event capacity.  It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.  Waitlisted registrations are not announced; a later
// manual promotion publishes its own confirmation.
type RegistrationConfirmedEvent struct {
	RegistrationID uint64 `json:"registration_id"`
	UserID         uint64 `json:"user_id"`
	EventID        uint64 `json:"event_id"`
	EventTitle     string `json:"event_title"`
	StartsAt       string `json:"starts_at"`
	GuestCount     uint32 `json:"guest_count"`
	ConfirmedAt    string `json:"confirmed_at"`
}
