package model

import "time"

// Testimonial is a member-submitted story shown on the site once an
// admin approves it.  Unapproved rows are only visible to admins.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – member who submitted the testimonial.
//	Body      – the testimonial text.
//	Approved  – whether an admin has published it.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Testimonial struct {
	ID        uint64    // testimonials.id
	UserID    uint64    // testimonials.user_id
	Body      string    // testimonials.body
	Approved  bool      // testimonials.approved
	CreatedAt time.Time // testimonials.created_at
	UpdatedAt time.Time // testimonials.updated_at
}
