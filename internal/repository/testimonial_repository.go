package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/UGONES/church-site-api/internal/model"
)

// ErrTestimonialNotFound indicates that a testimonial was not located in the DB.
var ErrTestimonialNotFound = errors.New("testimonial not found")

// TestimonialRepo manages persistence for member testimonials.
type TestimonialRepo struct {
	db *sql.DB
}

// NewTestimonialRepo constructs a TestimonialRepo with the given DB handle.
func NewTestimonialRepo(db *sql.DB) *TestimonialRepo {
	return &TestimonialRepo{db: db}
}

// Create inserts a testimonial submitted by a member.  It starts
// unapproved and stays off the public site until an admin approves it.
func (r *TestimonialRepo) Create(ctx context.Context, t *model.Testimonial) error {
	const q = `INSERT INTO testimonials (user_id, body) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.UserID, t.Body)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT approved, created_at, updated_at FROM testimonials WHERE id = ?",
		t.ID).Scan(&t.Approved, &t.CreatedAt, &t.UpdatedAt)
}

// ListApproved returns published testimonials, newest first.
func (r *TestimonialRepo) ListApproved(ctx context.Context) ([]model.Testimonial, error) {
	return r.list(ctx, "SELECT id, user_id, body, approved, created_at, updated_at FROM testimonials WHERE approved = TRUE ORDER BY created_at DESC")
}

// ListAll returns every testimonial for admin moderation.
func (r *TestimonialRepo) ListAll(ctx context.Context) ([]model.Testimonial, error) {
	return r.list(ctx, "SELECT id, user_id, body, approved, created_at, updated_at FROM testimonials ORDER BY created_at DESC")
}

func (r *TestimonialRepo) list(ctx context.Context, q string) ([]model.Testimonial, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Testimonial, 0)
	for rows.Next() {
		var t model.Testimonial
		if err := rows.Scan(&t.ID, &t.UserID, &t.Body, &t.Approved, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// Approve publishes a testimonial or returns ErrTestimonialNotFound.
// Approving twice is a no-op: MySQL reports zero affected rows when
// the value is unchanged, so a follow-up existence check separates
// "already approved" from "missing".
func (r *TestimonialRepo) Approve(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE testimonials SET approved = TRUE WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		err := r.db.QueryRowContext(ctx,
			"SELECT id FROM testimonials WHERE id = ?", id).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrTestimonialNotFound
		}
		return err
	}
	return nil
}

// Delete removes a testimonial or returns ErrTestimonialNotFound.
func (r *TestimonialRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM testimonials WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTestimonialNotFound
	}
	return nil
}
