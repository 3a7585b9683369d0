// Package repository contains data access logic for Event domain
// operations. This file defines repository methods for events.
// Events are the only content type the registration ledger reads:
// Reserve locks the event row and reads its capacity and schedule.
package repository

import (
	"context"
	"database/sql"

	"github.com/UGONES/church-site-api/internal/model"
)

// EventRepo manages persistence for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

// Create inserts a new event and assigns the generated ID and DB
// defaults back onto the struct.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (title, description, location, capacity, starts_at, ends_at) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.Title, e.Description, e.Location, e.Capacity, e.StartsAt.UTC(), e.EndsAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM events WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, e.ID).Scan(&e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns the event with the given ID or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT id, title, description, location, capacity, starts_at, ends_at, created_at, updated_at
               FROM events WHERE id = ?`
	var e model.Event
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.Capacity,
		&e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListUpcoming returns events that have not yet ended, soonest first.
// This is the public calendar view; past events fall off it without
// being deleted.
func (r *EventRepo) ListUpcoming(ctx context.Context) ([]model.Event, error) {
	const q = `SELECT id, title, description, location, capacity, starts_at, ends_at, created_at, updated_at
               FROM events
               WHERE ends_at > UTC_TIMESTAMP()
               ORDER BY starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.Capacity,
			&e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update rewrites the mutable fields of an event.  Capacity changes
// take effect on the next Reserve, which always re-reads capacity
// inside its own transaction; existing confirmed rows are never
// evicted retroactively.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	const q = `UPDATE events SET title = ?, description = ?, location = ?, capacity = ?, starts_at = ?, ends_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, e.Title, e.Description, e.Location, e.Capacity, e.StartsAt.UTC(), e.EndsAt.UTC(), e.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 when nothing changed; distinguish by
		// checking existence so callers get a clean not-found.
		var exists uint64
		if err := r.db.QueryRowContext(ctx, "SELECT id FROM events WHERE id = ?", e.ID).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return ErrEventNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes an event.  Registrations reference events with a
// restricting foreign key, so deleting an event that anyone has ever
// registered for fails at the database; admins cancel such events by
// moving ends_at instead.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}
