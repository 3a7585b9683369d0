package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/UGONES/church-site-api/internal/keylock"
	"github.com/UGONES/church-site-api/internal/model"
)

// reserveAttempts bounds how often Reserve/Cancel retry after a
// transient MySQL locking failure before surfacing ErrConflict.
const reserveAttempts = 3

// RegistrationRepo is the ledger of RSVP records.  It owns the
// registrations table exclusively: every status transition goes
// through here and each operation either fully applies or fully
// fails inside a single transaction.
//
// Two invariants hold under any interleaving of concurrent calls:
//
//  1. at most one non-cancelled row exists per (user_id, event_id);
//  2. the sum of guest_count over CONFIRMED rows of an event never
//     exceeds the event's capacity.
//
// The first is enforced by the unique index uq_registrations_active
// (see schema.sql); the second by locking the event row with
// SELECT ... FOR UPDATE and recomputing the confirmed total inside
// the same transaction that inserts the new row.  A per-key lock in
// front of the database keeps same-key callers serialized so the
// retry budget is rarely needed.
type RegistrationRepo struct {
	db    *sql.DB
	locks *keylock.KeyLock
}

// NewRegistrationRepo returns a RegistrationRepo bound to the given database.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo {
	return &RegistrationRepo{db: db, locks: keylock.New()}
}

// DB exposes the underlying handle for callers that need to open
// their own transactions (mirrors the other repositories).
func (r *RegistrationRepo) DB() *sql.DB { return r.db }

func eventKey(eventID uint64) string {
	return fmt.Sprintf("event:%d", eventID)
}

// Reserve attempts to admit userID with guestCount seats to eventID.
// On success the returned registration carries either CONFIRMED
// (admitted within capacity) or WAITING (capacity exhausted; the
// waitlist never turns anyone away).  The confirmed-guest total is
// derived from the registration rows inside the transaction, so a
// capacity check can never act on a stale counter.
func (r *RegistrationRepo) Reserve(ctx context.Context, userID, eventID uint64, guestCount uint32) (*model.Registration, error) {
	if !model.ValidGuestCount(guestCount) {
		return nil, ErrInvalidGuestCount
	}

	release := r.locks.Acquire(eventKey(eventID))
	defer release()

	var reg *model.Registration
	var err error
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		reg, err = r.reserveOnce(ctx, userID, eventID, guestCount)
		if err == nil || !isRetryable(err) {
			return reg, err
		}
	}
	return nil, ErrConflict
}

func (r *RegistrationRepo) reserveOnce(ctx context.Context, userID, eventID uint64, guestCount uint32) (*model.Registration, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the event row for the duration of the transaction.  This
	// serializes concurrent reserves for the same event so the
	// capacity evaluation below cannot race (two callers fighting
	// over the last seat see each other's committed insert).
	var capacity uint32
	var endsAt time.Time
	err = tx.QueryRowContext(ctx,
		"SELECT capacity, ends_at FROM events WHERE id = ? FOR UPDATE",
		eventID).Scan(&capacity, &endsAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !time.Now().UTC().Before(endsAt.UTC()) {
		return nil, ErrEventClosed
	}

	// Dedup pre-check: one active registration per (user, event).
	// The unique index remains the source of truth; this check just
	// turns the common case into a clean error without burning an
	// insert.  Cancelled rows are excluded, which is what makes
	// re-RSVP after cancellation legal.
	var existing uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM registrations WHERE user_id = ? AND event_id = ? AND status <> ? LIMIT 1",
		userID, eventID, model.StatusCancelled).Scan(&existing)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	// Derived confirmed total: summed fresh on every reserve rather
	// than kept as a counter column that could drift from the rows.
	var confirmed uint64
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(guest_count),0) FROM registrations WHERE event_id = ? AND status = ?",
		eventID, model.StatusConfirmed).Scan(&confirmed)
	if err != nil {
		return nil, err
	}

	status := model.AdmissionStatus(confirmed, capacity, guestCount)

	res, err := tx.ExecContext(ctx,
		"INSERT INTO registrations (user_id, event_id, status, guest_count) VALUES (?,?,?,?)",
		userID, eventID, status, guestCount)
	if err != nil {
		if isDuplicateKey(err) {
			// A concurrent reserve for the same (user, event) won the
			// race between our pre-check and this insert.
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	reg := &model.Registration{
		ID:         uint64(id),
		UserID:     userID,
		EventID:    eventID,
		Status:     status,
		GuestCount: guestCount,
	}
	err = tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM registrations WHERE id = ?",
		reg.ID).Scan(&reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return reg, nil
}

// Cancel marks the caller's active registration for eventID as
// CANCELLED.  The row is kept (audit trail, idempotent re-RSVP); a
// freed confirmed seat simply becomes available to the next Reserve.
// Waitlisted rows are not promoted here: promotion is a deliberate
// admin action, not a side effect of someone else cancelling.
func (r *RegistrationRepo) Cancel(ctx context.Context, userID, eventID uint64) error {
	release := r.locks.Acquire(eventKey(eventID))
	defer release()

	var err error
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		err = r.cancelOnce(ctx, userID, eventID)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return ErrConflict
}

func (r *RegistrationRepo) cancelOnce(ctx context.Context, userID, eventID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var id uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM registrations WHERE user_id = ? AND event_id = ? AND status <> ? LIMIT 1 FOR UPDATE",
		userID, eventID, model.StatusCancelled).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotRegistered
		}
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE registrations SET status = ? WHERE id = ?",
		model.StatusCancelled, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// StatusFor returns the caller's current status for an event:
// CONFIRMED, WAITING or model.StatusNone when no active registration
// exists.  A single committed read keeps the answer linearizable
// with respect to concurrent Reserve/Cancel calls.
func (r *RegistrationRepo) StatusFor(ctx context.Context, userID, eventID uint64) (string, error) {
	var status string
	err := r.db.QueryRowContext(ctx,
		"SELECT status FROM registrations WHERE user_id = ? AND event_id = ? AND status <> ? LIMIT 1",
		userID, eventID, model.StatusCancelled).Scan(&status)
	if err == sql.ErrNoRows {
		return model.StatusNone, nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

// ConfirmedGuests returns the current confirmed guest total for an
// event.  Public event pages use it to display seats remaining.
func (r *RegistrationRepo) ConfirmedGuests(ctx context.Context, eventID uint64) (uint64, error) {
	var total uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(guest_count),0) FROM registrations WHERE event_id = ? AND status = ?",
		eventID, model.StatusConfirmed).Scan(&total)
	return total, err
}

// RegistrationDetail is a registration joined with its event, as
// returned to members listing their own RSVPs.
type RegistrationDetail struct {
	ID         uint64 `json:"id"`
	EventID    uint64 `json:"event_id"`
	EventTitle string `json:"event_title"`
	StartsAt   string `json:"starts_at"`
	Status     string `json:"status"`
	GuestCount uint32 `json:"guest_count"`
	CheckedIn  bool   `json:"checked_in"`
}

// ListByUser returns the user's active registrations with event
// details, newest first.  Cancelled rows are excluded; they only
// matter for audit queries, not for the member's RSVP list.
func (r *RegistrationRepo) ListByUser(ctx context.Context, userID uint64) ([]RegistrationDetail, error) {
	const q = `SELECT r.id, r.event_id, e.title, e.starts_at, r.status, r.guest_count, r.checked_in
               FROM registrations r
               JOIN events e ON e.id = r.event_id
               WHERE r.user_id = ? AND r.status <> ?
               ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, model.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]RegistrationDetail, 0)
	for rows.Next() {
		var d RegistrationDetail
		var startsAt time.Time
		if err := rows.Scan(&d.ID, &d.EventID, &d.EventTitle, &startsAt, &d.Status, &d.GuestCount, &d.CheckedIn); err != nil {
			return nil, err
		}
		d.StartsAt = startsAt.UTC().Format(time.RFC3339)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// ListByEvent returns every registration for an event including
// cancelled ones, waitlist first-come-first-served within status.
// Admins use this view to run check-in and to promote waitlisted
// members by hand.
func (r *RegistrationRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Registration, error) {
	const q = `SELECT id, user_id, event_id, status, guest_count, checked_in, created_at, updated_at
               FROM registrations
               WHERE event_id = ?
               ORDER BY FIELD(status, ?, ?, ?), created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID,
		model.StatusConfirmed, model.StatusWaiting, model.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	regs := make([]model.Registration, 0)
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.Status,
			&reg.GuestCount, &reg.CheckedIn, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// CheckIn flags a confirmed registration as checked in.  Only valid
// once the event has started; the handler enforces the time window,
// this method enforces the status.
func (r *RegistrationRepo) CheckIn(ctx context.Context, registrationID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE registrations SET checked_in = TRUE WHERE id = ? AND status = ?",
		registrationID, model.StatusConfirmed)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Zero affected rows also covers a repeat check-in (the value
		// was already TRUE); that case is an idempotent success.
		var checkedIn bool
		err := r.db.QueryRowContext(ctx,
			"SELECT checked_in FROM registrations WHERE id = ? AND status = ?",
			registrationID, model.StatusConfirmed).Scan(&checkedIn)
		if err == sql.ErrNoRows {
			return ErrNotRegistered
		}
		return err
	}
	return nil
}
