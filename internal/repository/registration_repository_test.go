package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UGONES/church-site-api/internal/model"
)

// These tests run against a real MySQL instance because the admission
// logic lives in SQL transactions.  Set TEST_MYSQL_DSN to a DSN with
// parseTime=true&loc=UTC pointing at a database loaded with
// internal/database/schema.sql, e.g.
//
//	TEST_MYSQL_DSN='root@tcp(127.0.0.1:3306)/church_test?charset=utf8mb4&parseTime=true&loc=UTC'
//
// Without the variable the suite is skipped.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	t.Cleanup(func() { db.Close() })
	return db
}

var testSeq atomic.Uint64

func seedUser(t *testing.T, db *sql.DB) uint64 {
	t.Helper()
	email := fmt.Sprintf("member-%d-%d@test.local", time.Now().UnixNano(), testSeq.Add(1))
	res, err := db.Exec(`INSERT INTO users (email, password_hash, role) VALUES (?, 'x', 'MEMBER')`, email)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Exec(`DELETE FROM registrations WHERE user_id = ?`, id)
		db.Exec(`DELETE FROM users WHERE id = ?`, id)
	})
	return uint64(id)
}

func seedEvent(t *testing.T, db *sql.DB, capacity uint32, startsAt, endsAt time.Time) uint64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO events (title, description, capacity, starts_at, ends_at) VALUES (?, '', ?, ?, ?)`,
		fmt.Sprintf("test event %d", testSeq.Add(1)), capacity, startsAt.UTC(), endsAt.UTC(),
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Exec(`DELETE FROM registrations WHERE event_id = ?`, id)
		db.Exec(`DELETE FROM events WHERE id = ?`, id)
	})
	return uint64(id)
}

func upcomingWindow() (time.Time, time.Time) {
	start := time.Now().UTC().Add(24 * time.Hour)
	return start, start.Add(2 * time.Hour)
}

func TestReserveFillsCapacityThenWaitlists(t *testing.T) {
	db := openTestDB(t)
	repo := NewRegistrationRepo(db)
	start, end := upcomingWindow()
	eventID := seedEvent(t, db, 2, start, end)

	users := []uint64{seedUser(t, db), seedUser(t, db), seedUser(t, db)}

	// Three members race for two seats.  Exactly two must be admitted
	// and the third waitlisted regardless of arrival order.
	var wg sync.WaitGroup
	results := make([]*model.Registration, len(users))
	errs := make([]error, len(users))
	for i, uid := range users {
		wg.Add(1)
		go func(i int, uid uint64) {
			defer wg.Done()
			results[i], errs[i] = repo.Reserve(context.Background(), uid, eventID, 1)
		}(i, uid)
	}
	wg.Wait()

	confirmed, waiting := 0, 0
	for i := range users {
		require.NoError(t, errs[i])
		switch results[i].Status {
		case model.StatusConfirmed:
			confirmed++
		case model.StatusWaiting:
			waiting++
		}
	}
	assert.Equal(t, 2, confirmed)
	assert.Equal(t, 1, waiting)

	total, err := repo.ConfirmedGuests(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
}

func TestReserveGuestCountAgainstCapacity(t *testing.T) {
	db := openTestDB(t)
	repo := NewRegistrationRepo(db)
	start, end := upcomingWindow()
	eventID := seedEvent(t, db, 5, start, end)

	first := seedUser(t, db)
	second := seedUser(t, db)

	reg, err := repo.Reserve(context.Background(), first, eventID, 4)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, reg.Status)

	// Two more guests would exceed the remaining single seat, so the
	// whole request waitlists rather than partially admitting.
	reg, err = repo.Reserve(context.Background(), second, eventID, 2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWaiting, reg.Status)
}

func TestReserveDuplicate(t *testing.T) {
	db := openTestDB(t)
	repo := NewRegistrationRepo(db)
	start, end := upcomingWindow()
	eventID := seedEvent(t, db, 10, start, end)
	userID := seedUser(t, db)

	_, err := repo.Reserve(context.Background(), userID, eventID, 1)
	require.NoError(t, err)

	_, err = repo.Reserve(context.Background(), userID, eventID, 1)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestReserveConcurrentDuplicate(t *testing.T) {
	db := openTestDB(t)
	start, end := upcomingWindow()
	eventID := seedEvent(t, db, 10, start, end)
	userID := seedUser(t, db)

	// Each goroutine gets its own repo so the in-process per-key lock
	// cannot serialize them, as with multiple server instances sharing
	// one database.  The unique index uq_registrations_active is the
	// only thing standing between the racers and a double row.
	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			repo := NewRegistrationRepo(db)
			_, errs[i] = repo.Reserve(context.Background(), userID, eventID, 1)
		}(i)
	}
	wg.Wait()

	won, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAlreadyRegistered):
			lost++
		default:
			t.Fatalf("unexpected reserve error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, racers-1, lost)

	// Exactly one non-cancelled row may exist for the pair.
	var active int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM registrations WHERE user_id = ? AND event_id = ? AND status <> 'CANCELLED'`,
		userID, eventID).Scan(&active))
	assert.Equal(t, 1, active)
}

func TestCancelThenReserveAgain(t *testing.T) {
	db := openTestDB(t)
	repo := NewRegistrationRepo(db)
	start, end := upcomingWindow()
	eventID := seedEvent(t, db, 10, start, end)
	userID := seedUser(t, db)

	_, err := repo.Reserve(context.Background(), userID, eventID, 2)
	require.NoError(t, err)

	require.NoError(t, repo.Cancel(context.Background(), userID, eventID))

	status, err := repo.StatusFor(context.Background(), userID, eventID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNone, status)

	// Cancelled guests no longer count toward capacity.
	total, err := repo.ConfirmedGuests(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), total)

	// A fresh RSVP after cancelling is a brand new request.
	reg, err := repo.Reserve(context.Background(), userID, eventID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, reg.Status)
}

func TestCancelWithoutActiveRegistration(t *testing.T) {
	db := openTestDB(t)
	repo := NewRegistrationRepo(db)
	start, end := upcomingWindow()
	eventID := seedEvent(t, db, 10, start, end)
	userID := seedUser(t, db)

	err := repo.Cancel(context.Background(), userID, eventID)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestReserveValidation(t *testing.T) {
	db := openTestDB(t)
	repo := NewRegistrationRepo(db)
	userID := seedUser(t, db)

	_, err := repo.Reserve(context.Background(), userID, 999999999, 1)
	assert.ErrorIs(t, err, ErrEventNotFound)

	start, end := upcomingWindow()
	eventID := seedEvent(t, db, 10, start, end)
	_, err = repo.Reserve(context.Background(), userID, eventID, 0)
	assert.ErrorIs(t, err, ErrInvalidGuestCount)

	// An event that has already ended accepts no RSVPs.
	past := time.Now().UTC().Add(-48 * time.Hour)
	closedID := seedEvent(t, db, 10, past, past.Add(time.Hour))
	_, err = repo.Reserve(context.Background(), userID, closedID, 1)
	assert.ErrorIs(t, err, ErrEventClosed)
}

func TestCheckIn(t *testing.T) {
	db := openTestDB(t)
	repo := NewRegistrationRepo(db)
	start, end := upcomingWindow()
	eventID := seedEvent(t, db, 1, start, end)

	confirmedUser := seedUser(t, db)
	waitingUser := seedUser(t, db)

	confirmedReg, err := repo.Reserve(context.Background(), confirmedUser, eventID, 1)
	require.NoError(t, err)
	require.Equal(t, model.StatusConfirmed, confirmedReg.Status)

	waitingReg, err := repo.Reserve(context.Background(), waitingUser, eventID, 1)
	require.NoError(t, err)
	require.Equal(t, model.StatusWaiting, waitingReg.Status)

	assert.NoError(t, repo.CheckIn(context.Background(), confirmedReg.ID))

	// Waitlisted members cannot be checked in.
	assert.ErrorIs(t, repo.CheckIn(context.Background(), waitingReg.ID), ErrNotRegistered)
}

func TestListByEventOrdering(t *testing.T) {
	db := openTestDB(t)
	repo := NewRegistrationRepo(db)
	start, end := upcomingWindow()
	eventID := seedEvent(t, db, 1, start, end)

	first := seedUser(t, db)
	second := seedUser(t, db)
	third := seedUser(t, db)

	_, err := repo.Reserve(context.Background(), first, eventID, 1) // confirmed
	require.NoError(t, err)
	_, err = repo.Reserve(context.Background(), second, eventID, 1) // waitlisted
	require.NoError(t, err)
	_, err = repo.Reserve(context.Background(), third, eventID, 1) // waitlisted
	require.NoError(t, err)
	require.NoError(t, repo.Cancel(context.Background(), third, eventID))

	regs, err := repo.ListByEvent(context.Background(), eventID)
	require.NoError(t, err)
	require.Len(t, regs, 3)
	assert.Equal(t, model.StatusConfirmed, regs[0].Status)
	assert.Equal(t, model.StatusWaiting, regs[1].Status)
	assert.Equal(t, model.StatusCancelled, regs[2].Status)
}
