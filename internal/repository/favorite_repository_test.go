package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UGONES/church-site-api/internal/model"
)

func TestFavoriteAddRemoveCycle(t *testing.T) {
	db := openTestDB(t)
	repo := NewFavoriteRepo(db)
	userID := seedUser(t, db)

	fav, err := repo.Add(context.Background(), userID, model.ItemTypeSermon, 42)
	require.NoError(t, err)
	assert.NotZero(t, fav.ID)
	assert.Equal(t, model.ItemTypeSermon, fav.ItemType)

	// Adding the same triple again is a conflict, not a second row.
	_, err = repo.Add(context.Background(), userID, model.ItemTypeSermon, 42)
	assert.ErrorIs(t, err, ErrAlreadyFavorited)

	require.NoError(t, repo.Remove(context.Background(), userID, model.ItemTypeSermon, 42))

	// Removal deletes the row, so a second remove has nothing to hit.
	err = repo.Remove(context.Background(), userID, model.ItemTypeSermon, 42)
	assert.ErrorIs(t, err, ErrNotFavorited)

	// After removal a re-add behaves like a first add.
	fav, err = repo.Add(context.Background(), userID, model.ItemTypeSermon, 42)
	require.NoError(t, err)
	assert.NotZero(t, fav.ID)
	require.NoError(t, repo.Remove(context.Background(), userID, model.ItemTypeSermon, 42))
}

func TestFavoriteConcurrentAdd(t *testing.T) {
	db := openTestDB(t)
	userID := seedUser(t, db)

	// Separate repos per goroutine keep the in-process per-key lock
	// out of the picture; only the unique index uq_favorites decides
	// the race, as it would across server instances.
	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			repo := NewFavoriteRepo(db)
			_, errs[i] = repo.Add(context.Background(), userID, model.ItemTypeEvent, 99)
		}(i)
	}
	wg.Wait()

	won, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAlreadyFavorited):
			lost++
		default:
			t.Fatalf("unexpected add error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, racers-1, lost)

	// Exactly one row survives the race.
	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND item_type = ? AND item_id = ?`,
		userID, model.ItemTypeEvent, 99).Scan(&count))
	assert.Equal(t, 1, count)

	repo := NewFavoriteRepo(db)
	require.NoError(t, repo.Remove(context.Background(), userID, model.ItemTypeEvent, 99))
}

func TestFavoriteSameItemIDAcrossTypes(t *testing.T) {
	db := openTestDB(t)
	repo := NewFavoriteRepo(db)
	userID := seedUser(t, db)

	// The same numeric id under different types is two distinct favorites.
	_, err := repo.Add(context.Background(), userID, model.ItemTypeSermon, 7)
	require.NoError(t, err)
	_, err = repo.Add(context.Background(), userID, model.ItemTypeEvent, 7)
	require.NoError(t, err)

	all, err := repo.ListForUser(context.Background(), userID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sermonsOnly, err := repo.ListForUser(context.Background(), userID, model.ItemTypeSermon)
	require.NoError(t, err)
	require.Len(t, sermonsOnly, 1)
	assert.Equal(t, model.ItemTypeSermon, sermonsOnly[0].ItemType)

	require.NoError(t, repo.Remove(context.Background(), userID, model.ItemTypeSermon, 7))
	require.NoError(t, repo.Remove(context.Background(), userID, model.ItemTypeEvent, 7))
}
