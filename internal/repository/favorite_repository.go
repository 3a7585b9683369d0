package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/UGONES/church-site-api/internal/keylock"
	"github.com/UGONES/church-site-api/internal/model"
)

// FavoriteRepo is the engagement toggle store.  A favorite either
// exists or it does not: Add inserts, Remove hard-deletes, and the
// unique index uq_favorites (user_id, item_type, item_id) guarantees
// at most one row per triple no matter how calls interleave.  Policy
// for a duplicate Add is to surface ErrAlreadyFavorited rather than
// silently succeed, so callers can tell a toggle that changed state
// from one that did not.
type FavoriteRepo struct {
	db    *sql.DB
	locks *keylock.KeyLock
}

// NewFavoriteRepo returns a FavoriteRepo bound to the given database.
func NewFavoriteRepo(db *sql.DB) *FavoriteRepo {
	return &FavoriteRepo{db: db, locks: keylock.New()}
}

func favoriteKey(userID uint64, itemType string, itemID uint64) string {
	return fmt.Sprintf("fav:%d:%s:%d", userID, itemType, itemID)
}

// Add stores a favorite for the triple.  Two concurrent adds for the
// same triple end with exactly one stored row; the loser gets
// ErrAlreadyFavorited straight from the duplicate-key violation, so
// no pre-check read is needed at all.
func (r *FavoriteRepo) Add(ctx context.Context, userID uint64, itemType string, itemID uint64) (*model.Favorite, error) {
	if !model.ValidItemType(itemType) {
		return nil, fmt.Errorf("unknown item type %q", itemType)
	}

	release := r.locks.Acquire(favoriteKey(userID, itemType, itemID))
	defer release()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO favorites (user_id, item_type, item_id) VALUES (?,?,?)",
		userID, itemType, itemID)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAlreadyFavorited
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	fav := &model.Favorite{
		ID:       uint64(id),
		UserID:   userID,
		ItemType: itemType,
		ItemID:   itemID,
	}
	// The timestamp read runs after the insert committed, so a caller
	// on another connection may already have removed the row.  The add
	// itself succeeded; report it as such with a best-effort timestamp.
	err = r.db.QueryRowContext(ctx,
		"SELECT created_at FROM favorites WHERE id = ?", fav.ID).Scan(&fav.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return fav, nil
}

// Remove deletes the favorite for the triple.  Removing twice in a
// row is safe: the second call simply finds nothing to delete and
// returns ErrNotFavorited without touching any state.
func (r *FavoriteRepo) Remove(ctx context.Context, userID uint64, itemType string, itemID uint64) error {
	if !model.ValidItemType(itemType) {
		return fmt.Errorf("unknown item type %q", itemType)
	}

	release := r.locks.Acquire(favoriteKey(userID, itemType, itemID))
	defer release()

	res, err := r.db.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id = ? AND item_type = ? AND item_id = ?",
		userID, itemType, itemID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFavorited
	}
	return nil
}

// ListForUser returns the user's favorites, optionally filtered by
// item type (pass an empty string for all types).  The UI uses this
// to pre-populate toggle state, so ordering is stable: newest first.
func (r *FavoriteRepo) ListForUser(ctx context.Context, userID uint64, itemType string) ([]model.Favorite, error) {
	if itemType != "" && !model.ValidItemType(itemType) {
		return nil, fmt.Errorf("unknown item type %q", itemType)
	}

	query := "SELECT id, user_id, item_type, item_id, created_at FROM favorites WHERE user_id = ?"
	args := []interface{}{userID}
	if itemType != "" {
		query += " AND item_type = ?"
		args = append(args, itemType)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	favs := make([]model.Favorite, 0)
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.ItemType, &f.ItemID, &f.CreatedAt); err != nil {
			return nil, err
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}
