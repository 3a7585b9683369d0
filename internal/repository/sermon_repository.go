package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/UGONES/church-site-api/internal/model"
)

// ErrSermonNotFound indicates that a sermon was not located in the DB.
var ErrSermonNotFound = errors.New("sermon not found")

// SermonRepo manages persistence for sermons.
type SermonRepo struct {
	db *sql.DB
}

// NewSermonRepo constructs a SermonRepo with the given DB handle.
func NewSermonRepo(db *sql.DB) *SermonRepo {
	return &SermonRepo{db: db}
}

// Create inserts a new sermon and populates generated fields.
func (r *SermonRepo) Create(ctx context.Context, s *model.Sermon) error {
	const q = `INSERT INTO sermons (title, speaker, description, media_url, preached_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Title, s.Speaker, s.Description, s.MediaURL, s.PreachedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM sermons WHERE id = ?", s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a single sermon or ErrSermonNotFound.
func (r *SermonRepo) GetByID(ctx context.Context, id uint64) (*model.Sermon, error) {
	const q = `SELECT id, title, speaker, description, media_url, preached_at, created_at, updated_at
               FROM sermons WHERE id = ?`
	var s model.Sermon
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.Title, &s.Speaker, &s.Description, &s.MediaURL,
		&s.PreachedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSermonNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns sermons newest first.
func (r *SermonRepo) List(ctx context.Context) ([]model.Sermon, error) {
	const q = `SELECT id, title, speaker, description, media_url, preached_at, created_at, updated_at
               FROM sermons ORDER BY preached_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sermons := make([]model.Sermon, 0)
	for rows.Next() {
		var s model.Sermon
		if err := rows.Scan(&s.ID, &s.Title, &s.Speaker, &s.Description, &s.MediaURL,
			&s.PreachedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sermons = append(sermons, s)
	}
	return sermons, rows.Err()
}

// Delete removes a sermon or returns ErrSermonNotFound.
func (r *SermonRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sermons WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSermonNotFound
	}
	return nil
}
