package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/UGONES/church-site-api/internal/model"
)

// ErrMinistryNotFound indicates that a ministry was not located in the DB.
var ErrMinistryNotFound = errors.New("ministry not found")

// MinistryRepo manages persistence for ministries.
type MinistryRepo struct {
	db *sql.DB
}

// NewMinistryRepo constructs a MinistryRepo with the given DB handle.
func NewMinistryRepo(db *sql.DB) *MinistryRepo {
	return &MinistryRepo{db: db}
}

// Create inserts a new ministry and populates generated fields.
func (r *MinistryRepo) Create(ctx context.Context, m *model.Ministry) error {
	const q = `INSERT INTO ministries (name, description, leader) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Name, m.Description, m.Leader)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM ministries WHERE id = ?", m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// GetByID returns a single ministry or ErrMinistryNotFound.
func (r *MinistryRepo) GetByID(ctx context.Context, id uint64) (*model.Ministry, error) {
	const q = `SELECT id, name, description, leader, created_at, updated_at FROM ministries WHERE id = ?`
	var m model.Ministry
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.Name, &m.Description, &m.Leader, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMinistryNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns all ministries ordered by name.
func (r *MinistryRepo) List(ctx context.Context) ([]model.Ministry, error) {
	const q = `SELECT id, name, description, leader, created_at, updated_at FROM ministries ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ministries := make([]model.Ministry, 0)
	for rows.Next() {
		var m model.Ministry
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Leader, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		ministries = append(ministries, m)
	}
	return ministries, rows.Err()
}

// Delete removes a ministry or returns ErrMinistryNotFound.
func (r *MinistryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM ministries WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMinistryNotFound
	}
	return nil
}
