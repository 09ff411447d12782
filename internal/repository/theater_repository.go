package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinema-challenge/reservation-api/internal/model"
)

// TheaterRepo provides access to the theaters table.
type TheaterRepo struct {
	db *sql.DB
}

// NewTheaterRepo returns a TheaterRepo bound to the given database.
func NewTheaterRepo(db *sql.DB) *TheaterRepo { return &TheaterRepo{db: db} }

// Create inserts a new theater.  The name column is unique; a clash is
// reported as a DuplicateFieldError.
func (r *TheaterRepo) Create(ctx context.Context, t *model.Theater) error {
	const q = `INSERT INTO theaters (name, capacity, type) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Capacity, t.Type)
	if err != nil {
		if isDuplicate(err) {
			return &DuplicateFieldError{Field: "name"}
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	got, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *got
	return nil
}

// GetByID loads a theater by primary key.
func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
	const q = `SELECT id, name, capacity, type, created_at, updated_at FROM theaters WHERE id = ?`
	var t model.Theater
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.Name, &t.Capacity, &t.Type, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTheaterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns a page of theaters ordered by name and the total count.
func (r *TheaterRepo) List(ctx context.Context, offset, limit int) ([]model.Theater, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM theaters`).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT id, name, capacity, type, created_at, updated_at
	           FROM theaters ORDER BY name LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	theaters := make([]model.Theater, 0)
	for rows.Next() {
		var t model.Theater
		if err := rows.Scan(&t.ID, &t.Name, &t.Capacity, &t.Type, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		theaters = append(theaters, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return theaters, total, nil
}

// Update overwrites the mutable fields of a theater.
func (r *TheaterRepo) Update(ctx context.Context, t *model.Theater) error {
	const q = `UPDATE theaters SET name = ?, capacity = ?, type = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, t.Name, t.Capacity, t.Type, t.ID)
	if err != nil {
		if isDuplicate(err) {
			return &DuplicateFieldError{Field: "name"}
		}
		return err
	}
	got, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *got
	return nil
}

// Delete removes a theater.  ErrTheaterNotFound is returned when no
// row matched.
func (r *TheaterRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM theaters WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTheaterNotFound
	}
	return nil
}
