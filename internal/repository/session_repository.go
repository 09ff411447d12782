package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cinema-challenge/reservation-api/internal/model"
)

// SessionRepo provides access to the sessions table and to the joined
// movie/theater details the API returns alongside a session.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning sessions, seats and reservations.
func (r *SessionRepo) DB() *sql.DB { return r.db }

// MovieSummary is the movie projection embedded in session responses.
type MovieSummary struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	PosterURL   string `json:"poster,omitempty"`
	DurationMin uint32 `json:"duration,omitempty"`
}

// TheaterSummary is the theater projection embedded in session
// responses.
type TheaterSummary struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Capacity uint32 `json:"capacity,omitempty"`
}

// SessionDetail is a session with its movie and theater resolved and,
// when loaded through GetByID, the full seat map.
type SessionDetail struct {
	ID             uint64         `json:"id"`
	StartsAt       time.Time      `json:"datetime"`
	FullPriceCents uint32         `json:"full_price_cents"`
	HalfPriceCents uint32         `json:"half_price_cents"`
	Movie          MovieSummary   `json:"movie"`
	Theater        TheaterSummary `json:"theater"`
	Seats          []model.Seat   `json:"seats,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// SessionFilter narrows List results.  Zero values mean "no filter".
// Date selects sessions within the calendar day (UTC).
type SessionFilter struct {
	MovieID   uint64
	TheaterID uint64
	Date      *time.Time
}

// CreateTx inserts a session within an existing transaction and
// populates the generated ID.  The seat map is inserted separately by
// SeatRepo.CreateBulkTx inside the same transaction.
func (r *SessionRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Session) error {
	const q = `INSERT INTO sessions (movie_id, theater_id, starts_at, full_price_cents, half_price_cents)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.MovieID, s.TheaterID, s.StartsAt.UTC(), s.FullPriceCents, s.HalfPriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM sessions WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// Get loads the raw session row.
func (r *SessionRepo) Get(ctx context.Context, id uint64) (*model.Session, error) {
	const q = `SELECT id, movie_id, theater_id, starts_at, full_price_cents, half_price_cents,
	           created_at, updated_at FROM sessions WHERE id = ?`
	var s model.Session
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.TheaterID, &s.StartsAt, &s.FullPriceCents, &s.HalfPriceCents,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetTx is Get inside an existing transaction.
func (r *SessionRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Session, error) {
	const q = `SELECT id, movie_id, theater_id, starts_at, full_price_cents, half_price_cents,
	           created_at, updated_at FROM sessions WHERE id = ?`
	var s model.Session
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.TheaterID, &s.StartsAt, &s.FullPriceCents, &s.HalfPriceCents,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const sessionDetailQuery = `SELECT s.id, s.starts_at, s.full_price_cents, s.half_price_cents, s.created_at,
	       m.id, m.title, m.poster_url, m.duration_min,
	       t.id, t.name, t.type, t.capacity
	FROM sessions s
	JOIN movies m ON m.id = s.movie_id
	JOIN theaters t ON t.id = s.theater_id`

func scanSessionDetail(row interface{ Scan(...any) error }) (*SessionDetail, error) {
	var d SessionDetail
	err := row.Scan(
		&d.ID, &d.StartsAt, &d.FullPriceCents, &d.HalfPriceCents, &d.CreatedAt,
		&d.Movie.ID, &d.Movie.Title, &d.Movie.PosterURL, &d.Movie.DurationMin,
		&d.Theater.ID, &d.Theater.Name, &d.Theater.Type, &d.Theater.Capacity,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDetail loads a session with movie and theater resolved.  The seat
// map is left for the caller to attach so list endpoints can skip it.
func (r *SessionRepo) GetDetail(ctx context.Context, id uint64) (*SessionDetail, error) {
	d, err := scanSessionDetail(r.db.QueryRowContext(ctx, sessionDetailQuery+` WHERE s.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// List returns a page of sessions matching the filter, sorted by start
// time ascending, plus the total count for the filter.
func (r *SessionRepo) List(ctx context.Context, f SessionFilter, offset, limit int) ([]SessionDetail, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.MovieID != 0 {
		where += ` AND s.movie_id = ?`
		args = append(args, f.MovieID)
	}
	if f.TheaterID != 0 {
		where += ` AND s.theater_id = ?`
		args = append(args, f.TheaterID)
	}
	if f.Date != nil {
		day := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC)
		where += ` AND s.starts_at >= ? AND s.starts_at < ?`
		args = append(args, day, day.Add(24*time.Hour))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions s`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := sessionDetailQuery + where + ` ORDER BY s.starts_at LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sessions := make([]SessionDetail, 0)
	for rows.Next() {
		d, err := scanSessionDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// Update overwrites the mutable fields of a session.  The seat map is
// never touched through this path.
func (r *SessionRepo) Update(ctx context.Context, s *model.Session) error {
	const q = `UPDATE sessions SET movie_id = ?, theater_id = ?, starts_at = ?,
	           full_price_cents = ?, half_price_cents = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, s.MovieID, s.TheaterID, s.StartsAt.UTC(),
		s.FullPriceCents, s.HalfPriceCents, s.ID)
	return err
}

// Delete removes a session; its seat map goes with it via the cascade.
func (r *SessionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
