package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/cinema-challenge/reservation-api/internal/model"
)

// MovieRepo provides access to the movies table.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = `id, custom_id, title, synopsis, director, genres, duration_min,
	classification, poster_url, release_date, created_at, updated_at`

func scanMovie(row interface{ Scan(...any) error }) (*model.Movie, error) {
	var m model.Movie
	var customID sql.NullString
	var genres string
	err := row.Scan(
		&m.ID, &customID, &m.Title, &m.Synopsis, &m.Director, &genres, &m.DurationMin,
		&m.Classification, &m.PosterURL, &m.ReleaseDate, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if customID.Valid {
		cid := customID.String
		m.CustomID = &cid
	}
	m.Genres = model.SplitGenres(genres)
	return &m, nil
}

// Create inserts a new movie and returns it with generated fields
// populated.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (custom_id, title, synopsis, director, genres, duration_min,
	           classification, poster_url, release_date)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var customID any
	if m.CustomID != nil {
		customID = *m.CustomID
	}
	res, err := r.db.ExecContext(ctx, q, customID, m.Title, m.Synopsis, m.Director,
		model.JoinGenres(m.Genres), m.DurationMin, m.Classification, m.PosterURL, m.ReleaseDate)
	if err != nil {
		if isDuplicate(err) {
			return &DuplicateFieldError{Field: "custom_id"}
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	got, err := r.GetByID(ctx, strconv.FormatUint(m.ID, 10))
	if err != nil {
		return err
	}
	*m = *got
	return nil
}

// GetByID resolves a movie by primary key when the supplied id is
// numeric, falling back to the custom_id column otherwise so clients
// can address movies with short external ids.
func (r *MovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	var q string
	var arg any
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		q = `SELECT ` + movieColumns + ` FROM movies WHERE id = ?`
		arg = n
	} else {
		q = `SELECT ` + movieColumns + ` FROM movies WHERE custom_id = ?`
		arg = id
	}
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List returns a page of movies sorted by release date (newest first)
// along with the total row count for the filter.  The optional genre
// filter matches membership in the comma-separated genres column.
func (r *MovieRepo) List(ctx context.Context, genre string, offset, limit int) ([]model.Movie, int, error) {
	where := ""
	args := []any{}
	if genre != "" {
		where = ` WHERE FIND_IN_SET(?, genres) > 0`
		args = append(args, genre)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + movieColumns + ` FROM movies` + where + ` ORDER BY release_date DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	movies := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, err
		}
		movies = append(movies, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

// Update overwrites the mutable fields of a movie.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	const q = `UPDATE movies SET custom_id = ?, title = ?, synopsis = ?, director = ?, genres = ?,
	           duration_min = ?, classification = ?, poster_url = ?, release_date = ?
	           WHERE id = ?`
	var customID any
	if m.CustomID != nil {
		customID = *m.CustomID
	}
	res, err := r.db.ExecContext(ctx, q, customID, m.Title, m.Synopsis, m.Director,
		model.JoinGenres(m.Genres), m.DurationMin, m.Classification, m.PosterURL, m.ReleaseDate, m.ID)
	if err != nil {
		if isDuplicate(err) {
			return &DuplicateFieldError{Field: "custom_id"}
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is also zero for no-op updates; confirm existence.
		if _, err := r.GetByID(ctx, strconv.FormatUint(m.ID, 10)); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a movie.  ErrMovieNotFound is returned when no row
// matched.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	return nil
}
