package repository

import (
	"context"
	"database/sql"

	"github.com/cinema-challenge/reservation-api/internal/model"
)

// SeatRepo manages the session_seats table: the seat map owned by each
// session.  Seat identity is (session_id, row_letter, seat_number),
// enforced by a unique key.  Status transitions always go through this
// repository so the booking and release flows can share the same
// conditional-update primitives.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// CreateBulkTx inserts a full seat map for a session in one statement.
// It is called once, when the session is created.  Passing an empty
// slice has no effect and returns nil.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, sessionID uint64, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO session_seats (session_id, row_letter, seat_number, status) VALUES `
	args := make([]any, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, sessionID, s.Row, s.Number, s.Status)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListBySession returns the full seat map of a session ordered by row
// and number.
func (r *SeatRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.Seat, error) {
	const q = `SELECT id, session_id, row_letter, seat_number, status
	           FROM session_seats WHERE session_id = ?
	           ORDER BY row_letter, seat_number`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSeats(rows)
}

// ListBySessionTx is ListBySession inside an existing transaction.
func (r *SeatRepo) ListBySessionTx(ctx context.Context, tx *sql.Tx, sessionID uint64) ([]model.Seat, error) {
	const q = `SELECT id, session_id, row_letter, seat_number, status
	           FROM session_seats WHERE session_id = ?
	           ORDER BY row_letter, seat_number`
	rows, err := tx.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSeats(rows)
}

func collectSeats(rows *sql.Rows) ([]model.Seat, error) {
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Row, &s.Number, &s.Status); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// OccupyTx flips the given seats to occupied, touching only rows that
// are still available.  The returned count is the number of rows
// actually updated; when it is lower than len(refs) another booking won
// some of the seats between the availability check and this write, and
// the caller must roll back.
func (r *SeatRepo) OccupyTx(ctx context.Context, tx *sql.Tx, sessionID uint64, refs []model.SeatRef) (int64, error) {
	return r.bulkStatusTx(ctx, tx, sessionID, refs, model.SeatOccupied, model.SeatAvailable)
}

// ReleaseTx flips the given seats back to available regardless of
// their current status.  Used by cancellation and deletion.
func (r *SeatRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, sessionID uint64, refs []model.SeatRef) error {
	_, err := r.bulkStatusTx(ctx, tx, sessionID, refs, model.SeatAvailable, "")
	return err
}

// bulkStatusTx updates the status of a set of seats in one statement.
// When fromStatus is non-empty only rows currently in that status are
// touched.
func (r *SeatRepo) bulkStatusTx(ctx context.Context, tx *sql.Tx, sessionID uint64, refs []model.SeatRef, toStatus, fromStatus string) (int64, error) {
	if len(refs) == 0 {
		return 0, nil
	}
	query := `UPDATE session_seats SET status = ? WHERE session_id = ?`
	args := []any{toStatus, sessionID}
	if fromStatus != "" {
		query += ` AND status = ?`
		args = append(args, fromStatus)
	}
	query += ` AND (`
	for i, ref := range refs {
		if i > 0 {
			query += ` OR `
		}
		query += `(row_letter = ? AND seat_number = ?)`
		args = append(args, ref.Row, ref.Number)
	}
	query += `)`
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ResetAll sets every seat of a session back to available.  It does
// not consult reservations; callers accepting the resulting
// reservation/seat-map divergence is deliberate.  The operation is
// idempotent.
func (r *SeatRepo) ResetAll(ctx context.Context, sessionID uint64) error {
	const q = `UPDATE session_seats SET status = ? WHERE session_id = ?`
	_, err := r.db.ExecContext(ctx, q, model.SeatAvailable, sessionID)
	return err
}
