package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cinema-challenge/reservation-api/internal/model"
)

// ReservationRepo provides access to reservations and their seat
// copies.  A reservation groups one or more seats booked in a single
// request; the rows in reservation_seats record which seats were sold
// and at what ticket type and price.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given
// database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservedSeat is one seat held by a reservation.
type ReservedSeat struct {
	Row        string `json:"row"`
	Number     uint32 `json:"number"`
	Type       string `json:"type"`
	PriceCents uint32 `json:"price_cents"`
}

// UserSummary is the user projection embedded in reservation
// responses.
type UserSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ReservationDetail is a reservation with its user and its
// session/movie/theater relations resolved for display.
type ReservationDetail struct {
	ID              uint64         `json:"id"`
	Status          string         `json:"status"`
	TotalPriceCents uint32         `json:"total_price_cents"`
	PaymentStatus   string         `json:"payment_status"`
	PaymentMethod   string         `json:"payment_method"`
	PaymentRef      *string        `json:"payment_ref,omitempty"`
	PaymentDate     *time.Time     `json:"payment_date,omitempty"`
	User            UserSummary    `json:"user"`
	Session         SessionDetail  `json:"session"`
	Seats           []ReservedSeat `json:"seats"`
	CreatedAt       time.Time      `json:"created_at"`
}

// CreateTx inserts a reservation within an existing transaction,
// populating the generated ID and timestamps on the passed record.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, session_id, status, total_price_cents,
	           payment_status, payment_method, payment_ref, payment_date)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var paymentDate any
	if res.PaymentDate != nil {
		paymentDate = res.PaymentDate.UTC()
	}
	var paymentRef any
	if res.PaymentRef != nil {
		paymentRef = *res.PaymentRef
	}
	result, err := tx.ExecContext(ctx, q, res.UserID, res.SessionID, res.Status, res.TotalPriceCents,
		res.PaymentStatus, res.PaymentMethod, paymentRef, paymentDate)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// CreateSeatsBulkTx inserts the reservation's seat copies in a single
// statement.  priceFor maps each selection to the price it was sold at.
func (r *ReservationRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, reservationID uint64, seats []model.SeatSelection, priceFor func(model.SeatSelection) uint32) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_seats (reservation_id, row_letter, seat_number, ticket_type, price_cents) VALUES `
	args := make([]any, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, reservationID, s.Row, s.Number, s.Type, priceFor(s))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// Get loads the raw reservation row.
func (r *ReservationRepo) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, user_id, session_id, status, total_price_cents, payment_status,
	           payment_method, payment_ref, payment_date, created_at, updated_at
	           FROM reservations WHERE id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, q, id))
}

// GetTx is Get inside an existing transaction.
func (r *ReservationRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, user_id, session_id, status, total_price_cents, payment_status,
	           payment_method, payment_ref, payment_date, created_at, updated_at
	           FROM reservations WHERE id = ?`
	return scanReservation(tx.QueryRowContext(ctx, q, id))
}

func scanReservation(row *sql.Row) (*model.Reservation, error) {
	var res model.Reservation
	var ref sql.NullString
	var paid sql.NullTime
	err := row.Scan(
		&res.ID, &res.UserID, &res.SessionID, &res.Status, &res.TotalPriceCents,
		&res.PaymentStatus, &res.PaymentMethod, &ref, &paid, &res.CreatedAt, &res.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	if ref.Valid {
		v := ref.String
		res.PaymentRef = &v
	}
	if paid.Valid {
		t := paid.Time
		res.PaymentDate = &t
	}
	return &res, nil
}

// SeatRefsTx returns the (row, number) pairs held by a reservation,
// for release during cancellation or deletion.
func (r *ReservationRepo) SeatRefsTx(ctx context.Context, tx *sql.Tx, reservationID uint64) ([]model.SeatRef, error) {
	const q = `SELECT row_letter, seat_number FROM reservation_seats WHERE reservation_id = ?`
	rows, err := tx.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var refs []model.SeatRef
	for rows.Next() {
		var ref model.SeatRef
		if err := rows.Scan(&ref.Row, &ref.Number); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

// UpdateStatusTx sets the reservation status within a transaction.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	return err
}

// DeleteTx removes a reservation; its seat copies go with it via the
// cascade.
func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	return err
}

const reservationDetailQuery = `SELECT r.id, r.status, r.total_price_cents, r.payment_status,
	       r.payment_method, r.payment_ref, r.payment_date, r.created_at,
	       u.id, u.name, u.email,
	       s.id, s.starts_at, s.full_price_cents, s.half_price_cents, s.created_at,
	       m.id, m.title, m.poster_url, m.duration_min,
	       t.id, t.name, t.type, t.capacity
	FROM reservations r
	JOIN users u ON u.id = r.user_id
	JOIN sessions s ON s.id = r.session_id
	JOIN movies m ON m.id = s.movie_id
	JOIN theaters t ON t.id = s.theater_id`

func scanReservationDetail(row interface{ Scan(...any) error }) (*ReservationDetail, error) {
	var d ReservationDetail
	var ref sql.NullString
	var paid sql.NullTime
	err := row.Scan(
		&d.ID, &d.Status, &d.TotalPriceCents, &d.PaymentStatus,
		&d.PaymentMethod, &ref, &paid, &d.CreatedAt,
		&d.User.ID, &d.User.Name, &d.User.Email,
		&d.Session.ID, &d.Session.StartsAt, &d.Session.FullPriceCents, &d.Session.HalfPriceCents, &d.Session.CreatedAt,
		&d.Session.Movie.ID, &d.Session.Movie.Title, &d.Session.Movie.PosterURL, &d.Session.Movie.DurationMin,
		&d.Session.Theater.ID, &d.Session.Theater.Name, &d.Session.Theater.Type, &d.Session.Theater.Capacity,
	)
	if err != nil {
		return nil, err
	}
	if ref.Valid {
		v := ref.String
		d.PaymentRef = &v
	}
	if paid.Valid {
		t := paid.Time
		d.PaymentDate = &t
	}
	d.Seats = []ReservedSeat{}
	return &d, nil
}

// GetDetail loads one reservation with all relations and seats
// resolved.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*ReservationDetail, error) {
	d, err := scanReservationDetail(r.db.QueryRowContext(ctx, reservationDetailQuery+` WHERE r.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if err := r.attachSeats(ctx, []*ReservationDetail{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns a page of reservations, newest first, plus the total
// count.
func (r *ReservationRepo) List(ctx context.Context, offset, limit int) ([]ReservationDetail, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := reservationDetailQuery + ` ORDER BY r.created_at DESC LIMIT ? OFFSET ?`
	details, err := r.queryDetails(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// ListByUser returns every reservation made by the given user, newest
// first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	q := reservationDetailQuery + ` WHERE r.user_id = ? ORDER BY r.created_at DESC`
	return r.queryDetails(ctx, q, userID)
}

func (r *ReservationRepo) queryDetails(ctx context.Context, query string, args ...any) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]ReservationDetail, 0)
	ptrs := make([]*ReservationDetail, 0)
	for rows.Next() {
		d, err := scanReservationDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
		ptrs = append(ptrs, &details[len(details)-1])
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSeats(ctx, ptrs); err != nil {
		return nil, err
	}
	return details, nil
}

// attachSeats populates the Seats slice of every detail in one query.
func (r *ReservationRepo) attachSeats(ctx context.Context, details []*ReservationDetail) error {
	if len(details) == 0 {
		return nil
	}
	index := make(map[uint64]*ReservationDetail, len(details))
	ids := make([]any, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		index[d.ID] = d
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT reservation_id, row_letter, seat_number, ticket_type, price_cents
	      FROM reservation_seats
	      WHERE reservation_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY reservation_id, row_letter, seat_number`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rid uint64
		var seat ReservedSeat
		if err := rows.Scan(&rid, &seat.Row, &seat.Number, &seat.Type, &seat.PriceCents); err != nil {
			return err
		}
		if d, ok := index[rid]; ok {
			d.Seats = append(d.Seats, seat)
		}
	}
	return rows.Err()
}
