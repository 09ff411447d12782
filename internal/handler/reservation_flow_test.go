package handler

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinema-challenge/reservation-api/internal/middleware"
	"github.com/cinema-challenge/reservation-api/internal/model"
	"github.com/cinema-challenge/reservation-api/internal/queue"
	"github.com/cinema-challenge/reservation-api/internal/repository"
)

// The booking flow tests drive the real handlers over a mocked
// *sql.DB.  Expectations are matched in order, so they pin down the
// transaction choreography: what runs inside the transaction, what
// only happens after commit, and that nothing is written once a check
// fails.

func newBookingHandler(t *testing.T) (*ReservationHandler, sqlmock.Sqlmock, *queue.ReservationConfirmedEvent) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	published := &queue.ReservationConfirmedEvent{}
	h := &ReservationHandler{
		Reservations: repository.NewReservationRepo(db),
		Sessions:     repository.NewSessionRepo(db),
		Seats:        repository.NewSeatRepo(db),
		PublishEvent: func(ctx context.Context, ev queue.ReservationConfirmedEvent) error {
			*published = ev
			return nil
		},
	}
	return h, mock, published
}

func sessionRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "movie_id", "theater_id", "starts_at",
		"full_price_cents", "half_price_cents", "created_at", "updated_at",
	}).AddRow(3, 1, 2, now.Add(24*time.Hour), 2000, 1000, now, now)
}

func seatMapRows(statusA1, statusA2 string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "session_id", "row_letter", "seat_number", "status"}).
		AddRow(1, 3, "A", 1, statusA1).
		AddRow(2, 3, "A", 2, statusA2)
}

func reservationRow(now time.Time, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "session_id", "status", "total_price_cents",
		"payment_status", "payment_method", "payment_ref", "payment_date",
		"created_at", "updated_at",
	}).AddRow(11, 7, 3, status, 3000, model.PaymentCompleted, model.PayPix, nil, nil, now, now)
}

func detailRows(now time.Time, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"r_id", "r_status", "r_total", "r_pay_status", "r_pay_method", "r_pay_ref", "r_pay_date", "r_created",
		"u_id", "u_name", "u_email",
		"s_id", "s_starts", "s_full", "s_half", "s_created",
		"m_id", "m_title", "m_poster", "m_duration",
		"t_id", "t_name", "t_type", "t_capacity",
	}).AddRow(
		11, status, 3000, model.PaymentCompleted, model.PayPix, "pay-ref", now, now,
		7, "Ana", "ana@example.com",
		3, now.Add(24*time.Hour), 2000, 1000, now,
		1, "Alien", "", 117,
		2, "Room 1", "IMAX", 80,
	)
}

func reservedSeatRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"reservation_id", "row_letter", "seat_number", "ticket_type", "price_cents"}).
		AddRow(11, "A", 1, model.TicketFull, 2000).
		AddRow(11, "A", 2, model.TicketHalf, 1000)
}

const createBody = `{"session":3,"payment_method":"pix","seats":[` +
	`{"row":"A","number":1,"type":"full"},{"row":"A","number":2,"type":"half"}]}`

func TestBookingCreateHappyPath(t *testing.T) {
	h, mock, published := newBookingHandler(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, movie_id, theater_id`)).
		WithArgs(uint64(3)).
		WillReturnRows(sessionRows(now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, session_id, row_letter, seat_number, status`)).
		WithArgs(uint64(3)).
		WillReturnRows(seatMapRows(model.SeatAvailable, model.SeatAvailable))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs(uint64(7), uint64(3), model.ReservationConfirmed, uint32(3000),
			model.PaymentCompleted, model.PayPix, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at, updated_at FROM reservations WHERE id = ?`)).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservation_seats`)).
		WithArgs(
			uint64(11), "A", uint32(1), model.TicketFull, uint32(2000),
			uint64(11), "A", uint32(2), model.TicketHalf, uint32(1000),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE session_seats SET status = ?`)).
		WithArgs(model.SeatOccupied, uint64(3), model.SeatAvailable, "A", uint32(1), "A", uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 2)) // both seats won
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT r.id, r.status`)).
		WithArgs(uint64(11)).
		WillReturnRows(detailRows(now, model.ReservationConfirmed))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT reservation_id, row_letter, seat_number`)).
		WithArgs(uint64(11)).
		WillReturnRows(reservedSeatRows())

	c, rec := newContext(http.MethodPost, "/api/v1/reservations", createBody)
	c.Set("user_id", float64(7))
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"total_price_cents":3000`)

	assert.Equal(t, uint64(11), published.ReservationID)
	assert.Equal(t, []string{"A1", "A2"}, published.SeatLabels)
	assert.Equal(t, uint32(3000), published.TotalPriceCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateRejectsOccupiedSeatWithoutWrites(t *testing.T) {
	h, mock, published := newBookingHandler(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, movie_id, theater_id`)).
		WithArgs(uint64(3)).
		WillReturnRows(sessionRows(now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, session_id, row_letter, seat_number, status`)).
		WithArgs(uint64(3)).
		WillReturnRows(seatMapRows(model.SeatOccupied, model.SeatAvailable))
	// no INSERT, no UPDATE: the transaction is rolled back untouched
	mock.ExpectRollback()

	c, rec := newContext(http.MethodPost, "/api/v1/reservations", createBody)
	c.Set("user_id", float64(7))
	err := h.Create(c)

	var seatsErr *repository.SeatsUnavailableError
	require.ErrorAs(t, err, &seatsErr)
	assert.Equal(t, []string{"A1"}, seatsErr.Seats)

	middleware.NewHTTPErrorHandler("production")(err, c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "The following seats are not available: A1")
	assert.Zero(t, published.ReservationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateRollsBackWhenRaceLost(t *testing.T) {
	h, mock, published := newBookingHandler(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, movie_id, theater_id`)).
		WithArgs(uint64(3)).
		WillReturnRows(sessionRows(now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, session_id, row_letter, seat_number, status`)).
		WithArgs(uint64(3)).
		WillReturnRows(seatMapRows(model.SeatAvailable, model.SeatAvailable))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs(uint64(7), uint64(3), model.ReservationConfirmed, uint32(3000),
			model.PaymentCompleted, model.PayPix, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at, updated_at FROM reservations WHERE id = ?`)).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservation_seats`)).
		WithArgs(
			uint64(11), "A", uint32(1), model.TicketFull, uint32(2000),
			uint64(11), "A", uint32(2), model.TicketHalf, uint32(1000),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	// a concurrent booking got A2 between the check and the flip:
	// only one row is still available, so only one row updates
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE session_seats SET status = ?`)).
		WithArgs(model.SeatOccupied, uint64(3), model.SeatAvailable, "A", uint32(1), "A", uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	c, _ := newContext(http.MethodPost, "/api/v1/reservations", createBody)
	c.Set("user_id", float64(7))
	err := h.Create(c)

	var seatsErr *repository.SeatsUnavailableError
	require.ErrorAs(t, err, &seatsErr)
	assert.ElementsMatch(t, []string{"A1", "A2"}, seatsErr.Seats)
	assert.Zero(t, published.ReservationID, "no event for a rolled-back booking")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCancelReleasesSeatsInTransaction(t *testing.T) {
	h, mock, _ := newBookingHandler(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, session_id, status`)).
		WithArgs(uint64(11)).
		WillReturnRows(reservationRow(now, model.ReservationConfirmed))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reservations SET status = ?`)).
		WithArgs(model.ReservationCancelled, uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT row_letter, seat_number FROM reservation_seats`)).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"row_letter", "seat_number"}).
			AddRow("A", 1).AddRow("A", 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE session_seats SET status = ?`)).
		WithArgs(model.SeatAvailable, uint64(3), "A", uint32(1), "A", uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT r.id, r.status`)).
		WithArgs(uint64(11)).
		WillReturnRows(detailRows(now, model.ReservationCancelled))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT reservation_id, row_letter, seat_number`)).
		WithArgs(uint64(11)).
		WillReturnRows(reservedSeatRows())

	c, rec := newContext(http.MethodPut, "/api/v1/reservations/11/cancel", "")
	c.Set("user_id", float64(7))
	c.SetParamNames("id")
	c.SetParamValues("11")
	require.NoError(t, h.Cancel(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCancelTwiceIsRejected(t *testing.T) {
	h, mock, _ := newBookingHandler(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, session_id, status`)).
		WithArgs(uint64(11)).
		WillReturnRows(reservationRow(now, model.ReservationCancelled))
	mock.ExpectRollback()

	c, _ := newContext(http.MethodPut, "/api/v1/reservations/11/cancel", "")
	c.Set("user_id", float64(7))
	c.SetParamNames("id")
	c.SetParamValues("11")
	err := h.Cancel(c)

	var valErr *repository.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Errors, "status")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCancelByStrangerIsForbidden(t *testing.T) {
	h, mock, _ := newBookingHandler(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, session_id, status`)).
		WithArgs(uint64(11)).
		WillReturnRows(reservationRow(now, model.ReservationConfirmed)) // owner is user 7
	mock.ExpectRollback()

	c, _ := newContext(http.MethodPut, "/api/v1/reservations/11/cancel", "")
	c.Set("user_id", float64(99))
	c.Set("role", "user")
	c.SetParamNames("id")
	c.SetParamValues("11")
	err := h.Cancel(c)

	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingDeleteReleasesSeatsEvenWhenCancelled(t *testing.T) {
	h, mock, _ := newBookingHandler(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, session_id, status`)).
		WithArgs(uint64(11)).
		WillReturnRows(reservationRow(now, model.ReservationCancelled))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT row_letter, seat_number FROM reservation_seats`)).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"row_letter", "seat_number"}).
			AddRow("B", 3).AddRow("B", 4))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE session_seats SET status = ?`)).
		WithArgs(model.SeatAvailable, uint64(3), "B", uint32(3), "B", uint32(4)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reservations WHERE id = ?`)).
		WithArgs(uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newContext(http.MethodDelete, "/api/v1/reservations/11", "")
	c.SetParamNames("id")
	c.SetParamValues("11")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
