package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinema-challenge/reservation-api/internal/model"
)

func TestReservationCreateTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepo(db)
	ctx := context.Background()

	now := time.Now().UTC()
	ref := "pay-ref-1"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs(uint64(7), uint64(3), model.ReservationConfirmed, uint32(4000),
			model.PaymentCompleted, model.PayPix, ref, now).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at, updated_at FROM reservations WHERE id = ?`)).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	tx, err := repo.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	res := &model.Reservation{
		UserID:          7,
		SessionID:       3,
		Status:          model.ReservationConfirmed,
		TotalPriceCents: 4000,
		PaymentStatus:   model.PaymentCompleted,
		PaymentMethod:   model.PayPix,
		PaymentRef:      &ref,
		PaymentDate:     &now,
	}
	require.NoError(t, repo.CreateTx(ctx, tx, res))
	assert.Equal(t, uint64(11), res.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationCreateSeatsBulkTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO reservation_seats (reservation_id, row_letter, seat_number, ticket_type, price_cents) VALUES (?, ?, ?, ?, ?),(?, ?, ?, ?, ?)`,
	)).
		WithArgs(
			uint64(11), "A", uint32(1), model.TicketFull, uint32(2000),
			uint64(11), "A", uint32(2), model.TicketHalf, uint32(1000),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	tx, err := repo.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	seats := []model.SeatSelection{
		{Row: "A", Number: 1, Type: model.TicketFull},
		{Row: "A", Number: 2, Type: model.TicketHalf},
	}
	priceFor := func(s model.SeatSelection) uint32 {
		if s.Type == model.TicketHalf {
			return 1000
		}
		return 2000
	}
	require.NoError(t, repo.CreateSeatsBulkTx(ctx, tx, 11, seats, priceFor))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, session_id, status`)).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrReservationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenValidateRefresh(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id FROM refresh_tokens`)).
		WithArgs("deadbeef").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err = repo.ValidateRefresh(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id FROM refresh_tokens`)).
		WithArgs("cafebabe").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(42))

	uid, err := repo.ValidateRefresh(context.Background(), "cafebabe")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err = repo.Create(context.Background(), "Ana", "ana@example.com", "secret123", "user", 4)
	var dup *DuplicateFieldError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSessionRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE id = ?`)).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Delete(context.Background(), 4)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
