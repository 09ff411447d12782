package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinema-challenge/reservation-api/internal/model"
)

func newMock(t *testing.T) (*SeatRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSeatRepo(db), mock
}

func TestOccupyTxOnlyTouchesAvailableSeats(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE session_seats SET status = ? WHERE session_id = ? AND status = ? AND ((row_letter = ? AND seat_number = ?) OR (row_letter = ? AND seat_number = ?))`,
	)).
		WithArgs(model.SeatOccupied, uint64(5), model.SeatAvailable, "A", uint32(1), "A", uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 1)) // only one of two seats was still available

	tx, err := repo.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	refs := []model.SeatRef{{Row: "A", Number: 1}, {Row: "A", Number: 2}}
	affected, err := repo.OccupyTx(ctx, tx, 5, refs)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseTxIsUnconditional(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE session_seats SET status = ? WHERE session_id = ? AND ((row_letter = ? AND seat_number = ?))`,
	)).
		WithArgs(model.SeatAvailable, uint64(5), "B", uint32(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := repo.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	err = repo.ReleaseTx(ctx, tx, 5, []model.SeatRef{{Row: "B", Number: 7}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOccupyTxEmptyRefsIsNoop(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := repo.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	affected, err := repo.OccupyTx(ctx, tx, 5, nil)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetAll(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE session_seats SET status = ? WHERE session_id = ?`)).
		WithArgs(model.SeatAvailable, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 42))

	require.NoError(t, repo.ResetAll(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBySession(t *testing.T) {
	repo, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"id", "session_id", "row_letter", "seat_number", "status"}).
		AddRow(1, 9, "A", 1, model.SeatAvailable).
		AddRow(2, 9, "A", 2, model.SeatOccupied)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, session_id, row_letter, seat_number, status`)).
		WithArgs(uint64(9)).
		WillReturnRows(rows)

	seats, err := repo.ListBySession(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, "A", seats[0].Row)
	assert.Equal(t, model.SeatOccupied, seats[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
