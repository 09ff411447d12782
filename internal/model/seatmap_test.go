package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSeatsCountAndUniqueness(t *testing.T) {
	rowSet := map[string]bool{"A": true, "B": true, "C": true, "D": true, "E": true, "F": true, "G": true, "H": true}

	for _, capacity := range []uint32{1, 7, 8, 9, 40, 79, 80, 100, 257} {
		seats, err := GenerateSeats(capacity)
		require.NoError(t, err)
		require.Len(t, seats, int(capacity), "capacity %d", capacity)

		seen := map[SeatRef]bool{}
		for _, s := range seats {
			assert.True(t, rowSet[s.Row], "row %q outside A-H", s.Row)
			assert.Equal(t, SeatAvailable, s.Status)
			ref := SeatRef{Row: s.Row, Number: s.Number}
			assert.False(t, seen[ref], "duplicate seat %s", SeatLabel(s.Row, s.Number))
			seen[ref] = true
		}
	}
}

func TestGenerateSeatsLayout(t *testing.T) {
	// capacity 20 -> ceil(20/8) = 3 per row, truncated after 20 seats:
	// A1..A3, B1..B3, ... G1..G2 and nothing in H.
	seats, err := GenerateSeats(20)
	require.NoError(t, err)
	require.Len(t, seats, 20)

	assert.Equal(t, Seat{Row: "A", Number: 1, Status: SeatAvailable}, seats[0])
	assert.Equal(t, Seat{Row: "A", Number: 3, Status: SeatAvailable}, seats[2])
	assert.Equal(t, Seat{Row: "B", Number: 1, Status: SeatAvailable}, seats[3])
	assert.Equal(t, Seat{Row: "G", Number: 2, Status: SeatAvailable}, seats[19])
	for _, s := range seats {
		assert.NotEqual(t, "H", s.Row)
	}
}

func TestGenerateSeatsDeterministic(t *testing.T) {
	a, err := GenerateSeats(37)
	require.NoError(t, err)
	b, err := GenerateSeats(37)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateSeatsRejectsZeroCapacity(t *testing.T) {
	_, err := GenerateSeats(0)
	require.ErrorIs(t, err, ErrInvalidCapacity)
}
