package model

import (
	"errors"
	"fmt"
)

// seatRows is the fixed row alphabet used when generating a seat map.
var seatRows = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// ErrInvalidCapacity is returned when a seat map is requested for a
// non-positive capacity.
var ErrInvalidCapacity = errors.New("theater capacity must be positive")

// GenerateSeats builds a session's seat map from a theater capacity.
// Rows are filled in order A through H with ceil(capacity/8) seats per
// row, truncated once the total reaches the capacity, so the result
// has exactly `capacity` entries and every (row, number) pair is
// unique.  All seats start out available.
func GenerateSeats(capacity uint32) ([]Seat, error) {
	if capacity == 0 {
		return nil, fmt.Errorf("generate seats: %w", ErrInvalidCapacity)
	}
	perRow := (capacity + uint32(len(seatRows)) - 1) / uint32(len(seatRows))
	seats := make([]Seat, 0, capacity)
	for _, row := range seatRows {
		for n := uint32(1); n <= perRow; n++ {
			if uint32(len(seats)) >= capacity {
				return seats, nil
			}
			seats = append(seats, Seat{Row: row, Number: n, Status: SeatAvailable})
		}
	}
	return seats, nil
}
