package model

import "strconv"

// Seat status values accepted by the `session_seats.status` column.
const (
	SeatAvailable = "available"
	SeatReserved  = "reserved"
	SeatOccupied  = "occupied"
)

// Seat is one entry of a session's seat map.  Seat identity within a
// session is the (row, number) pair, which is unique per session.
//
// Fields:
//  ID        – primary key identifier.
//  SessionID – session owning this seat.
//  Row       – row letter (A through H).
//  Number    – seat number within the row, starting at 1.
//  Status    – one of available, reserved, occupied.
type Seat struct {
	ID        uint64 `json:"-"`       // session_seats.id
	SessionID uint64 `json:"-"`       // session_seats.session_id
	Row       string `json:"row"`     // session_seats.row_letter
	Number    uint32 `json:"number"`  // session_seats.seat_number
	Status    string `json:"status"`  // session_seats.status
}

// SeatRef addresses a seat within a session without carrying status.
type SeatRef struct {
	Row    string `json:"row"`
	Number uint32 `json:"number"`
}

// SeatLabel renders a (row, number) pair in the display form used in
// error messages and event payloads, e.g. "B12".
func SeatLabel(row string, number uint32) string {
	return row + strconv.FormatUint(uint64(number), 10)
}
