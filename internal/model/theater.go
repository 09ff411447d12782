package model

import "time"

// Theater type values accepted by the `theaters.type` column.
const (
	TheaterStandard = "standard"
	Theater3D       = "3D"
	TheaterIMAX     = "IMAX"
	TheaterVIP      = "VIP"
)

// Theater represents a screening room.  The name is unique across the
// system and the capacity drives seat-map generation when a session is
// scheduled in the theater.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique theater name.
//  Capacity  – number of seats.
//  Type      – one of standard, 3D, IMAX, VIP.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Theater struct {
	ID        uint64    `json:"id"`         // theaters.id
	Name      string    `json:"name"`       // theaters.name
	Capacity  uint32    `json:"capacity"`   // theaters.capacity
	Type      string    `json:"type"`       // theaters.type
	CreatedAt time.Time `json:"created_at"` // theaters.created_at
	UpdatedAt time.Time `json:"updated_at"` // theaters.updated_at
}

// ValidTheaterType reports whether t is an accepted theater type.
func ValidTheaterType(t string) bool {
	switch t {
	case TheaterStandard, Theater3D, TheaterIMAX, TheaterVIP:
		return true
	}
	return false
}
