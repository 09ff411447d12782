package model

import "time"

// Session represents a scheduled showing of a movie in a theater at a
// given datetime, with its own pricing and seat map.  The seat map is
// owned exclusively by the session: it is created once when the session
// is scheduled and mutated only by reservation, cancellation and reset
// operations.
//
// Fields:
//  ID             – primary key identifier.
//  MovieID        – movie being shown.
//  TheaterID      – theater where the session takes place.
//  StartsAt       – date and time of the showing.
//  FullPriceCents – full ticket price in cents.
//  HalfPriceCents – half ticket price in cents.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Session struct {
	ID             uint64    // sessions.id
	MovieID        uint64    // sessions.movie_id
	TheaterID      uint64    // sessions.theater_id
	StartsAt       time.Time // sessions.starts_at
	FullPriceCents uint32    // sessions.full_price_cents
	HalfPriceCents uint32    // sessions.half_price_cents
	CreatedAt      time.Time // sessions.created_at
	UpdatedAt      time.Time // sessions.updated_at
}
