// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// ReservationConfirmedEvent is published when a booking completes.  It
// carries enough context for downstream consumers to log or notify
// without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID   uint64   `json:"reservation_id"`
	UserID          uint64   `json:"user_id"`
	SessionID       uint64   `json:"session_id"`
	MovieTitle      string   `json:"movie_title"`
	TheaterName     string   `json:"theater_name"`
	StartsAt        string   `json:"starts_at"`
	SeatLabels      []string `json:"seats"`
	PaymentMethod   string   `json:"payment_method"`
	TotalPriceCents uint32   `json:"total_price_cents"`
	ConfirmedAt     string   `json:"confirmed_at"`
}
