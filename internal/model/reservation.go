package model

import "time"

// Reservation status values.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// Payment status values.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment method values.
const (
	PayCreditCard   = "credit_card"
	PayDebitCard    = "debit_card"
	PayPix          = "pix"
	PayBankTransfer = "bank_transfer"
)

// Ticket type values for a selected seat.
const (
	TicketFull = "full"
	TicketHalf = "half"
)

// Reservation records a user's booking of one or more seats within a
// session.  The reservation keeps its own copy of the booked seats
// (row, number, ticket type); the authoritative seat statuses live in
// the session's seat map and the two are kept consistent by the
// booking, cancellation and deletion flows.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the reservation.
//  SessionID       – session being reserved.
//  Status          – pending, confirmed or cancelled.
//  TotalPriceCents – total price for all seats in cents.
//  PaymentStatus   – pending, completed or failed.
//  PaymentMethod   – credit_card, debit_card, pix or bank_transfer.
//  PaymentRef      – reference of the simulated payment (nullable).
//  PaymentDate     – when payment completed (nullable).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64     // reservations.id
	UserID          uint64     // reservations.user_id
	SessionID       uint64     // reservations.session_id
	Status          string     // reservations.status
	TotalPriceCents uint32     // reservations.total_price_cents
	PaymentStatus   string     // reservations.payment_status
	PaymentMethod   string     // reservations.payment_method
	PaymentRef      *string    // reservations.payment_ref (nullable)
	PaymentDate     *time.Time // reservations.payment_date (nullable)
	CreatedAt       time.Time  // reservations.created_at
	UpdatedAt       time.Time  // reservations.updated_at
}

// SeatSelection is one requested seat in a booking: a seat reference
// plus the ticket type that determines its price.
type SeatSelection struct {
	Row    string `json:"row"`
	Number uint32 `json:"number"`
	Type   string `json:"type"`
}

// ValidReservationStatus reports whether s is an accepted reservation
// status value.
func ValidReservationStatus(s string) bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PayCreditCard, PayDebitCard, PayPix, PayBankTransfer:
		return true
	}
	return false
}

// TotalPriceCents computes the booking total for the requested seats:
// half tickets are charged the session's half price, everything else
// the full price.
func TotalPriceCents(s *Session, seats []SeatSelection) uint32 {
	var total uint32
	for _, seat := range seats {
		if seat.Type == TicketHalf {
			total += s.HalfPriceCents
		} else {
			total += s.FullPriceCents
		}
	}
	return total
}

// UnavailableSeats returns the labels of every requested seat that is
// either missing from the session's seat map or not currently
// available.  The check is exhaustive: all offending seats are
// collected rather than failing on the first.
func UnavailableSeats(seatMap []Seat, requested []SeatSelection) []string {
	index := make(map[SeatRef]string, len(seatMap))
	for _, s := range seatMap {
		index[SeatRef{Row: s.Row, Number: s.Number}] = s.Status
	}
	var unavailable []string
	for _, r := range requested {
		status, ok := index[SeatRef{Row: r.Row, Number: r.Number}]
		if !ok || status != SeatAvailable {
			unavailable = append(unavailable, SeatLabel(r.Row, r.Number))
		}
	}
	return unavailable
}
