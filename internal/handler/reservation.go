package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cinema-challenge/reservation-api/internal/model"
	"github.com/cinema-challenge/reservation-api/internal/queue"
	"github.com/cinema-challenge/reservation-api/internal/repository"
	queue_publisher "github.com/cinema-challenge/reservation-api/internal/service"
)

// ReservationHandler implements the booking workflow.  Reserving seats
// is the one place where the seat map and the reservations table must
// agree, so every mutation here runs inside a single transaction and
// seat status changes use conditional updates whose affected-row count
// is verified before commit.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Sessions     *repository.SessionRepo
	Seats        *repository.SeatRepo

	// PublishEvent is called after a successful booking.  Best effort:
	// a broker outage never fails the request.  Nil disables publishing.
	PublishEvent func(ctx context.Context, ev queue.ReservationConfirmedEvent) error
}

func NewReservationHandler(r *repository.ReservationRepo, s *repository.SessionRepo, seats *repository.SeatRepo) *ReservationHandler {
	return &ReservationHandler{
		Reservations: r,
		Sessions:     s,
		Seats:        seats,
		PublishEvent: queue_publisher.PublishReservationConfirmed,
	}
}

type reservationReq struct {
	SessionID     uint64                `json:"session"`
	Seats         []model.SeatSelection `json:"seats"`
	PaymentMethod string                `json:"payment_method"`
}

// Create handles POST /api/v1/reservations.  The flow: load the
// session, check every requested seat against the seat map (collecting
// all offenders, not just the first), price the booking, insert the
// reservation and its seat copies, then flip the seats to occupied
// with a conditional update.  If the update touches fewer rows than
// requested another booking won the race and the whole transaction is
// rolled back.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	errs := map[string]string{}
	if req.SessionID == 0 {
		errs["session"] = "Please add a session"
	}
	if len(req.Seats) == 0 {
		errs["seats"] = "Please add at least one seat"
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = model.PayCreditCard
	}
	if !model.ValidPaymentMethod(req.PaymentMethod) {
		errs["payment_method"] = "Payment method must be one of credit_card, debit_card, pix, bank_transfer"
	}
	for _, s := range req.Seats {
		if s.Type != model.TicketFull && s.Type != model.TicketHalf {
			errs["seats"] = "Seat ticket type must be full or half"
		}
	}
	if len(errs) > 0 {
		return &repository.ValidationError{Errors: errs}
	}

	// duplicate seat references collapse into one
	seats := make([]model.SeatSelection, 0, len(req.Seats))
	seen := make(map[model.SeatRef]struct{}, len(req.Seats))
	for _, s := range req.Seats {
		ref := model.SeatRef{Row: s.Row, Number: s.Number}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		seats = append(seats, s)
	}

	ctx := c.Request().Context()
	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	session, err := h.Sessions.GetTx(ctx, tx, req.SessionID)
	if err != nil {
		return err
	}

	seatMap, err := h.Seats.ListBySessionTx(ctx, tx, session.ID)
	if err != nil {
		return err
	}
	if unavailable := model.UnavailableSeats(seatMap, seats); len(unavailable) > 0 {
		return &repository.SeatsUnavailableError{Seats: unavailable}
	}

	now := time.Now().UTC()
	ref := uuid.NewString()
	res := &model.Reservation{
		UserID:          userID,
		SessionID:       session.ID,
		Status:          model.ReservationConfirmed,
		TotalPriceCents: model.TotalPriceCents(session, seats),
		PaymentStatus:   model.PaymentCompleted, // simulated payment settles instantly
		PaymentMethod:   req.PaymentMethod,
		PaymentRef:      &ref,
		PaymentDate:     &now,
	}
	if err := h.Reservations.CreateTx(ctx, tx, res); err != nil {
		return err
	}

	priceFor := func(s model.SeatSelection) uint32 {
		if s.Type == model.TicketHalf {
			return session.HalfPriceCents
		}
		return session.FullPriceCents
	}
	if err := h.Reservations.CreateSeatsBulkTx(ctx, tx, res.ID, seats, priceFor); err != nil {
		return err
	}

	refs := make([]model.SeatRef, len(seats))
	labels := make([]string, len(seats))
	for i, s := range seats {
		refs[i] = model.SeatRef{Row: s.Row, Number: s.Number}
		labels[i] = model.SeatLabel(s.Row, s.Number)
	}
	affected, err := h.Seats.OccupyTx(ctx, tx, session.ID, refs)
	if err != nil {
		return err
	}
	if affected != int64(len(refs)) {
		// a concurrent booking took some of the seats after our check
		return &repository.SeatsUnavailableError{Seats: labels}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	detail, err := h.Reservations.GetDetail(ctx, res.ID)
	if err != nil {
		return err
	}

	if h.PublishEvent != nil {
		_ = h.PublishEvent(ctx, queue.ReservationConfirmedEvent{
			ReservationID:   res.ID,
			UserID:          userID,
			SessionID:       session.ID,
			MovieTitle:      detail.Session.Movie.Title,
			TheaterName:     detail.Session.Theater.Name,
			StartsAt:        detail.Session.StartsAt.Format(time.RFC3339),
			SeatLabels:      labels,
			PaymentMethod:   req.PaymentMethod,
			TotalPriceCents: res.TotalPriceCents,
			ConfirmedAt:     now.Format(time.RFC3339),
		})
	}

	return respondData(c, http.StatusCreated, detail)
}

// List handles GET /api/v1/reservations (admin), newest first.
func (h *ReservationHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c)
	details, total, err := h.Reservations.List(c.Request().Context(), offset, limit)
	if err != nil {
		return err
	}
	return respondList(c, len(details), NewPagination(page, limit, total), details)
}

// ListMine handles GET /api/v1/reservations/me.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	details, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respondList(c, len(details), Pagination{}, details)
}

// Get handles GET /api/v1/reservations/:id.  Owners see their own
// reservations; admins see all.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	detail, err := h.Reservations.GetDetail(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if detail.User.ID != userID && c.Get("role") != "admin" {
		return repository.ErrForbidden
	}
	return respondData(c, http.StatusOK, detail)
}

// Cancel handles PUT /api/v1/reservations/:id/cancel.  The owner (or
// an admin) cancels a booking: the reservation flips to cancelled and
// its seats return to available, atomically.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Reservations.GetTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if res.UserID != userID && c.Get("role") != "admin" {
		return repository.ErrForbidden
	}
	if res.Status == model.ReservationCancelled {
		return repository.NewValidationError("status", "Reservation is already cancelled")
	}

	if err := h.Reservations.UpdateStatusTx(ctx, tx, id, model.ReservationCancelled); err != nil {
		return err
	}
	refs, err := h.Reservations.SeatRefsTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := h.Seats.ReleaseTx(ctx, tx, res.SessionID, refs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	detail, err := h.Reservations.GetDetail(ctx, id)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, detail)
}

// UpdateStatus handles PUT /api/v1/reservations/:id (admin).  Setting
// the status to cancelled also releases the seats; other transitions
// only touch the reservation record.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if !model.ValidReservationStatus(req.Status) {
		return repository.NewValidationError("status", "Status must be one of pending, confirmed, cancelled")
	}

	ctx := c.Request().Context()
	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Reservations.GetTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := h.Reservations.UpdateStatusTx(ctx, tx, id, req.Status); err != nil {
		return err
	}
	if req.Status == model.ReservationCancelled && res.Status != model.ReservationCancelled {
		refs, err := h.Reservations.SeatRefsTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := h.Seats.ReleaseTx(ctx, tx, res.SessionID, refs); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	detail, err := h.Reservations.GetDetail(ctx, id)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, detail)
}

// Delete handles DELETE /api/v1/reservations/:id (admin).  The seats
// are released before the row is removed so the seat map never keeps a
// phantom occupation.  The release is unconditional, even for
// cancelled reservations whose seats are already available; the seat
// update is idempotent.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Reservations.GetTx(ctx, tx, id)
	if err != nil {
		return err
	}
	// release runs regardless of reservation status
	refs, err := h.Reservations.SeatRefsTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := h.Seats.ReleaseTx(ctx, tx, res.SessionID, refs); err != nil {
		return err
	}
	if err := h.Reservations.DeleteTx(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	return respondData(c, http.StatusOK, echo.Map{})
}
