package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinema-challenge/reservation-api/internal/model"
	"github.com/cinema-challenge/reservation-api/internal/repository"
)

// SessionHandler manages scheduled showings and their seat maps.  A
// session's seat map is generated once at creation from the theater
// capacity; updates never regenerate it, so bookings stay intact when
// an admin corrects pricing or the start time.
type SessionHandler struct {
	Sessions *repository.SessionRepo
	Seats    *repository.SeatRepo
	Movies   *repository.MovieRepo
	Theaters *repository.TheaterRepo
}

func NewSessionHandler(s *repository.SessionRepo, seats *repository.SeatRepo, m *repository.MovieRepo, t *repository.TheaterRepo) *SessionHandler {
	return &SessionHandler{Sessions: s, Seats: seats, Movies: m, Theaters: t}
}

type sessionReq struct {
	MovieID        uint64 `json:"movie"`
	TheaterID      uint64 `json:"theater"`
	Datetime       string `json:"datetime"` // RFC 3339
	FullPriceCents uint32 `json:"full_price_cents"`
	HalfPriceCents uint32 `json:"half_price_cents"`
}

func (req *sessionReq) validate() (*model.Session, error) {
	errs := map[string]string{}
	if req.MovieID == 0 {
		errs["movie"] = "Please add a movie"
	}
	if req.TheaterID == 0 {
		errs["theater"] = "Please add a theater"
	}
	startsAt, err := time.Parse(time.RFC3339, req.Datetime)
	if err != nil {
		errs["datetime"] = "Datetime must be RFC 3339"
	}
	if req.FullPriceCents == 0 {
		errs["full_price_cents"] = "Please add a full ticket price"
	}
	if req.HalfPriceCents == 0 {
		errs["half_price_cents"] = "Please add a half ticket price"
	}
	if len(errs) > 0 {
		return nil, &repository.ValidationError{Errors: errs}
	}
	return &model.Session{
		MovieID:        req.MovieID,
		TheaterID:      req.TheaterID,
		StartsAt:       startsAt.UTC(),
		FullPriceCents: req.FullPriceCents,
		HalfPriceCents: req.HalfPriceCents,
	}, nil
}

// checkRelations verifies that the referenced movie and theater exist,
// returning the theater for seat-map generation.
func (h *SessionHandler) checkRelations(c echo.Context, s *model.Session) (*model.Theater, error) {
	ctx := c.Request().Context()
	if _, err := h.Movies.GetByID(ctx, strconv.FormatUint(s.MovieID, 10)); err != nil {
		return nil, err
	}
	return h.Theaters.GetByID(ctx, s.TheaterID)
}

// List handles GET /api/v1/sessions.  Supports ?movie=, ?theater= and
// ?date=YYYY-MM-DD filters plus pagination.  Seat maps are omitted
// from list responses.
func (h *SessionHandler) List(c echo.Context) error {
	var filter repository.SessionFilter
	if v, err := strconv.ParseUint(c.QueryParam("movie"), 10, 64); err == nil {
		filter.MovieID = v
	}
	if v, err := strconv.ParseUint(c.QueryParam("theater"), 10, 64); err == nil {
		filter.TheaterID = v
	}
	if raw := c.QueryParam("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return repository.NewValidationError("date", "Date must be YYYY-MM-DD")
		}
		filter.Date = &day
	}

	page, limit, offset := pageParams(c)
	sessions, total, err := h.Sessions.List(c.Request().Context(), filter, offset, limit)
	if err != nil {
		return err
	}
	return respondList(c, len(sessions), NewPagination(page, limit, total), sessions)
}

// Get handles GET /api/v1/sessions/:id, returning the session with its
// movie, theater and full seat map.
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	detail, err := h.Sessions.GetDetail(ctx, id)
	if err != nil {
		return err
	}
	seats, err := h.Seats.ListBySession(ctx, id)
	if err != nil {
		return err
	}
	detail.Seats = seats
	return respondData(c, http.StatusOK, detail)
}

// Create handles POST /api/v1/sessions (admin).  The session row and
// its generated seat map are inserted in one transaction so a failure
// never leaves a session without seats.
func (h *SessionHandler) Create(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	s, err := req.validate()
	if err != nil {
		return err
	}
	theater, err := h.checkRelations(c, s)
	if err != nil {
		return err
	}
	seats, err := model.GenerateSeats(theater.Capacity)
	if err != nil {
		return repository.NewValidationError("theater", "Theater capacity must be positive")
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

	if err := h.Sessions.CreateTx(ctx, tx, s); err != nil {
		return err
	}
	if err := h.Seats.CreateBulkTx(ctx, tx, s.ID, seats); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	detail, err := h.Sessions.GetDetail(ctx, s.ID)
	if err != nil {
		return err
	}
	detail.Seats, err = h.Seats.ListBySession(ctx, s.ID)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, detail)
}

// Update handles PUT /api/v1/sessions/:id (admin).  The seat map is
// left untouched even when the session moves to another theater.
func (h *SessionHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	s, err := req.validate()
	if err != nil {
		return err
	}
	if _, err := h.checkRelations(c, s); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.Sessions.Get(ctx, id); err != nil {
		return err
	}
	s.ID = id
	if err := h.Sessions.Update(ctx, s); err != nil {
		return err
	}
	detail, err := h.Sessions.GetDetail(ctx, id)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, detail)
}

// Delete handles DELETE /api/v1/sessions/:id (admin).  The seat map is
// removed by the foreign-key cascade.
func (h *SessionHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Sessions.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respondData(c, http.StatusOK, echo.Map{})
}

// ResetSeats handles PUT /api/v1/sessions/:id/reset-seats (admin).  It
// flips every seat of the session back to available without touching
// reservation records; it is an operational override, not a refund
// flow.
func (h *SessionHandler) ResetSeats(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.Sessions.Get(ctx, id); err != nil {
		return err
	}
	if err := h.Seats.ResetAll(ctx, id); err != nil {
		return err
	}
	seats, err := h.Seats.ListBySession(ctx, id)
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "All seats reset to available status", seats)
}
