package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinema-challenge/reservation-api/internal/model"
	"github.com/cinema-challenge/reservation-api/internal/repository"
)

// TheaterHandler serves the screening rooms.  Reads are public; writes
// are restricted to admins by the router.
type TheaterHandler struct {
	Theaters *repository.TheaterRepo
}

func NewTheaterHandler(t *repository.TheaterRepo) *TheaterHandler {
	return &TheaterHandler{Theaters: t}
}

type theaterReq struct {
	Name     string `json:"name"`
	Capacity uint32 `json:"capacity"`
	Type     string `json:"type"`
}

func (req *theaterReq) validate() (*model.Theater, error) {
	errs := map[string]string{}
	if req.Name == "" {
		errs["name"] = "Please add a name"
	}
	if req.Capacity == 0 {
		errs["capacity"] = "Capacity must be a positive number"
	}
	if !model.ValidTheaterType(req.Type) {
		errs["type"] = "Type must be one of standard, 3D, IMAX, VIP"
	}
	if len(errs) > 0 {
		return nil, &repository.ValidationError{Errors: errs}
	}
	return &model.Theater{Name: req.Name, Capacity: req.Capacity, Type: req.Type}, nil
}

// List handles GET /api/v1/theaters.
func (h *TheaterHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c)
	theaters, total, err := h.Theaters.List(c.Request().Context(), offset, limit)
	if err != nil {
		return err
	}
	return respondList(c, len(theaters), NewPagination(page, limit, total), theaters)
}

// Get handles GET /api/v1/theaters/:id.
func (h *TheaterHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := h.Theaters.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, t)
}

// Create handles POST /api/v1/theaters (admin).
func (h *TheaterHandler) Create(c echo.Context) error {
	var req theaterReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	t, err := req.validate()
	if err != nil {
		return err
	}
	if err := h.Theaters.Create(c.Request().Context(), t); err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, t)
}

// Update handles PUT /api/v1/theaters/:id (admin).  Changing the
// capacity does not touch seat maps already generated for scheduled
// sessions.
func (h *TheaterHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req theaterReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	t, err := req.validate()
	if err != nil {
		return err
	}
	t.ID = id
	if err := h.Theaters.Update(c.Request().Context(), t); err != nil {
		return err
	}
	return respondData(c, http.StatusOK, t)
}

// Delete handles DELETE /api/v1/theaters/:id (admin).
func (h *TheaterHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Theaters.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respondData(c, http.StatusOK, echo.Map{})
}
