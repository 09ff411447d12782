package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinema-challenge/reservation-api/internal/model"
	"github.com/cinema-challenge/reservation-api/internal/repository"
)

// MovieHandler serves the movie catalogue.  Reads are public; writes
// are restricted to admins by the router.
type MovieHandler struct {
	Movies *repository.MovieRepo
}

func NewMovieHandler(m *repository.MovieRepo) *MovieHandler {
	return &MovieHandler{Movies: m}
}

type movieReq struct {
	CustomID       *string  `json:"custom_id"`
	Title          string   `json:"title"`
	Synopsis       string   `json:"synopsis"`
	Director       string   `json:"director"`
	Genres         []string `json:"genres"`
	DurationMin    uint32   `json:"duration"`
	Classification string   `json:"classification"`
	PosterURL      string   `json:"poster"`
	ReleaseDate    string   `json:"release_date"` // YYYY-MM-DD
}

func (req *movieReq) validate() (*model.Movie, error) {
	errs := map[string]string{}
	if req.Title == "" {
		errs["title"] = "Please add a title"
	}
	if req.DurationMin == 0 {
		errs["duration"] = "Please add a duration in minutes"
	}
	var release time.Time
	if req.ReleaseDate != "" {
		var err error
		release, err = time.Parse("2006-01-02", req.ReleaseDate)
		if err != nil {
			errs["release_date"] = "Release date must be YYYY-MM-DD"
		}
	}
	if len(errs) > 0 {
		return nil, &repository.ValidationError{Errors: errs}
	}
	return &model.Movie{
		CustomID:       req.CustomID,
		Title:          req.Title,
		Synopsis:       req.Synopsis,
		Director:       req.Director,
		Genres:         req.Genres,
		DurationMin:    req.DurationMin,
		Classification: req.Classification,
		PosterURL:      req.PosterURL,
		ReleaseDate:    release,
	}, nil
}

// List handles GET /api/v1/movies.  Supports ?genre= filtering and
// pagination.
func (h *MovieHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c)
	movies, total, err := h.Movies.List(c.Request().Context(), c.QueryParam("genre"), offset, limit)
	if err != nil {
		return err
	}
	return respondList(c, len(movies), NewPagination(page, limit, total), movies)
}

// Get handles GET /api/v1/movies/:id.  The id may be the numeric
// primary key or a custom external id.
func (h *MovieHandler) Get(c echo.Context) error {
	m, err := h.Movies.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, m)
}

// Create handles POST /api/v1/movies (admin).
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	m, err := req.validate()
	if err != nil {
		return err
	}
	if err := h.Movies.Create(c.Request().Context(), m); err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, m)
}

// Update handles PUT /api/v1/movies/:id (admin).
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	m, err := req.validate()
	if err != nil {
		return err
	}
	m.ID = id
	if err := h.Movies.Update(c.Request().Context(), m); err != nil {
		return err
	}
	got, err := h.Movies.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, got)
}

// Delete handles DELETE /api/v1/movies/:id (admin).
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respondData(c, http.StatusOK, echo.Map{})
}
