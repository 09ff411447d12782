package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// APIIndex describes the API surface at its root so a client hitting
// /api/v1 without documentation can discover the resource groups.
func APIIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Cinema reservation API",
		"endpoints": echo.Map{
			"auth":         "/api/v1/auth",
			"movies":       "/api/v1/movies",
			"theaters":     "/api/v1/theaters",
			"sessions":     "/api/v1/sessions",
			"reservations": "/api/v1/reservations",
		},
	})
}
