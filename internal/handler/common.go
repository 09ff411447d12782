package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user's ID from the context.
// The sub claim is stored by the JWT middleware and arrives as a
// float64 after JSON decoding; string and uint64 forms are accepted
// for robustness.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		if v > 0 {
			return uint64(v), nil
		}
	case uint64:
		if v > 0 {
			return v, nil
		}
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
}

// parseID parses the :id path parameter as a positive integer.
// Malformed identifiers are a client error, reported as 400.
func parseID(c echo.Context) (uint64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid identifier: "+raw)
	}
	return id, nil
}

// pageParams reads ?page= and ?limit= with sane defaults and bounds.
func pageParams(c echo.Context) (page, limit, offset int) {
	page = 1
	limit = 10
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	return page, limit, (page - 1) * limit
}
