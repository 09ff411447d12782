package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Every endpoint answers in the same envelope: successful responses
// carry {success:true, data} and, for collections, a count and a
// pagination block.  Failures never reach these helpers; handlers
// return domain errors and the central error handler renders the
// {success:false, message} form.

// PageInfo points at an adjacent page of a collection.
type PageInfo struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries the next/prev cursors for a list response.  A nil
// cursor means there is no page in that direction.
type Pagination struct {
	Next *PageInfo `json:"next,omitempty"`
	Prev *PageInfo `json:"prev,omitempty"`
}

// NewPagination derives the pagination block for a 1-based page over
// total rows.  Next exists while rows remain past the current page,
// prev whenever the page is beyond the first.
func NewPagination(page, limit, total int) Pagination {
	var p Pagination
	if page*limit < total {
		p.Next = &PageInfo{Page: page + 1, Limit: limit}
	}
	if page > 1 {
		p.Prev = &PageInfo{Page: page - 1, Limit: limit}
	}
	return p
}

func respondData(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondList(c echo.Context, count int, pagination Pagination, data any) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"count":      count,
		"pagination": pagination,
		"data":       data,
	})
}

func respondMessage(c echo.Context, status int, message string, data any) error {
	body := echo.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}
