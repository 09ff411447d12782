// Package repository defines the persistence layer.  This file holds
// the error values and types shared across repositories.  Handlers do
// not translate these themselves; the centralized HTTP error handler
// inspects them and maps each to the proper status code and response
// envelope.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Not-found sentinels, one per resource, all mapping to HTTP 404.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrMovieNotFound       = errors.New("movie not found")
	ErrTheaterNotFound     = errors.New("theater not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrReservationNotFound = errors.New("reservation not found")
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Maps to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidRefresh is returned when a refresh token is unknown,
// expired or revoked.  Maps to HTTP 401.
var ErrInvalidRefresh = errors.New("invalid refresh token")

// DuplicateFieldError signals a unique-constraint violation.  Field
// names the offending column.  Maps to HTTP 400.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return "duplicate value for field " + e.Field
}

// SeatsUnavailableError reports every requested seat that could not be
// booked, either because it is missing from the session's seat map or
// because it is no longer available.  Maps to HTTP 400.
type SeatsUnavailableError struct {
	Seats []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("The following seats are not available: %s", strings.Join(e.Seats, ", "))
}

// ValidationError carries per-field validation messages for a rejected
// request body.  Maps to HTTP 400 with the field map in the response.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	return "Validation failed"
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: map[string]string{field: message}}
}

// isDuplicate reports whether err is a MySQL duplicate-entry error
// (error number 1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
