package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/cinema-challenge/reservation-api/internal/repository"
)

// NewHTTPErrorHandler returns the single error translation layer for
// the API.  Handlers return domain errors; this function inspects the
// error shape and maps it to a status code and the standard envelope
// {success:false, message, errors?/field?/stack?}.  Unrecognized
// errors become 500 with the stack trace attached outside production.
func NewHTTPErrorHandler(env string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := echo.Map{"success": false, "message": "Server error"}

		var seatsErr *repository.SeatsUnavailableError
		var dupErr *repository.DuplicateFieldError
		var valErr *repository.ValidationError
		var mysqlErr *mysql.MySQLError
		var httpErr *echo.HTTPError

		switch {
		case errors.As(err, &seatsErr):
			status = http.StatusBadRequest
			body["message"] = seatsErr.Error()

		case errors.As(err, &valErr):
			status = http.StatusBadRequest
			body["message"] = valErr.Error()
			body["errors"] = valErr.Errors

		case errors.As(err, &dupErr):
			status = http.StatusBadRequest
			body["message"] = "Duplicate field value entered"
			body["field"] = dupErr.Field

		case isNotFound(err):
			status = http.StatusNotFound
			body["message"] = err.Error()

		case errors.Is(err, repository.ErrForbidden):
			status = http.StatusForbidden
			body["message"] = "Not authorized to access this resource"

		case errors.Is(err, repository.ErrInvalidRefresh):
			status = http.StatusUnauthorized
			body["message"] = "Invalid or expired refresh token"

		case errors.As(err, &mysqlErr) && mysqlErr.Number == 1062:
			status = http.StatusBadRequest
			body["message"] = "Duplicate field value entered"

		case errors.As(err, &mysqlErr) && mysqlErr.Number == 1451:
			// deleting a row other tables still reference
			status = http.StatusBadRequest
			body["message"] = "Resource is referenced by other records"

		case errors.As(err, &httpErr):
			// Echo's own errors: unknown routes, method mismatches,
			// malformed request bodies.
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				body["message"] = msg
			}

		default:
			body["message"] = err.Error()
			if env != "prod" && env != "production" {
				body["stack"] = string(debug.Stack())
			}
			c.Logger().Error(err)
		}

		var respErr error
		if c.Request().Method == http.MethodHead {
			respErr = c.NoContent(status)
		} else {
			respErr = c.JSON(status, body)
		}
		if respErr != nil {
			c.Logger().Error(respErr)
		}
	}
}

func isNotFound(err error) bool {
	for _, target := range []error{
		repository.ErrUserNotFound,
		repository.ErrMovieNotFound,
		repository.ErrTheaterNotFound,
		repository.ErrSessionNotFound,
		repository.ErrReservationNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
