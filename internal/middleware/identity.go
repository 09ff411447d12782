package middleware

// identity.go provides the user identity lookup shared by the rate
// limiter key builder.  When no user is authenticated the caller is
// keyed as "anon" so guests share per-IP buckets.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user's identifier from the
// context, or "anon" when the request carries no valid token.  The sub
// claim arrives as a float64 after JSON decoding, so both numeric and
// string forms are handled.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	}
	return "anon"
}
