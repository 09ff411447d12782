package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinema-challenge/reservation-api/internal/config"
	"github.com/cinema-challenge/reservation-api/internal/repository"
	"github.com/cinema-challenge/reservation-api/internal/utils"
)

func newEchoContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func TestJWTAuthMissingToken(t *testing.T) {
	c, rec := newEchoContext(http.MethodGet, "/api/v1/reservations")
	err := JWTAuth("secret")(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not authorized, no token")
}

func TestJWTAuthBadToken(t *testing.T) {
	c, rec := newEchoContext(http.MethodGet, "/api/v1/reservations")
	c.Request().Header.Set("Authorization", "Bearer not-a-jwt")
	err := JWTAuth("secret")(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not authorized, token failed")
}

func TestJWTAuthValidTokenSetsIdentity(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 7, "admin", 15)
	require.NoError(t, err)

	c, rec := newEchoContext(http.MethodGet, "/api/v1/reservations")
	c.Request().Header.Set("Authorization", "Bearer "+tok.Token)

	var gotRole any
	next := func(c echo.Context) error {
		gotRole = c.Get("role")
		return okHandler(c)
	}
	require.NoError(t, JWTAuth("secret")(next)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", gotRole)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("secret-a", 7, "user", 15)
	require.NoError(t, err)

	c, rec := newEchoContext(http.MethodGet, "/api/v1/reservations")
	c.Request().Header.Set("Authorization", "Bearer "+tok.Token)
	require.NoError(t, JWTAuth("secret-b")(okHandler)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	t.Run("allows matching role", func(t *testing.T) {
		c, rec := newEchoContext(http.MethodPost, "/api/v1/movies")
		c.Set("role", "admin")
		require.NoError(t, RequireRole("admin")(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects other roles", func(t *testing.T) {
		c, rec := newEchoContext(http.MethodPost, "/api/v1/movies")
		c.Set("role", "user")
		require.NoError(t, RequireRole("admin")(okHandler)(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Not authorized to access this route")
	})

	t.Run("rejects missing role", func(t *testing.T) {
		c, rec := newEchoContext(http.MethodPost, "/api/v1/movies")
		require.NoError(t, RequireRole("admin")(okHandler)(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHTTPErrorHandlerStatuses(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "seats unavailable",
			err:        &repository.SeatsUnavailableError{Seats: []string{"A2", "A3"}},
			wantStatus: http.StatusBadRequest,
			wantBody:   "The following seats are not available: A2, A3",
		},
		{
			name:       "validation",
			err:        repository.NewValidationError("seats", "At least one seat is required"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "Validation failed",
		},
		{
			name:       "duplicate field",
			err:        &repository.DuplicateFieldError{Field: "email"},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Duplicate field value entered",
		},
		{
			name:       "not found",
			err:        repository.ErrSessionNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   "session not found",
		},
		{
			name:       "forbidden",
			err:        repository.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantBody:   "Not authorized to access this resource",
		},
		{
			name:       "invalid refresh",
			err:        repository.ErrInvalidRefresh,
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Invalid or expired refresh token",
		},
		{
			name:       "echo http error",
			err:        echo.NewHTTPError(http.StatusNotFound, "Not Found"),
			wantStatus: http.StatusNotFound,
			wantBody:   "Not Found",
		},
	}

	handler := NewHTTPErrorHandler("production")
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newEchoContext(http.MethodGet, "/api/v1/sessions/1")
			handler(tc.err, c)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantBody)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestHTTPErrorHandlerStack(t *testing.T) {
	boom := errors.New("boom")

	c, rec := newEchoContext(http.MethodGet, "/api/v1/sessions")
	NewHTTPErrorHandler("development")(boom, c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "stack")

	c, rec = newEchoContext(http.MethodGet, "/api/v1/sessions")
	NewHTTPErrorHandler("production")(boom, c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "stack")
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	body := []byte(`{"success":true,"data":[]}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{1, 2, 3})
	assert.False(t, ok)

	// header length pointing past the end of the buffer
	payload, err := encodePayload(http.StatusOK, http.Header{}, nil)
	require.NoError(t, err)
	payload[7] = 0xFF
	_, _, _, ok = decodePayload(payload)
	assert.False(t, ok)
}

func TestCacheKeyStrategies(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	c1, _ := newEchoContext(http.MethodGet, "/api/v1/movies?genre=drama")
	c1.SetPath("/api/v1/movies")
	c2, _ := newEchoContext(http.MethodGet, "/api/v1/movies?genre=action")
	c2.SetPath("/api/v1/movies")

	assert.NotEqual(t, cacheKey(cfg, c1), cacheKey(cfg, c2))

	cfg.KeyStrategy = "route"
	assert.Equal(t, cacheKey(cfg, c1), cacheKey(cfg, c2))
}

func TestRateKeyStrategies(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}

	c, _ := newEchoContext(http.MethodGet, "/api/v1/sessions")
	c.SetPath("/api/v1/sessions")
	c.Set("user_id", float64(42))

	assert.Equal(t, "rl:user:42:route:GET /api/v1/sessions", rateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Contains(t, rateKey(cfg, c), "rl:ip:")
}

func TestCurrentUserIDFallsBackToAnon(t *testing.T) {
	c, _ := newEchoContext(http.MethodGet, "/")
	assert.Equal(t, "anon", currentUserID(c))

	c.Set("user_id", "12")
	assert.Equal(t, "12", currentUserID(c))
}
