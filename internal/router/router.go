// Package router wires handlers and middleware into the Echo route
// tree.  Grouping mirrors the authorization model: public catalogue
// reads, authenticated booking routes and admin-only management.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/cinema-challenge/reservation-api/internal/config"
	"github.com/cinema-challenge/reservation-api/internal/handler"
	"github.com/cinema-challenge/reservation-api/internal/middleware"
)

// Handlers bundles every handler the router needs.
type Handlers struct {
	Auth         *handler.AuthHandler
	Movies       *handler.MovieHandler
	Theaters     *handler.TheaterHandler
	Sessions     *handler.SessionHandler
	Reservations *handler.ReservationHandler
}

// New builds the Echo instance with all routes and middleware
// registered.
func New(cfg config.Config, h Handlers, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.NewHTTPErrorHandler(cfg.Env)

	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e.GET("/healthz", handler.Health)

	v1 := e.Group("/api/v1")
	v1.GET("", handler.APIIndex)

	// auth
	auth := v1.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me, middleware.JWTAuth(cfg.JWTSecret))

	// public catalogue reads, cached
	v1.GET("/movies", h.Movies.List, cache)
	v1.GET("/movies/:id", h.Movies.Get, cache)
	v1.GET("/theaters", h.Theaters.List, cache)
	v1.GET("/theaters/:id", h.Theaters.Get, cache)
	v1.GET("/sessions", h.Sessions.List, cache)
	v1.GET("/sessions/:id", h.Sessions.Get)

	// admin-only catalogue management
	admin := v1.Group("", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole("admin"))
	admin.POST("/movies", h.Movies.Create)
	admin.PUT("/movies/:id", h.Movies.Update)
	admin.DELETE("/movies/:id", h.Movies.Delete)
	admin.POST("/theaters", h.Theaters.Create)
	admin.PUT("/theaters/:id", h.Theaters.Update)
	admin.DELETE("/theaters/:id", h.Theaters.Delete)
	admin.POST("/sessions", h.Sessions.Create)
	admin.PUT("/sessions/:id", h.Sessions.Update)
	admin.DELETE("/sessions/:id", h.Sessions.Delete)
	admin.PUT("/sessions/:id/reset-seats", h.Sessions.ResetSeats)
	admin.GET("/reservations", h.Reservations.List)
	admin.PUT("/reservations/:id", h.Reservations.UpdateStatus)
	admin.DELETE("/reservations/:id", h.Reservations.Delete)

	// booking routes for any authenticated user
	user := v1.Group("", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole("user", "admin"))
	user.POST("/reservations", h.Reservations.Create)
	user.GET("/reservations/me", h.Reservations.ListMine)
	user.GET("/reservations/:id", h.Reservations.Get)
	user.PUT("/reservations/:id/cancel", h.Reservations.Cancel)

	return e
}
