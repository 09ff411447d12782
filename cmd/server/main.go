package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/cinema-challenge/reservation-api/internal/config"
	"github.com/cinema-challenge/reservation-api/internal/database"
	"github.com/cinema-challenge/reservation-api/internal/handler"
	"github.com/cinema-challenge/reservation-api/internal/queue"
	"github.com/cinema-challenge/reservation-api/internal/repository"
	"github.com/cinema-challenge/reservation-api/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	// nil when Redis is unreachable; cache and rate limiter degrade to no-ops
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	theaters := repository.NewTheaterRepo(db)
	sessions := repository.NewSessionRepo(db)
	seats := repository.NewSeatRepo(db)
	reservations := repository.NewReservationRepo(db)

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Movies:       handler.NewMovieHandler(movies),
		Theaters:     handler.NewTheaterHandler(theaters),
		Sessions:     handler.NewSessionHandler(sessions, seats, movies, theaters),
		Reservations: handler.NewReservationHandler(reservations, sessions, seats),
	}

	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := router.New(cfg, h, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
