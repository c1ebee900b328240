package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/booking"
	"github.com/iliyamo/train-station-reservation/internal/config"
	"github.com/iliyamo/train-station-reservation/internal/database"
	"github.com/iliyamo/train-station-reservation/internal/handler"
	"github.com/iliyamo/train-station-reservation/internal/middleware"
	"github.com/iliyamo/train-station-reservation/internal/queue"
	"github.com/iliyamo/train-station-reservation/internal/repository"
	"github.com/iliyamo/train-station-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("ensure schema: %v", err)
	}
	cancel()

	// Redis is optional; a nil client turns the cache and the rate
	// limiter into pass-through middleware.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	// The consumer keeps its own reconnect loop, so a missing broker
	// only costs log noise.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	stations := repository.NewStationRepo(db)
	routes := repository.NewRouteRepo(db)
	trainTypes := repository.NewTrainTypeRepo(db)
	trains := repository.NewTrainRepo(db)
	crew := repository.NewCrewRepo(db)
	trips := repository.NewTripRepo(db)
	orders := repository.NewOrderRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	engine := booking.NewEngine(trips, orders)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Stations: handler.NewStationHandler(stations),
		Routes:   handler.NewRouteHandler(routes),
		Trains:   handler.NewTrainHandler(trainTypes, trains),
		Crew:     handler.NewCrewHandler(crew),
		Trips:    handler.NewTripHandler(trips, routes, trains, crew),
		Orders:   handler.NewOrderHandler(engine, orders),
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAPI(e, h, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
