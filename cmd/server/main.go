package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/etukas/marketplace/internal/config"
	"github.com/etukas/marketplace/internal/database"
	"github.com/etukas/marketplace/internal/handler"
	"github.com/etukas/marketplace/internal/middleware"
	"github.com/etukas/marketplace/internal/queue"
	"github.com/etukas/marketplace/internal/repository"
	"github.com/etukas/marketplace/internal/router"
	"github.com/etukas/marketplace/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real envs set variables directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil when unreachable; subsystems degrade
	if rdb == nil {
		log.Printf("redis unavailable: cache, rate limiting and logout denylist disabled")
	}
	sessions := repository.NewSessionRepo(rdb)

	users := repository.NewUserRepo(db)
	listings := repository.NewListingRepo(db)
	bookings := repository.NewBookingRepo(db)
	orders := repository.NewOrderRepo(db)

	events := service.NewPublisher(cfg.AMQPURL)
	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartActivityConsumer(cfg.AMQPURL); err != nil {
				log.Printf("activity consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))
	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, sessions), cfg.JWTSecret, sessions)
	router.RegisterListings(e, handler.NewListingHandler(listings), cfg.JWTSecret, sessions, cache)
	router.RegisterTransactions(e,
		handler.NewBookingHandler(bookings, listings, events),
		handler.NewOrderHandler(orders, events),
		cfg.JWTSecret, sessions)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
