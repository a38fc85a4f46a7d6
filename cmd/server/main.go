package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/gymadmin/backoffice/internal/config"
	"github.com/gymadmin/backoffice/internal/database"
	"github.com/gymadmin/backoffice/internal/handler"
	"github.com/gymadmin/backoffice/internal/middleware"
	"github.com/gymadmin/backoffice/internal/queue"
	"github.com/gymadmin/backoffice/internal/repository"
	"github.com/gymadmin/backoffice/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	// Redis is optional: a nil client disables the response cache and the
	// rate limiter fails open.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	plans := repository.NewPlanRepo(db)
	classes := repository.NewClassRepo(db)
	bookings := repository.NewBookingRepo(db)
	cash := repository.NewCashRepo(db)
	accesses := repository.NewAccessRepo(db)
	stock := repository.NewStockRepo(db)
	routines := repository.NewRoutineRepo(db)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users),
		Users:    handler.NewUserHandler(cfg, users),
		Classes:  handler.NewClassHandler(classes),
		Bookings: handler.NewBookingHandler(bookings),
		Plans:    handler.NewPlanHandler(plans),
		Stock:    handler.NewStockHandler(stock),
		Cash:     handler.NewCashHandler(cash),
		Access:   handler.NewAccessHandler(cfg, users, accesses),
		Routines: handler.NewRoutineHandler(routines),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	// Desk and door clients live on other origins.
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{"*"},
	}))

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.Register(e, h, cfg.JWTSecret, limiter, cache)

	// Audit consumers reconnect on their own; failures never take the API
	// down.
	go func() {
		if err := queue.StartAccessConsumer(); err != nil {
			log.Printf("access consumer stopped: %v", err)
		}
	}()
	go func() {
		if err := queue.StartPaymentConsumer(); err != nil {
			log.Printf("payment consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
