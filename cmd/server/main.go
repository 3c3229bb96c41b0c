package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Goatt69/cardholder-api/internal/config"
	"github.com/Goatt69/cardholder-api/internal/database"
	"github.com/Goatt69/cardholder-api/internal/handler"
	"github.com/Goatt69/cardholder-api/internal/middleware"
	"github.com/Goatt69/cardholder-api/internal/repository"
	"github.com/Goatt69/cardholder-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Database
	db, err := database.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	cardRepo := repository.NewCardRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	listingRepo := repository.NewListingRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	tradeRepo := repository.NewTradeRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, sessionRepo, cfg.JWTSecret, cfg.BcryptCost)
	collectionSvc := service.NewCollectionService(holdingRepo, cardRepo)
	listingSvc := service.NewListingService(holdingRepo, listingRepo, cardRepo)
	tradeSvc := service.NewTradeService(holdingRepo, listingRepo, offerRepo, tradeRepo)

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// Health
	healthH := handler.NewHealthHandler(db)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	// API v1
	v1 := app.Group("/api/v1")

	// Auth (public)
	authH := handler.NewAuthHandler(authSvc)
	auth := v1.Group("/auth")
	auth.Post("/register", middleware.RateLimit(5, time.Minute), authH.Register)
	auth.Post("/login", middleware.RateLimit(10, time.Minute), authH.Login)
	auth.Post("/refresh", middleware.RateLimit(20, time.Minute), authH.Refresh)
	auth.Post("/logout", authH.Logout)

	// Public catalog and listings
	collectionH := handler.NewCollectionHandler(collectionSvc)
	listingH := handler.NewListingHandler(listingSvc)
	tradeH := handler.NewTradeHandler(tradeSvc)
	v1.Get("/cards", collectionH.ListCards)
	v1.Get("/cards/:id", collectionH.GetCard)
	v1.Get("/listings", listingH.List)
	v1.Get("/listings/:id", listingH.GetByID)
	v1.Get("/listings/:id/offers", tradeH.ListForPost)

	// Admin moderation — registered BEFORE the protected group
	admin := v1.Group("/admin", middleware.AdminKey(cfg.AdminKey))
	adminH := handler.NewAdminHandler(listingSvc)
	admin.Put("/listings/:id/status", adminH.ChangeListingStatus)

	// JWT-protected routes
	protected := v1.Group("", middleware.Auth(cfg.JWTSecret))
	protected.Get("/collection", collectionH.List)
	protected.Post("/collection/:cardId", collectionH.AddCard)
	protected.Post("/listings", listingH.Create)
	protected.Delete("/listings/:id", listingH.Withdraw)
	protected.Post("/listings/:id/offers", tradeH.Propose)
	protected.Put("/offers/:id/accept", tradeH.Accept)
	protected.Put("/offers/:id/reject", tradeH.Reject)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("cardholder api running")

	<-quit
	log.Info().Msg("shutting down")
	_ = app.ShutdownWithTimeout(5 * time.Second)
	log.Info().Msg("server stopped")
}
