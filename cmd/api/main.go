package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"charter-booking/internal/api"
	"charter-booking/internal/config"
	"charter-booking/internal/modules/allocation"
	"charter-booking/internal/modules/expiry"
	"charter-booking/internal/modules/pricing"
	"charter-booking/internal/modules/quotes"
	"charter-booking/internal/modules/reservations"
	"charter-booking/internal/modules/trips"
	"charter-booking/internal/notify"
	"charter-booking/pkg/email"
	"charter-booking/pkg/payments"
	"charter-booking/pkg/pdf"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	e := echo.New()

	// 2. --- Middleware ---
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:5173", cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// 3. --- Database Connection ---
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database configuration: %v", err)
	}

	dbPool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v\n", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}
	e.Logger.Info("Successfully connected to the database!")

	// 4. --- Redis Connection ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Unable to ping redis: %v\n", err)
	}

	// 5. --- External Services ---
	emailSender, err := email.NewSESV2Sender(context.Background(), cfg.AWSRegion, cfg.FromEmail)
	if err != nil {
		log.Fatalf("Failed to initialize email sender: %v", err)
	}
	templates, err := email.NewTemplateManager()
	if err != nil {
		log.Fatalf("Failed to parse email templates: %v", err)
	}
	documentRenderer, err := pdf.NewRenderer(cfg.PDFConverterURL, cfg.PaymentWindow)
	if err != nil {
		log.Fatalf("Failed to initialize document renderer: %v", err)
	}
	stripeClient := payments.NewStripeClient(cfg.StripeAPIKey)

	// 6. --- Dependency Injection (Wiring everything up) ---
	// --- Reservations Module ---
	reservationRepo := reservations.NewRepository(dbPool)
	reservationHandler := reservations.NewHandler(reservationRepo)

	// --- Allocation Module ---
	allocationRepo := allocation.NewRepository(dbPool)
	conflictDetector := allocation.NewDetector(allocationRepo, cfg.DraftHoldWindow)

	// --- Pricing Module ---
	pricingRepo := pricing.NewRepository(dbPool)
	pricingHandler := pricing.NewHandler(pricingRepo)

	// --- Expiry Scheduling ---
	scheduler := expiry.NewScheduler(redisClient, expiry.DefaultQueueKey, cfg.PaymentWindow)

	// --- Quotes Module ---
	quoteRepo := quotes.NewRepository(dbPool)
	quoteService := quotes.NewService(quotes.Deps{
		Repo:        quoteRepo,
		Reservation: reservationRepo,
		Allocation:  allocationRepo,
		Conflicts:   conflictDetector,
		Pricing:     pricingRepo,
		Scheduler:   scheduler,
		Payments:    stripeClient,
		Documents:   documentRenderer,
		Emails:      notify.NewEmailer(dbPool, emailSender, templates, cfg.PaymentWindow),
		Notifier:    notify.NewWebhookNotifier(cfg.EventWebhookURL, logger),

		SoonStartThreshold: cfg.SoonStartThreshold,
		PaymentWindow:      cfg.PaymentWindow,
	})
	quoteHandler := quotes.NewHandler(quoteService)

	// --- Trips Module ---
	tripService := trips.NewService(quoteRepo)
	tripHandler := trips.NewHandler(tripService)

	// 7. --- Initialize Router ---
	api.SetupRoutes(e, cfg.JWTSecret,
		quoteHandler,
		tripHandler,
		reservationHandler,
		pricingHandler,
	)

	// 8. --- Start Server with graceful shutdown logic ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server an error occurred:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exiting")
}
