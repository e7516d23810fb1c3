package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"charter-booking/internal/config"
	"charter-booking/internal/modules/allocation"
	"charter-booking/internal/modules/expiry"
	"charter-booking/internal/modules/pricing"
	"charter-booking/internal/modules/quotes"
	"charter-booking/internal/modules/reservations"
	"charter-booking/internal/notify"
	"charter-booking/pkg/email"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// The expiry worker drains due payment-window tasks from redis and expires
// the corresponding quotes. It runs as a separate process so API restarts
// never stall expiry processing and vice versa.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

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

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Unable to ping redis: %v\n", err)
	}

	emailSender, err := email.NewSESV2Sender(context.Background(), cfg.AWSRegion, cfg.FromEmail)
	if err != nil {
		log.Fatalf("Failed to initialize email sender: %v", err)
	}
	templates, err := email.NewTemplateManager()
	if err != nil {
		log.Fatalf("Failed to parse email templates: %v", err)
	}

	// The worker only calls ExpireIfLapsed, but the quote service wants its
	// full dependency set, so wire the same repositories the API uses. The
	// payment, document, and scheduling collaborators are never reached from
	// the expiry path.
	quoteService := quotes.NewService(quotes.Deps{
		Repo:        quotes.NewRepository(dbPool),
		Reservation: reservations.NewRepository(dbPool),
		Allocation:  allocation.NewRepository(dbPool),
		Conflicts:   allocation.NewDetector(allocation.NewRepository(dbPool), cfg.DraftHoldWindow),
		Pricing:     pricing.NewRepository(dbPool),
		Scheduler:   expiry.NewScheduler(redisClient, expiry.DefaultQueueKey, cfg.PaymentWindow),
		Emails:      notify.NewEmailer(dbPool, emailSender, templates, cfg.PaymentWindow),
		Notifier:    notify.NewWebhookNotifier(cfg.EventWebhookURL, logger),

		SoonStartThreshold: cfg.SoonStartThreshold,
		PaymentWindow:      cfg.PaymentWindow,
	})

	worker := expiry.NewWorker(redisClient, quoteService, logger, expiry.WorkerOptions{
		QueueKey:     expiry.DefaultQueueKey,
		PollInterval: cfg.WorkerPollInterval,
		TaskTimeout:  cfg.WorkerTaskTimeout,
		MaxAttempts:  cfg.WorkerMaxAttempts,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("expiry worker terminated")
	}
	log.Println("Worker exiting")
}
