package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ephremt/travelbook/api"
	"github.com/ephremt/travelbook/config"
	"github.com/ephremt/travelbook/internal/bootstrap"
	"github.com/ephremt/travelbook/internal/cache"
	"github.com/ephremt/travelbook/internal/chapa"
	"github.com/ephremt/travelbook/internal/email"
	"github.com/ephremt/travelbook/internal/kafka"
	"github.com/ephremt/travelbook/internal/notify"
	"github.com/ephremt/travelbook/internal/repository"
	"github.com/ephremt/travelbook/internal/service/booking"
	"github.com/ephremt/travelbook/internal/service/listing"
	"github.com/ephremt/travelbook/internal/service/payment"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Payment.ListingsCacheTTLSeconds)*time.Second)
	emailSender := email.NewSender(cfg.Email)

	var dispatcher notify.Dispatcher
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.NotificationsTopic != "" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		dispatcher = notify.NewQueueDispatcher(producer, cfg.Kafka.NotificationsTopic, emailSender)
	} else {
		dispatcher = notify.NewSyncDispatcher(emailSender)
	}

	listingRepo := repository.NewListingRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	gateway := chapa.NewClient(cfg.Chapa)

	listingService := listing.NewListingService(listingRepo, redisCache)
	bookingService := booking.NewBookingService(bookingRepo, listingRepo)
	paymentService := payment.NewPaymentService(
		paymentRepo,
		bookingRepo,
		listingRepo,
		gateway,
		dispatcher,
		cfg.Payment.DefaultCurrency,
		payment.WithRegenerateStaleReference(cfg.Payment.RegenerateStaleReference),
	)

	router := api.NewRouter(
		api.NewListingHandler(listingService),
		api.NewBookingHandler(bookingService, paymentService),
		api.NewPaymentHandler(paymentService),
	)

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
