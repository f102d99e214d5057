package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ephremt/travelbook/config"
	"github.com/ephremt/travelbook/internal/email"
	"github.com/ephremt/travelbook/internal/kafka"
	"github.com/ephremt/travelbook/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	paymentRepo := repository.NewPaymentRepository(pool)
	emailSender := email.NewSender(cfg.Email)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.PaymentEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			if event.Email == "" {
				log.Printf("skipping event for payment %s: no recipient", event.Reference)
				return nil
			}
			if err := emailSender.Send(ctx, event); err != nil {
				log.Printf("send confirmation email error: %v", err)
			}
			return nil
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	pendingTTL := time.Duration(cfg.Payment.PendingTTLMinutes) * time.Minute
	sweepInterval := time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute
	if sweepInterval <= 0 {
		sweepInterval = 15 * time.Minute
	}
	expireTicker := time.NewTicker(sweepInterval)
	defer expireTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expireTicker.C:
			if pendingTTL <= 0 {
				continue
			}
			expired, err := paymentRepo.ExpirePendingBefore(ctx, time.Now().Add(-pendingTTL))
			if err != nil {
				log.Printf("expire payments error: %v", err)
				continue
			}
			if len(expired) > 0 {
				log.Printf("expired %d stale pending payments", len(expired))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
