package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/travelconnec/backend/internal/config"
	"github.com/travelconnec/backend/internal/db"
	"github.com/travelconnec/backend/internal/events"
	"github.com/travelconnec/backend/internal/processor"
	"github.com/travelconnec/backend/internal/repositories"
	"github.com/travelconnec/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repos
	bookingRepo := repositories.NewBookingRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)
	payoutRepo := repositories.NewPayoutRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Services
	publisher := events.NewRedisPublisher(rdb, log)
	proc := processor.FromConfig(cfg.ProcessorBaseURL, cfg.ProcessorSecretKey, cfg.ProcessorTimeout, log)
	payoutService := services.NewPayoutService(payoutRepo, bookingRepo, paymentRepo, userRepo, proc, publisher, auditRepo, cfg, log)

	log.Info("worker started")

	// Run jobs on tickers
	payoutTicker := time.NewTicker(1 * time.Minute)
	refundTicker := time.NewTicker(5 * time.Minute)
	reconcileTicker := time.NewTicker(10 * time.Minute)
	defer payoutTicker.Stop()
	defer refundTicker.Stop()
	defer reconcileTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-payoutTicker.C:
			if err := payoutService.ProcessDue(ctx); err != nil {
				log.Error("payout processing failed", zap.Error(err))
			}
		case <-refundTicker.C:
			if err := payoutService.RetryPendingRefunds(ctx); err != nil {
				log.Error("refund retry sweep failed", zap.Error(err))
			}
		case <-reconcileTicker.C:
			if err := payoutService.ReconcileMissingPayouts(ctx); err != nil {
				log.Error("payout reconciliation failed", zap.Error(err))
			}
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}
