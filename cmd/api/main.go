package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/travelconnec/backend/internal/config"
	"github.com/travelconnec/backend/internal/db"
	"github.com/travelconnec/backend/internal/events"
	apphttp "github.com/travelconnec/backend/internal/http"
	"github.com/travelconnec/backend/internal/http/handlers"
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

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	bookingRepo := repositories.NewBookingRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)
	escrowRepo := repositories.NewEscrowRepo(pool)
	payoutRepo := repositories.NewPayoutRepo(pool)
	checkInRepo := repositories.NewCheckInRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	proc := processor.FromConfig(cfg.ProcessorBaseURL, cfg.ProcessorSecretKey, cfg.ProcessorTimeout, log)
	calc := services.NewRefundCalculator(bookingRepo, log)
	settlementService := services.NewSettlementService(
		bookingRepo, paymentRepo, escrowRepo, payoutRepo, checkInRepo, auditRepo,
		calc, proc, publisher, cfg, log,
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, cfg, log)
	userHandler := handlers.NewUserHandler(userRepo, log)
	bookingHandler := handlers.NewBookingHandler(settlementService, bookingRepo, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, userHandler, bookingHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
