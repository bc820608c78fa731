package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/travelconnec/backend/internal/config"
	"github.com/travelconnec/backend/internal/http/handlers"
	"github.com/travelconnec/backend/internal/middleware"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	bookingHandler *handlers.BookingHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Rate-limited public endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Policies (public, static catalog)
	policyHandler := handlers.NewPolicyHandler()
	api.Get("/policies", policyHandler.ListPolicies)
	api.Get("/policies/:id", policyHandler.GetPolicy)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Post("/me/ping", userHandler.Ping)

	// Bookings
	protected.Get("/bookings", bookingHandler.ListBookings)
	protected.Get("/bookings/:id", bookingHandler.GetBooking)
	protected.Post("/bookings/:id/cancel", bookingHandler.CancelBooking)
	protected.Get("/bookings/:id/refund-preview", bookingHandler.RefundPreview)
	protected.Get("/bookings/:id/check-in/availability", bookingHandler.CheckInAvailability)
	protected.Post("/bookings/:id/check-in", bookingHandler.CompleteCheckIn)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
