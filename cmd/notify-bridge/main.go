package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/travelconnec/backend/internal/config"
	"github.com/travelconnec/backend/internal/db"
	"github.com/travelconnec/backend/internal/events"
	"github.com/travelconnec/backend/internal/notify"
	"go.uber.org/zap"
)

// Notify bridge: subscribes to settlement notification events and forwards
// them to the push gateway. Keeping delivery out of the API process means a
// slow or down gateway can never stall a cancellation or check-in.

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	subscriber := events.NewRedisSubscriber(rdb, log)
	push := notify.NewPushClient(cfg.PushGatewayURL, log)

	log.Info("notify-bridge started")

	_ = subscriber.Subscribe(ctx, events.StreamNotify, func(event events.Event) {
		log.Info("forwarding notification", zap.String("type", event.Type))
		forward(ctx, push, event, log)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down notify-bridge")
	cancel()
}

// forward fans an event out to the users it concerns. Message copy lives here
// rather than in the settlement path.
func forward(ctx context.Context, push *notify.PushClient, event events.Event, log *zap.Logger) {
	type target struct {
		key   string
		title string
		body  string
	}

	var targets []target
	switch event.Type {
	case events.EventBookingCancelled:
		targets = []target{
			{"guest_user_id", "Booking cancelled", "Your booking has been cancelled."},
			{"host_user_id", "Booking cancelled", "A booking for your listing has been cancelled."},
		}
	case events.EventRefundProcessed:
		targets = []target{
			{"guest_user_id", "Refund on its way", refundBody(event.Payload)},
		}
	case events.EventPayoutPaid:
		targets = []target{
			{"host_user_id", "Payout sent", "Your payout has been transferred to your account."},
		}
	case events.EventPayoutFailed:
		targets = []target{
			{"host_user_id", "Payout failed", "We could not transfer your payout. Check your payout account settings."},
		}
	default:
		return
	}

	for _, t := range targets {
		raw, ok := event.Payload[t.key].(string)
		if !ok {
			continue
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		if err := push.Send(ctx, userID, t.title, t.body, event.Payload); err != nil {
			log.Warn("notification delivery failed",
				zap.String("type", event.Type),
				zap.String("user_id", raw),
				zap.Error(err),
			)
		}
	}
}

func refundBody(payload map[string]any) string {
	amount, ok := payload["refund_amount"].(float64)
	if !ok {
		if a, ok2 := payload["amount"].(float64); ok2 {
			amount = a
		} else {
			return "Your refund is being processed."
		}
	}
	currency, _ := payload["currency"].(string)
	return fmt.Sprintf("A refund of %.2f %s is being processed to your original payment method.", amount/100, currency)
}
