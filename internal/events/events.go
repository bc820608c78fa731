package events

import "context"

// Stream names
const (
	StreamSettlement = "events:settlement"
	StreamNotify     = "events:notify"
)

// Event types
const (
	EventBookingCancelled = "booking_cancelled"
	EventRefundProcessed  = "refund_processed"
	EventCheckInCompleted = "check_in_completed"
	EventPayoutScheduled  = "payout_scheduled"
	EventPayoutPaid       = "payout_paid"
	EventPayoutFailed     = "payout_failed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
