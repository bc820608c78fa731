package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PayoutStatusPending = "pending"
	PayoutStatusPaid    = "paid"
	PayoutStatusFailed  = "failed"
)

// Payout is a scheduled transfer of host earnings. ScheduledAt is always in
// the future at creation time; the worker picks payouts up once due. A payout
// moves to paid or failed exactly once.
type Payout struct {
	ID                   uuid.UUID  `json:"id"`
	BookingID            uuid.UUID  `json:"booking_id"`
	HostUserID           uuid.UUID  `json:"host_user_id"`
	Amount               int64      `json:"amount"` // minor units
	Currency             string     `json:"currency"`
	Status               string     `json:"status"`
	ScheduledAt          time.Time  `json:"scheduled_at"`
	PaidAt               *time.Time `json:"paid_at,omitempty"`
	ProcessorTransferRef *string    `json:"processor_transfer_ref,omitempty"`
	FailureReason        *string    `json:"failure_reason,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}
