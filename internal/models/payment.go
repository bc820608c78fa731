package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses
const (
	PaymentStatusPending           = "pending"
	PaymentStatusSucceeded         = "succeeded"
	PaymentStatusFailed            = "failed"
	PaymentStatusRefunded          = "refunded"
	PaymentStatusPartiallyRefunded = "partially_refunded"
)

// Payment is the monetary record attached 1:1 to a booking.
// Invariant: HostAmount + PlatformFee == Amount.
type Payment struct {
	ID                  uuid.UUID `json:"id"`
	BookingID           uuid.UUID `json:"booking_id"`
	Amount              int64     `json:"amount"` // minor units
	Currency            string    `json:"currency"`
	PlatformFee         int64     `json:"platform_fee"`
	HostAmount          int64     `json:"host_amount"`
	Status              string    `json:"status"`
	ProcessorPaymentRef string    `json:"processor_payment_ref"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
