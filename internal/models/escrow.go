package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EscrowStatusHeld     = "held"
	EscrowStatusReleased = "released"
	EscrowStatusDisputed = "disputed"
)

// Escrow holds the host's share of a payment until release conditions are met.
// Invariant: ReleasedAmount <= HeldAmount; status becomes released only when
// the full held amount is released.
type Escrow struct {
	ID             uuid.UUID  `json:"id"`
	BookingID      uuid.UUID  `json:"booking_id"`
	Status         string     `json:"status"`
	HeldAmount     int64      `json:"held_amount"`
	ReleasedAmount int64      `json:"released_amount"`
	Currency       string     `json:"currency"`
	ReleaseDate    *time.Time `json:"release_date,omitempty"`
	ReleaseReason  *string    `json:"release_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
