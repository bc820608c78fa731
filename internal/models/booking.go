package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Cancellation actors
const (
	CancelledByGuest = "guest"
	CancelledByHost  = "host"
)

// Valid state transitions: from -> []to. Completed and cancelled are terminal.
var ValidBookingTransitions = map[string][]string{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted: {},
	BookingStatusCancelled: {},
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidBookingTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a booking can no longer change state.
func IsTerminalStatus(status string) bool {
	return status == BookingStatusCompleted || status == BookingStatusCancelled
}

type Booking struct {
	ID                 uuid.UUID  `json:"id"`
	GuestUserID        uuid.UUID  `json:"guest_user_id"`
	HostUserID         uuid.UUID  `json:"host_user_id"`
	ListingID          uuid.UUID  `json:"listing_id"`
	CheckInDate        time.Time  `json:"check_in_date"`
	CheckOutDate       time.Time  `json:"check_out_date"`
	Status             string     `json:"status"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CancelledBy        *string    `json:"cancelled_by,omitempty"` // guest / host
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	RefundedAmount     int64      `json:"refunded_amount"` // minor units
	EscrowID           *uuid.UUID `json:"escrow_id,omitempty"`
	CheckInID          *uuid.UUID `json:"check_in_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// BookingDetails embeds Booking and adds the joined listing and payment rows
// the settlement flow needs, avoiding N+1 queries.
type BookingDetails struct {
	Booking
	ListingTitle    string   `json:"listing_title"`
	ListingPolicyID string   `json:"listing_policy_id"`
	Payment         *Payment `json:"payment,omitempty"`
}
