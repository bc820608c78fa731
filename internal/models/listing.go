package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ListingStatusActive   = "active"
	ListingStatusInactive = "inactive"
)

type Listing struct {
	ID                   uuid.UUID `json:"id"`
	HostUserID           uuid.UUID `json:"host_user_id"`
	Title                string    `json:"title"`
	Status               string    `json:"status"`
	CancellationPolicyID string    `json:"cancellation_policy_id"` // flexible / moderate / strict / no_refund
	NightlyRate          int64     `json:"nightly_rate"`
	Currency             string    `json:"currency"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
