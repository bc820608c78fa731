package models

import (
	"time"

	"github.com/google/uuid"
)

// Check-in methods
const (
	CheckInMethodHostConfirmed = "host_confirmed"
	CheckInMethodSelf          = "self"
)

type CheckIn struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	ActorUserID uuid.UUID `json:"actor_user_id"`
	Method      string    `json:"method"`
	CheckedInAt time.Time `json:"checked_in_at"`
}
