package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travelconnec/backend/internal/models"
)

// Narrow persistence interfaces consumed by the services. The concrete
// implementations live in internal/repositories; tests substitute fakes.

type BookingStore interface {
	GetDetails(ctx context.Context, id uuid.UUID) (*models.BookingDetails, error)
	MarkCancelled(ctx context.Context, id uuid.UUID, reason, cancelledBy string, refundedAmount int64, at time.Time) (bool, error)
	MarkCompleted(ctx context.Context, id, checkInID uuid.UUID) (bool, error)
	GetCancelledWithPendingRefund(ctx context.Context, limit int) ([]models.Booking, error)
	GetCompletedWithoutPayout(ctx context.Context, limit int) ([]models.Booking, error)
}

type PaymentStore interface {
	MarkRefunded(ctx context.Context, bookingID uuid.UUID, status string) error
}

type EscrowStore interface {
	Release(ctx context.Context, id uuid.UUID, reason string) (bool, error)
}

type PayoutStore interface {
	Create(ctx context.Context, p *models.Payout) error
	GetDue(ctx context.Context, limit int) ([]models.Payout, error)
	MarkPaid(ctx context.Context, id uuid.UUID, transferRef string) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error)
}

type CheckInStore interface {
	Create(ctx context.Context, c *models.CheckIn) error
}

type AuditStore interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

type UserStore interface {
	GetProcessorAccountRef(ctx context.Context, id uuid.UUID) (string, error)
}
