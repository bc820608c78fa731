package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/travelconnec/backend/internal/models"
	"go.uber.org/zap"
)

// RefundCalculation is the monetary split for cancelling a booking at a given
// moment. RefundableAmount is what the guest actually gets back: the platform
// fee is never refunded, even under a 100% policy.
type RefundCalculation struct {
	BookingID        uuid.UUID                 `json:"booking_id"`
	OriginalAmount   int64                     `json:"original_amount"`
	RefundPercentage int                       `json:"refund_percentage"`
	RefundAmount     int64                     `json:"refund_amount"`
	PlatformFee      int64                     `json:"platform_fee"`
	HostAmount       int64                     `json:"host_amount"`
	RefundableAmount int64                     `json:"refundable_amount"`
	Currency         string                    `json:"currency"`
	DaysUntilCheckIn int                       `json:"days_until_check_in"`
	Policy           models.CancellationPolicy `json:"policy"`
}

type RefundCalculator struct {
	bookings BookingStore
	log      *zap.Logger
}

func NewRefundCalculator(bookings BookingStore, log *zap.Logger) *RefundCalculator {
	return &RefundCalculator{bookings: bookings, log: log}
}

// Calculate computes the refund split for a booking as of the given time.
// Zero asOf means now. Read-only. Fails with ErrBookingNotFound when the
// booking or its payment record is missing.
func (c *RefundCalculator) Calculate(ctx context.Context, bookingID uuid.UUID, asOf time.Time) (*RefundCalculation, error) {
	details, err := c.bookings.GetDetails(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if details.Payment == nil {
		return nil, ErrBookingNotFound
	}
	return c.compute(details, asOf), nil
}

// compute is the pure part; it tolerates a missing payment by producing a
// zero split so the orchestrator can cancel unpaid bookings.
func (c *RefundCalculator) compute(d *models.BookingDetails, asOf time.Time) *RefundCalculation {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	days := DaysUntilCheckIn(d.CheckInDate, asOf)
	policy := models.GetCancellationPolicy(d.ListingPolicyID)
	pct := models.ResolveRefundPercentage(d.ListingPolicyID, days)

	calc := &RefundCalculation{
		BookingID:        d.ID,
		RefundPercentage: pct,
		DaysUntilCheckIn: days,
		Policy:           policy,
	}

	if d.Payment == nil {
		return calc
	}

	p := d.Payment
	calc.OriginalAmount = p.Amount
	calc.PlatformFee = p.PlatformFee
	calc.HostAmount = p.HostAmount
	calc.Currency = p.Currency
	calc.RefundAmount = roundPercentage(p.Amount, pct)
	calc.RefundableAmount = min(calc.RefundAmount, p.Amount-p.PlatformFee)
	return calc
}

// DaysUntilCheckIn is ceil((checkIn - asOf) / 24h). Negative once check-in
// has passed.
func DaysUntilCheckIn(checkIn, asOf time.Time) int {
	diff := checkIn.Sub(asOf)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// roundPercentage rounds half-up in minor units.
func roundPercentage(amount int64, pct int) int64 {
	return (amount*int64(pct) + 50) / 100
}
