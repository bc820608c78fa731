package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travelconnec/backend/internal/models"
)

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func (r *PaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO payments (booking_id, amount, currency, platform_fee, host_amount, status, processor_payment_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.BookingID, p.Amount, p.Currency, p.PlatformFee, p.HostAmount, p.Status, p.ProcessorPaymentRef,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PaymentRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := r.pool.QueryRow(ctx, `
		SELECT id, booking_id, amount, currency, platform_fee, host_amount, status, processor_payment_ref,
		       created_at, updated_at
		FROM payments WHERE booking_id = $1
	`, bookingID).Scan(&p.ID, &p.BookingID, &p.Amount, &p.Currency, &p.PlatformFee, &p.HostAmount,
		&p.Status, &p.ProcessorPaymentRef, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkRefunded records the refund outcome. Guarded so only a payment that
// actually charged can flip to a refunded state.
func (r *PaymentRepo) MarkRefunded(ctx context.Context, bookingID uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE payments SET status = $1, updated_at = now()
		WHERE booking_id = $2 AND status IN ('succeeded', 'partially_refunded')
	`, status, bookingID)
	return err
}
