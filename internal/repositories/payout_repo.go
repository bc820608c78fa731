package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travelconnec/backend/internal/models"
)

type PayoutRepo struct {
	pool *pgxpool.Pool
}

func NewPayoutRepo(pool *pgxpool.Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

func (r *PayoutRepo) Create(ctx context.Context, p *models.Payout) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO payouts (booking_id, host_user_id, amount, currency, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, p.BookingID, p.HostUserID, p.Amount, p.Currency, p.Status, p.ScheduledAt).Scan(&p.ID, &p.CreatedAt)
}

func (r *PayoutRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Payout, error) {
	var p models.Payout
	err := r.pool.QueryRow(ctx, `
		SELECT id, booking_id, host_user_id, amount, currency, status, scheduled_at, paid_at,
		       processor_transfer_ref, failure_reason, created_at
		FROM payouts WHERE booking_id = $1
	`, bookingID).Scan(&p.ID, &p.BookingID, &p.HostUserID, &p.Amount, &p.Currency, &p.Status,
		&p.ScheduledAt, &p.PaidAt, &p.ProcessorTransferRef, &p.FailureReason, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetDue returns pending payouts whose scheduled time has passed.
func (r *PayoutRepo) GetDue(ctx context.Context, limit int) ([]models.Payout, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, booking_id, host_user_id, amount, currency, status, scheduled_at, paid_at,
		       processor_transfer_ref, failure_reason, created_at
		FROM payouts
		WHERE status = 'pending' AND scheduled_at <= now()
		ORDER BY scheduled_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []models.Payout
	for rows.Next() {
		var p models.Payout
		if err := rows.Scan(&p.ID, &p.BookingID, &p.HostUserID, &p.Amount, &p.Currency, &p.Status,
			&p.ScheduledAt, &p.PaidAt, &p.ProcessorTransferRef, &p.FailureReason, &p.CreatedAt); err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, nil
}

// MarkPaid transitions pending -> paid. Guarded so a payout settles exactly
// once even when two worker passes race.
func (r *PayoutRepo) MarkPaid(ctx context.Context, id uuid.UUID, transferRef string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payouts SET status = 'paid', paid_at = now(), processor_transfer_ref = $1
		WHERE id = $2 AND status = 'pending'
	`, transferRef, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkFailed transitions pending -> failed, also exactly once.
func (r *PayoutRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payouts SET status = 'failed', failure_reason = $1
		WHERE id = $2 AND status = 'pending'
	`, reason, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
