package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travelconnec/backend/internal/models"
)

type EscrowRepo struct {
	pool *pgxpool.Pool
}

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

func (r *EscrowRepo) Create(ctx context.Context, e *models.Escrow) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO escrows (booking_id, status, held_amount, released_amount, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, e.BookingID, e.Status, e.HeldAmount, e.ReleasedAmount, e.Currency).Scan(&e.ID, &e.CreatedAt)
}

func (r *EscrowRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error) {
	var e models.Escrow
	err := r.pool.QueryRow(ctx, `
		SELECT id, booking_id, status, held_amount, released_amount, currency, release_date, release_reason, created_at
		FROM escrows WHERE id = $1
	`, id).Scan(&e.ID, &e.BookingID, &e.Status, &e.HeldAmount, &e.ReleasedAmount, &e.Currency,
		&e.ReleaseDate, &e.ReleaseReason, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EscrowRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Escrow, error) {
	var e models.Escrow
	err := r.pool.QueryRow(ctx, `
		SELECT id, booking_id, status, held_amount, released_amount, currency, release_date, release_reason, created_at
		FROM escrows WHERE booking_id = $1
	`, bookingID).Scan(&e.ID, &e.BookingID, &e.Status, &e.HeldAmount, &e.ReleasedAmount, &e.Currency,
		&e.ReleaseDate, &e.ReleaseReason, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Release moves a held escrow to released in full. The status predicate makes
// the call idempotent: releasing an already-released escrow updates zero rows
// and leaves released_amount untouched. Returns whether this call released it.
func (r *EscrowRepo) Release(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows
		SET status = 'released', released_amount = held_amount, release_date = now(), release_reason = $1
		WHERE id = $2 AND status = 'held'
	`, reason, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EscrowRepo) MarkDisputed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE escrows SET status = 'disputed' WHERE id = $1 AND status = 'held'
	`, id)
	return err
}
