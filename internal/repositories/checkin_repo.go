package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travelconnec/backend/internal/models"
)

type CheckInRepo struct {
	pool *pgxpool.Pool
}

func NewCheckInRepo(pool *pgxpool.Pool) *CheckInRepo {
	return &CheckInRepo{pool: pool}
}

func (r *CheckInRepo) Create(ctx context.Context, c *models.CheckIn) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO check_ins (booking_id, actor_user_id, method, checked_in_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.BookingID, c.ActorUserID, c.Method, c.CheckedInAt).Scan(&c.ID)
}

func (r *CheckInRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.CheckIn, error) {
	var c models.CheckIn
	err := r.pool.QueryRow(ctx, `
		SELECT id, booking_id, actor_user_id, method, checked_in_at
		FROM check_ins WHERE booking_id = $1
	`, bookingID).Scan(&c.ID, &c.BookingID, &c.ActorUserID, &c.Method, &c.CheckedInAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
