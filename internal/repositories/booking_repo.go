package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travelconnec/backend/internal/models"
)

type BookingRepo struct {
	pool *pgxpool.Pool
}

func NewBookingRepo(pool *pgxpool.Pool) *BookingRepo {
	return &BookingRepo{pool: pool}
}

func (r *BookingRepo) Create(ctx context.Context, b *models.Booking) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO bookings (guest_user_id, host_user_id, listing_id, check_in_date, check_out_date, status, escrow_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, b.GuestUserID, b.HostUserID, b.ListingID, b.CheckInDate, b.CheckOutDate, b.Status, b.EscrowID,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := r.pool.QueryRow(ctx, `
		SELECT id, guest_user_id, host_user_id, listing_id, check_in_date, check_out_date, status,
		       cancellation_reason, cancelled_by, cancelled_at, refunded_amount,
		       escrow_id, check_in_id, created_at, updated_at
		FROM bookings WHERE id = $1
	`, id).Scan(&b.ID, &b.GuestUserID, &b.HostUserID, &b.ListingID, &b.CheckInDate, &b.CheckOutDate, &b.Status,
		&b.CancellationReason, &b.CancelledBy, &b.CancelledAt, &b.RefundedAmount,
		&b.EscrowID, &b.CheckInID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetDetails loads a booking with its listing and payment in one round trip.
// The payment join is LEFT so bookings that never charged still resolve.
func (r *BookingRepo) GetDetails(ctx context.Context, id uuid.UUID) (*models.BookingDetails, error) {
	var d models.BookingDetails
	var payID *uuid.UUID
	var payBookingID *uuid.UUID
	var payAmount, payFee, payHost *int64
	var payCurrency, payStatus, payRef *string
	var payCreated, payUpdated *time.Time

	err := r.pool.QueryRow(ctx, `
		SELECT b.id, b.guest_user_id, b.host_user_id, b.listing_id, b.check_in_date, b.check_out_date, b.status,
		       b.cancellation_reason, b.cancelled_by, b.cancelled_at, b.refunded_amount,
		       b.escrow_id, b.check_in_id, b.created_at, b.updated_at,
		       l.title, l.cancellation_policy_id,
		       p.id, p.booking_id, p.amount, p.currency, p.platform_fee, p.host_amount, p.status, p.processor_payment_ref,
		       p.created_at, p.updated_at
		FROM bookings b
		JOIN listings l ON l.id = b.listing_id
		LEFT JOIN payments p ON p.booking_id = b.id
		WHERE b.id = $1
	`, id).Scan(&d.ID, &d.GuestUserID, &d.HostUserID, &d.ListingID, &d.CheckInDate, &d.CheckOutDate, &d.Status,
		&d.CancellationReason, &d.CancelledBy, &d.CancelledAt, &d.RefundedAmount,
		&d.EscrowID, &d.CheckInID, &d.CreatedAt, &d.UpdatedAt,
		&d.ListingTitle, &d.ListingPolicyID,
		&payID, &payBookingID, &payAmount, &payCurrency, &payFee, &payHost, &payStatus, &payRef,
		&payCreated, &payUpdated)
	if err != nil {
		return nil, err
	}

	if payID != nil {
		d.Payment = &models.Payment{
			ID:                  *payID,
			BookingID:           *payBookingID,
			Amount:              *payAmount,
			Currency:            *payCurrency,
			PlatformFee:         *payFee,
			HostAmount:          *payHost,
			Status:              *payStatus,
			ProcessorPaymentRef: *payRef,
			CreatedAt:           *payCreated,
			UpdatedAt:           *payUpdated,
		}
	}
	return &d, nil
}

// MarkCancelled performs the guarded cancellation write. The status predicate
// makes double-cancellation under concurrent requests impossible: only one
// caller observes a row transition. Returns false when the booking was not in
// a cancellable state.
func (r *BookingRepo) MarkCancelled(ctx context.Context, id uuid.UUID, reason, cancelledBy string, refundedAmount int64, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET status = 'cancelled', cancellation_reason = $1, cancelled_by = $2, cancelled_at = $3,
		    refunded_amount = $4, updated_at = now()
		WHERE id = $5 AND status IN ('pending', 'confirmed')
	`, reason, cancelledBy, at, refundedAmount, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkCompleted attaches the check-in record and completes the booking in one
// guarded write. Only confirmed bookings can complete.
func (r *BookingRepo) MarkCompleted(ctx context.Context, id, checkInID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET status = 'completed', check_in_id = $1, updated_at = now()
		WHERE id = $2 AND status = 'confirmed'
	`, checkInID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type BookingFilter struct {
	GuestUserID *uuid.UUID
	HostUserID  *uuid.UUID
	Status      *string
	Limit       int
	Offset      int
}

func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	query := `
		SELECT id, guest_user_id, host_user_id, listing_id, check_in_date, check_out_date, status,
		       cancellation_reason, cancelled_by, cancelled_at, refunded_amount,
		       escrow_id, check_in_id, created_at, updated_at
		FROM bookings
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.GuestUserID != nil {
		where = append(where, fmt.Sprintf("guest_user_id = $%d", argIdx))
		args = append(args, *f.GuestUserID)
		argIdx++
	}
	if f.HostUserID != nil {
		where = append(where, fmt.Sprintf("host_user_id = $%d", argIdx))
		args = append(args, *f.HostUserID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.GuestUserID, &b.HostUserID, &b.ListingID, &b.CheckInDate, &b.CheckOutDate, &b.Status,
			&b.CancellationReason, &b.CancelledBy, &b.CancelledAt, &b.RefundedAmount,
			&b.EscrowID, &b.CheckInID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// GetCancelledWithPendingRefund finds cancelled bookings whose refund never
// reached the processor. The worker retries these out-of-band.
func (r *BookingRepo) GetCancelledWithPendingRefund(ctx context.Context, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.guest_user_id, b.host_user_id, b.listing_id, b.check_in_date, b.check_out_date, b.status,
		       b.cancellation_reason, b.cancelled_by, b.cancelled_at, b.refunded_amount,
		       b.escrow_id, b.check_in_id, b.created_at, b.updated_at
		FROM bookings b
		JOIN payments p ON p.booking_id = b.id
		WHERE b.status = 'cancelled' AND b.refunded_amount > 0 AND p.status = 'succeeded'
		ORDER BY b.cancelled_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.GuestUserID, &b.HostUserID, &b.ListingID, &b.CheckInDate, &b.CheckOutDate, &b.Status,
			&b.CancellationReason, &b.CancelledBy, &b.CancelledAt, &b.RefundedAmount,
			&b.EscrowID, &b.CheckInID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// GetCompletedWithoutPayout finds checked-in bookings missing their delayed
// payout record (payout creation at check-in time is best-effort).
func (r *BookingRepo) GetCompletedWithoutPayout(ctx context.Context, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.guest_user_id, b.host_user_id, b.listing_id, b.check_in_date, b.check_out_date, b.status,
		       b.cancellation_reason, b.cancelled_by, b.cancelled_at, b.refunded_amount,
		       b.escrow_id, b.check_in_id, b.created_at, b.updated_at
		FROM bookings b
		LEFT JOIN payouts po ON po.booking_id = b.id
		WHERE b.status = 'completed' AND b.check_in_id IS NOT NULL AND po.id IS NULL
		ORDER BY b.updated_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.GuestUserID, &b.HostUserID, &b.ListingID, &b.CheckInDate, &b.CheckOutDate, &b.Status,
			&b.CancellationReason, &b.CancelledBy, &b.CancelledAt, &b.RefundedAmount,
			&b.EscrowID, &b.CheckInID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}
