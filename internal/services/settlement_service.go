package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/travelconnec/backend/internal/config"
	"github.com/travelconnec/backend/internal/events"
	"github.com/travelconnec/backend/internal/models"
	"github.com/travelconnec/backend/internal/processor"
	"github.com/travelconnec/backend/internal/rbac"
	"go.uber.org/zap"
)

// Precondition errors. Raised before any state mutation; callers must not
// retry without changing inputs.
var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrForbidden           = errors.New("not allowed to perform this action")
	ErrBookingCannotCancel = errors.New("booking can no longer be cancelled")
	ErrCheckInNotAllowed   = errors.New("booking is not eligible for check-in")
)

type CancelBookingInput struct {
	BookingID   uuid.UUID
	Reason      string
	CancelledBy string // guest / host
	ActorUserID uuid.UUID
}

// CancellationResult is the uniform outcome shape for cancellations. Success
// reflects the booking-state transition only: a failed downstream refund
// leaves Success true with RefundID unset.
type CancellationResult struct {
	Success      bool    `json:"success"`
	RefundAmount int64   `json:"refund_amount"`
	Currency     string  `json:"currency,omitempty"`
	RefundID     *string `json:"refund_id,omitempty"`
	Error        string  `json:"error,omitempty"`
}

type CheckInResult struct {
	Available         bool       `json:"available"`
	Reason            string     `json:"reason,omitempty"`
	CheckInID         *uuid.UUID `json:"check_in_id,omitempty"`
	PayoutScheduledAt *time.Time `json:"payout_scheduled_at,omitempty"`
	Message           string     `json:"message,omitempty"`
}

type CheckInAvailability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// SettlementService is the only component that mutates booking, payment,
// escrow and payout state.
type SettlementService struct {
	bookings  BookingStore
	payments  PaymentStore
	escrows   EscrowStore
	payouts   PayoutStore
	checkIns  CheckInStore
	audit     AuditStore
	calc      *RefundCalculator
	proc      processor.PaymentProcessor
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger
	now       func() time.Time
}

func NewSettlementService(
	bookings BookingStore,
	payments PaymentStore,
	escrows EscrowStore,
	payouts PayoutStore,
	checkIns CheckInStore,
	audit AuditStore,
	calc *RefundCalculator,
	proc processor.PaymentProcessor,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *SettlementService {
	return &SettlementService{
		bookings:  bookings,
		payments:  payments,
		escrows:   escrows,
		payouts:   payouts,
		checkIns:  checkIns,
		audit:     audit,
		calc:      calc,
		proc:      proc,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// CanCancelBooking is the pure guard the UI layer uses to decide whether to
// offer the cancel action at all.
func CanCancelBooking(b *models.Booking, userID uuid.UUID, role string) bool {
	if b == nil || models.IsTerminalStatus(b.Status) {
		return false
	}
	if !rbac.HasPermission(role, rbac.PermCancelBooking) {
		return false
	}
	switch role {
	case rbac.RoleGuest:
		return b.GuestUserID == userID
	case rbac.RoleHost:
		return b.HostUserID == userID
	}
	return false
}

// CheckInWindowOpen reports whether the check-in action is available: on or
// after the check-in date, between openHour and closeHour inclusive.
func CheckInWindowOpen(checkIn, now time.Time, openHour, closeHour int) bool {
	ny, nm, nd := now.Date()
	cy, cm, cd := checkIn.Date()
	nowDay := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	checkInDay := time.Date(cy, cm, cd, 0, 0, 0, 0, time.UTC)
	if nowDay.Before(checkInDay) {
		return false
	}
	h := now.Hour()
	return h >= openHour && h <= closeHour
}

// CancelBooking drives the cancellation state machine. Precondition
// violations (not found, forbidden, terminal state) surface as typed errors
// before anything is written. Once the guarded booking write commits, the
// cancellation stands: refund, escrow and notification failures degrade the
// result but never roll it back.
func (s *SettlementService) CancelBooking(ctx context.Context, in CancelBookingInput) (*CancellationResult, error) {
	details, err := s.bookings.GetDetails(ctx, in.BookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}

	switch in.CancelledBy {
	case models.CancelledByGuest:
		if details.GuestUserID != in.ActorUserID {
			return nil, ErrForbidden
		}
	case models.CancelledByHost:
		if details.HostUserID != in.ActorUserID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	if models.IsTerminalStatus(details.Status) {
		return nil, ErrBookingCannotCancel
	}

	now := s.now()
	calc := s.calc.compute(details, now)

	// Commit point. The status predicate in the write loses gracefully when a
	// concurrent request got there first.
	updated, err := s.bookings.MarkCancelled(ctx, details.ID, in.Reason, in.CancelledBy, calc.RefundableAmount, now)
	if err != nil {
		s.log.Error("cancellation write failed",
			zap.String("booking_id", details.ID.String()),
			zap.Error(err),
		)
		return &CancellationResult{Success: false, Error: "failed to cancel booking"}, nil
	}
	if !updated {
		return nil, ErrBookingCannotCancel
	}

	result := &CancellationResult{
		Success:      true,
		RefundAmount: calc.RefundableAmount,
		Currency:     calc.Currency,
	}

	// Refund is downstream of the committed cancellation; its failure is
	// logged and surfaced by the missing RefundID, nothing more.
	if calc.RefundableAmount > 0 && details.Payment != nil {
		refund, err := s.proc.ProcessRefund(ctx, details.Payment.ProcessorPaymentRef, calc.RefundableAmount, in.Reason)
		if err != nil {
			s.log.Error("refund processing failed, booking stays cancelled",
				zap.String("booking_id", details.ID.String()),
				zap.Int64("amount", calc.RefundableAmount),
				zap.Error(err),
			)
		} else {
			result.RefundID = &refund.ID
			status := models.PaymentStatusPartiallyRefunded
			if calc.RefundableAmount == calc.OriginalAmount {
				status = models.PaymentStatusRefunded
			}
			if err := s.payments.MarkRefunded(ctx, details.ID, status); err != nil {
				s.log.Error("failed to update payment status after refund",
					zap.String("booking_id", details.ID.String()),
					zap.Error(err),
				)
			}
		}
	}

	// Cancellation voids the escrow hold regardless of the refund outcome.
	if details.EscrowID != nil {
		if _, err := s.escrows.Release(ctx, *details.EscrowID, "booking cancelled"); err != nil {
			s.log.Error("escrow release failed",
				zap.String("booking_id", details.ID.String()),
				zap.String("escrow_id", details.EscrowID.String()),
				zap.Error(err),
			)
		}
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &in.ActorUserID,
		ActorType:   "user",
		Action:      "booking_cancelled",
		EntityType:  "booking",
		EntityID:    &details.ID,
		Meta: map[string]any{
			"cancelled_by":      in.CancelledBy,
			"reason":            in.Reason,
			"refund_amount":     calc.RefundableAmount,
			"refund_percentage": calc.RefundPercentage,
		},
	})

	s.notifyCancellation(ctx, details, calc, in.CancelledBy)

	return result, nil
}

// CompleteCheckIn confirms the guest's arrival. Outside the check-in window
// the operation is unavailable, not an error: no record is created and the
// result says so. Payout creation is best-effort; the worker reconciles gaps.
func (s *SettlementService) CompleteCheckIn(ctx context.Context, bookingID, actorUserID uuid.UUID) (*CheckInResult, error) {
	details, err := s.bookings.GetDetails(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}

	if details.HostUserID != actorUserID {
		return nil, ErrForbidden
	}

	now := s.now()
	if !CheckInWindowOpen(details.CheckInDate, now, s.cfg.CheckInOpenHour, s.cfg.CheckInCloseHour) {
		return &CheckInResult{
			Available: false,
			Reason: fmt.Sprintf("check-in opens at %02d:00 on the check-in date and closes at %02d:00",
				s.cfg.CheckInOpenHour, s.cfg.CheckInCloseHour),
		}, nil
	}

	if details.Status != models.BookingStatusConfirmed {
		return nil, ErrCheckInNotAllowed
	}

	checkIn := &models.CheckIn{
		BookingID:   details.ID,
		ActorUserID: actorUserID,
		Method:      models.CheckInMethodHostConfirmed,
		CheckedInAt: now,
	}
	if err := s.checkIns.Create(ctx, checkIn); err != nil {
		return nil, fmt.Errorf("create check-in record: %w", err)
	}

	updated, err := s.bookings.MarkCompleted(ctx, details.ID, checkIn.ID)
	if err != nil {
		return nil, fmt.Errorf("complete booking: %w", err)
	}
	if !updated {
		return nil, ErrCheckInNotAllowed
	}

	// Safe on both paths: release of an already-released escrow is a no-op.
	if details.EscrowID != nil {
		if _, err := s.escrows.Release(ctx, *details.EscrowID, "guest checked in successfully"); err != nil {
			s.log.Error("escrow release failed",
				zap.String("booking_id", details.ID.String()),
				zap.Error(err),
			)
		}
	}

	result := &CheckInResult{
		Available: true,
		CheckInID: &checkIn.ID,
	}

	delayHours := int(s.cfg.PayoutDelay.Hours())
	if details.Payment != nil {
		payout := &models.Payout{
			BookingID:   details.ID,
			HostUserID:  details.HostUserID,
			Amount:      details.Payment.HostAmount,
			Currency:    details.Payment.Currency,
			Status:      models.PayoutStatusPending,
			ScheduledAt: now.Add(s.cfg.PayoutDelay),
		}
		if err := s.payouts.Create(ctx, payout); err != nil {
			s.log.Error("payout creation failed, check-in still completes",
				zap.String("booking_id", details.ID.String()),
				zap.Error(err),
			)
		} else {
			result.PayoutScheduledAt = &payout.ScheduledAt
			_ = s.publisher.Publish(ctx, events.StreamSettlement, events.Event{
				Type: events.EventPayoutScheduled,
				Payload: map[string]any{
					"booking_id":   details.ID.String(),
					"host_user_id": details.HostUserID.String(),
					"payout_id":    payout.ID.String(),
					"amount":       payout.Amount,
					"scheduled_at": payout.ScheduledAt,
				},
			})
		}
	} else {
		s.log.Warn("booking completed without payment, no payout scheduled",
			zap.String("booking_id", details.ID.String()),
		)
	}
	result.Message = fmt.Sprintf("Check-in confirmed. Host payout will be processed in %d hours.", delayHours)

	_ = s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &actorUserID,
		ActorType:   "user",
		Action:      "check_in_completed",
		EntityType:  "booking",
		EntityID:    &details.ID,
		Meta:        map[string]any{"check_in_id": checkIn.ID.String()},
	})

	_ = s.publisher.Publish(ctx, events.StreamSettlement, events.Event{
		Type: events.EventCheckInCompleted,
		Payload: map[string]any{
			"booking_id":    details.ID.String(),
			"listing":       details.ListingTitle,
			"guest_user_id": details.GuestUserID.String(),
			"host_user_id":  details.HostUserID.String(),
		},
	})

	return result, nil
}

// CheckInAvailability is the read-only window probe the UI polls before
// showing the check-in action.
func (s *SettlementService) CheckInAvailability(ctx context.Context, bookingID uuid.UUID) (*CheckInAvailability, error) {
	details, err := s.bookings.GetDetails(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if details.Status != models.BookingStatusConfirmed {
		return &CheckInAvailability{Available: false, Reason: "booking is not confirmed"}, nil
	}
	if !CheckInWindowOpen(details.CheckInDate, s.now(), s.cfg.CheckInOpenHour, s.cfg.CheckInCloseHour) {
		return &CheckInAvailability{
			Available: false,
			Reason: fmt.Sprintf("check-in opens at %02d:00 on the check-in date and closes at %02d:00",
				s.cfg.CheckInOpenHour, s.cfg.CheckInCloseHour),
		}, nil
	}
	return &CheckInAvailability{Available: true}, nil
}

// CalculateRefund exposes the read-only refund preview.
func (s *SettlementService) CalculateRefund(ctx context.Context, bookingID uuid.UUID, asOf time.Time) (*RefundCalculation, error) {
	return s.calc.Calculate(ctx, bookingID, asOf)
}

// notifyCancellation publishes the outbound notification events. Delivery is
// the notify bridge's problem; a publish failure cannot touch the result.
func (s *SettlementService) notifyCancellation(ctx context.Context, d *models.BookingDetails, calc *RefundCalculation, cancelledBy string) {
	payload := map[string]any{
		"booking_id":    d.ID.String(),
		"listing":       d.ListingTitle,
		"guest_user_id": d.GuestUserID.String(),
		"host_user_id":  d.HostUserID.String(),
		"refund_amount": calc.RefundableAmount,
		"currency":      calc.Currency,
		"cancelled_by":  cancelledBy,
	}
	_ = s.publisher.Publish(ctx, events.StreamSettlement, events.Event{
		Type:    events.EventBookingCancelled,
		Payload: payload,
	})
	_ = s.publisher.Publish(ctx, events.StreamNotify, events.Event{
		Type:    events.EventBookingCancelled,
		Payload: payload,
	})

	if calc.RefundableAmount > 0 && cancelledBy == models.CancelledByGuest {
		_ = s.publisher.Publish(ctx, events.StreamNotify, events.Event{
			Type: events.EventRefundProcessed,
			Payload: map[string]any{
				"booking_id":    d.ID.String(),
				"listing":       d.ListingTitle,
				"guest_user_id": d.GuestUserID.String(),
				"amount":        calc.RefundableAmount,
				"currency":      calc.Currency,
			},
		})
	}
}
