package services

import (
	"context"
	"fmt"
	"time"

	"github.com/travelconnec/backend/internal/config"
	"github.com/travelconnec/backend/internal/events"
	"github.com/travelconnec/backend/internal/models"
	"github.com/travelconnec/backend/internal/processor"
	"go.uber.org/zap"
)

// PayoutService runs the deferred money movement: due payout transfers plus
// the reconciliation sweeps that cover gaps left by best-effort steps in the
// settlement path.
type PayoutService struct {
	payouts   PayoutStore
	bookings  BookingStore
	payments  PaymentStore
	users     UserStore
	proc      processor.PaymentProcessor
	publisher events.Publisher
	audit     AuditStore
	cfg       *config.Config
	log       *zap.Logger
	now       func() time.Time
}

func NewPayoutService(
	payouts PayoutStore,
	bookings BookingStore,
	payments PaymentStore,
	users UserStore,
	proc processor.PaymentProcessor,
	publisher events.Publisher,
	audit AuditStore,
	cfg *config.Config,
	log *zap.Logger,
) *PayoutService {
	return &PayoutService{
		payouts:   payouts,
		bookings:  bookings,
		payments:  payments,
		users:     users,
		proc:      proc,
		publisher: publisher,
		audit:     audit,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// ProcessDue transfers each due payout to the host's connected account. A
// payout settles exactly once: the guarded status writes make a second pass
// over the same row a no-op.
func (s *PayoutService) ProcessDue(ctx context.Context) error {
	due, err := s.payouts.GetDue(ctx, 50)
	if err != nil {
		return fmt.Errorf("load due payouts: %w", err)
	}

	for _, p := range due {
		accountRef, err := s.users.GetProcessorAccountRef(ctx, p.HostUserID)
		if err != nil {
			s.log.Error("failed to load host payout account", zap.String("payout_id", p.ID.String()), zap.Error(err))
			continue
		}
		if accountRef == "" {
			s.failPayout(ctx, p, "host has no connected payout account")
			continue
		}

		transfer, err := s.proc.CreateTransfer(ctx, accountRef, p.Amount, p.Currency,
			fmt.Sprintf("booking %s host payout", p.BookingID))
		if err != nil {
			s.failPayout(ctx, p, err.Error())
			continue
		}

		if _, err := s.payouts.MarkPaid(ctx, p.ID, transfer.ID); err != nil {
			s.log.Error("failed to mark payout paid", zap.String("payout_id", p.ID.String()), zap.Error(err))
			continue
		}

		s.log.Info("payout paid",
			zap.String("payout_id", p.ID.String()),
			zap.String("booking_id", p.BookingID.String()),
			zap.Int64("amount", p.Amount),
		)
		_ = s.publisher.Publish(ctx, events.StreamNotify, events.Event{
			Type: events.EventPayoutPaid,
			Payload: map[string]any{
				"booking_id":   p.BookingID.String(),
				"host_user_id": p.HostUserID.String(),
				"amount":       p.Amount,
				"currency":     p.Currency,
			},
		})
	}
	return nil
}

func (s *PayoutService) failPayout(ctx context.Context, p models.Payout, reason string) {
	if _, err := s.payouts.MarkFailed(ctx, p.ID, reason); err != nil {
		s.log.Error("failed to mark payout failed", zap.String("payout_id", p.ID.String()), zap.Error(err))
		return
	}
	s.log.Warn("payout failed",
		zap.String("payout_id", p.ID.String()),
		zap.String("booking_id", p.BookingID.String()),
		zap.String("reason", reason),
	)
	_ = s.publisher.Publish(ctx, events.StreamNotify, events.Event{
		Type: events.EventPayoutFailed,
		Payload: map[string]any{
			"booking_id":   p.BookingID.String(),
			"host_user_id": p.HostUserID.String(),
			"reason":       reason,
		},
	})
}

// RetryPendingRefunds re-runs refunds for cancelled bookings whose refund
// never reached the processor. The cancellation itself committed long ago;
// this closes the money loop.
func (s *PayoutService) RetryPendingRefunds(ctx context.Context) error {
	bookings, err := s.bookings.GetCancelledWithPendingRefund(ctx, 50)
	if err != nil {
		return fmt.Errorf("load pending refunds: %w", err)
	}

	for _, b := range bookings {
		details, err := s.bookings.GetDetails(ctx, b.ID)
		if err != nil || details.Payment == nil {
			continue
		}

		reason := ""
		if b.CancellationReason != nil {
			reason = *b.CancellationReason
		}
		refund, err := s.proc.ProcessRefund(ctx, details.Payment.ProcessorPaymentRef, b.RefundedAmount, reason)
		if err != nil {
			s.log.Warn("refund retry failed",
				zap.String("booking_id", b.ID.String()),
				zap.Error(err),
			)
			continue
		}

		status := models.PaymentStatusPartiallyRefunded
		if b.RefundedAmount == details.Payment.Amount {
			status = models.PaymentStatusRefunded
		}
		if err := s.payments.MarkRefunded(ctx, b.ID, status); err != nil {
			s.log.Error("failed to update payment after refund retry",
				zap.String("booking_id", b.ID.String()),
				zap.Error(err),
			)
			continue
		}

		s.log.Info("refund retried successfully",
			zap.String("booking_id", b.ID.String()),
			zap.String("refund_id", refund.ID),
			zap.Int64("amount", b.RefundedAmount),
		)
		_ = s.audit.Log(ctx, models.AuditLog{
			ActorType:  "worker",
			Action:     "refund_retried",
			EntityType: "booking",
			EntityID:   &b.ID,
			Meta:       map[string]any{"refund_id": refund.ID, "amount": b.RefundedAmount},
		})
	}
	return nil
}

// ReconcileMissingPayouts creates payout rows for checked-in bookings where
// the best-effort creation at check-in time never happened.
func (s *PayoutService) ReconcileMissingPayouts(ctx context.Context) error {
	bookings, err := s.bookings.GetCompletedWithoutPayout(ctx, 50)
	if err != nil {
		return fmt.Errorf("load bookings missing payouts: %w", err)
	}

	for _, b := range bookings {
		details, err := s.bookings.GetDetails(ctx, b.ID)
		if err != nil || details.Payment == nil {
			continue
		}

		payout := &models.Payout{
			BookingID:   b.ID,
			HostUserID:  b.HostUserID,
			Amount:      details.Payment.HostAmount,
			Currency:    details.Payment.Currency,
			Status:      models.PayoutStatusPending,
			ScheduledAt: s.now().Add(s.cfg.PayoutDelay),
		}
		if err := s.payouts.Create(ctx, payout); err != nil {
			s.log.Error("payout reconciliation failed",
				zap.String("booking_id", b.ID.String()),
				zap.Error(err),
			)
			continue
		}

		s.log.Info("missing payout reconciled",
			zap.String("booking_id", b.ID.String()),
			zap.String("payout_id", payout.ID.String()),
		)
		_ = s.audit.Log(ctx, models.AuditLog{
			ActorType:  "worker",
			Action:     "payout_reconciled",
			EntityType: "booking",
			EntityID:   &b.ID,
			Meta:       map[string]any{"payout_id": payout.ID.String(), "amount": payout.Amount},
		})
	}
	return nil
}
