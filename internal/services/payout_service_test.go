package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/travelconnec/backend/internal/config"
	"github.com/travelconnec/backend/internal/models"
	"go.uber.org/zap"
)

type payoutFixture struct {
	svc      *PayoutService
	bookings *fakeBookingStore
	payments *fakePaymentStore
	payouts  *fakePayoutStore
	users    *fakeUserStore
	audit    *fakeAuditStore
	proc     *fakeProcessor
	pub      *fakePublisher
}

func newPayoutFixture(t *testing.T, now time.Time) *payoutFixture {
	t.Helper()

	bookings := newFakeBookingStore()
	payments := newFakePaymentStore()
	payouts := newFakePayoutStore()
	users := &fakeUserStore{accounts: make(map[uuid.UUID]string)}
	audit := &fakeAuditStore{}
	proc := &fakeProcessor{}
	pub := &fakePublisher{}

	cfg := &config.Config{PayoutDelay: 24 * time.Hour}
	svc := NewPayoutService(payouts, bookings, payments, users, proc, pub, audit, cfg, zap.NewNop())
	svc.now = func() time.Time { return now }

	return &payoutFixture{
		svc: svc, bookings: bookings, payments: payments, payouts: payouts,
		users: users, audit: audit, proc: proc, pub: pub,
	}
}

func duePayout(hostID uuid.UUID, amount int64) models.Payout {
	return models.Payout{
		ID:         uuid.New(),
		BookingID:  uuid.New(),
		HostUserID: hostID,
		Amount:     amount,
		Currency:   "usd",
		Status:     models.PayoutStatusPending,
	}
}

func TestProcessDueTransfersAndMarksPaid(t *testing.T) {
	now := time.Date(2026, 6, 13, 15, 0, 0, 0, time.UTC)
	f := newPayoutFixture(t, now)

	host := uuid.New()
	f.users.accounts[host] = "acct_test_1"
	p := duePayout(host, 18000)
	f.payouts.due = []models.Payout{p}

	if err := f.svc.ProcessDue(context.Background()); err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if len(f.proc.transfers) != 1 || f.proc.transfers[0] != 18000 {
		t.Errorf("transfers = %v, want [18000]", f.proc.transfers)
	}
	if got := f.payouts.paid[p.ID]; got != "tr_test_1" {
		t.Errorf("paid ref = %q, want tr_test_1", got)
	}
	if len(f.payouts.failed) != 0 {
		t.Errorf("failed payouts = %v, want none", f.payouts.failed)
	}
}

func TestProcessDueMissingAccountFails(t *testing.T) {
	now := time.Date(2026, 6, 13, 15, 0, 0, 0, time.UTC)
	f := newPayoutFixture(t, now)

	p := duePayout(uuid.New(), 18000) // host has no connected account
	f.payouts.due = []models.Payout{p}

	if err := f.svc.ProcessDue(context.Background()); err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if len(f.proc.transfers) != 0 {
		t.Error("transfer attempted without a destination account")
	}
	if reason := f.payouts.failed[p.ID]; reason == "" {
		t.Error("payout not marked failed")
	}
}

func TestProcessDueTransferFailureMarksFailed(t *testing.T) {
	now := time.Date(2026, 6, 13, 15, 0, 0, 0, time.UTC)
	f := newPayoutFixture(t, now)
	f.proc.transferErr = errProcessorDown

	host := uuid.New()
	f.users.accounts[host] = "acct_test_1"
	p := duePayout(host, 18000)
	f.payouts.due = []models.Payout{p}

	if err := f.svc.ProcessDue(context.Background()); err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if _, ok := f.payouts.paid[p.ID]; ok {
		t.Error("payout marked paid despite transfer failure")
	}
	if reason := f.payouts.failed[p.ID]; reason == "" {
		t.Error("payout not marked failed")
	}
}

func TestRetryPendingRefunds(t *testing.T) {
	now := time.Date(2026, 6, 13, 15, 0, 0, 0, time.UTC)
	f := newPayoutFixture(t, now)

	b := testBooking(models.BookingStatusConfirmed, models.PolicyFlexible, now.AddDate(0, 0, 2), 20000, 2000)
	b.Status = models.BookingStatusCancelled
	b.RefundedAmount = 18000
	f.bookings.details[b.ID] = b
	f.bookings.pendingRefunds = []models.Booking{b.Booking}

	if err := f.svc.RetryPendingRefunds(context.Background()); err != nil {
		t.Fatalf("RetryPendingRefunds: %v", err)
	}
	if len(f.proc.refunds) != 1 || f.proc.refunds[0] != 18000 {
		t.Errorf("refunds = %v, want [18000]", f.proc.refunds)
	}
	if got := f.payments.statuses[b.ID]; got != models.PaymentStatusPartiallyRefunded {
		t.Errorf("payment status = %q, want partially_refunded", got)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != "refund_retried" {
		t.Errorf("audit entries = %+v", f.audit.entries)
	}
}

func TestRetryPendingRefundsProcessorStillDown(t *testing.T) {
	now := time.Date(2026, 6, 13, 15, 0, 0, 0, time.UTC)
	f := newPayoutFixture(t, now)
	f.proc.refundErr = errProcessorDown

	b := testBooking(models.BookingStatusConfirmed, models.PolicyFlexible, now.AddDate(0, 0, 2), 20000, 2000)
	b.Status = models.BookingStatusCancelled
	b.RefundedAmount = 18000
	f.bookings.details[b.ID] = b
	f.bookings.pendingRefunds = []models.Booking{b.Booking}

	if err := f.svc.RetryPendingRefunds(context.Background()); err != nil {
		t.Fatalf("RetryPendingRefunds: %v", err)
	}
	if _, ok := f.payments.statuses[b.ID]; ok {
		t.Error("payment marked refunded while processor is down")
	}
}

func TestReconcileMissingPayouts(t *testing.T) {
	now := time.Date(2026, 6, 13, 15, 0, 0, 0, time.UTC)
	f := newPayoutFixture(t, now)

	b := testBooking(models.BookingStatusCompleted, models.PolicyFlexible, now.AddDate(0, 0, -1), 20000, 2000)
	f.bookings.details[b.ID] = b
	f.bookings.missingPayouts = []models.Booking{b.Booking}

	if err := f.svc.ReconcileMissingPayouts(context.Background()); err != nil {
		t.Fatalf("ReconcileMissingPayouts: %v", err)
	}
	if len(f.payouts.created) != 1 {
		t.Fatalf("payouts created = %d, want 1", len(f.payouts.created))
	}
	p := f.payouts.created[0]
	if p.Amount != 18000 {
		t.Errorf("payout amount = %d, want host amount 18000", p.Amount)
	}
	if !p.ScheduledAt.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("scheduled at %v, want %v", p.ScheduledAt, now.Add(24*time.Hour))
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != "payout_reconciled" {
		t.Errorf("audit entries = %+v", f.audit.entries)
	}
}
