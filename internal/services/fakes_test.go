package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/travelconnec/backend/internal/events"
	"github.com/travelconnec/backend/internal/models"
	"github.com/travelconnec/backend/internal/processor"
)

// In-memory fakes for the store interfaces.

type fakeBookingStore struct {
	details          map[uuid.UUID]*models.BookingDetails
	markCancelledErr error
	cancelCalls      int
	completeCalls    int
	pendingRefunds   []models.Booking
	missingPayouts   []models.Booking
}

func newFakeBookingStore(ds ...*models.BookingDetails) *fakeBookingStore {
	s := &fakeBookingStore{details: make(map[uuid.UUID]*models.BookingDetails)}
	for _, d := range ds {
		s.details[d.ID] = d
	}
	return s
}

func (s *fakeBookingStore) GetDetails(_ context.Context, id uuid.UUID) (*models.BookingDetails, error) {
	d, ok := s.details[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (s *fakeBookingStore) MarkCancelled(_ context.Context, id uuid.UUID, reason, cancelledBy string, refundedAmount int64, at time.Time) (bool, error) {
	if s.markCancelledErr != nil {
		return false, s.markCancelledErr
	}
	d, ok := s.details[id]
	if !ok {
		return false, nil
	}
	if d.Status != models.BookingStatusPending && d.Status != models.BookingStatusConfirmed {
		return false, nil
	}
	s.cancelCalls++
	d.Status = models.BookingStatusCancelled
	d.CancellationReason = &reason
	d.CancelledBy = &cancelledBy
	d.CancelledAt = &at
	d.RefundedAmount = refundedAmount
	return true, nil
}

func (s *fakeBookingStore) MarkCompleted(_ context.Context, id, checkInID uuid.UUID) (bool, error) {
	d, ok := s.details[id]
	if !ok || d.Status != models.BookingStatusConfirmed {
		return false, nil
	}
	s.completeCalls++
	d.Status = models.BookingStatusCompleted
	d.CheckInID = &checkInID
	return true, nil
}

func (s *fakeBookingStore) GetCancelledWithPendingRefund(_ context.Context, _ int) ([]models.Booking, error) {
	return s.pendingRefunds, nil
}

func (s *fakeBookingStore) GetCompletedWithoutPayout(_ context.Context, _ int) ([]models.Booking, error) {
	return s.missingPayouts, nil
}

type fakePaymentStore struct {
	statuses map[uuid.UUID]string
	err      error
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{statuses: make(map[uuid.UUID]string)}
}

func (s *fakePaymentStore) MarkRefunded(_ context.Context, bookingID uuid.UUID, status string) error {
	if s.err != nil {
		return s.err
	}
	s.statuses[bookingID] = status
	return nil
}

type fakeEscrowStore struct {
	status   map[uuid.UUID]string
	releases int
	err      error
}

func newFakeEscrowStore(held ...uuid.UUID) *fakeEscrowStore {
	s := &fakeEscrowStore{status: make(map[uuid.UUID]string)}
	for _, id := range held {
		s.status[id] = models.EscrowStatusHeld
	}
	return s
}

func (s *fakeEscrowStore) Release(_ context.Context, id uuid.UUID, _ string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.status[id] != models.EscrowStatusHeld {
		return false, nil
	}
	s.status[id] = models.EscrowStatusReleased
	s.releases++
	return true, nil
}

type fakePayoutStore struct {
	created   []*models.Payout
	createErr error
	due       []models.Payout
	paid      map[uuid.UUID]string
	failed    map[uuid.UUID]string
}

func newFakePayoutStore() *fakePayoutStore {
	return &fakePayoutStore{
		paid:   make(map[uuid.UUID]string),
		failed: make(map[uuid.UUID]string),
	}
}

func (s *fakePayoutStore) Create(_ context.Context, p *models.Payout) error {
	if s.createErr != nil {
		return s.createErr
	}
	p.ID = uuid.New()
	s.created = append(s.created, p)
	return nil
}

func (s *fakePayoutStore) GetDue(_ context.Context, _ int) ([]models.Payout, error) {
	return s.due, nil
}

func (s *fakePayoutStore) MarkPaid(_ context.Context, id uuid.UUID, ref string) (bool, error) {
	s.paid[id] = ref
	return true, nil
}

func (s *fakePayoutStore) MarkFailed(_ context.Context, id uuid.UUID, reason string) (bool, error) {
	s.failed[id] = reason
	return true, nil
}

type fakeCheckInStore struct {
	created []*models.CheckIn
	err     error
}

func (s *fakeCheckInStore) Create(_ context.Context, c *models.CheckIn) error {
	if s.err != nil {
		return s.err
	}
	c.ID = uuid.New()
	s.created = append(s.created, c)
	return nil
}

type fakeAuditStore struct {
	entries []models.AuditLog
}

func (s *fakeAuditStore) Log(_ context.Context, entry models.AuditLog) error {
	s.entries = append(s.entries, entry)
	return nil
}

type fakeUserStore struct {
	accounts map[uuid.UUID]string
}

func (s *fakeUserStore) GetProcessorAccountRef(_ context.Context, id uuid.UUID) (string, error) {
	return s.accounts[id], nil
}

type fakePublisher struct {
	published []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, _ string, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

type fakeProcessor struct {
	refundErr   error
	transferErr error
	refunds     []int64
	transfers   []int64
}

func (p *fakeProcessor) ProcessRefund(_ context.Context, _ string, amount int64, _ string) (*processor.RefundResult, error) {
	if p.refundErr != nil {
		return nil, p.refundErr
	}
	p.refunds = append(p.refunds, amount)
	return &processor.RefundResult{ID: "re_test_1", Status: "succeeded"}, nil
}

func (p *fakeProcessor) CreateTransfer(_ context.Context, _ string, amount int64, _, _ string) (*processor.TransferResult, error) {
	if p.transferErr != nil {
		return nil, p.transferErr
	}
	p.transfers = append(p.transfers, amount)
	return &processor.TransferResult{ID: "tr_test_1", Status: "paid"}, nil
}

var errProcessorDown = errors.New("processor unavailable: connection refused")
