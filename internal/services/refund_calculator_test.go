package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/travelconnec/backend/internal/models"
	"go.uber.org/zap"
)

func testBooking(status, policyID string, checkIn time.Time, amount, fee int64) *models.BookingDetails {
	id := uuid.New()
	escrowID := uuid.New()
	return &models.BookingDetails{
		Booking: models.Booking{
			ID:           id,
			GuestUserID:  uuid.New(),
			HostUserID:   uuid.New(),
			ListingID:    uuid.New(),
			CheckInDate:  checkIn,
			CheckOutDate: checkIn.AddDate(0, 0, 3),
			Status:       status,
			EscrowID:     &escrowID,
		},
		ListingTitle:    "Seaside loft",
		ListingPolicyID: policyID,
		Payment: &models.Payment{
			ID:                  uuid.New(),
			BookingID:           id,
			Amount:              amount,
			Currency:            "usd",
			PlatformFee:         fee,
			HostAmount:          amount - fee,
			Status:              models.PaymentStatusSucceeded,
			ProcessorPaymentRef: "pi_test_123",
		},
	}
}

func TestRefundCalculatorScenarios(t *testing.T) {
	asOf := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		policy         string
		checkIn        time.Time
		amount         int64
		fee            int64
		wantDays       int
		wantPct        int
		wantRefund     int64
		wantRefundable int64
	}{
		{
			name:           "flexible two days out gets full refund minus fee",
			policy:         models.PolicyFlexible,
			checkIn:        asOf.AddDate(0, 0, 2),
			amount:         20000,
			fee:            2000,
			wantDays:       2,
			wantPct:        100,
			wantRefund:     20000,
			wantRefundable: 18000,
		},
		{
			name:           "flexible hours before check-in still counts as one day",
			policy:         models.PolicyFlexible,
			checkIn:        asOf.Add(6 * time.Hour),
			amount:         20000,
			fee:            2000,
			wantDays:       1,
			wantPct:        100,
			wantRefund:     20000,
			wantRefundable: 18000,
		},
		{
			name:           "flexible check-in moment gets half",
			policy:         models.PolicyFlexible,
			checkIn:        asOf,
			amount:         20000,
			fee:            2000,
			wantDays:       0,
			wantPct:        50,
			wantRefund:     10000,
			wantRefundable: 10000,
		},
		{
			name:           "moderate four days out gets half",
			policy:         models.PolicyModerate,
			checkIn:        asOf.AddDate(0, 0, 4),
			amount:         50000,
			fee:            5000,
			wantDays:       4,
			wantPct:        50,
			wantRefund:     25000,
			wantRefundable: 25000,
		},
		{
			name:           "strict three days out gets nothing",
			policy:         models.PolicyStrict,
			checkIn:        asOf.AddDate(0, 0, 3),
			amount:         50000,
			fee:            5000,
			wantDays:       3,
			wantPct:        0,
			wantRefund:     0,
			wantRefundable: 0,
		},
		{
			name:           "strict a week out gets half",
			policy:         models.PolicyStrict,
			checkIn:        asOf.AddDate(0, 0, 7),
			amount:         50000,
			fee:            5000,
			wantDays:       7,
			wantPct:        50,
			wantRefund:     25000,
			wantRefundable: 25000,
		},
		{
			name:           "no_refund always zero",
			policy:         models.PolicyNoRefund,
			checkIn:        asOf.AddDate(0, 0, 30),
			amount:         50000,
			fee:            5000,
			wantDays:       30,
			wantPct:        0,
			wantRefund:     0,
			wantRefundable: 0,
		},
		{
			name:           "unknown policy falls back to flexible",
			policy:         "super_saver",
			checkIn:        asOf.AddDate(0, 0, 2),
			amount:         10000,
			fee:            1000,
			wantDays:       2,
			wantPct:        100,
			wantRefund:     10000,
			wantRefundable: 9000,
		},
		{
			name:           "after check-in date no refund",
			policy:         models.PolicyFlexible,
			checkIn:        asOf.AddDate(0, 0, -1),
			amount:         10000,
			fee:            1000,
			wantDays:       -1,
			wantPct:        0,
			wantRefund:     0,
			wantRefundable: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBooking(models.BookingStatusConfirmed, tt.policy, tt.checkIn, tt.amount, tt.fee)
			calc := NewRefundCalculator(newFakeBookingStore(b), zap.NewNop())

			got, err := calc.Calculate(context.Background(), b.ID, asOf)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if got.DaysUntilCheckIn != tt.wantDays {
				t.Errorf("days = %d, want %d", got.DaysUntilCheckIn, tt.wantDays)
			}
			if got.RefundPercentage != tt.wantPct {
				t.Errorf("percentage = %d, want %d", got.RefundPercentage, tt.wantPct)
			}
			if got.RefundAmount != tt.wantRefund {
				t.Errorf("refund amount = %d, want %d", got.RefundAmount, tt.wantRefund)
			}
			if got.RefundableAmount != tt.wantRefundable {
				t.Errorf("refundable amount = %d, want %d", got.RefundableAmount, tt.wantRefundable)
			}
		})
	}
}

func TestRefundNeverExceedsAmountMinusFee(t *testing.T) {
	asOf := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	amounts := []struct{ amount, fee int64 }{
		{100, 10}, {101, 10}, {99999, 9999}, {1, 1}, {20000, 0},
	}
	for _, a := range amounts {
		for _, policy := range []string{models.PolicyFlexible, models.PolicyModerate, models.PolicyStrict, models.PolicyNoRefund} {
			for days := -2; days <= 10; days++ {
				b := testBooking(models.BookingStatusConfirmed, policy, asOf.AddDate(0, 0, days), a.amount, a.fee)
				calc := NewRefundCalculator(newFakeBookingStore(b), zap.NewNop())
				got, err := calc.Calculate(context.Background(), b.ID, asOf)
				if err != nil {
					t.Fatalf("Calculate: %v", err)
				}
				if got.RefundableAmount > a.amount-a.fee {
					t.Fatalf("policy %s, %d days, amount %d fee %d: refundable %d exceeds amount minus fee",
						policy, days, a.amount, a.fee, got.RefundableAmount)
				}
				if got.RefundableAmount < 0 {
					t.Fatalf("negative refundable amount %d", got.RefundableAmount)
				}
			}
		}
	}
}

func TestDaysUntilCheckInCeiling(t *testing.T) {
	asOf := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		checkIn time.Time
		want    int
	}{
		{"exactly now", asOf, 0},
		{"one minute ahead rounds up", asOf.Add(time.Minute), 1},
		{"exactly 24h", asOf.Add(24 * time.Hour), 1},
		{"24h and a second", asOf.Add(24*time.Hour + time.Second), 2},
		{"exactly 48h", asOf.Add(48 * time.Hour), 2},
		{"an hour ago", asOf.Add(-time.Hour), 0},
		{"25 hours ago", asOf.Add(-25 * time.Hour), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntilCheckIn(tt.checkIn, asOf); got != tt.want {
				t.Errorf("DaysUntilCheckIn = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRoundPercentageHalfUp(t *testing.T) {
	tests := []struct {
		amount int64
		pct    int
		want   int64
	}{
		{101, 50, 51},
		{100, 50, 50},
		{99, 50, 50},
		{1, 50, 1},
		{0, 100, 0},
		{12345, 100, 12345},
		{12345, 0, 0},
	}
	for _, tt := range tests {
		if got := roundPercentage(tt.amount, tt.pct); got != tt.want {
			t.Errorf("roundPercentage(%d, %d) = %d, want %d", tt.amount, tt.pct, got, tt.want)
		}
	}
}

func TestCalculateMissingBooking(t *testing.T) {
	calc := NewRefundCalculator(newFakeBookingStore(), zap.NewNop())
	_, err := calc.Calculate(context.Background(), uuid.New(), time.Now())
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("err = %v, want ErrBookingNotFound", err)
	}
}

func TestCalculateMissingPayment(t *testing.T) {
	b := testBooking(models.BookingStatusConfirmed, models.PolicyFlexible, time.Now().AddDate(0, 0, 5), 10000, 1000)
	b.Payment = nil
	calc := NewRefundCalculator(newFakeBookingStore(b), zap.NewNop())
	_, err := calc.Calculate(context.Background(), b.ID, time.Now())
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("err = %v, want ErrBookingNotFound", err)
	}
}
