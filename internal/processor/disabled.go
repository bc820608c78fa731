package processor

import "context"

// Disabled is the no-credentials client. Every call fails with ErrDisabled;
// settlement treats that as a processing failure, so bookings still cancel
// and check-ins still complete in environments without processor access.
type Disabled struct{}

func (Disabled) ProcessRefund(ctx context.Context, paymentRef string, amount int64, reason string) (*RefundResult, error) {
	return nil, ErrDisabled
}

func (Disabled) CreateTransfer(ctx context.Context, destination string, amount int64, currency, description string) (*TransferResult, error) {
	return nil, ErrDisabled
}
