package processor

import (
	"context"
	"errors"
)

// ErrDisabled is returned by the disabled client when no processor
// credentials were configured at startup.
var ErrDisabled = errors.New("payment processor disabled: no secret key configured")

type RefundResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type TransferResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PaymentProcessor is the external money-movement collaborator. Amounts are
// minor units. Implementations must bound each call with their own timeout;
// callers treat a timeout like any other processing failure.
type PaymentProcessor interface {
	ProcessRefund(ctx context.Context, paymentRef string, amount int64, reason string) (*RefundResult, error)
	CreateTransfer(ctx context.Context, destination string, amount int64, currency, description string) (*TransferResult, error)
}
