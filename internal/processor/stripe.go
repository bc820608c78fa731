package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// StripeClient talks to the Stripe-compatible REST API over form-encoded
// requests with bearer auth.
type StripeClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	log        *zap.Logger
}

func NewStripeClient(baseURL, secretKey string, timeout time.Duration, log *zap.Logger) *StripeClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &StripeClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

func (c *StripeClient) ProcessRefund(ctx context.Context, paymentRef string, amount int64, reason string) (*RefundResult, error) {
	form := url.Values{}
	form.Set("payment_intent", paymentRef)
	form.Set("amount", strconv.FormatInt(amount, 10))
	if reason != "" {
		form.Set("metadata[reason]", reason)
	}

	var result RefundResult
	if err := c.post(ctx, "/v1/refunds", form, &result); err != nil {
		return nil, fmt.Errorf("refund failed: %w", err)
	}

	c.log.Info("refund processed",
		zap.String("payment_ref", paymentRef),
		zap.Int64("amount", amount),
		zap.String("refund_id", result.ID),
	)
	return &result, nil
}

func (c *StripeClient) CreateTransfer(ctx context.Context, destination string, amount int64, currency, description string) (*TransferResult, error) {
	form := url.Values{}
	form.Set("destination", destination)
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	if description != "" {
		form.Set("description", description)
	}

	var result TransferResult
	if err := c.post(ctx, "/v1/transfers", form, &result); err != nil {
		return nil, fmt.Errorf("transfer failed: %w", err)
	}

	c.log.Info("transfer created",
		zap.String("destination", destination),
		zap.Int64("amount", amount),
		zap.String("transfer_id", result.ID),
	)
	return &result, nil
}

func (c *StripeClient) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("processor unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("processor returned %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
