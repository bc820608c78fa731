package processor

import (
	"time"

	"go.uber.org/zap"
)

// FromConfig resolves the processor capability once at startup: a live client
// when a secret key is configured, the disabled client otherwise. Call sites
// never branch on configuration themselves.
func FromConfig(baseURL, secretKey string, timeout time.Duration, log *zap.Logger) PaymentProcessor {
	if secretKey == "" {
		log.Warn("payment processor running in disabled mode")
		return Disabled{}
	}
	return NewStripeClient(baseURL, secretKey, timeout, log)
}
