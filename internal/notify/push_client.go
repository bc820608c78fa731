package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PushClient forwards notifications to the external push gateway. Delivery
// mechanics (device tokens, retries) live in the gateway, not here.
type PushClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewPushClient(baseURL string, log *zap.Logger) *PushClient {
	return &PushClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

type pushMessage struct {
	UserID string         `json:"user_id"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Data   map[string]any `json:"data,omitempty"`
}

func (c *PushClient) Send(ctx context.Context, userID uuid.UUID, title, body string, data map[string]any) error {
	payload, _ := json.Marshal(pushMessage{
		UserID: userID.String(),
		Title:  title,
		Body:   body,
		Data:   data,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/notify", strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("failed to send push notification", zap.Error(err))
		return fmt.Errorf("push gateway unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("push gateway returned non-200", zap.Int("status", resp.StatusCode))
	}
	return nil
}
