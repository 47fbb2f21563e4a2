package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// AwardClient reports computed numeric results to an external scoring
// service. Delivery is fire-and-forget: one attempt, failures are logged
// for operators and never block game-state progression.
type AwardClient struct {
	endpoint string
	secret   string
	client   *http.Client
	logger   *log.Logger
}

// awardPayload is the wire format of one award notification.
type awardPayload struct {
	Identity string `json:"identity"`
	Value    int    `json:"value"`
}

// NewAwardClient creates an award client. Returns nil when no endpoint
// is configured; a nil client ignores all reports.
func NewAwardClient(endpoint, secret string, logger *log.Logger) *AwardClient {
	if endpoint == "" {
		return nil
	}
	return &AwardClient{
		endpoint: endpoint,
		secret:   secret,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger.WithPrefix("awards"),
	}
}

// Report sends the value for the identity in the background.
func (c *AwardClient) Report(identity string, value int) {
	if c == nil {
		return
	}
	go func() {
		if err := c.deliver(context.Background(), identity, value); err != nil {
			c.logger.Warn("award not delivered", "identity", identity, "error", err)
		}
	}()
}

// deliver performs the single delivery attempt.
func (c *AwardClient) deliver(ctx context.Context, identity string, value int) error {
	body, err := json.Marshal(awardPayload{Identity: identity, Value: value})
	if err != nil {
		return fmt.Errorf("marshal award: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Award-Secret", c.secret)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post award: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("award endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
