// Package notifier pushes policy rejection alerts to Slack.
package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// SlackClient handles Slack notifications.
type SlackClient struct {
	WebhookURL string
	logger     *slog.Logger
}

// NewSlackClient initializes the Slack integration. An empty webhook URL
// yields a client that drops everything.
func NewSlackClient(webhookURL string, logger *slog.Logger) *SlackClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlackClient{WebhookURL: webhookURL, logger: logger}
}

// NotifyRejection sends a blocked-command alert. Errors are logged, never
// surfaced: alerting is best-effort by contract.
func (s *SlackClient) NotifyRejection(provider, command, reason string) {
	if s.WebhookURL == "" {
		return
	}

	payload := map[string]interface{}{
		"text": fmt.Sprintf(":no_entry: cloudgate blocked a %s command\n> `%s`\nReason: %s",
			provider, command, reason),
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal slack payload", "error", err)
		return
	}

	req, err := http.NewRequest("POST", s.WebhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		s.logger.Error("failed to create slack request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		s.logger.Error("failed to send slack webhook", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.Error("slack webhook returned non-OK status", "status", resp.StatusCode)
	}
}
