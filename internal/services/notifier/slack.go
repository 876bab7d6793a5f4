// Package notifier posts trade notifications to a chat webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Notifier delivers a plain text message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// SlackNotifier posts {"text": ...} to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
}

type slackMessage struct {
	Text string `json:"text"`
}

// New returns a SlackNotifier, or a Noop when webhookURL is empty.
func New(webhookURL string) Notifier {
	if webhookURL == "" {
		return Noop{}
	}
	return NewSlackNotifier(webhookURL, &http.Client{Timeout: 10 * time.Second})
}

// NewSlackNotifier creates a notifier using httpClient.
func NewSlackNotifier(webhookURL string, httpClient *http.Client) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL, httpClient: httpClient}
}

// Notify sends text once. Any non-2xx answer is returned as an error.
func (s *SlackNotifier) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(slackMessage{Text: text})
	if err != nil {
		return errors.Wrap(err, "failed to marshal slack message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create slack request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "slack request failed")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// Noop discards every message.
type Noop struct{}

func (Noop) Notify(context.Context, string) error { return nil }
