package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// WebhookNotifier emits quote lifecycle events to an external endpoint, e.g.
// a websocket fan-out service or an analytics collector. Events are best
// effort; delivery failures are reported to the caller and logged there.
type WebhookNotifier struct {
	url        string
	log        *logrus.Logger
	httpClient *http.Client
}

// NewWebhookNotifier creates a notifier posting to the given URL. An empty
// URL yields a notifier that only logs the events.
func NewWebhookNotifier(url string, log *logrus.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		log:        log,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type quoteEvent struct {
	Event      string    `json:"event"`
	QuoteID    string    `json:"quote_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EmitQuoteEvent publishes a single quote lifecycle event.
func (n *WebhookNotifier) EmitQuoteEvent(ctx context.Context, event, quoteID string) error {
	n.log.WithFields(logrus.Fields{"event": event, "quote_id": quoteID}).Info("quote event")
	if n.url == "" {
		return nil
	}

	payload, err := json.Marshal(quoteEvent{Event: event, QuoteID: quoteID, OccurredAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: webhook post failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notify: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
