// Package calendar pushes deadline events to an external calendar
// webhook. Pushes are fire and forget: failures are logged by the
// caller and never surface to API clients.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Event is the payload sent to the calendar webhook.
type Event struct {
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"startsAt"`
	ProjectID *string   `json:"projectId,omitempty"`
	TaskID    *string   `json:"taskId,omitempty"`
	UserID    string    `json:"userId"`
}

type Pusher interface {
	Push(ctx context.Context, event Event) error
}

// WebhookPusher POSTs events as JSON to a configured endpoint.
type WebhookPusher struct {
	url    string
	client *http.Client
}

func NewWebhookPusher(url string, timeout time.Duration) *WebhookPusher {
	return &WebhookPusher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *WebhookPusher) Push(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal calendar event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build calendar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push calendar event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("calendar webhook returned %d", resp.StatusCode)
	}
	return nil
}

// NopPusher is used when no webhook is configured.
type NopPusher struct{}

func (NopPusher) Push(ctx context.Context, event Event) error { return nil }
