package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Event names sent to the webhook.
const (
	EventTimelineSubmitted  = "timeline_submitted"
	EventExtensionRequested = "extension_requested"
	EventExtensionResolved  = "extension_resolved"
	EventDeadlineReminder   = "deadline_reminder"
	EventDeadlineOverdue    = "deadline_overdue"
	EventResponseRecorded   = "response_recorded"
)

// Message 通知消息
type Message struct {
	Event   string            `json:"event"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	OrderID uint64            `json:"order_id,omitempty"`
	UserID  string            `json:"user_id,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	SentAt  time.Time         `json:"sent_at"`
}

// Notifier delivers messages to people outside the system.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// WebhookNotifier posts messages as JSON to one URL.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier returns a Nop notifier when url is empty.
func NewWebhookNotifier(url string, timeout time.Duration) Notifier {
	if url == "" {
		return Nop{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Nop drops every message.
type Nop struct{}

func (Nop) Notify(context.Context, Message) error { return nil }
