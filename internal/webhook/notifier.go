package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zapflow/zapflow-backend/internal/model"
)

// ConnectionEvent is the payload delivered to a tenant's webhook when its
// channel flips between connected and disconnected.
type ConnectionEvent struct {
	Event      string `json:"event"`
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	Connected  bool   `json:"connected"`
	Timestamp  string `json:"timestamp"`
}

// Notifier delivers webhook payloads. Background callers treat a false return
// as log-and-move-on; interactive callers use FirstSuccess and surface the error.
type Notifier struct {
	Client *http.Client
	Logger *zap.SugaredLogger
	Now    func() time.Time
}

func NewNotifier(timeout time.Duration, logger *zap.SugaredLogger) *Notifier {
	return &Notifier{
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
		Now:    time.Now,
	}
}

// SendConnectionEvent posts a connection.update event to the tenant's
// configured webhook URL. Failures are logged and swallowed; delivery success
// is reported as the return value only.
func (n *Notifier) SendConnectionEvent(ctx context.Context, t *model.Tenant, event string, connected bool) bool {
	if t.WebhookURL == "" {
		n.Logger.Debugw("tenant has no webhook url, skipping notification", "tenant", t.ID, "event", event)
		return false
	}

	payload := ConnectionEvent{
		Event:      event,
		TenantID:   t.ID,
		TenantName: t.Name,
		Connected:  connected,
		Timestamp:  n.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		n.Logger.Errorw("failed to encode webhook payload", "tenant", t.ID, "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.WebhookURL, bytes.NewReader(body))
	if err != nil {
		n.Logger.Warnw("invalid webhook url", "tenant", t.ID, "url", t.WebhookURL, "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		n.Logger.Warnw("webhook delivery failed", "tenant", t.ID, "event", event, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.Logger.Warnw("webhook rejected", "tenant", t.ID, "event", event, "status", resp.StatusCode)
		return false
	}

	n.Logger.Infow("webhook delivered", "tenant", t.ID, "event", event, "connected", connected)
	return true
}

// Attempt is one candidate endpoint for a logical action that several gateway
// versions expose under different paths.
type Attempt struct {
	Method  string
	URL     string
	Headers map[string]string
	Payload any
}

// FirstSuccess tries the candidates in order and returns the first one that
// answers 2xx. When every candidate fails the combined error is returned so
// interactive callers can surface it.
func (n *Notifier) FirstSuccess(ctx context.Context, attempts []Attempt) (*Attempt, error) {
	var lastErr error
	for i := range attempts {
		a := &attempts[i]
		if err := n.try(ctx, a); err != nil {
			n.Logger.Debugw("candidate endpoint failed", "method", a.Method, "url", a.URL, "error", err)
			lastErr = err
			continue
		}
		return a, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate endpoints given")
	}
	return nil, fmt.Errorf("all %d candidate endpoints failed, last error: %w", len(attempts), lastErr)
}

func (n *Notifier) try(ctx context.Context, a *Attempt) error {
	var body *bytes.Reader
	if a.Payload != nil {
		raw, err := json.Marshal(a.Payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, a.Method, a.URL, body)
	if err != nil {
		return err
	}
	if a.Payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}
	return nil
}
