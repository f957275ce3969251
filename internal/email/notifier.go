package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Notifier is the best-effort agent notification capability. Failures are
// logged by callers and never roll back a committed state transition.
type Notifier interface {
	Notify(ctx context.Context, to, subject, html string) error
}

// ResendNotifier sends transactional email through the Resend REST API.
type ResendNotifier struct {
	APIKey     string
	FromEmail  string
	BaseURL    string
	HTTPClient *http.Client
}

// NewResendNotifier returns a configured notifier, or nil when no API key is
// provisioned.
func NewResendNotifier(apiKey, fromEmail string) *ResendNotifier {
	if apiKey == "" {
		return nil
	}
	return &ResendNotifier{
		APIKey:     apiKey,
		FromEmail:  fromEmail,
		BaseURL:    "https://api.resend.com",
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *ResendNotifier) Notify(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(map[string]any{
		"from":    n.FromEmail,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.BaseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+n.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
