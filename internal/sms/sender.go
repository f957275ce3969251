package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender is the outbound delivery capability. Implementations return the
// provider's message id on success. A nil Sender means no transport is
// provisioned, which callers treat as a permanent failure.
type Sender interface {
	Send(ctx context.Context, from, to, body string) (string, error)
}

// TwilioSender sends SMS through the Twilio REST API.
type TwilioSender struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
	HTTPClient *http.Client
}

// NewTwilioSender returns a configured sender, or nil when credentials are
// absent so callers can represent the missing capability explicitly.
func NewTwilioSender(accountSID, authToken string) *TwilioSender {
	if accountSID == "" || authToken == "" {
		return nil
	}
	return &TwilioSender{
		AccountSID: accountSID,
		AuthToken:  authToken,
		BaseURL:    "https://api.twilio.com",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *TwilioSender) Send(ctx context.Context, from, to, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.BaseURL, s.AccountSID)

	form := url.Values{}
	form.Set("From", from)
	form.Set("To", to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.AccountSID, s.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("twilio response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var result struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return "", fmt.Errorf("twilio response decode: %w", err)
	}
	return result.SID, nil
}
