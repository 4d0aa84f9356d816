package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const resendAPIURL = "https://api.resend.com/emails"

// ResendClient sends transactional email through the Resend HTTP API.
type ResendClient struct {
	APIKey  string
	BaseURL string
	DryRun  bool
	client  *http.Client
}

type ResendMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendSendResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func NewResendClient(apiKey string, dryRun bool) *ResendClient {
	return &ResendClient{
		APIKey:  apiKey,
		BaseURL: resendAPIURL,
		DryRun:  dryRun,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Send dispatches one email and returns the provider message id.
func (c *ResendClient) Send(ctx context.Context, msg *ResendMessage) (string, error) {
	if c.DryRun {
		log.Printf("[resend][dry-run] to=%v subject=%q", msg.To, msg.Subject)
		return "dry-run", nil
	}
	if c.APIKey == "" {
		return "", fmt.Errorf("resend api key is not configured")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read resend response: %w", err)
	}

	var result resendSendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse resend response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resend API error: status=%d name=%s message=%s", resp.StatusCode, result.Name, result.Message)
	}
	if result.ID == "" {
		return "", fmt.Errorf("resend API returned empty message id")
	}
	return result.ID, nil
}
