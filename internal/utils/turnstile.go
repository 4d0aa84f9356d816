package utils

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

// TurnstileClient talks server-to-server to the Cloudflare Turnstile
// siteverify endpoint. The secret never leaves this process.
type TurnstileClient struct {
	Secret    string
	VerifyURL string
	client    *http.Client
}

// SiteverifyResponse mirrors the upstream verdict. ErrorCodes are logged and
// partially surfaced to clients; ChallengeTS and Hostname are log-only.
type SiteverifyResponse struct {
	Success     bool     `json:"success"`
	ErrorCodes  []string `json:"error-codes"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	Action      string   `json:"action"`
}

func NewTurnstileClient(secret, verifyURL string) *TurnstileClient {
	return &TurnstileClient{
		Secret:    secret,
		VerifyURL: verifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify posts the token upstream. Any transport or decode failure is an
// error so the caller can fail closed.
func (c *TurnstileClient) Verify(ctx context.Context, token, remoteIP string) (*SiteverifyResponse, error) {
	form := url.Values{
		"secret":   {c.Secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("siteverify request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read siteverify response: %w", err)
	}

	var result SiteverifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse siteverify response: %w", err)
	}
	return &result, nil
}
