package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type HTTPConfig struct {
	RelayURL string
	APIKey   string
	From     string
	Timeout  time.Duration
}

// HTTPTransport posts emails as JSON to a mail relay.
type HTTPTransport struct {
	relayURL string
	apiKey   string
	from     string
	timeout  time.Duration
	client   *http.Client
	logger   *slog.Logger
}

func NewHTTPTransport(cfg HTTPConfig, logger *slog.Logger) *HTTPTransport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPTransport{
		relayURL: cfg.RelayURL,
		apiKey:   cfg.APIKey,
		from:     cfg.From,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type relayRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (t *HTTPTransport) Send(ctx context.Context, email Email) error {
	payload, err := json.Marshal(relayRequest{
		From:    t.from,
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.relayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("X-API-Key", t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail relay returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	t.logger.Debug("email accepted by relay", "to", email.To, "subject", email.Subject, "status_code", resp.StatusCode)
	return nil
}
