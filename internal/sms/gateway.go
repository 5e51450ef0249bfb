package sms

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

// Gateway sends one text message to many phone numbers through an SMS
// gateway in a single batched call.
// Nil-safe: when not configured, SendBatch logs and succeeds.
type Gateway struct {
	url        string
	username   string
	password   string
	simNumber  int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGateway creates an SMS gateway client. Returns nil when credentials are
// missing (SMS delivery disabled).
func NewGateway(url, username, password string, simNumber int, timeout time.Duration, logger *slog.Logger) *Gateway {
	if username == "" || password == "" {
		return nil
	}
	return &Gateway{
		url:        url,
		username:   username,
		password:   password,
		simNumber:  simNumber,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// batchRequest is the gateway's third-party message payload.
type batchRequest struct {
	TextMessage struct {
		Text string `json:"text"`
	} `json:"textMessage"`
	PhoneNumbers []string `json:"phoneNumbers"`
	SimNumber    int      `json:"simNumber"`
}

// SendBatch submits one delivery call for the whole queue. The bounded
// client timeout means a hung gateway surfaces as an error, which the caller
// reports as a failed batch. No inline retry.
func (g *Gateway) SendBatch(ctx context.Context, text string, phoneNumbers []string) error {
	if g == nil {
		slog.Default().Info("SMS gateway not configured, dropping batch", "recipients", len(phoneNumbers))
		return nil
	}
	if len(phoneNumbers) == 0 {
		return fmt.Errorf("no phone numbers to send to")
	}

	var payload batchRequest
	payload.TextMessage.Text = text
	payload.PhoneNumbers = phoneNumbers
	payload.SimNumber = g.simNumber

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.username, g.password)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send sms batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, detail)
	}

	g.logger.Info("SMS batch sent", "recipients", len(phoneNumbers))
	return nil
}
