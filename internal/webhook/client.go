package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	HeaderSignature = "X-Skinflow-Signature"
	HeaderTimestamp = "X-Skinflow-Timestamp"
	HeaderEvent     = "X-Skinflow-Event"
)

const (
	EventJobCompleted = "job.completed"
	EventJobFailed    = "job.failed"
)

type Config struct {
	SigningSecret  string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

type Client struct {
	httpClient     *http.Client
	signingSecret  string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewClient fills zero-valued settings with one 10s attempt and a 1s
// initial backoff.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		signingSecret:  cfg.SigningSecret,
		maxAttempts:    max(cfg.MaxAttempts, 1),
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     max(cfg.MaxBackoff, cfg.InitialBackoff),
	}
}

// Send posts payload as JSON to endpoint. An empty endpoint is a no-op.
// Every attempt carries the same timestamp and signature.
func (c *Client) Send(ctx context.Context, endpoint, event string, payload any) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	d := delivery{
		endpoint:  endpoint,
		event:     event,
		timestamp: strconv.FormatInt(time.Now().UTC().Unix(), 10),
		body:      body,
	}
	d.signature = c.sign(d.timestamp, body)

	wait := c.initialBackoff
	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		again, err := c.attempt(ctx, d)
		if err == nil {
			return nil
		}
		lastErr = err
		if !again || attempt >= c.maxAttempts {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait = min(wait*2, c.maxBackoff)
	}

	return fmt.Errorf("webhook delivery failed: %w", lastErr)
}

type delivery struct {
	endpoint  string
	event     string
	timestamp string
	signature string
	body      []byte
}

// attempt performs one POST. again reports whether a failed attempt is worth
// repeating.
func (c *Client) attempt(ctx context.Context, d delivery) (again bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(d.body))
	if err != nil {
		return false, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderTimestamp, d.timestamp)
	req.Header.Set(HeaderSignature, d.signature)
	req.Header.Set(HeaderEvent, d.event)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}
	return retryable(resp.StatusCode), fmt.Errorf("webhook returned status=%d", resp.StatusCode)
}

func (c *Client) sign(timestamp string, body []byte) string {
	return Sign(c.signingSecret, timestamp, body)
}

// Sign computes the signature header value receivers recompute to verify a
// delivery: HMAC-SHA256 over "<timestamp>.<body>".
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches body under secret.
func Verify(secret, timestamp, signature string, body []byte) bool {
	return hmac.Equal([]byte(Sign(secret, timestamp, body)), []byte(signature))
}

// retryable is false for 4xx other than 408 and 429. The receiver rejected
// the delivery and a resend will not change that.
func retryable(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return status < 400 || status >= 500
}
