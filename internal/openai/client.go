// Package openai is a small HTTP client for the two capabilities the
// generation pipeline consumes: image edits and chat completions.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cozylogic-backend/internal/logger"

	"golang.org/x/time/rate"
)

const maxBackoff = 10 * time.Second

type Config struct {
	APIKey            string
	BaseURL           string
	MaxRetries        int
	RequestsPerSecond float64
	// Backoff is the first retry delay; it doubles per attempt.
	Backoff    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	apiKey     string
	baseURL    string
	maxRetries int
	backoff    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

func NewClient(cfg Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		maxRetries: cfg.MaxRetries,
		backoff:    backoff,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		log:        log,
	}
}

// HTTPError is a non-2xx reply from the API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

// IsRetryable reports whether err is worth another attempt: transport
// failures, 429 and 5xx. Context cancellation is never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	var decodeErr *decodeError
	if errors.As(err, &decodeErr) || errors.Is(err, ErrNoImageReturned) || errors.Is(err, ErrNoCompletion) {
		return false
	}
	return true
}

// RetryWithBackoff runs fn once plus up to maxRetries more times while it
// returns a retryable error, doubling the delay between attempts.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	delay := c.backoff
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == maxRetries {
			break
		}

		c.log.Warn("openai request retrying",
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"sleep", delay.String(),
			"error", lastErr.Error(),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxBackoff {
			delay = maxBackoff
		}
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "openai decode error: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// post sends body to path with retries and decodes the JSON reply into out.
func (c *Client) post(ctx context.Context, path, contentType string, body []byte, out any) error {
	return c.RetryWithBackoff(ctx, func() error {
		return c.postOnce(ctx, path, contentType, body, out)
	}, c.maxRetries)
}

func (c *Client) postOnce(ctx context.Context, path, contentType string, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}
