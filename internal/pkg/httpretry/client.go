// Package httpretry wraps an HTTP client with retry on transient failures:
// exponential backoff with full jitter, capped, context-aware. All external
// API clients in this repo go through it.
package httpretry

import (
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// HTTPDoer is the interface for executing HTTP requests. Both *http.Client
// and *RetryClient satisfy it, so clients can stack or swap transports in
// tests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryClient retries transient failures: network errors and the status
// codes 429, 500, 502, 503 and 504. Client errors (4xx other than 429)
// and context cancellation are returned immediately. The final attempt's
// response is handed back as-is so callers can inspect status and body.
type RetryClient struct {
	client     HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewRetryClient wraps the given HTTPDoer. A nil client gets a 30s-timeout
// http.Client; maxRetries <= 0 defaults to 3.
func NewRetryClient(client HTTPDoer, maxRetries int) *RetryClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryClient{
		client:     client,
		maxRetries: maxRetries,
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
	}
}

// Do executes the request, retrying per the policy above.
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		if err := req.Context().Err(); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}

		if attempt > 0 {
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: reset request body: %w", err)
				}
				req.Body = body
			}

			delay := rc.backoff(attempt)
			log.Printf("httpretry: attempt %d/%d for %s %s%s after %s",
				attempt, rc.maxRetries, req.Method, req.URL.Host, req.URL.Path, delay)

			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				if lastErr != nil {
					return nil, lastErr
				}
				return nil, req.Context().Err()
			}
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		if !retryableStatus(resp.StatusCode) || attempt == rc.maxRetries {
			return resp, nil
		}

		// Drain so the connection can be reused, then go around again.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: retryable status %d", resp.StatusCode)
	}

	return nil, lastErr
}

// backoff is exponential with full jitter, floored at 100ms to avoid
// hammering, capped at maxDelay.
func (rc *RetryClient) backoff(attempt int) time.Duration {
	exp := float64(rc.baseDelay) * math.Pow(2, float64(attempt-1))
	if exp > float64(rc.maxDelay) {
		exp = float64(rc.maxDelay)
	}
	d := time.Duration(rand.Float64() * exp)
	if d < 100*time.Millisecond {
		d = 100 * time.Millisecond
	}
	return d
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
