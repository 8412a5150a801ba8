// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 and 503 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

// maxRetryAfter caps the wait a server may request through Retry-After.
var maxRetryAfter = 5 * time.Minute

const defaultMaxRetries = 5

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned HTTP %d", e.URL, e.StatusCode)
}

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) and 503 (Service Unavailable) with exponential backoff. The
// delay starts at RetryBaseDelay (10 s) and doubles each attempt: 10 s,
// 20 s, 40 s, 80 s, 160 s. A Retry-After header in seconds overrides the
// computed delay.
//
// When maxRetries is 0 the default (5) is used. On each retry the response
// body is drained and closed before sleeping, and a request body is
// replayed through GetBody. If the context is cancelled during a backoff
// wait the function returns ctx.Err(). After exhausting retries the last
// response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if client == nil {
		client = http.DefaultClient
	}

	for attempt := 0; ; attempt++ {
		clone := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("replaying request body: %w", err)
			}
			clone.Body = body
		}

		resp, err := client.Do(clone)
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if d, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
			backoff = d
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Get fetches url with the given User-Agent through DoWithRetry. Any
// status other than 200 closes the body and returns a *StatusError.
func Get(ctx context.Context, client *http.Client, url, userAgent string, maxRetries int) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := DoWithRetry(ctx, client, req, maxRetries)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

func retryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d, true
}
