package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"

	clierr "github.com/dmoreno/swap-cli/internal/errors"
)

type Client struct {
	httpClient *http.Client
	retries    int
	userAgent  string
}

func New(timeout time.Duration, retries int) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		retries:    retries,
		userAgent:  "swap-cli/1.0",
	}
}

// GetJSON issues a GET for url and decodes the response body into out.
// Retries are limited to rate limits, 5xx responses and transport errors.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return clierr.Wrap(clierr.CodeUnavailable, "request cancelled", ctx.Err())
			case <-time.After(backoff(attempt)):
			}
		}

		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			lastErr = mapNetError(err)
			if attempt < c.retries {
				continue
			}
			return lastErr
		}

		buf, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return clierr.Wrap(clierr.CodeUnavailable, "read aggregator response", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = clierr.New(clierr.CodeRateLimited, "aggregator rate limited request")
			if attempt < c.retries {
				continue
			}
			return lastErr
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = clierr.New(clierr.CodeUnavailable, fmt.Sprintf("aggregator unavailable (status %d)", resp.StatusCode))
			if attempt < c.retries {
				continue
			}
			return lastErr
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return clierr.New(clierr.CodeUnavailable, fmt.Sprintf("aggregator returned unexpected status %d", resp.StatusCode))
		}

		if out == nil {
			return nil
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			return clierr.New(clierr.CodeUnavailable, "aggregator returned empty response")
		}
		if err := json.Unmarshal(buf, out); err != nil {
			return clierr.Wrap(clierr.CodeUnavailable, "decode aggregator JSON", err)
		}
		return nil
	}

	if lastErr != nil {
		return lastErr
	}
	return clierr.New(clierr.CodeUnavailable, "request failed")
}

func mapNetError(err error) error {
	if nerr, ok := err.(net.Error); ok {
		if nerr.Timeout() {
			return clierr.Wrap(clierr.CodeUnavailable, "aggregator timeout", err)
		}
	}
	return clierr.Wrap(clierr.CodeUnavailable, "aggregator request failed", err)
}

func backoff(attempt int) time.Duration {
	base := 120 * time.Millisecond
	d := base * time.Duration(1<<uint(attempt-1))
	if d > 2*time.Second {
		d = 2 * time.Second
	}
	jitter := time.Duration(rand.Intn(75)) * time.Millisecond
	return d + jitter
}
