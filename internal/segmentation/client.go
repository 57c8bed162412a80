// Package segmentation talks to an external background-removal API. The
// service receives a PNG and answers with a PNG whose background is
// transparent.
package segmentation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrRejected marks 4xx answers, which are not worth retrying.
var ErrRejected = errors.New("segmentation request rejected")

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	backoffs   []time.Duration
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// WithBackoffs overrides the retry delays.
func (c *Client) WithBackoffs(backoffs ...time.Duration) *Client {
	c.backoffs = backoffs
	return c
}

// RemoveBackground posts pngData to /remove-background and returns the
// segmented PNG.
func (c *Client) RemoveBackground(ctx context.Context, pngData []byte) ([]byte, error) {
	var out []byte
	err := c.RetryWithBackoff(ctx, func() error {
		data, err := c.removeBackground(ctx, pngData)
		if err != nil {
			return err
		}
		out = data
		return nil
	}, 3)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) removeBackground(ctx context.Context, pngData []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/remove-background", bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Accept", "image/png")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrRejected, resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to remove background: status %d, body: %s", resp.StatusCode, string(body))
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("segmentation service returned an empty body")
	}

	return body, nil
}

// RetryWithBackoff executes fn with exponential backoff. Rejected requests
// and ctx cancellation stop the retries early.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrRejected) {
			return err
		}

		lastErr = err
		if i == maxRetries-1 || i >= len(c.backoffs) {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoffs[i]):
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
