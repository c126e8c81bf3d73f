package trackerclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jakechorley/editor-points/internal/config"
)

const maxRetries = 3

// Client wraps the task tracker REST API
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	interval   time.Duration
	httpClient *http.Client

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a tracker client from configuration
func NewClient(cfg config.TrackerConfig) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: 60 * time.Second})
}

// NewClientWithHTTP creates a tracker client using the given http client
func NewClientWithHTTP(cfg config.TrackerConfig, httpClient *http.Client) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		pageSize:   pageSize,
		interval:   cfg.RequestInterval,
		httpClient: httpClient,
	}
}

// throttle spaces requests at least interval apart
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.interval - time.Since(c.lastRequest); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.lastRequest = time.Now()
	return nil
}

// get issues a GET request and decodes the JSON body into out.
// Rate-limited responses are retried with exponential backoff.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.throttle(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request to %s failed: %w", path, err)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 32*1024*1024))
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response from %s: %w", path, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429) on %s", path)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("tracker request %s failed with status %d: %s", path, resp.StatusCode, truncate(string(body), 200))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response from %s: %w", path, err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
