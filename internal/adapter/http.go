package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/JoseAndresM/LKND/internal/model"
	"github.com/JoseAndresM/LKND/internal/ratelimit"
)

// userAgent is sent on every outbound request. Several boards serve an
// empty shell or a 403 to the default Go client string.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Client is the fetch helper shared by all adapters: one HTTP client,
// one per-host rate limiter, one User-Agent.
type Client struct {
	http    *http.Client
	limiter *ratelimit.HostLimiter
}

// NewClient wraps httpClient with per-host rate limiting.
func NewClient(httpClient *http.Client, limiter *ratelimit.HostLimiter) *Client {
	return &Client{http: httpClient, limiter: limiter}
}

// Get fetches url and returns the response body. Non-200 statuses come
// back as *model.HTTPError so retry logic can inspect them.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.WaitURL(ctx, url); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("get %s: unexpected status %d", url, resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	return body, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
