package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/everstacklabs/modelprices/internal/cache"
)

// DefaultTimeout bounds every request made by the client.
const DefaultTimeout = 30 * time.Second

// UserAgent is sent with every request.
const UserAgent = "modelprices/1.0 (+https://github.com/everstacklabs/modelprices)"

// Client is a GET-only HTTP client with optional rate limiting and
// conditional-fetch caching.
type Client struct {
	http    *http.Client
	cache   *cache.FileCache
	limiter *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithCache enables the file cache.
func WithCache(c *cache.FileCache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithRateLimit sets requests per second. Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(cl *Client) {
		if rps <= 0 {
			cl.limiter = nil
			return
		}
		cl.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http.Timeout = d
		}
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(cl *Client) { cl.http.Transport = rt }
}

// New creates a new HTTP client.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response wraps a successful response body and metadata.
type Response struct {
	Body       []byte
	StatusCode int
	FromCache  bool
}

// StatusError is returned for any response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Get performs an HTTP GET. With a cache configured, a fresh entry is served
// without a request and a stale one is revalidated.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	var stale *cache.Entry
	if c.cache != nil {
		entry, fresh := c.cache.Lookup(url)
		if fresh {
			slog.Debug("cache hit", "url", url, "bytes", len(entry.Body))
			return &Response{Body: entry.Body, StatusCode: entry.StatusCode, FromCache: true}, nil
		}
		stale = entry
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	if stale != nil {
		if stale.ETag != "" {
			req.Header.Set("If-None-Match", stale.ETag)
		}
		if stale.LastMod != "" {
			req.Header.Set("If-Modified-Since", stale.LastMod)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotModified && stale != nil {
		if err := c.cache.Touch(url, stale); err != nil {
			slog.Warn("refreshing cache entry failed", "url", url, "error", err)
		}
		slog.Debug("not modified, serving cached body", "url", url)
		return &Response{Body: stale.Body, StatusCode: stale.StatusCode, FromCache: true}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	slog.Debug("fetched", "url", url, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	if c.cache != nil {
		err := c.cache.Store(url, &cache.Entry{
			Body:       body,
			ETag:       resp.Header.Get("ETag"),
			LastMod:    resp.Header.Get("Last-Modified"),
			StatusCode: resp.StatusCode,
		})
		if err != nil {
			slog.Warn("storing cache entry failed", "url", url, "error", err)
		}
	}

	return &Response{Body: body, StatusCode: resp.StatusCode}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
