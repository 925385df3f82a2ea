// Package edgar is the network side of the exhibit scout: it fetches pages
// and exhibit files from the EDGAR archive while identifying itself and
// staying under the archive's request-rate ceiling.
package edgar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"exhibit_scout/pkg/core/dom"

	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent when no identification string is configured. The
// archive rejects anonymous clients, so operators should override it.
const DefaultUserAgent = "ExhibitScout/1.0 (contact@example.com)"

// ErrFetch marks a page that could not be retrieved (transport error or
// non-200 status).
var ErrFetch = errors.New("fetch failed")

// RetryPolicy controls retries of transient failures (transport errors,
// 429 and 5xx responses).
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy retries twice with exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
}

// Client fetches archive pages.
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	retry      RetryPolicy
	logger     *log.Logger
	cache      *PageCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent sets the identification string sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables
// the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPageCache serves FetchDocument from pc when the page was seen before.
// Fetch, which exhibit downloads use, always goes to the network.
func WithPageCache(pc *PageCache) Option {
	return func(c *Client) { c.cache = pc }
}

// NewClient creates an archive client. The archive asks clients to stay
// under 10 requests per second; the default limit is 8.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		userAgent:  DefaultUserAgent,
		limiter:    rate.NewLimiter(rate.Limit(8), 1),
		retry:      DefaultRetryPolicy(),
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads url and returns the response body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	attempts := c.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := c.retry.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, retryable, err := c.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || attempt == attempts {
			break
		}

		c.logger.Printf("[WARN] attempt %d/%d for %s failed: %v (retrying in %v)", attempt, attempts, url, err, delay)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrFetch, ctx.Err())
		case <-time.After(delay):
		}
		delay = c.nextDelay(delay)
	}
	return nil, lastErr
}

// FetchDocument fetches url and parses it into a document tree.
func (c *Client) FetchDocument(ctx context.Context, url string) (dom.Node, error) {
	body, err := c.fetchPage(ctx, url)
	if err != nil {
		return nil, err
	}
	root, err := dom.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return root, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(url); ok {
			return body, nil
		}
	}
	body, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.Set(url, body); err != nil {
			c.logger.Printf("[WARN] Failed to cache %s: %v", url, err)
		}
	}
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrFetch, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to create request: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html, application/xhtml+xml, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("%w: HTTP %d for %s", ErrFetch, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%w: reading %s: %v", ErrFetch, url, err)
	}
	return body, false, nil
}

func (c *Client) nextDelay(d time.Duration) time.Duration {
	m := c.retry.Multiplier
	if m < 1 {
		m = 1
	}
	next := time.Duration(float64(d) * m)
	if c.retry.MaxDelay > 0 && next > c.retry.MaxDelay {
		next = c.retry.MaxDelay
	}
	return next
}
