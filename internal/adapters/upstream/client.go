// Package upstream is the HTTP client for the remote tag service.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds every call so a stuck service cannot leave a panel loading forever.
	DefaultTimeout = 10 * time.Second

	defaultRPS   = 10.0
	defaultBurst = 20

	maxBodyBytes = 1 << 20
)

// Options tunes the client. Zero values fall back to defaults.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// Client is a rate-limited client for the tag service.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *slog.Logger
}

// Compile-time check that *Client satisfies API.
var _ API = (*Client)(nil)

// New creates a client for the service rooted at baseURL.
// PRE: baseURL is an absolute http(s) URL
// POST: returns a ready client or an error describing the bad base URL
func New(baseURL string, opts Options, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", baseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "tagdesk/1.0"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		userAgent: opts.UserAgent,
		logger:    logger,
	}, nil
}

// endpoint appends an escaped service path to the base URL.
// A base path such as "https://host/api" is kept as a prefix.
func (c *Client) endpoint(rawPath string, query url.Values) string {
	base := *c.baseURL
	base.RawQuery = ""
	base.Fragment = ""
	target := strings.TrimSuffix(base.String(), "/") + rawPath
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// do executes a request with rate limiting and returns the status and body.
// Transport failures are errors; status codes are left to the caller.
func (c *Client) do(ctx context.Context, method, target string, body []byte) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("upstream_request", "method", method, "url", target)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// get performs a read and maps non-200 statuses onto sentinel errors.
func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	status, body, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if err := statusError(status, body); err != nil {
		return nil, err
	}
	return body, nil
}
