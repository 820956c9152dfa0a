// Package apiclient is a typed HTTP client for the gotodo API. Requests are
// authenticated with the token held by a session.Store.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gotodo/gotodo/internal/security"
	"github.com/gotodo/gotodo/internal/session"
	"github.com/gotodo/gotodo/internal/storage"
	"github.com/gotodo/gotodo/pkg/logger"
)

// DefaultUserAgent is sent when WithUserAgent is not used.
const DefaultUserAgent = "gotodo-cli/1.0"

// maxResponseBytes bounds decoded response bodies.
const maxResponseBytes = 4 << 20

// Client talks to the gotodo API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	session   *session.Store
	log       *logger.Logger
	userAgent string
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped
// with a BearerTransport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithSession sets the session store the bearer token is read from.
func WithSession(s *session.Store) Option {
	return func(c *Client) {
		if s != nil {
			c.session = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a Client for the API at baseURL. Without WithSession an
// in-memory session is used.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := security.NewSanitizer(security.DefaultConfig()).Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{},
		log:       logger.Nop(),
		userAgent: DefaultUserAgent,
		timeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session == nil {
		c.session = session.NewStore(context.Background(), storage.NewMemoryStorage(), session.WithLogger(c.log))
	}

	hc := *c.http
	hc.Transport = &BearerTransport{Base: c.http.Transport, Source: c.session, Host: c.baseURL.Host}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.http = &hc

	return c, nil
}

// Session returns the session store used by the client.
func (c *Client) Session() *session.Store {
	return c.session
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

// do sends a request and decodes a 2xx body into out. Non-2xx responses
// become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any, header http.Header) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("api request failed", "method", method, "path", path, "error", err.Error())
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseError(resp)
		c.log.Warn("api error", "method", method, "path", path, "status", resp.StatusCode, "code", apiErr.Code)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
