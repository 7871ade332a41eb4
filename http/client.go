// Package http provides the HTTP transport for snipminer: plain text and
// JSON retrieval with headers, optional token authentication and retry,
// plus a reader for Stack Overflow tag feeds.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/snipminer"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent identifies the harvester to remote sites.
const DefaultUserAgent = "CodeSnippetMiner/1.0"

// Ensure Client implements the transport interfaces at compile time.
var (
	_ snipminer.Fetcher   = (*Client)(nil)
	_ snipminer.APIClient = (*Client)(nil)
)

// Client retrieves documents over HTTP. It never interprets the documents
// it returns. Client is safe for concurrent use.
type Client struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	accept      string
	token       string
	retryDelays []time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithAccept sets the Accept header sent with every request.
func WithAccept(accept string) Option {
	return func(c *Client) {
		c.accept = accept
	}
}

// WithToken sends "Authorization: token <token>" with every request.
// An empty token sends no header.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithRetryDelays enables retrying failed requests, waiting delays[i]
// before attempt i+2. Not-found responses are never retried.
func WithRetryDelays(delays []time.Duration) Option {
	return func(c *Client) {
		c.retryDelays = delays
	}
}

// NewClient creates a new HTTP Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{
		Timeout: c.timeout,
	}

	return c
}

// Fetch retrieves the body of url as text.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	var body []byte
	err := withRetry(ctx, c.retryDelays, func() error {
		var err error
		body, err = c.get(ctx, url)
		return err
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetJSON requests rawURL with params merged into its query and decodes
// the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, v any) error {
	target, err := withParams(rawURL, params)
	if err != nil {
		return err
	}

	var body []byte
	err = withRetry(ctx, c.retryDelays, func() error {
		var err error
		body, err = c.get(ctx, target)
		return err
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return snipminer.Errorf(snipminer.EINVALID, "decoding JSON from %s: %v", target, err)
	}
	return nil
}

// Close releases resources. For HTTP client this is a no-op since
// http.Client doesn't require explicit cleanup.
func (c *Client) Close() error {
	return nil
}

// get performs a single GET request and returns the full body.
func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.accept != "" {
		req.Header.Set("Accept", c.accept)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, snipminer.Errorf(snipminer.ENOTFOUND, "HTTP 404 for %s", target)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}

	return io.ReadAll(resp.Body)
}

// withParams merges params into the query string of rawURL.
func withParams(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", snipminer.Errorf(snipminer.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
