// Package slog provides logging decorators for snipminer transports and sinks.
package slog

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/snipminer"
)

// Ensure LoggingFetcher implements snipminer.Fetcher.
var _ snipminer.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with request logging.
type LoggingFetcher struct {
	next   snipminer.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next snipminer.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (body string, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch",
			"url", url,
			"bytes", len(body),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingAPIClient implements snipminer.APIClient.
var _ snipminer.APIClient = (*LoggingAPIClient)(nil)

// LoggingAPIClient wraps an APIClient with request logging.
type LoggingAPIClient struct {
	next   snipminer.APIClient
	logger *slog.Logger
}

// NewLoggingAPIClient creates a new LoggingAPIClient.
func NewLoggingAPIClient(next snipminer.APIClient, logger *slog.Logger) *LoggingAPIClient {
	return &LoggingAPIClient{next: next, logger: logger}
}

// GetJSON delegates to the wrapped client and logs the operation.
func (c *LoggingAPIClient) GetJSON(ctx context.Context, rawURL string, params url.Values, v any) (err error) {
	defer func(begin time.Time) {
		c.logger.Debug("api request",
			"url", rawURL,
			"params", params.Encode(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.GetJSON(ctx, rawURL, params, v)
}
