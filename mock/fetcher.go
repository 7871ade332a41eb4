package mock

import (
	"context"
	"net/url"

	"github.com/fwojciec/snipminer"
)

var _ snipminer.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of snipminer.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ snipminer.APIClient = (*APIClient)(nil)

// APIClient is a mock implementation of snipminer.APIClient.
type APIClient struct {
	GetJSONFn func(ctx context.Context, url string, params url.Values, v any) error
}

func (c *APIClient) GetJSON(ctx context.Context, url string, params url.Values, v any) error {
	return c.GetJSONFn(ctx, url, params, v)
}
