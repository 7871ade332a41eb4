package snipminer

import (
	"context"
	"net/url"
)

// Fetcher retrieves the body of a URL as text.
// Implementations either return the fully buffered response or fail;
// a non-2xx status is a failure.
type Fetcher interface {
	// Fetch retrieves the document at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (string, error)

	// Close releases transport resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// APIClient retrieves JSON documents from an HTTP API.
type APIClient interface {
	// GetJSON requests url with the given query parameters and decodes
	// the response body into v.
	// Returns ENOTFOUND when the API responds with 404.
	GetJSON(ctx context.Context, url string, params url.Values, v any) error
}
