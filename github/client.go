package github

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/fwojciec/snipminer"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the root of the GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// DefaultAccept is the media type requested from the gist API.
const DefaultAccept = "application/vnd.github.v3+json"

// DefaultConcurrency bounds parallel content fetches in FillContent.
const DefaultConcurrency = 3

// maxPerPage is the largest page size the gist API accepts.
const maxPerPage = 100

// Ensure Client implements snipminer.GistSource at compile time.
var _ snipminer.GistSource = (*Client)(nil)

// Client retrieves gists from the GitHub gist API.
// JSON requests go through api; raw file contents go through fetcher.
type Client struct {
	api         snipminer.APIClient
	fetcher     snipminer.Fetcher
	baseURL     string
	concurrency int
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. for GitHub Enterprise.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithConcurrency sets how many file contents FillContent fetches at once.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		c.concurrency = n
	}
}

// WithLogger sets the logger used for skipped entries and failed content fetches.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a gist API client.
func NewClient(api snipminer.APIClient, fetcher snipminer.Fetcher, opts ...Option) *Client {
	c := &Client{
		api:         api,
		fetcher:     fetcher,
		baseURL:     DefaultBaseURL,
		concurrency: DefaultConcurrency,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.concurrency <= 0 {
		c.concurrency = DefaultConcurrency
	}
	return c
}

// FetchGist retrieves a single gist by ID.
func (c *Client) FetchGist(ctx context.Context, id string) (*snipminer.Gist, error) {
	if id == "" {
		return nil, snipminer.Errorf(snipminer.EINVALID, "gist ID required")
	}

	var raw RawGist
	if err := c.api.GetJSON(ctx, c.baseURL+"/gists/"+url.PathEscape(id), nil, &raw); err != nil {
		return nil, err
	}

	gist := Normalize(raw, "")
	return &gist, nil
}

// FetchUserGists retrieves up to limit gists owned by username.
func (c *Client) FetchUserGists(ctx context.Context, username string, limit int) ([]*snipminer.Gist, error) {
	if username == "" {
		return nil, snipminer.Errorf(snipminer.EINVALID, "username required")
	}

	params := url.Values{}
	if limit > 0 {
		params.Set("per_page", strconv.Itoa(limit))
	}

	gists, err := c.list(ctx, "/users/"+url.PathEscape(username)+"/gists", params, username)
	if err != nil {
		return nil, err
	}
	return truncate(gists, limit), nil
}

// FetchPublicGists retrieves up to limit recent public gists. If since is
// non-empty only gists updated after that timestamp are requested.
func (c *Client) FetchPublicGists(ctx context.Context, since string, limit int) ([]*snipminer.Gist, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(perPage(limit)))
	if since != "" {
		params.Set("since", since)
	}

	gists, err := c.list(ctx, "/gists/public", params, "")
	if err != nil {
		return nil, err
	}
	return truncate(gists, limit), nil
}

// SearchGists lists gists and keeps those whose description or any file
// name contains query, ignoring case. The gist API has no search endpoint,
// so only the first listed page is considered.
func (c *Client) SearchGists(ctx context.Context, query string, limit int) ([]*snipminer.Gist, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("per_page", strconv.Itoa(limit))
	}

	gists, err := c.list(ctx, "/gists", params, "")
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matched := make([]*snipminer.Gist, 0, len(gists))
	for _, g := range gists {
		if matches(g, q) {
			matched = append(matched, g)
		}
	}
	return truncate(matched, limit), nil
}

// FetchContent returns the text of file. It returns an empty string if the
// file has no raw URL or the fetch fails.
func (c *Client) FetchContent(ctx context.Context, file snipminer.GistFile) string {
	if file.RawURL == "" {
		return ""
	}

	content, err := c.fetcher.Fetch(ctx, file.RawURL)
	if err != nil {
		c.logger.Warn("gist content fetch failed",
			"file", file.Filename,
			"url", file.RawURL,
			"error", err,
		)
		return ""
	}
	return content
}

// FillContent fetches content for the files of gist chosen by selector and
// stores it on those files. A nil selector selects every file.
func (c *Client) FillContent(ctx context.Context, gist *snipminer.Gist, selector snipminer.FileSelector) error {
	if selector == nil {
		selector = snipminer.AllFiles()
	}

	selected := make(map[string]bool)
	for _, f := range selector(gist.Files) {
		selected[f.Filename] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i := range gist.Files {
		if !selected[gist.Files[i].Filename] {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			gist.Files[i].Content = c.FetchContent(gctx, gist.Files[i])
			return nil
		})
	}

	return g.Wait()
}

// list requests a gist listing and normalizes every entry that decodes.
func (c *Client) list(ctx context.Context, path string, params url.Values, username string) ([]*snipminer.Gist, error) {
	var entries []json.RawMessage
	if err := c.api.GetJSON(ctx, c.baseURL+path, params, &entries); err != nil {
		return nil, err
	}

	gists := make([]*snipminer.Gist, 0, len(entries))
	for i, entry := range entries {
		var raw RawGist
		if err := json.Unmarshal(entry, &raw); err != nil {
			c.logger.Debug("skipping malformed gist entry",
				"path", path,
				"index", i,
				"error", err,
			)
			continue
		}
		gist := Normalize(raw, username)
		gists = append(gists, &gist)
	}
	return gists, nil
}

func matches(g *snipminer.Gist, query string) bool {
	if strings.Contains(strings.ToLower(g.Description), query) {
		return true
	}
	for _, f := range g.Files {
		if strings.Contains(strings.ToLower(f.Filename), query) {
			return true
		}
	}
	return false
}

func perPage(limit int) int {
	if limit <= 0 || limit > maxPerPage {
		return maxPerPage
	}
	return limit
}

func truncate(gists []*snipminer.Gist, limit int) []*snipminer.Gist {
	if limit > 0 && len(gists) > limit {
		return gists[:limit]
	}
	return gists
}
