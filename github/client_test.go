package github_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/fwojciec/snipminer"
	"github.com/fwojciec/snipminer/github"
	"github.com/fwojciec/snipminer/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// request records a single GetJSON call.
type request struct {
	url    string
	params url.Values
}

// respondWith returns an APIClient that decodes body into every request
// target and records the calls it receives.
func respondWith(body string, calls *[]request) *mock.APIClient {
	var mu sync.Mutex
	return &mock.APIClient{
		GetJSONFn: func(_ context.Context, u string, params url.Values, v any) error {
			mu.Lock()
			*calls = append(*calls, request{url: u, params: params})
			mu.Unlock()
			return json.Unmarshal([]byte(body), v)
		},
	}
}

const listing = `[
	{"id":"1","description":"Python helpers","owner":{"login":"ann"},"files":{"util.py":{"language":"Python"}}},
	"not a gist",
	{"id":"2","description":"dotfiles","files":{"setup.SH":{"language":"Shell"},"vimrc":{}}},
	{"id":"3","description":"misc","files":{"notes.md":{"language":"Markdown"}}}
]`

func TestClient_FetchGist(t *testing.T) {
	t.Parallel()

	t.Run("requests gist by ID and normalizes it", func(t *testing.T) {
		t.Parallel()

		var calls []request
		api := respondWith(`{"id":"abc","owner":{"login":"octocat"},"files":{"a.go":{"language":"Go"}}}`, &calls)

		gist, err := github.NewClient(api, nil).FetchGist(context.Background(), "abc")

		require.NoError(t, err)
		require.Len(t, calls, 1)
		assert.Equal(t, "https://api.github.com/gists/abc", calls[0].url)
		assert.Equal(t, "octocat", gist.Author)
		assert.Equal(t, "go", gist.Files[0].Language)
	})

	t.Run("honours custom base URL", func(t *testing.T) {
		t.Parallel()

		var calls []request
		api := respondWith(`{"id":"abc"}`, &calls)

		_, err := github.NewClient(api, nil, github.WithBaseURL("https://ghe.example.com/api/v3/")).
			FetchGist(context.Background(), "abc")

		require.NoError(t, err)
		assert.Equal(t, "https://ghe.example.com/api/v3/gists/abc", calls[0].url)
	})

	t.Run("propagates not found", func(t *testing.T) {
		t.Parallel()

		api := &mock.APIClient{
			GetJSONFn: func(context.Context, string, url.Values, any) error {
				return snipminer.Errorf(snipminer.ENOTFOUND, "HTTP 404")
			},
		}

		_, err := github.NewClient(api, nil).FetchGist(context.Background(), "missing")

		assert.Equal(t, snipminer.ENOTFOUND, snipminer.ErrorCode(err))
	})

	t.Run("requires an ID", func(t *testing.T) {
		t.Parallel()

		_, err := github.NewClient(&mock.APIClient{}, nil).FetchGist(context.Background(), "")

		assert.Equal(t, snipminer.EINVALID, snipminer.ErrorCode(err))
	})
}

func TestClient_FetchUserGists(t *testing.T) {
	t.Parallel()

	t.Run("lists user gists with page size and author fallback", func(t *testing.T) {
		t.Parallel()

		var calls []request
		api := respondWith(listing, &calls)

		gists, err := github.NewClient(api, nil).FetchUserGists(context.Background(), "ann", 30)

		require.NoError(t, err)
		assert.Equal(t, "https://api.github.com/users/ann/gists", calls[0].url)
		assert.Equal(t, "30", calls[0].params.Get("per_page"))
		require.Len(t, gists, 3)
		assert.Equal(t, "ann", gists[0].Author)
		assert.Equal(t, "ann", gists[1].Author)
	})

	t.Run("skips entries that are not gist objects", func(t *testing.T) {
		t.Parallel()

		var calls []request
		gists, err := github.NewClient(respondWith(listing, &calls), nil).FetchUserGists(context.Background(), "ann", 0)

		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "3"}, ids(gists))
		assert.Empty(t, calls[0].params.Get("per_page"))
	})

	t.Run("requires a username", func(t *testing.T) {
		t.Parallel()

		_, err := github.NewClient(&mock.APIClient{}, nil).FetchUserGists(context.Background(), "", 10)

		assert.Equal(t, snipminer.EINVALID, snipminer.ErrorCode(err))
	})
}

func TestClient_FetchPublicGists(t *testing.T) {
	t.Parallel()

	t.Run("caps page size and truncates to limit", func(t *testing.T) {
		t.Parallel()

		var calls []request
		gists, err := github.NewClient(respondWith(listing, &calls), nil).
			FetchPublicGists(context.Background(), "", 2)

		require.NoError(t, err)
		assert.Equal(t, "https://api.github.com/gists/public", calls[0].url)
		assert.Equal(t, "2", calls[0].params.Get("per_page"))
		assert.False(t, calls[0].params.Has("since"))
		assert.Equal(t, []string{"1", "2"}, ids(gists))
	})

	t.Run("never requests more than one hundred per page", func(t *testing.T) {
		t.Parallel()

		var calls []request
		_, err := github.NewClient(respondWith(`[]`, &calls), nil).
			FetchPublicGists(context.Background(), "2026-01-01T00:00:00Z", 500)

		require.NoError(t, err)
		assert.Equal(t, "100", calls[0].params.Get("per_page"))
		assert.Equal(t, "2026-01-01T00:00:00Z", calls[0].params.Get("since"))
	})
}

func TestClient_SearchGists(t *testing.T) {
	t.Parallel()

	t.Run("matches description case-insensitively", func(t *testing.T) {
		t.Parallel()

		var calls []request
		gists, err := github.NewClient(respondWith(listing, &calls), nil).
			SearchGists(context.Background(), "PYTHON", 30)

		require.NoError(t, err)
		assert.Equal(t, "https://api.github.com/gists", calls[0].url)
		assert.Equal(t, []string{"1"}, ids(gists))
	})

	t.Run("matches any file name", func(t *testing.T) {
		t.Parallel()

		var calls []request
		gists, err := github.NewClient(respondWith(listing, &calls), nil).
			SearchGists(context.Background(), "setup.sh", 30)

		require.NoError(t, err)
		assert.Equal(t, []string{"2"}, ids(gists))
	})

	t.Run("truncates matches to limit", func(t *testing.T) {
		t.Parallel()

		var calls []request
		gists, err := github.NewClient(respondWith(listing, &calls), nil).
			SearchGists(context.Background(), "", 2)

		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, ids(gists))
	})

	t.Run("returns empty result without matches", func(t *testing.T) {
		t.Parallel()

		var calls []request
		gists, err := github.NewClient(respondWith(listing, &calls), nil).
			SearchGists(context.Background(), "haskell", 30)

		require.NoError(t, err)
		assert.Empty(t, gists)
	})
}

func TestClient_FetchContent(t *testing.T) {
	t.Parallel()

	t.Run("returns fetched text", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, u string) (string, error) {
				return "print('hi')", nil
			},
		}

		got := github.NewClient(nil, fetcher).FetchContent(context.Background(), snipminer.GistFile{RawURL: "https://raw/a.py"})

		assert.Equal(t, "print('hi')", got)
	})

	t.Run("returns empty string without raw URL", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				t.Fatal("fetch should not be called")
				return "", nil
			},
		}

		got := github.NewClient(nil, fetcher).FetchContent(context.Background(), snipminer.GistFile{Filename: "a.py"})

		assert.Empty(t, got)
	})

	t.Run("returns empty string when fetch fails", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "", errors.New("HTTP 500 for https://raw/a.py")
			},
		}

		got := github.NewClient(nil, fetcher).FetchContent(context.Background(), snipminer.GistFile{RawURL: "https://raw/a.py"})

		assert.Empty(t, got)
	})
}

func TestClient_FillContent(t *testing.T) {
	t.Parallel()

	newGist := func() *snipminer.Gist {
		return &snipminer.Gist{
			ID: "g",
			Files: []snipminer.GistFile{
				{Filename: "a.py", RawURL: "https://raw/a.py"},
				{Filename: "b.js", RawURL: "https://raw/b.js"},
				{Filename: "c.txt"},
			},
		}
	}
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, u string) (string, error) {
			return "body of " + u, nil
		},
	}

	t.Run("fills every selected file", func(t *testing.T) {
		t.Parallel()

		gist := newGist()
		err := github.NewClient(nil, fetcher, github.WithConcurrency(2)).FillContent(context.Background(), gist, snipminer.AllFiles())

		require.NoError(t, err)
		assert.Equal(t, "body of https://raw/a.py", gist.Files[0].Content)
		assert.Equal(t, "body of https://raw/b.js", gist.Files[1].Content)
		assert.Empty(t, gist.Files[2].Content)
	})

	t.Run("fills only the named file", func(t *testing.T) {
		t.Parallel()

		gist := newGist()
		err := github.NewClient(nil, fetcher).FillContent(context.Background(), gist, snipminer.FileNamed("b.js"))

		require.NoError(t, err)
		assert.Empty(t, gist.Files[0].Content)
		assert.Equal(t, "body of https://raw/b.js", gist.Files[1].Content)
	})

	t.Run("nil selector selects every file", func(t *testing.T) {
		t.Parallel()

		gist := newGist()
		err := github.NewClient(nil, fetcher).FillContent(context.Background(), gist, nil)

		require.NoError(t, err)
		assert.NotEmpty(t, gist.Files[0].Content)
		assert.NotEmpty(t, gist.Files[1].Content)
	})

	t.Run("stops on canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		gist := newGist()
		err := github.NewClient(nil, fetcher).FillContent(ctx, gist, snipminer.AllFiles())

		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, gist.Files[0].Content)
	})
}

func ids(gists []*snipminer.Gist) []string {
	out := make([]string, 0, len(gists))
	for _, g := range gists {
		out = append(out, g.ID)
	}
	return out
}
