package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/snipminer"
	main "github.com/fwojciec/snipminer/cmd/snipminer"
	"github.com/fwojciec/snipminer/github"
	"github.com/fwojciec/snipminer/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userGists = `[
	{"id":"g1","description":"json helpers","owner":{"login":"octocat"},"files":{"parse.py":{"language":"Python","raw_url":"https://gist.example/g1/parse.py"},"README.md":{"language":"Markdown","raw_url":"https://gist.example/g1/README.md"}}},
	{"id":"g2","description":"dotfiles","owner":{"login":"octocat"},"files":{".vimrc":{"raw_url":"https://gist.example/g2/.vimrc"}}}
]`

// gistClient returns a GitHub client answering every API call with body and
// every raw content fetch with the URL it was asked for.
func gistClient(body string) *github.Client {
	api := &mock.APIClient{
		GetJSONFn: func(_ context.Context, _ string, _ url.Values, v any) error {
			return json.Unmarshal([]byte(body), v)
		},
	}
	raw := &mock.Fetcher{
		FetchFn: func(_ context.Context, u string) (string, error) {
			return "content of " + u, nil
		},
	}
	return github.NewClient(api, raw)
}

func readGists(t *testing.T, path string) []*snipminer.Gist {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var gists []*snipminer.Gist
	require.NoError(t, json.Unmarshal(data, &gists))
	return gists
}

func TestGistsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints gists and exports them", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		dir := t.TempDir()
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     stdout,
			Stderr:     &bytes.Buffer{},
			GistClient: gistClient(userGists),
			OutDir:     dir,
		}

		err := (&main.GistsCmd{User: "octocat", Limit: 30}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "g1  octocat  2 files  json helpers")
		assert.Contains(t, stdout.String(), "g2  octocat  1 files  dotfiles")
		assert.Contains(t, stdout.String(), "Saved 2 gists")

		gists := readGists(t, filepath.Join(dir, "gists_octocat.json"))
		require.Len(t, gists, 2)
		assert.Equal(t, "parse.py", gists[0].Files[0].Filename)
		assert.Equal(t, "python", gists[0].Files[0].Language)
		assert.Empty(t, gists[0].Files[0].Content)
	})

	t.Run("fetches content when requested", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     &bytes.Buffer{},
			Stderr:     &bytes.Buffer{},
			GistClient: gistClient(userGists),
			OutDir:     dir,
		}

		err := (&main.GistsCmd{User: "octocat", Limit: 30, Content: true}).Run(deps)

		require.NoError(t, err)
		gists := readGists(t, filepath.Join(dir, "gists_octocat.json"))
		assert.Equal(t, "content of https://gist.example/g1/parse.py", gists[0].Files[0].Content)
		assert.Equal(t, "content of https://gist.example/g2/.vimrc", gists[1].Files[0].Content)
	})

	t.Run("writes to store and records run", func(t *testing.T) {
		t.Parallel()

		var stored []*snipminer.Gist
		var run *snipminer.HarvestRun
		started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     &bytes.Buffer{},
			Stderr:     &bytes.Buffer{},
			GistClient: gistClient(userGists),
			Store:      true,
			Gists: mockGistService(func(_ context.Context, gists []*snipminer.Gist) error {
				stored = gists
				return nil
			}),
			Runs: &mock.RunService{
				CreateRunFn: func(_ context.Context, r *snipminer.HarvestRun) error {
					run = r
					return nil
				},
			},
			Now: func() time.Time { return started },
		}

		err := (&main.GistsCmd{User: "octocat", Limit: 30}).Run(deps)

		require.NoError(t, err)
		assert.Len(t, stored, 2)
		require.NotNil(t, run)
		assert.Equal(t, snipminer.SourceGist, run.Source)
		assert.Equal(t, "octocat", run.Query)
		assert.Equal(t, 2, run.Count)
		assert.Equal(t, started, run.StartedAt)
	})

	t.Run("does not store without the store flag", func(t *testing.T) {
		t.Parallel()

		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     &bytes.Buffer{},
			Stderr:     &bytes.Buffer{},
			GistClient: gistClient(userGists),
			Gists: mockGistService(func(context.Context, []*snipminer.Gist) error {
				t.Error("unexpected store write")
				return nil
			}),
		}

		require.NoError(t, (&main.GistsCmd{User: "octocat", Limit: 30}).Run(deps))
	})

	t.Run("publishes to the broker sink", func(t *testing.T) {
		t.Parallel()

		var published int
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     &bytes.Buffer{},
			Stderr:     &bytes.Buffer{},
			GistClient: gistClient(userGists),
			GistPublisher: &mock.GistWriter{
				WriteGistsFn: func(_ context.Context, gists []*snipminer.Gist) error {
					published = len(gists)
					return nil
				},
			},
		}

		require.NoError(t, (&main.GistsCmd{User: "octocat", Limit: 30}).Run(deps))
		assert.Equal(t, 2, published)
	})

	t.Run("returns sink error", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		sinkErr := errors.New("broker down")
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     &bytes.Buffer{},
			Stderr:     stderr,
			GistClient: gistClient(userGists),
			GistPublisher: &mock.GistWriter{
				WriteGistsFn: func(context.Context, []*snipminer.Gist) error { return sinkErr },
			},
		}

		err := (&main.GistsCmd{User: "octocat", Limit: 30}).Run(deps)

		assert.ErrorIs(t, err, sinkErr)
		assert.Contains(t, stderr.String(), "error:")
	})

	t.Run("reports fetch error", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		api := &mock.APIClient{
			GetJSONFn: func(context.Context, string, url.Values, any) error {
				return snipminer.Errorf(snipminer.ENOTFOUND, "user not found")
			},
		}
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     &bytes.Buffer{},
			Stderr:     stderr,
			GistClient: github.NewClient(api, nil),
		}

		err := (&main.GistsCmd{User: "ghost", Limit: 30}).Run(deps)

		assert.Equal(t, snipminer.ENOTFOUND, snipminer.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: user not found")
	})
}

func TestGistCmd_Run(t *testing.T) {
	t.Parallel()

	const single = `{"id":"g1","owner":{"login":"octocat"},"files":{"parse.py":{"language":"Python","raw_url":"https://gist.example/g1/parse.py"},"README.md":{"raw_url":"https://gist.example/g1/README.md"}}}`

	t.Run("fetches only the named file", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		dir := t.TempDir()
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     stdout,
			Stderr:     &bytes.Buffer{},
			GistClient: gistClient(single),
			OutDir:     dir,
		}

		err := (&main.GistCmd{ID: "g1", File: "parse.py"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "content of https://gist.example/g1/parse.py")

		gists := readGists(t, filepath.Join(dir, "gist_g1.json"))
		require.Len(t, gists, 1)
		assert.NotEmpty(t, gists[0].Files[0].Content)
		assert.Empty(t, gists[0].Files[1].Content)
	})

	t.Run("rejects unknown file", func(t *testing.T) {
		t.Parallel()

		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     &bytes.Buffer{},
			Stderr:     &bytes.Buffer{},
			GistClient: gistClient(single),
		}

		err := (&main.GistCmd{ID: "g1", File: "missing.txt"}).Run(deps)

		assert.Equal(t, snipminer.ENOTFOUND, snipminer.ErrorCode(err))
	})
}

func TestPublicGistsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("passes since and limit", func(t *testing.T) {
		t.Parallel()

		var params url.Values
		api := &mock.APIClient{
			GetJSONFn: func(_ context.Context, _ string, p url.Values, v any) error {
				params = p
				return json.Unmarshal([]byte(userGists), v)
			},
		}
		dir := t.TempDir()
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     &bytes.Buffer{},
			Stderr:     &bytes.Buffer{},
			GistClient: github.NewClient(api, nil),
			OutDir:     dir,
		}

		err := (&main.PublicGistsCmd{Since: "2025-01-01T00:00:00Z", Limit: 1}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "2025-01-01T00:00:00Z", params.Get("since"))
		assert.Len(t, readGists(t, filepath.Join(dir, "gists_public.json")), 1)
	})

	t.Run("rejects malformed since", func(t *testing.T) {
		t.Parallel()

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
		}

		err := (&main.PublicGistsCmd{Since: "yesterday", Limit: 10}).Run(deps)

		assert.Equal(t, snipminer.EINVALID, snipminer.ErrorCode(err))
	})
}

func TestSearchGistsCmd_Run(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	dir := t.TempDir()
	deps := &main.Dependencies{
		Ctx:        context.Background(),
		Stdout:     stdout,
		Stderr:     &bytes.Buffer{},
		GistClient: gistClient(userGists),
		OutDir:     dir,
	}

	err := (&main.SearchGistsCmd{Query: "JSON", Limit: 30}).Run(deps)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "g1")
	assert.NotContains(t, stdout.String(), "g2")
	assert.Len(t, readGists(t, filepath.Join(dir, "gists_search_JSON.json")), 1)
}

func mockGistService(write func(context.Context, []*snipminer.Gist) error) *mock.GistService {
	return &mock.GistService{WriteGistsFn: write}
}
