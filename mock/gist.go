package mock

import (
	"context"

	"github.com/fwojciec/snipminer"
)

var _ snipminer.GistSource = (*GistSource)(nil)

// GistSource is a mock implementation of snipminer.GistSource.
type GistSource struct {
	FetchGistFn        func(ctx context.Context, id string) (*snipminer.Gist, error)
	FetchUserGistsFn   func(ctx context.Context, username string, limit int) ([]*snipminer.Gist, error)
	FetchPublicGistsFn func(ctx context.Context, since string, limit int) ([]*snipminer.Gist, error)
	SearchGistsFn      func(ctx context.Context, query string, limit int) ([]*snipminer.Gist, error)
	FetchContentFn     func(ctx context.Context, file snipminer.GistFile) string
}

func (s *GistSource) FetchGist(ctx context.Context, id string) (*snipminer.Gist, error) {
	return s.FetchGistFn(ctx, id)
}

func (s *GistSource) FetchUserGists(ctx context.Context, username string, limit int) ([]*snipminer.Gist, error) {
	return s.FetchUserGistsFn(ctx, username, limit)
}

func (s *GistSource) FetchPublicGists(ctx context.Context, since string, limit int) ([]*snipminer.Gist, error) {
	return s.FetchPublicGistsFn(ctx, since, limit)
}

func (s *GistSource) SearchGists(ctx context.Context, query string, limit int) ([]*snipminer.Gist, error) {
	return s.SearchGistsFn(ctx, query, limit)
}

func (s *GistSource) FetchContent(ctx context.Context, file snipminer.GistFile) string {
	return s.FetchContentFn(ctx, file)
}

var _ snipminer.GistWriter = (*GistWriter)(nil)

// GistWriter is a mock implementation of snipminer.GistWriter.
type GistWriter struct {
	WriteGistsFn func(ctx context.Context, gists []*snipminer.Gist) error
}

func (w *GistWriter) WriteGists(ctx context.Context, gists []*snipminer.Gist) error {
	return w.WriteGistsFn(ctx, gists)
}

var _ snipminer.GistService = (*GistService)(nil)

// GistService is a mock implementation of snipminer.GistService.
type GistService struct {
	WriteGistsFn   func(ctx context.Context, gists []*snipminer.Gist) error
	FindGistByIDFn func(ctx context.Context, id string) (*snipminer.Gist, error)
	FindGistsFn    func(ctx context.Context, filter snipminer.GistFilter) ([]*snipminer.Gist, error)
	DeleteGistFn   func(ctx context.Context, id string) error
}

func (s *GistService) WriteGists(ctx context.Context, gists []*snipminer.Gist) error {
	return s.WriteGistsFn(ctx, gists)
}

func (s *GistService) FindGistByID(ctx context.Context, id string) (*snipminer.Gist, error) {
	return s.FindGistByIDFn(ctx, id)
}

func (s *GistService) FindGists(ctx context.Context, filter snipminer.GistFilter) ([]*snipminer.Gist, error) {
	return s.FindGistsFn(ctx, filter)
}

func (s *GistService) DeleteGist(ctx context.Context, id string) error {
	return s.DeleteGistFn(ctx, id)
}
