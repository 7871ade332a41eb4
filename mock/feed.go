package mock

import (
	"context"

	"github.com/fwojciec/snipminer"
)

var _ snipminer.QuestionFeed = (*QuestionFeed)(nil)

// QuestionFeed is a mock implementation of snipminer.QuestionFeed.
type QuestionFeed struct {
	FetchTagFeedFn func(ctx context.Context, tag string, limit int) ([]snipminer.FeedEntry, error)
}

func (f *QuestionFeed) FetchTagFeed(ctx context.Context, tag string, limit int) ([]snipminer.FeedEntry, error) {
	return f.FetchTagFeedFn(ctx, tag, limit)
}
