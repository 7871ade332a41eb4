package snipminer

import "context"

// FeedEntry is a question announced by a tag feed.
type FeedEntry struct {
	QuestionID int
	Title      string
	URL        string
	Tags       []string
	Updated    string
}

// QuestionFeed lists recent questions for a tag.
type QuestionFeed interface {
	// FetchTagFeed returns up to limit entries (all if limit <= 0) in feed order.
	FetchTagFeed(ctx context.Context, tag string, limit int) ([]FeedEntry, error)
}
