// Package harvest turns Stack Overflow pages into code snippet records.
// It coordinates fetching, parsing, language classification and assembly.
package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/snipminer"
	"github.com/fwojciec/snipminer/classify"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the Q&A site harvested when BaseURL is empty.
const DefaultBaseURL = "https://stackoverflow.com"

// DefaultConcurrency bounds parallel question page fetches.
const DefaultConcurrency = 3

// Harvester orchestrates snippet harvesting from a Q&A site.
// Only Fetcher and Parser are required.
type Harvester struct {
	Fetcher snipminer.Fetcher
	Parser  snipminer.QuestionParser
	Feed    snipminer.QuestionFeed

	// Classifier labels answer code. Defaults to classify.Default().
	Classifier snipminer.LanguageClassifier

	// SearchClassifier labels search results, which carry tags but no code.
	// Defaults to classify.NewTags().
	SearchClassifier snipminer.LanguageClassifier

	BaseURL     string
	Concurrency int
	Now         func() time.Time
	Logger      *slog.Logger
}

// ProgressEvent reports progress while question pages are harvested.
type ProgressEvent struct {
	Type       ProgressType
	Completed  int
	Total      int
	QuestionID int
	Snippets   int
	Error      error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting harvest progress.
type ProgressFunc func(event ProgressEvent)

// Search returns one snippet per search result for query, considering at
// most limit results. Search snippets carry no code; their language comes
// from question tags.
func (h *Harvester) Search(ctx context.Context, query string, limit int) ([]*snipminer.CodeSnippet, error) {
	if strings.TrimSpace(query) == "" {
		return nil, snipminer.Errorf(snipminer.EINVALID, "search query required")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "relevance")

	html, err := h.Fetcher.Fetch(ctx, h.baseURL()+"/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	frags, err := h.Parser.ParseSearchResults(html, limit)
	if err != nil {
		return nil, err
	}

	classifier := h.SearchClassifier
	if classifier == nil {
		classifier = classify.NewTags()
	}
	return h.assemble(frags, classifier), nil
}

// Question returns one snippet per kept code element in the answers to
// the question with the given ID.
func (h *Harvester) Question(ctx context.Context, questionID int) ([]*snipminer.CodeSnippet, error) {
	if questionID <= 0 {
		return nil, snipminer.Errorf(snipminer.EINVALID, "invalid question ID %d", questionID)
	}

	html, err := h.Fetcher.Fetch(ctx, h.baseURL()+"/questions/"+strconv.Itoa(questionID))
	if err != nil {
		return nil, fmt.Errorf("question %d: %w", questionID, err)
	}

	frags, err := h.Parser.ParseQuestionPage(html, questionID)
	if err != nil {
		return nil, err
	}

	classifier := h.Classifier
	if classifier == nil {
		classifier = classify.Default()
	}
	return h.assemble(frags, classifier), nil
}

// SearchDeep searches for query and then harvests the answers of every
// result. Questions that fail are reported through progress and skipped.
// Snippets are ordered by search rank.
func (h *Harvester) SearchDeep(ctx context.Context, query string, limit int, progress ProgressFunc) ([]*snipminer.CodeSnippet, error) {
	results, err := h.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.QuestionID)
	}
	return h.questions(ctx, ids, progress)
}

// FeedTag reads the newest questions for tag and harvests their answers
// like SearchDeep. Snippets are ordered as the feed lists questions.
func (h *Harvester) FeedTag(ctx context.Context, tag string, limit int, progress ProgressFunc) ([]*snipminer.CodeSnippet, error) {
	if h.Feed == nil {
		return nil, snipminer.Errorf(snipminer.EINVALID, "no question feed configured")
	}

	entries, err := h.Feed.FetchTagFeed(ctx, tag, limit)
	if err != nil {
		return nil, fmt.Errorf("feed %q: %w", tag, err)
	}

	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.QuestionID)
	}
	return h.questions(ctx, ids, progress)
}

// questionResult holds the outcome of harvesting a single question.
type questionResult struct {
	position int
	id       int
	snippets []*snipminer.CodeSnippet
	err      error
}

// questions harvests the given questions concurrently and returns their
// snippets in input order.
func (h *Harvester) questions(ctx context.Context, ids []int, progress ProgressFunc) ([]*snipminer.CodeSnippet, error) {
	concurrency := h.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := len(ids)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	resultCh := make(chan questionResult, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, id := range ids {
			g.Go(func() error {
				snippets, err := h.Question(gctx, id)
				resultCh <- questionResult{position: i, id: id, snippets: snippets, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	var completed atomic.Int64
	results := make([]questionResult, total)
	for result := range resultCh {
		completed.Add(1)
		results[result.position] = result

		if result.err != nil {
			h.logger().Warn("question harvest failed",
				"question", result.id,
				"error", result.err,
			)
		}
		if progress != nil {
			event := ProgressEvent{
				Type:       ProgressCompleted,
				Completed:  int(completed.Load()),
				Total:      total,
				QuestionID: result.id,
				Snippets:   len(result.snippets),
			}
			if result.err != nil {
				event.Type = ProgressFailed
				event.Error = result.err
			}
			progress(event)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snippets []*snipminer.CodeSnippet
	for _, r := range results {
		snippets = append(snippets, r.snippets...)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total, Snippets: len(snippets)})
	}

	return snippets, nil
}

// assemble classifies each fragment and builds its final record.
func (h *Harvester) assemble(frags []snipminer.SnippetFragment, classifier snipminer.LanguageClassifier) []*snipminer.CodeSnippet {
	scrapedAt := h.now()

	snippets := make([]*snipminer.CodeSnippet, 0, len(frags))
	for _, frag := range frags {
		lang := classifier.Classify(snipminer.LanguageSample{Code: frag.Code, Tags: frag.Tags})
		snippets = append(snippets, snipminer.AssembleSnippet(frag, lang, frag.ID(), scrapedAt))
	}
	return snippets
}

func (h *Harvester) baseURL() string {
	if h.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(h.BaseURL, "/")
}

func (h *Harvester) now() time.Time {
	if h.Now == nil {
		return time.Now().UTC()
	}
	return h.Now()
}

func (h *Harvester) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return h.Logger
}
