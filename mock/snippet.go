package mock

import (
	"context"

	"github.com/fwojciec/snipminer"
)

var _ snipminer.QuestionParser = (*QuestionParser)(nil)

// QuestionParser is a mock implementation of snipminer.QuestionParser.
type QuestionParser struct {
	ParseSearchResultsFn func(html string, limit int) ([]snipminer.SnippetFragment, error)
	ParseQuestionPageFn  func(html string, questionID int) ([]snipminer.SnippetFragment, error)
}

func (p *QuestionParser) ParseSearchResults(html string, limit int) ([]snipminer.SnippetFragment, error) {
	return p.ParseSearchResultsFn(html, limit)
}

func (p *QuestionParser) ParseQuestionPage(html string, questionID int) ([]snipminer.SnippetFragment, error) {
	return p.ParseQuestionPageFn(html, questionID)
}

var _ snipminer.SnippetWriter = (*SnippetWriter)(nil)

// SnippetWriter is a mock implementation of snipminer.SnippetWriter.
type SnippetWriter struct {
	WriteSnippetsFn func(ctx context.Context, snippets []*snipminer.CodeSnippet) error
}

func (w *SnippetWriter) WriteSnippets(ctx context.Context, snippets []*snipminer.CodeSnippet) error {
	return w.WriteSnippetsFn(ctx, snippets)
}

var _ snipminer.SnippetService = (*SnippetService)(nil)

// SnippetService is a mock implementation of snipminer.SnippetService.
type SnippetService struct {
	WriteSnippetsFn   func(ctx context.Context, snippets []*snipminer.CodeSnippet) error
	FindSnippetByIDFn func(ctx context.Context, id string) (*snipminer.CodeSnippet, error)
	FindSnippetsFn    func(ctx context.Context, filter snipminer.SnippetFilter) ([]*snipminer.CodeSnippet, error)
	DeleteSnippetFn   func(ctx context.Context, id string) error
}

func (s *SnippetService) WriteSnippets(ctx context.Context, snippets []*snipminer.CodeSnippet) error {
	return s.WriteSnippetsFn(ctx, snippets)
}

func (s *SnippetService) FindSnippetByID(ctx context.Context, id string) (*snipminer.CodeSnippet, error) {
	return s.FindSnippetByIDFn(ctx, id)
}

func (s *SnippetService) FindSnippets(ctx context.Context, filter snipminer.SnippetFilter) ([]*snipminer.CodeSnippet, error) {
	return s.FindSnippetsFn(ctx, filter)
}

func (s *SnippetService) DeleteSnippet(ctx context.Context, id string) error {
	return s.DeleteSnippetFn(ctx, id)
}
