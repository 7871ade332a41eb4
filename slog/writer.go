package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/snipminer"
)

// Ensure LoggingSnippetWriter implements snipminer.SnippetWriter.
var _ snipminer.SnippetWriter = (*LoggingSnippetWriter)(nil)

// LoggingSnippetWriter wraps a SnippetWriter with logging. Sink names the
// destination in log records (e.g. "sqlite", "json").
type LoggingSnippetWriter struct {
	next   snipminer.SnippetWriter
	sink   string
	logger *slog.Logger
}

// NewLoggingSnippetWriter creates a new LoggingSnippetWriter.
func NewLoggingSnippetWriter(next snipminer.SnippetWriter, sink string, logger *slog.Logger) *LoggingSnippetWriter {
	return &LoggingSnippetWriter{next: next, sink: sink, logger: logger}
}

// WriteSnippets delegates to the wrapped writer and logs the operation.
func (w *LoggingSnippetWriter) WriteSnippets(ctx context.Context, snippets []*snipminer.CodeSnippet) (err error) {
	defer func(begin time.Time) {
		w.logger.Info("write snippets",
			"sink", w.sink,
			"count", len(snippets),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteSnippets(ctx, snippets)
}

// Ensure LoggingGistWriter implements snipminer.GistWriter.
var _ snipminer.GistWriter = (*LoggingGistWriter)(nil)

// LoggingGistWriter wraps a GistWriter with logging.
type LoggingGistWriter struct {
	next   snipminer.GistWriter
	sink   string
	logger *slog.Logger
}

// NewLoggingGistWriter creates a new LoggingGistWriter.
func NewLoggingGistWriter(next snipminer.GistWriter, sink string, logger *slog.Logger) *LoggingGistWriter {
	return &LoggingGistWriter{next: next, sink: sink, logger: logger}
}

// WriteGists delegates to the wrapped writer and logs the operation.
func (w *LoggingGistWriter) WriteGists(ctx context.Context, gists []*snipminer.Gist) (err error) {
	defer func(begin time.Time) {
		w.logger.Info("write gists",
			"sink", w.sink,
			"count", len(gists),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteGists(ctx, gists)
}
