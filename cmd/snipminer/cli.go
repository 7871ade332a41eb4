package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/snipminer"
	"github.com/fwojciec/snipminer/config"
	"github.com/fwojciec/snipminer/fs"
	"github.com/fwojciec/snipminer/harvest"
	snipslog "github.com/fwojciec/snipminer/slog"
)

// GistClient retrieves gists and, on request, the content of their files.
type GistClient interface {
	snipminer.GistSource
	FillContent(ctx context.Context, gist *snipminer.Gist, selector snipminer.FileSelector) error
}

// SnippetHarvester produces snippets from a Q&A site.
type SnippetHarvester interface {
	Search(ctx context.Context, query string, limit int) ([]*snipminer.CodeSnippet, error)
	Question(ctx context.Context, questionID int) ([]*snipminer.CodeSnippet, error)
	SearchDeep(ctx context.Context, query string, limit int, progress harvest.ProgressFunc) ([]*snipminer.CodeSnippet, error)
	FeedTag(ctx context.Context, tag string, limit int, progress harvest.ProgressFunc) ([]*snipminer.CodeSnippet, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	GistClient GistClient
	Harvester  SnippetHarvester

	// OutDir receives JSON exports. Empty disables the file sink.
	OutDir string

	// Store enables the SQLite sinks and run bookkeeping.
	Store    bool
	Snippets snipminer.SnippetService
	Gists    snipminer.GistService
	Runs     snipminer.RunService

	SnippetPublisher snipminer.SnippetWriter
	GistPublisher    snipminer.GistWriter

	// Now defaults to time.Now.
	Now func() time.Time
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `help:"YAML config file" default:"snipminer.yaml"`
	DB      string `name:"db" help:"SQLite database path"`
	Out     string `help:"Directory for JSON exports"`
	Store   bool   `help:"Persist records to SQLite"`
	Publish bool   `help:"Publish records to RabbitMQ"`
	Browser bool   `help:"Fetch Stack Overflow pages with a headless browser"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Gist        GistCmd        `cmd:"" help:"Fetch a single gist"`
	Gists       GistsCmd       `cmd:"" help:"Fetch a user's gists"`
	PublicGists PublicGistsCmd `cmd:"" name:"public-gists" help:"Fetch recent public gists"`
	SearchGists SearchGistsCmd `cmd:"" name:"search-gists" help:"Search recent public gists by description or file name"`
	Search      SearchCmd      `cmd:"" help:"Search Stack Overflow questions"`
	Question    QuestionCmd    `cmd:"" help:"Extract answer code from a Stack Overflow question"`
	Feed        FeedCmd        `cmd:"" help:"Extract answer code from a Stack Overflow tag feed"`
	Snippets    SnippetsCmd    `cmd:"" help:"List stored snippets"`
	Runs        RunsCmd        `cmd:"" help:"List recorded harvest runs"`
}

func (c *CLI) apply(cfg *config.Config) {
	if c.DB != "" {
		cfg.Database = c.DB
	}
	if c.Out != "" {
		cfg.OutputDir = c.Out
	}
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

func (d *Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// saveSnippets writes snippets to every configured sink, stopping at the
// first failure.
func (d *Dependencies) saveSnippets(name string, snippets []*snipminer.CodeSnippet) error {
	var sinks []snipminer.SnippetWriter
	if d.OutDir != "" {
		sinks = append(sinks, snipslog.NewLoggingSnippetWriter(fs.NewWriter(d.OutDir, name), "file", d.logger()))
	}
	if d.Store && d.Snippets != nil {
		sinks = append(sinks, snipslog.NewLoggingSnippetWriter(d.Snippets, "sqlite", d.logger()))
	}
	if d.SnippetPublisher != nil {
		sinks = append(sinks, snipslog.NewLoggingSnippetWriter(d.SnippetPublisher, "rabbitmq", d.logger()))
	}

	for _, sink := range sinks {
		if err := sink.WriteSnippets(d.Ctx, snippets); err != nil {
			return err
		}
	}
	if d.OutDir != "" {
		fmt.Fprintf(d.Stdout, "Saved %d snippets to %s\n", len(snippets), fs.NewWriter(d.OutDir, name).Path())
	}
	return nil
}

// saveGists is saveSnippets for gists.
func (d *Dependencies) saveGists(name string, gists []*snipminer.Gist) error {
	var sinks []snipminer.GistWriter
	if d.OutDir != "" {
		sinks = append(sinks, snipslog.NewLoggingGistWriter(fs.NewWriter(d.OutDir, name), "file", d.logger()))
	}
	if d.Store && d.Gists != nil {
		sinks = append(sinks, snipslog.NewLoggingGistWriter(d.Gists, "sqlite", d.logger()))
	}
	if d.GistPublisher != nil {
		sinks = append(sinks, snipslog.NewLoggingGistWriter(d.GistPublisher, "rabbitmq", d.logger()))
	}

	for _, sink := range sinks {
		if err := sink.WriteGists(d.Ctx, gists); err != nil {
			return err
		}
	}
	if d.OutDir != "" {
		fmt.Fprintf(d.Stdout, "Saved %d gists to %s\n", len(gists), fs.NewWriter(d.OutDir, name).Path())
	}
	return nil
}

// recordRun stores a HarvestRun when persistence is enabled. Failures are
// logged and never fail the command.
func (d *Dependencies) recordRun(source, query string, count int, startedAt time.Time) {
	if !d.Store || d.Runs == nil {
		return
	}
	run := &snipminer.HarvestRun{
		Source:     source,
		Query:      query,
		Count:      count,
		StartedAt:  startedAt,
		FinishedAt: d.now(),
	}
	if err := d.Runs.CreateRun(d.Ctx, run); err != nil {
		d.logger().Warn("record run failed", "source", source, "query", query, "error", err)
	}
}

func printSnippet(w io.Writer, s *snipminer.CodeSnippet) {
	lang := s.Language
	if lang == "" {
		lang = "-"
	}
	fmt.Fprintf(w, "%s  %s  %d votes  %s\n", s.SnippetID, lang, s.Votes, s.QuestionTitle)
}

func printGist(w io.Writer, g *snipminer.Gist) {
	fmt.Fprintf(w, "%s  %s  %d files  %s\n", g.ID, g.Author, len(g.Files), g.Description)
}

// progressPrinter reports question page progress on stderr.
func progressPrinter(w io.Writer) harvest.ProgressFunc {
	return func(event harvest.ProgressEvent) {
		switch event.Type {
		case harvest.ProgressStarted:
			fmt.Fprintf(w, "  Fetching %d questions\n", event.Total)
		case harvest.ProgressFailed:
			fmt.Fprintf(w, "  skip question %d: %v\n", event.QuestionID, event.Error)
		case harvest.ProgressFinished:
			fmt.Fprintf(w, "  Done %d/%d\n", event.Completed, event.Total)
		}
	}
}
