package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/snipminer"
)

// SnippetsCmd is the "snippets" subcommand.
type SnippetsCmd struct {
	Language string `short:"l" help:"Only snippets classified as this language"`
	Question int    `short:"q" help:"Only snippets of this question"`
	Limit    int    `short:"n" default:"20" help:"Maximum number of snippets"`
}

// Run executes the snippets command.
func (c *SnippetsCmd) Run(deps *Dependencies) error {
	filter := snipminer.SnippetFilter{Limit: c.Limit}
	if c.Language != "" {
		filter.Language = &c.Language
	}
	if c.Question > 0 {
		filter.QuestionID = &c.Question
	}

	snippets, err := deps.Snippets.FindSnippets(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
		return err
	}

	if len(snippets) == 0 {
		fmt.Fprintln(deps.Stdout, "No snippets found. Use --store with a harvest command to save some.")
		return nil
	}
	for _, s := range snippets {
		printSnippet(deps.Stdout, s)
	}
	return nil
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Source string `short:"s" help:"Only runs from this source (gist or so)"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of runs"`
}

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	filter := snipminer.RunFilter{Limit: c.Limit}
	if c.Source != "" {
		filter.Source = &c.Source
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %q  %d records  %s  %s\n",
			r.ID, r.Source, r.Query, r.Count,
			r.StartedAt.Format(time.RFC3339),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
		)
	}
	return nil
}
