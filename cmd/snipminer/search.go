package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fwojciec/snipminer"
	"github.com/fwojciec/snipminer/fs"
)

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Search query"`
	Limit int    `short:"n" default:"10" help:"Maximum number of search results"`
	Deep  bool   `short:"d" help:"Extract answer code from every result"`
}

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	started := deps.now()

	var snippets []*snipminer.CodeSnippet
	var err error
	if c.Deep {
		snippets, err = deps.Harvester.SearchDeep(deps.Ctx, c.Query, c.Limit, progressPrinter(deps.Stderr))
	} else {
		snippets, err = deps.Harvester.Search(deps.Ctx, c.Query, c.Limit)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
		return err
	}

	return finishSnippets(deps, fs.SnippetFileName(c.Query), c.Query, snippets, started)
}

// QuestionCmd is the "question" subcommand.
type QuestionCmd struct {
	ID int `arg:"" help:"Question ID"`
}

// Run executes the question command.
func (c *QuestionCmd) Run(deps *Dependencies) error {
	started := deps.now()

	snippets, err := deps.Harvester.Question(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
		return err
	}

	id := strconv.Itoa(c.ID)
	return finishSnippets(deps, fs.SnippetFileName("question_"+id), id, snippets, started)
}

// FeedCmd is the "feed" subcommand.
type FeedCmd struct {
	Tag   string `arg:"" help:"Question tag"`
	Limit int    `short:"n" default:"10" help:"Maximum number of feed entries"`
}

// Run executes the feed command.
func (c *FeedCmd) Run(deps *Dependencies) error {
	started := deps.now()

	snippets, err := deps.Harvester.FeedTag(deps.Ctx, c.Tag, c.Limit, progressPrinter(deps.Stderr))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
		return err
	}

	return finishSnippets(deps, fs.SnippetFileName("tag_"+c.Tag), c.Tag, snippets, started)
}

func finishSnippets(deps *Dependencies, name, query string, snippets []*snipminer.CodeSnippet, started time.Time) error {
	if len(snippets) == 0 {
		fmt.Fprintln(deps.Stdout, "No snippets found.")
	}
	for _, s := range snippets {
		printSnippet(deps.Stdout, s)
	}

	if err := deps.saveSnippets(name, snippets); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
		return err
	}
	deps.recordRun(snipminer.SourceStackOverflow, query, len(snippets), started)
	return nil
}
