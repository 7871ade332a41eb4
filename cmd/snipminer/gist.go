package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/snipminer"
	"github.com/fwojciec/snipminer/fs"
)

// GistCmd is the "gist" subcommand.
type GistCmd struct {
	ID      string `arg:"" help:"Gist ID"`
	File    string `short:"f" help:"Fetch content of this file only"`
	Content bool   `short:"c" help:"Fetch content of every file"`
}

// Run executes the gist command.
func (c *GistCmd) Run(deps *Dependencies) error {
	started := deps.now()

	gist, err := deps.GistClient.FetchGist(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
		return err
	}

	if c.File != "" {
		if _, ok := gist.File(c.File); !ok {
			err := snipminer.Errorf(snipminer.ENOTFOUND, "gist %s has no file %q", gist.ID, c.File)
			fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
			return err
		}
		if err := deps.GistClient.FillContent(deps.Ctx, gist, snipminer.FileNamed(c.File)); err != nil {
			return err
		}
	} else if c.Content {
		if err := deps.GistClient.FillContent(deps.Ctx, gist, snipminer.AllFiles()); err != nil {
			return err
		}
	}

	printGist(deps.Stdout, gist)
	if c.File != "" {
		f, _ := gist.File(c.File)
		fmt.Fprintln(deps.Stdout, f.Content)
	}

	gists := []*snipminer.Gist{gist}
	if err := deps.saveGists(fs.GistIDFileName(gist.ID), gists); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
		return err
	}
	deps.recordRun(snipminer.SourceGist, c.ID, 1, started)
	return nil
}

// GistsCmd is the "gists" subcommand.
type GistsCmd struct {
	User    string `arg:"" help:"GitHub username"`
	Limit   int    `short:"n" default:"30" help:"Maximum number of gists"`
	Content bool   `short:"c" help:"Fetch content of every file"`
}

// Run executes the gists command.
func (c *GistsCmd) Run(deps *Dependencies) error {
	started := deps.now()

	gists, err := deps.GistClient.FetchUserGists(deps.Ctx, c.User, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
		return err
	}
	if c.Content {
		if err := fillAll(deps, gists); err != nil {
			return err
		}
	}

	return finishGists(deps, fs.GistFileName(c.User), c.User, gists, started)
}

// PublicGistsCmd is the "public-gists" subcommand.
type PublicGistsCmd struct {
	Since string `help:"Only gists updated at or after this ISO 8601 timestamp"`
	Limit int    `short:"n" default:"100" help:"Maximum number of gists"`
}

// Run executes the public-gists command.
func (c *PublicGistsCmd) Run(deps *Dependencies) error {
	started := deps.now()

	if c.Since != "" {
		if _, err := time.Parse(time.RFC3339, c.Since); err != nil {
			err := snipminer.Errorf(snipminer.EINVALID, "invalid --since %q: want RFC 3339 timestamp", c.Since)
			fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
			return err
		}
	}

	gists, err := deps.GistClient.FetchPublicGists(deps.Ctx, c.Since, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
		return err
	}

	return finishGists(deps, fs.GistFileName("public"), "public", gists, started)
}

// SearchGistsCmd is the "search-gists" subcommand.
type SearchGistsCmd struct {
	Query string `arg:"" help:"Text to find in descriptions or file names"`
	Limit int    `short:"n" default:"30" help:"Maximum number of gists"`
}

// Run executes the search-gists command.
func (c *SearchGistsCmd) Run(deps *Dependencies) error {
	started := deps.now()

	gists, err := deps.GistClient.SearchGists(deps.Ctx, c.Query, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
		return err
	}

	return finishGists(deps, fs.GistFileName("search_"+c.Query), c.Query, gists, started)
}

func fillAll(deps *Dependencies, gists []*snipminer.Gist) error {
	for _, g := range gists {
		if err := deps.GistClient.FillContent(deps.Ctx, g, snipminer.AllFiles()); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
			return err
		}
	}
	return nil
}

func finishGists(deps *Dependencies, name, query string, gists []*snipminer.Gist, started time.Time) error {
	if len(gists) == 0 {
		fmt.Fprintln(deps.Stdout, "No gists found.")
	}
	for _, g := range gists {
		printGist(deps.Stdout, g)
	}

	if err := deps.saveGists(name, gists); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", snipminer.ErrorMessage(err))
		return err
	}
	deps.recordRun(snipminer.SourceGist, query, len(gists), started)
	return nil
}
