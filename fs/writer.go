// Package fs exports harvested records as JSON files.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/snipminer"
)

// SnippetFileName returns the export file name for a Stack Overflow query.
// Example: "parse json" → so_parse_json.json
func SnippetFileName(query string) string {
	return "so_" + sanitize(query) + ".json"
}

// GistFileName returns the export file name for a user's gists.
// Example: "octocat" → gists_octocat.json
func GistFileName(username string) string {
	return "gists_" + sanitize(username) + ".json"
}

// GistIDFileName returns the export file name for a single gist.
func GistIDFileName(id string) string {
	return "gist_" + sanitize(id) + ".json"
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
}

// Ensure Writer implements the writer interfaces at compile time.
var (
	_ snipminer.SnippetWriter = (*Writer)(nil)
	_ snipminer.GistWriter    = (*Writer)(nil)
)

// Writer writes a batch of records as an indented JSON array to a single
// file. Each write replaces the file atomically: data goes to a temporary
// file in the same directory which is then renamed over the target.
type Writer struct {
	dir  string
	name string
}

// NewWriter creates a Writer for dir/name.
func NewWriter(dir, name string) *Writer {
	return &Writer{dir: dir, name: name}
}

// Path returns the file the Writer replaces.
func (w *Writer) Path() string {
	return filepath.Join(w.dir, w.name)
}

// WriteSnippets writes snippets as a JSON array.
func (w *Writer) WriteSnippets(ctx context.Context, snippets []*snipminer.CodeSnippet) error {
	if snippets == nil {
		snippets = []*snipminer.CodeSnippet{}
	}
	return w.write(ctx, snippets)
}

// WriteGists writes gists as a JSON array.
func (w *Writer) WriteGists(ctx context.Context, gists []*snipminer.Gist) error {
	if gists == nil {
		gists = []*snipminer.Gist{}
	}
	return w.write(ctx, gists)
}

func (w *Writer) write(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.name == "" {
		return snipminer.Errorf(snipminer.EINVALID, "export file name required")
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(w.dir, w.name+".tmp*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	// Removing after a successful rename fails harmlessly.
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, w.Path())
}
