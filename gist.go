package snipminer

import "context"

// SourceGist names gist harvests in run bookkeeping.
const SourceGist = "gist"

// GistFile is a single file of a gist.
type GistFile struct {
	Filename string `json:"filename"`

	// Language is the language reported by the gist API, lower-cased.
	// It is never replaced by classifier output.
	Language string `json:"language"`

	RawURL string `json:"raw_url"`
	Size   int    `json:"size"`

	// Content is only populated after a separate content fetch.
	Content string `json:"content"`
}

// Gist is a hosted collection of named files with shared metadata.
// Files are kept in API response order, which is display order only.
type Gist struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Files       []GistFile `json:"files"`
	Author      string     `json:"author"`
	HTMLURL     string     `json:"html_url"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
	Public      bool       `json:"public"`
}

// Validate returns an error if the gist contains invalid fields.
func (g *Gist) Validate() error {
	if g.ID == "" {
		return Errorf(EINVALID, "gist ID required")
	}
	for _, f := range g.Files {
		if f.Filename == "" {
			return Errorf(EINVALID, "gist %s: file name required", g.ID)
		}
	}
	return nil
}

// File returns the file with the given name.
func (g *Gist) File(name string) (GistFile, bool) {
	for _, f := range g.Files {
		if f.Filename == name {
			return f, true
		}
	}
	return GistFile{}, false
}

// FileSelector chooses which files of a gist a caller operates on.
// Selection is always explicit; nothing in this package picks a file implicitly.
type FileSelector func(files []GistFile) []GistFile

// AllFiles selects every file in order.
func AllFiles() FileSelector {
	return func(files []GistFile) []GistFile {
		return files
	}
}

// FileNamed selects the file with the given name, if present.
func FileNamed(name string) FileSelector {
	return func(files []GistFile) []GistFile {
		for _, f := range files {
			if f.Filename == name {
				return []GistFile{f}
			}
		}
		return nil
	}
}

// FirstFile selects the first file in API response order.
func FirstFile() FileSelector {
	return func(files []GistFile) []GistFile {
		if len(files) == 0 {
			return nil
		}
		return files[:1]
	}
}

// GistSource retrieves gists from the gist API.
type GistSource interface {
	// FetchGist retrieves a single gist by ID.
	// Returns ENOTFOUND if the gist does not exist.
	FetchGist(ctx context.Context, id string) (*Gist, error)

	// FetchUserGists retrieves up to limit gists owned by username.
	FetchUserGists(ctx context.Context, username string, limit int) ([]*Gist, error)

	// FetchPublicGists retrieves up to limit recent public gists,
	// optionally only those updated after since.
	FetchPublicGists(ctx context.Context, since string, limit int) ([]*Gist, error)

	// SearchGists returns listed gists whose description or file names
	// contain query, case-insensitively.
	SearchGists(ctx context.Context, query string, limit int) ([]*Gist, error)

	// FetchContent returns the text of a gist file.
	// Returns an empty string when the file has no raw URL or the fetch fails.
	FetchContent(ctx context.Context, file GistFile) string
}

// GistWriter writes gists to an output sink.
type GistWriter interface {
	WriteGists(ctx context.Context, gists []*Gist) error
}

// GistService represents a service for managing stored gists.
type GistService interface {
	GistWriter

	// FindGistByID retrieves a gist and its files by ID.
	// Returns ENOTFOUND if gist does not exist.
	FindGistByID(ctx context.Context, id string) (*Gist, error)

	// FindGists retrieves gists matching the filter.
	FindGists(ctx context.Context, filter GistFilter) ([]*Gist, error)

	// DeleteGist permanently removes a gist and its files.
	// Returns ENOTFOUND if gist does not exist.
	DeleteGist(ctx context.Context, id string) error
}

// GistFilter represents a filter for FindGists.
type GistFilter struct {
	Author *string `json:"author"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
