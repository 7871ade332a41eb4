package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fwojciec/snipminer"
)

// Compile-time interface verification.
var _ snipminer.GistService = (*GistService)(nil)

// GistService implements snipminer.GistService using SQLite.
// Files are stored with their position so API order survives a round trip.
type GistService struct {
	db *DB
}

// NewGistService creates a new GistService.
func NewGistService(db *DB) *GistService {
	return &GistService{db: db}
}

// WriteGists inserts gists in a single transaction. A gist that is
// already stored is replaced together with all of its files.
func (s *GistService) WriteGists(ctx context.Context, gists []*snipminer.Gist) error {
	for _, gist := range gists {
		if err := gist.Validate(); err != nil {
			return err
		}
	}

	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, gist := range gists {
			if err := writeGist(ctx, tx, gist); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeGist(ctx context.Context, tx *sql.Tx, gist *snipminer.Gist) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM gist_files WHERE gist_id = ?", gist.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO gists (id, description, author, html_url, created_at, updated_at, public)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			author = excluded.author,
			html_url = excluded.html_url,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			public = excluded.public
	`, gist.ID, gist.Description, gist.Author, gist.HTMLURL, gist.CreatedAt, gist.UpdatedAt, gist.Public); err != nil {
		return err
	}

	for i, f := range gist.Files {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO gist_files (gist_id, position, filename, language, raw_url, size, content, content_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, gist.ID, i, f.Filename, f.Language, f.RawURL, f.Size, f.Content, hashContent(f.Content)); err != nil {
			return err
		}
	}

	return nil
}

// FindGistByID retrieves a gist and its files by ID.
func (s *GistService) FindGistByID(ctx context.Context, id string) (*snipminer.Gist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, description, author, html_url, created_at, updated_at, public
		FROM gists
		WHERE id = ?
	`, id)

	gist, err := scanGist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, snipminer.Errorf(snipminer.ENOTFOUND, "gist not found")
	}
	if err != nil {
		return nil, err
	}

	if gist.Files, err = s.findFiles(ctx, gist.ID); err != nil {
		return nil, err
	}
	return gist, nil
}

// FindGists retrieves gists matching the filter, most recently updated first.
func (s *GistService) FindGists(ctx context.Context, filter snipminer.GistFilter) ([]*snipminer.Gist, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, description, author, html_url, created_at, updated_at, public FROM gists WHERE 1=1")

	if filter.Author != nil {
		query.WriteString(" AND author = ?")
		args = append(args, *filter.Author)
	}

	query.WriteString(" ORDER BY updated_at DESC, id ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}

	gists := []*snipminer.Gist{}
	for rows.Next() {
		gist, err := scanGist(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		gists = append(gists, gist)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// The single connection must be released before files are queried.
	rows.Close()

	for _, gist := range gists {
		if gist.Files, err = s.findFiles(ctx, gist.ID); err != nil {
			return nil, err
		}
	}
	return gists, nil
}

// DeleteGist permanently removes a gist and its files.
func (s *GistService) DeleteGist(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM gists WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return snipminer.Errorf(snipminer.ENOTFOUND, "gist not found")
	}

	return nil
}

func (s *GistService) findFiles(ctx context.Context, gistID string) ([]snipminer.GistFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, language, raw_url, size, content
		FROM gist_files
		WHERE gist_id = ?
		ORDER BY position ASC
	`, gistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []snipminer.GistFile{}
	for rows.Next() {
		var f snipminer.GistFile
		if err := rows.Scan(&f.Filename, &f.Language, &f.RawURL, &f.Size, &f.Content); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func scanGist(row scanner) (*snipminer.Gist, error) {
	var gist snipminer.Gist
	if err := row.Scan(&gist.ID, &gist.Description, &gist.Author, &gist.HTMLURL,
		&gist.CreatedAt, &gist.UpdatedAt, &gist.Public); err != nil {
		return nil, err
	}
	return &gist, nil
}
