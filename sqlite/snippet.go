package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fwojciec/snipminer"
)

// Compile-time interface verification.
var _ snipminer.SnippetService = (*SnippetService)(nil)

// SnippetService implements snipminer.SnippetService using SQLite.
type SnippetService struct {
	db *DB
}

// NewSnippetService creates a new SnippetService.
func NewSnippetService(db *DB) *SnippetService {
	return &SnippetService{db: db}
}

const snippetColumns = "snippet_id, question_id, question_title, answer_id, code, language, votes, url, tags, scraped_at"

// WriteSnippets inserts snippets in a single transaction. Rows are keyed by
// snippet ID and code hash: every code block of an answer shares the ID and
// is stored separately, while rewriting the same block replaces it. No
// snippet is written if one is invalid.
func (s *SnippetService) WriteSnippets(ctx context.Context, snippets []*snipminer.CodeSnippet) error {
	for _, snippet := range snippets {
		if err := snippet.Validate(); err != nil {
			return err
		}
	}

	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO snippets (`+snippetColumns+`, code_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(snippet_id, code_hash) DO UPDATE SET
				question_id = excluded.question_id,
				question_title = excluded.question_title,
				answer_id = excluded.answer_id,
				language = excluded.language,
				votes = excluded.votes,
				url = excluded.url,
				tags = excluded.tags,
				scraped_at = excluded.scraped_at
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, snippet := range snippets {
			tags, err := encodeTags(snippet.Tags)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx,
				snippet.SnippetID, snippet.QuestionID, snippet.QuestionTitle, snippet.AnswerID,
				snippet.Code, snippet.Language, snippet.Votes, snippet.URL, tags,
				formatTime(snippet.ScrapedAt), hashContent(snippet.Code),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindSnippetByID retrieves a snippet by ID. When an answer has several
// code blocks the first stored block is returned.
func (s *SnippetService) FindSnippetByID(ctx context.Context, id string) (*snipminer.CodeSnippet, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+snippetColumns+" FROM snippets WHERE snippet_id = ? ORDER BY rowid LIMIT 1", id)

	snippet, err := scanSnippet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, snipminer.Errorf(snipminer.ENOTFOUND, "snippet not found")
	}
	if err != nil {
		return nil, err
	}
	return snippet, nil
}

// FindSnippets retrieves snippets matching the filter, ordered by question
// and then by answer.
func (s *SnippetService) FindSnippets(ctx context.Context, filter snipminer.SnippetFilter) ([]*snipminer.CodeSnippet, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + snippetColumns + " FROM snippets WHERE 1=1")

	if filter.QuestionID != nil {
		query.WriteString(" AND question_id = ?")
		args = append(args, *filter.QuestionID)
	}
	if filter.Language != nil {
		query.WriteString(" AND language = ?")
		args = append(args, *filter.Language)
	}

	query.WriteString(" ORDER BY question_id ASC, answer_id ASC, snippet_id ASC, rowid ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snippets := []*snipminer.CodeSnippet{}
	for rows.Next() {
		snippet, err := scanSnippet(rows)
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, snippet)
	}

	return snippets, rows.Err()
}

// DeleteSnippet permanently removes every code block stored under id.
func (s *SnippetService) DeleteSnippet(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM snippets WHERE snippet_id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return snipminer.Errorf(snipminer.ENOTFOUND, "snippet not found")
	}

	return nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row scanner) (*snipminer.CodeSnippet, error) {
	var snippet snipminer.CodeSnippet
	var tags, scrapedAt string

	if err := row.Scan(&snippet.SnippetID, &snippet.QuestionID, &snippet.QuestionTitle, &snippet.AnswerID,
		&snippet.Code, &snippet.Language, &snippet.Votes, &snippet.URL, &tags, &scrapedAt); err != nil {
		return nil, err
	}

	var err error
	if snippet.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	if snippet.ScrapedAt, err = parseRFC3339(scrapedAt, "scraped_at"); err != nil {
		return nil, err
	}

	return &snippet, nil
}
