// Package sqlite provides SQLite-based storage for harvested snippets,
// gists and harvest runs.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	pragmas := []string{"PRAGMA busy_timeout = 5000", "PRAGMA foreign_keys = ON"}
	if db.path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// withTx runs fn inside a transaction, committing if fn succeeds.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS snippets (
			snippet_id TEXT NOT NULL,
			question_id INTEGER NOT NULL,
			question_title TEXT NOT NULL DEFAULT '',
			answer_id INTEGER NOT NULL DEFAULT 0,
			code TEXT NOT NULL DEFAULT '',
			code_hash TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			votes INTEGER NOT NULL DEFAULT 0,
			url TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			scraped_at TEXT NOT NULL,
			PRIMARY KEY (snippet_id, code_hash)
		);

		CREATE INDEX IF NOT EXISTS idx_snippets_question_id ON snippets(question_id);
		CREATE INDEX IF NOT EXISTS idx_snippets_language ON snippets(language);

		CREATE TABLE IF NOT EXISTS gists (
			id TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			html_url TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT '',
			public INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_gists_author ON gists(author);

		CREATE TABLE IF NOT EXISTS gist_files (
			gist_id TEXT NOT NULL REFERENCES gists(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			filename TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT '',
			raw_url TEXT NOT NULL DEFAULT '',
			size INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (gist_id, filename)
		);

		CREATE TABLE IF NOT EXISTS harvest_runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			query TEXT NOT NULL DEFAULT '',
			count INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL DEFAULT ''
		);
	`

	_, err := db.db.Exec(schema)
	return err
}
