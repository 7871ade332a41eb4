package sqlite

import (
	"context"
	"strings"

	"github.com/fwojciec/snipminer"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ snipminer.RunService = (*RunService)(nil)

// RunService implements snipminer.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun stores run under a newly generated ID.
func (s *RunService) CreateRun(ctx context.Context, run *snipminer.HarvestRun) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO harvest_runs (id, source, query, count, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.Query, run.Count, formatTime(run.StartedAt), formatTime(run.FinishedAt))

	return err
}

// FindRuns retrieves runs matching the filter, most recent first.
func (s *RunService) FindRuns(ctx context.Context, filter snipminer.RunFilter) ([]*snipminer.HarvestRun, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, source, query, count, started_at, finished_at FROM harvest_runs WHERE 1=1")

	if filter.Source != nil {
		query.WriteString(" AND source = ?")
		args = append(args, *filter.Source)
	}

	query.WriteString(" ORDER BY started_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*snipminer.HarvestRun{}
	for rows.Next() {
		var run snipminer.HarvestRun
		var startedAt, finishedAt string

		if err := rows.Scan(&run.ID, &run.Source, &run.Query, &run.Count, &startedAt, &finishedAt); err != nil {
			return nil, err
		}

		if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}
