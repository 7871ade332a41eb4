package snipminer

import (
	"context"
	"time"
)

// HarvestRun records one harvesting command and how many records it produced.
type HarvestRun struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Query      string    `json:"query"`
	Count      int       `json:"count"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *HarvestRun) Validate() error {
	if r.Source == "" {
		return Errorf(EINVALID, "run source required")
	}
	if r.StartedAt.IsZero() {
		return Errorf(EINVALID, "run start time required")
	}
	return nil
}

// RunService represents a service for recording harvest runs.
type RunService interface {
	// CreateRun stores a run, assigning its ID.
	CreateRun(ctx context.Context, run *HarvestRun) error

	// FindRuns retrieves runs, most recent first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*HarvestRun, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	Source *string `json:"source"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
