package mock

import (
	"context"

	"github.com/fwojciec/snipminer"
)

var _ snipminer.RunService = (*RunService)(nil)

// RunService is a mock implementation of snipminer.RunService.
type RunService struct {
	CreateRunFn func(ctx context.Context, run *snipminer.HarvestRun) error
	FindRunsFn  func(ctx context.Context, filter snipminer.RunFilter) ([]*snipminer.HarvestRun, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *snipminer.HarvestRun) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRuns(ctx context.Context, filter snipminer.RunFilter) ([]*snipminer.HarvestRun, error) {
	return s.FindRunsFn(ctx, filter)
}
