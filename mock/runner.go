package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.JobRunner = (*JobRunner)(nil)

// JobRunner is a mock implementation of harvest.JobRunner.
type JobRunner struct {
	RunFn func(ctx context.Context, label string, urls []string) (*harvest.Job, []*harvest.Outcome, error)
}

func (r *JobRunner) Run(ctx context.Context, label string, urls []string) (*harvest.Job, []*harvest.Outcome, error) {
	return r.RunFn(ctx, label, urls)
}
