package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.JobService = (*JobService)(nil)

// JobService is a mock implementation of harvest.JobService.
type JobService struct {
	CreateJobFn     func(ctx context.Context, job *harvest.Job) error
	RecordOutcomeFn func(ctx context.Context, outcome *harvest.Outcome) error
	CompleteJobFn   func(ctx context.Context, id string) error
	FindJobByIDFn   func(ctx context.Context, id string) (*harvest.Job, error)
	FindJobsFn      func(ctx context.Context, filter harvest.JobFilter) ([]*harvest.Job, error)
	FindOutcomesFn  func(ctx context.Context, filter harvest.OutcomeFilter) ([]*harvest.Outcome, error)
	DeleteJobFn     func(ctx context.Context, id string) error
}

func (s *JobService) CreateJob(ctx context.Context, job *harvest.Job) error {
	return s.CreateJobFn(ctx, job)
}

func (s *JobService) RecordOutcome(ctx context.Context, outcome *harvest.Outcome) error {
	return s.RecordOutcomeFn(ctx, outcome)
}

func (s *JobService) CompleteJob(ctx context.Context, id string) error {
	return s.CompleteJobFn(ctx, id)
}

func (s *JobService) FindJobByID(ctx context.Context, id string) (*harvest.Job, error) {
	return s.FindJobByIDFn(ctx, id)
}

func (s *JobService) FindJobs(ctx context.Context, filter harvest.JobFilter) ([]*harvest.Job, error) {
	return s.FindJobsFn(ctx, filter)
}

func (s *JobService) FindOutcomes(ctx context.Context, filter harvest.OutcomeFilter) ([]*harvest.Outcome, error) {
	return s.FindOutcomesFn(ctx, filter)
}

func (s *JobService) DeleteJob(ctx context.Context, id string) error {
	return s.DeleteJobFn(ctx, id)
}
