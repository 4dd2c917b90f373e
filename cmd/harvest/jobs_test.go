package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/harvest"
	main "github.com/fwojciec/harvest/cmd/harvest"
	"github.com/fwojciec/harvest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeps(stdout, stderr *bytes.Buffer) *main.Dependencies {
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
	}
}

func TestJobsListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists jobs with progress and label", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Jobs = &mock.JobService{
			FindJobsFn: func(_ context.Context, _ harvest.JobFilter) ([]*harvest.Job, error) {
				return []*harvest.Job{
					{ID: "job-1", Label: "news batch", TotalURLs: 4, CompletedURLs: 4, Status: harvest.JobCompleted},
					{ID: "job-2", Label: "docs", TotalURLs: 10, CompletedURLs: 3, Status: harvest.JobRunning},
				}, nil
			},
		}

		cmd := &main.JobsListCmd{}
		require.NoError(t, cmd.Run(deps))

		output := stdout.String()
		assert.Contains(t, output, "job-1")
		assert.Contains(t, output, "news batch")
		assert.Contains(t, output, "4/4")
		assert.Contains(t, output, "job-2")
		assert.Contains(t, output, "3/10")
	})

	t.Run("shows helpful message when no jobs exist", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Jobs = &mock.JobService{
			FindJobsFn: func(_ context.Context, _ harvest.JobFilter) ([]*harvest.Job, error) {
				return nil, nil
			},
		}

		cmd := &main.JobsListCmd{}
		require.NoError(t, cmd.Run(deps))

		assert.Contains(t, stdout.String(), "No jobs found")
	})
}

func TestJobsShowCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("shows outcomes for a job", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Jobs = &mock.JobService{
			FindJobByIDFn: func(_ context.Context, id string) (*harvest.Job, error) {
				return &harvest.Job{ID: id, Label: "batch", TotalURLs: 2, CompletedURLs: 2, Status: harvest.JobCompleted}, nil
			},
			FindOutcomesFn: func(_ context.Context, filter harvest.OutcomeFilter) ([]*harvest.Outcome, error) {
				require.NotNil(t, filter.JobID)
				assert.Equal(t, "job-1", *filter.JobID)
				return []*harvest.Outcome{
					{URL: "https://a.example", Title: "A", Status: harvest.OutcomeSuccess, WordCount: 12, CharCount: 70},
					{URL: "https://b.example", Status: harvest.OutcomeFailure, FailureReason: "timeout"},
				}, nil
			},
		}

		cmd := &main.JobsShowCmd{ID: "job-1"}
		require.NoError(t, cmd.Run(deps))

		output := stdout.String()
		assert.Contains(t, output, "https://a.example")
		assert.Contains(t, output, "12 words")
		assert.Contains(t, output, "https://b.example")
		assert.Contains(t, output, "timeout")
	})

	t.Run("returns ENOTFOUND for a missing job", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Jobs = &mock.JobService{
			FindJobByIDFn: func(_ context.Context, id string) (*harvest.Job, error) {
				return nil, harvest.Errorf(harvest.ENOTFOUND, "job not found")
			},
		}

		cmd := &main.JobsShowCmd{ID: "missing"}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
		assert.Contains(t, stderr.String(), "job not found")
	})
}

func TestJobsDeleteCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("requires --force", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)

		cmd := &main.JobsDeleteCmd{ID: "job-1"}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("deletes with --force", func(t *testing.T) {
		t.Parallel()

		deleted := ""
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Jobs = &mock.JobService{
			FindJobByIDFn: func(_ context.Context, id string) (*harvest.Job, error) {
				return &harvest.Job{ID: id}, nil
			},
			DeleteJobFn: func(_ context.Context, id string) error {
				deleted = id
				return nil
			},
		}

		cmd := &main.JobsDeleteCmd{ID: "job-1", Force: true}
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, "job-1", deleted)
		assert.Contains(t, stdout.String(), "Deleted job job-1")
	})
}
