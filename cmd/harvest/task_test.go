package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/harvest"
	main "github.com/fwojciec/harvest/cmd/harvest"
	"github.com/fwojciec/harvest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskAddCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("registers a daily task", func(t *testing.T) {
		t.Parallel()

		var created *harvest.Task
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Tasks = &mock.TaskService{
			CreateTaskFn: func(_ context.Context, task *harvest.Task) error {
				task.ID = "task-1"
				created = task
				return nil
			},
		}

		cmd := &main.TaskAddCmd{
			Name:   "news",
			URLs:   []string{"https://a.example", "https://b.example"},
			Daily:  "09:30",
			Notify: "ops@example.com",
		}
		require.NoError(t, cmd.Run(deps))

		require.NotNil(t, created)
		assert.Equal(t, harvest.RuleDaily, created.Rule.Kind)
		assert.Equal(t, 9, created.Rule.Hour)
		assert.Equal(t, 30, created.Rule.Minute)
		assert.Equal(t, "ops@example.com", created.NotifyTarget)
		require.NotNil(t, created.NextFireAt)
		assert.Contains(t, stdout.String(), "Registered task news")
	})

	t.Run("registers a weekly task", func(t *testing.T) {
		t.Parallel()

		var created *harvest.Task
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Tasks = &mock.TaskService{
			CreateTaskFn: func(_ context.Context, task *harvest.Task) error {
				created = task
				return nil
			},
		}

		cmd := &main.TaskAddCmd{
			Name:   "weekly-digest",
			URLs:   []string{"https://a.example"},
			Weekly: "Monday 08:15",
		}
		require.NoError(t, cmd.Run(deps))

		require.NotNil(t, created)
		assert.Equal(t, harvest.RuleWeekly, created.Rule.Kind)
		assert.Equal(t, time.Monday, created.Rule.Weekday)
		assert.Equal(t, 8, created.Rule.Hour)
		assert.Equal(t, 15, created.Rule.Minute)
	})

	t.Run("registers an interval task", func(t *testing.T) {
		t.Parallel()

		var created *harvest.Task
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Tasks = &mock.TaskService{
			CreateTaskFn: func(_ context.Context, task *harvest.Task) error {
				created = task
				return nil
			},
		}

		cmd := &main.TaskAddCmd{
			Name:  "hourly",
			URLs:  []string{"https://a.example"},
			Every: 6,
		}
		require.NoError(t, cmd.Run(deps))

		require.NotNil(t, created)
		assert.Equal(t, harvest.RuleInterval, created.Rule.Kind)
		assert.Equal(t, 6, created.Rule.EveryHours)
	})

	t.Run("rejects zero or multiple recurrence flags", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)

		cmd := &main.TaskAddCmd{Name: "bad", URLs: []string{"https://a.example"}}
		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))

		cmd = &main.TaskAddCmd{Name: "bad", URLs: []string{"https://a.example"}, Daily: "09:00", Every: 2}
		err = cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("rejects malformed times and weekdays", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)

		for _, cmd := range []*main.TaskAddCmd{
			{Name: "t", URLs: []string{"https://a.example"}, Daily: "nine"},
			{Name: "t", URLs: []string{"https://a.example"}, Weekly: "Funday 09:00"},
			{Name: "t", URLs: []string{"https://a.example"}, Monthly: "fifteenth 09:00"},
		} {
			err := cmd.Run(deps)
			require.Error(t, err)
			assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
		}
	})

	t.Run("expands sitemap arguments", func(t *testing.T) {
		t.Parallel()

		var created *harvest.Task
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Sitemaps = &mock.URLSource{
			DiscoverFn: func(_ context.Context, sourceURL string) ([]string, error) {
				assert.Equal(t, "https://example.com/sitemap.xml", sourceURL)
				return []string{"https://example.com/a", "https://example.com/b"}, nil
			},
		}
		deps.Tasks = &mock.TaskService{
			CreateTaskFn: func(_ context.Context, task *harvest.Task) error {
				created = task
				return nil
			},
		}

		cmd := &main.TaskAddCmd{
			Name:    "site",
			URLs:    []string{"https://example.com/sitemap.xml"},
			Daily:   "09:00",
			Sitemap: true,
		}
		require.NoError(t, cmd.Run(deps))

		require.NotNil(t, created)
		assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, created.URLs)
	})
}

func TestTaskListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists tasks with state and next fire", func(t *testing.T) {
		t.Parallel()

		next := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Tasks = &mock.TaskService{
			FindTasksFn: func(_ context.Context, _ harvest.TaskFilter) ([]*harvest.Task, error) {
				return []*harvest.Task{
					{ID: "task-1", Name: "news", Rule: harvest.Daily(9, 0), Active: true, NextFireAt: &next},
					{ID: "task-2", Name: "dormant", Rule: harvest.EveryHours(2), Active: false},
				}, nil
			},
		}

		cmd := &main.TaskListCmd{}
		require.NoError(t, cmd.Run(deps))

		output := stdout.String()
		assert.Contains(t, output, "task-1")
		assert.Contains(t, output, "active")
		assert.Contains(t, output, "2026-03-01T09:00:00Z")
		assert.Contains(t, output, "task-2")
		assert.Contains(t, output, "paused")
	})
}

func TestTaskPauseResumeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("pause deactivates and clears the trigger", func(t *testing.T) {
		t.Parallel()

		var setActive *bool
		var clearedNext bool
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Tasks = &mock.TaskService{
			SetTaskActiveFn: func(_ context.Context, id string, active bool) error {
				setActive = &active
				return nil
			},
			SetTaskNextFireFn: func(_ context.Context, id string, next *time.Time) error {
				clearedNext = next == nil
				return nil
			},
		}

		cmd := &main.TaskPauseCmd{ID: "task-1"}
		require.NoError(t, cmd.Run(deps))

		require.NotNil(t, setActive)
		assert.False(t, *setActive)
		assert.True(t, clearedNext)
	})

	t.Run("resume reactivates and schedules a fresh trigger", func(t *testing.T) {
		t.Parallel()

		var setActive *bool
		var newNext *time.Time
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Tasks = &mock.TaskService{
			FindTaskByIDFn: func(_ context.Context, id string) (*harvest.Task, error) {
				return &harvest.Task{ID: id, Name: "news", Rule: harvest.Daily(9, 0)}, nil
			},
			SetTaskActiveFn: func(_ context.Context, id string, active bool) error {
				setActive = &active
				return nil
			},
			SetTaskNextFireFn: func(_ context.Context, id string, next *time.Time) error {
				newNext = next
				return nil
			},
		}

		cmd := &main.TaskResumeCmd{ID: "task-1"}
		require.NoError(t, cmd.Run(deps))

		require.NotNil(t, setActive)
		assert.True(t, *setActive)
		require.NotNil(t, newNext)
		assert.True(t, newNext.After(time.Now().UTC().Add(-time.Minute)))
	})

	t.Run("resume surfaces ENOTFOUND for a deleted task", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newTestDeps(stdout, stderr)
		deps.Tasks = &mock.TaskService{
			FindTaskByIDFn: func(_ context.Context, id string) (*harvest.Task, error) {
				return nil, harvest.Errorf(harvest.ENOTFOUND, "task not found")
			},
		}

		cmd := &main.TaskResumeCmd{ID: "gone"}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	})
}
