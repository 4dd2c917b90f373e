package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTask(t *testing.T, db *sqlite.DB) *harvest.Task {
	t.Helper()
	svc := sqlite.NewTaskService(db)
	task := &harvest.Task{
		Name: "morning-news",
		URLs: []string{"https://a.example", "https://b.example"},
		Rule: harvest.Daily(9, 0),
	}
	require.NoError(t, svc.CreateTask(context.Background(), task))
	return task
}

func TestTaskService_CreateTask(t *testing.T) {
	t.Parallel()

	t.Run("creates active task and round-trips the rule", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewTaskService(db)
		ctx := context.Background()

		next := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
		task := &harvest.Task{
			Name:         "weekly-digest",
			URLs:         []string{"https://a.example", "https://b.example"},
			Rule:         harvest.Weekly(time.Friday, 7, 30),
			NotifyTarget: "ops@example.com",
			NextFireAt:   &next,
		}
		require.NoError(t, svc.CreateTask(ctx, task))
		assert.NotEmpty(t, task.ID, "ID should be generated")
		assert.True(t, task.Active)

		found, err := svc.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, found.URLs)
		assert.Equal(t, harvest.Weekly(time.Friday, 7, 30), found.Rule)
		assert.Equal(t, "ops@example.com", found.NotifyTarget)
		require.NotNil(t, found.NextFireAt)
		assert.Equal(t, next, found.NextFireAt.UTC())
		assert.Nil(t, found.LastFiredAt)
	})

	t.Run("rejects invalid recurrence rule at registration", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewTaskService(db)

		task := &harvest.Task{
			Name: "bad-monthly",
			URLs: []string{"https://a.example"},
			Rule: harvest.Monthly(30, 9, 0),
		}
		err := svc.CreateTask(context.Background(), task)
		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))

		tasks, err := svc.FindTasks(context.Background(), harvest.TaskFilter{})
		require.NoError(t, err)
		assert.Empty(t, tasks, "rejected task must not be persisted")
	})

	t.Run("rejects task without URLs", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewTaskService(db)

		task := &harvest.Task{Name: "empty", Rule: harvest.Daily(9, 0)}
		err := svc.CreateTask(context.Background(), task)
		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("reports EUNAVAILABLE when the store is down", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		require.NoError(t, db.Open())
		require.NoError(t, db.Close())
		svc := sqlite.NewTaskService(db)

		task := &harvest.Task{
			Name: "offline",
			URLs: []string{"https://a.example"},
			Rule: harvest.Daily(9, 0),
		}
		err := svc.CreateTask(context.Background(), task)
		require.Error(t, err)
		assert.Equal(t, harvest.EUNAVAILABLE, harvest.ErrorCode(err))

		_, err = svc.FindTasks(context.Background(), harvest.TaskFilter{})
		require.Error(t, err)
		assert.Equal(t, harvest.EUNAVAILABLE, harvest.ErrorCode(err))
	})
}

func TestTaskService_FindTasks(t *testing.T) {
	t.Parallel()

	t.Run("filters by active flag", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewTaskService(db)
		ctx := context.Background()

		active := createTestTask(t, db)
		paused := createTestTask(t, db)
		require.NoError(t, svc.SetTaskActive(ctx, paused.ID, false))

		yes := true
		tasks, err := svc.FindTasks(ctx, harvest.TaskFilter{Active: &yes})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, active.ID, tasks[0].ID)

		no := false
		tasks, err = svc.FindTasks(ctx, harvest.TaskFilter{Active: &no})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, paused.ID, tasks[0].ID)
	})

	t.Run("FindTaskByID returns ENOTFOUND for unknown id", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewTaskService(db)

		_, err := svc.FindTaskByID(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	})
}

func TestTaskService_SetTaskActive(t *testing.T) {
	t.Parallel()

	t.Run("toggles and is idempotent", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewTaskService(db)
		ctx := context.Background()
		task := createTestTask(t, db)

		require.NoError(t, svc.SetTaskActive(ctx, task.ID, false))
		require.NoError(t, svc.SetTaskActive(ctx, task.ID, false))

		found, err := svc.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assert.False(t, found.Active)
	})

	t.Run("returns ENOTFOUND for unknown task", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewTaskService(db)

		err := svc.SetTaskActive(context.Background(), "missing", true)
		require.Error(t, err)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	})
}

func TestTaskService_SetTaskNextFire(t *testing.T) {
	t.Parallel()

	t.Run("sets and clears the next fire time", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewTaskService(db)
		ctx := context.Background()
		task := createTestTask(t, db)

		next := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
		require.NoError(t, svc.SetTaskNextFire(ctx, task.ID, &next))

		found, err := svc.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		require.NotNil(t, found.NextFireAt)
		assert.Equal(t, next, found.NextFireAt.UTC())

		require.NoError(t, svc.SetTaskNextFire(ctx, task.ID, nil))
		found, err = svc.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Nil(t, found.NextFireAt)
	})
}

func TestTaskService_RecordTaskFired(t *testing.T) {
	t.Parallel()

	t.Run("records the last fired time", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewTaskService(db)
		ctx := context.Background()
		task := createTestTask(t, db)

		firedAt := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
		require.NoError(t, svc.RecordTaskFired(ctx, task.ID, firedAt))

		found, err := svc.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		require.NotNil(t, found.LastFiredAt)
		assert.Equal(t, firedAt, found.LastFiredAt.UTC())
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("removes the task but keeps historical jobs", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		taskSvc := sqlite.NewTaskService(db)
		jobSvc := sqlite.NewJobService(db)
		ctx := context.Background()

		task := createTestTask(t, db)
		job := createTestJob(t, db, 1)

		require.NoError(t, taskSvc.DeleteTask(ctx, task.ID))

		_, err := taskSvc.FindTaskByID(ctx, task.ID)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))

		// Jobs previously spawned are independent records.
		_, err = jobSvc.FindJobByID(ctx, job.ID)
		assert.NoError(t, err)
	})

	t.Run("returns ENOTFOUND for unknown task", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewTaskService(db)

		err := svc.DeleteTask(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	})
}
