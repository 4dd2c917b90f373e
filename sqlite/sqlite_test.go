package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/harvest/sqlite"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory database for testing.
func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		// Verify tables exist by querying them
		ctx := context.Background()

		var jobCount int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&jobCount)
		require.NoError(t, err)

		var outcomeCount int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM outcomes").Scan(&outcomeCount)
		require.NoError(t, err)

		var taskCount int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&taskCount)
		require.NoError(t, err)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		err := db.Open()
		require.Error(t, err)
	})

	t.Run("close is safe when never opened", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		require.NoError(t, db.Close())
	})
}
