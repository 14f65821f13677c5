package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-manager/internal/storage"
	"github.com/adanyl0v/go-task-manager/internal/storage/storagetest"
)

// TestStore runs against the database in POSTGRES_TEST_URL. Every subtest
// starts from truncated tables.
func TestStore(t *testing.T) {
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := New(pool)
	require.NoError(t, store.Migrate(ctx))

	storagetest.Run(t, func(t *testing.T) storage.Store {
		_, err := pool.Exec(ctx, `TRUNCATE task_labels, tasks, labels, task_statuses, users`)
		require.NoError(t, err)
		return store
	})
}
