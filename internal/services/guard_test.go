package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

func TestCanDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, env *testEnv) {
		f := newTaskFixtureIn(t, env)
		f.env.createTask(t, CreateTaskParams{
			Title:      "Task",
			Status:     "draft",
			AssigneeID: &f.user.ID,
			LabelIDs:   []string{f.feature.ID},
		})

		cases := []struct {
			name string
			kind entityKind
			id   string
			want bool
		}{
			{"assigned user", kindUser, f.user.ID, false},
			{"used status", kindTaskStatus, f.draft.ID, false},
			{"unused status", kindTaskStatus, f.review.ID, true},
			{"attached label", kindLabel, f.feature.ID, false},
			{"free label", kindLabel, f.bug.ID, true},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				var ok bool
				err := env.store.InTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
					var err error
					ok, err = canDelete(ctx, tx, tc.kind, tc.id)
					return err
				})
				require.NoError(t, err)
				assert.Equal(t, tc.want, ok)
			})
		}
	})
}

// Deleting past the guard must still be refused by the store and surface
// as a conflict.
func TestUnguardedDeleteIsConflict(t *testing.T) {
	forEachStore(t, func(t *testing.T, env *testEnv) {
		f := newTaskFixtureIn(t, env)
		f.env.createTask(t, CreateTaskParams{
			Title:      "Task",
			Status:     "draft",
			AssigneeID: &f.user.ID,
			LabelIDs:   []string{f.feature.ID},
		})

		deletes := map[string]func(ctx context.Context, tx storage.Tx) error{
			"user": func(ctx context.Context, tx storage.Tx) error {
				return tx.Users().Delete(ctx, f.user.ID)
			},
			"task status": func(ctx context.Context, tx storage.Tx) error {
				return tx.TaskStatuses().Delete(ctx, f.draft.ID)
			},
			"label": func(ctx context.Context, tx storage.Tx) error {
				return tx.Labels().Delete(ctx, f.feature.ID)
			},
		}
		for name, fn := range deletes {
			t.Run(name, func(t *testing.T) {
				err := env.store.InTx(context.Background(), fn)
				assert.ErrorIs(t, translateStorageError(err, ErrNotFound), ErrConflict)
			})
		}

		tasks, err := env.tasks.List(context.Background(), models.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, []string{f.feature.ID}, tasks[0].LabelIDs)
	})
}
