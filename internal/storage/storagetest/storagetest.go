// Package storagetest holds the behaviour every storage.Store must share.
// Backends run it from their own tests.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

// Run runs the suite, calling newStore for an empty store per subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("RollbackOnError", func(t *testing.T) { testRollbackOnError(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("TaskStatuses", func(t *testing.T) { testTaskStatuses(t, newStore(t)) })
	t.Run("Labels", func(t *testing.T) { testLabels(t, newStore(t)) })
	t.Run("Tasks", func(t *testing.T) { testTasks(t, newStore(t)) })
	t.Run("DeleteReferenced", func(t *testing.T) { testDeleteReferenced(t, newStore(t)) })
	t.Run("FindByFilter", func(t *testing.T) { testFindByFilter(t, newStore(t)) })
}

var errAbort = errors.New("abort")

// base keeps creation times strictly increasing so listings are ordered.
var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newID(t *testing.T) string {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}

func inTx(t *testing.T, store storage.Store, fn func(ctx context.Context, tx storage.Tx) error) error {
	t.Helper()
	return store.InTx(context.Background(), fn)
}

func mustTx(t *testing.T, store storage.Store, fn func(ctx context.Context, tx storage.Tx) error) {
	t.Helper()
	require.NoError(t, inTx(t, store, fn))
}

func newUser(t *testing.T, email string, n int) *models.User {
	at := base.Add(time.Duration(n) * time.Second)
	return &models.User{
		ID:        newID(t),
		Email:     email,
		Password:  "digest",
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func newStatus(t *testing.T, slug string, n int) *models.TaskStatus {
	at := base.Add(time.Duration(n) * time.Second)
	return &models.TaskStatus{
		ID:        newID(t),
		Name:      "Status " + slug,
		Slug:      slug,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func newLabel(t *testing.T, name string, n int) *models.Label {
	at := base.Add(time.Duration(n) * time.Second)
	return &models.Label{
		ID:        newID(t),
		Name:      name,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func newTask(t *testing.T, title, statusID string, n int) *models.Task {
	at := base.Add(time.Duration(n) * time.Second)
	return &models.Task{
		ID:           newID(t),
		Title:        title,
		TaskStatusID: statusID,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func testRollbackOnError(t *testing.T, store storage.Store) {
	user := newUser(t, "jack@example.com", 0)

	err := inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		err := tx.Users().Create(ctx, user)
		if err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.Users().FindByID(ctx, user.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		return nil
	})
}

func testUsers(t *testing.T, store storage.Store) {
	jack := newUser(t, "jack@example.com", 0)
	jack.FirstName = new(string)
	*jack.FirstName = "Jack"
	will := newUser(t, "will@example.com", 1)

	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		require.NoError(t, tx.Users().Create(ctx, jack))
		require.NoError(t, tx.Users().Create(ctx, will))
		return nil
	})

	err := inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		return tx.Users().Create(ctx, newUser(t, "jack@example.com", 2))
	})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		found, err := tx.Users().FindByEmail(ctx, "jack@example.com")
		require.NoError(t, err)
		assert.Equal(t, jack.ID, found.ID)
		require.NotNil(t, found.FirstName)
		assert.Equal(t, "Jack", *found.FirstName)
		assert.Nil(t, found.LastName)

		users, err := tx.Users().FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, jack.ID, users[0].ID)
		assert.Equal(t, will.ID, users[1].ID)

		exists, err := tx.Users().ExistsByEmail(ctx, "will@example.com")
		require.NoError(t, err)
		assert.True(t, exists)
		return nil
	})

	will.Email = "jack@example.com"
	err = inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		return tx.Users().Update(ctx, will)
	})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	jack.FirstName = nil
	jack.IsAdmin = true
	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		require.NoError(t, tx.Users().Update(ctx, jack))

		found, err := tx.Users().FindByID(ctx, jack.ID)
		require.NoError(t, err)
		assert.Nil(t, found.FirstName)
		assert.True(t, found.IsAdmin)

		assert.ErrorIs(t, tx.Users().Update(ctx, newUser(t, "ghost@example.com", 3)), storage.ErrNotFound)
		assert.ErrorIs(t, tx.Users().Lock(ctx, "missing"), storage.ErrNotFound)
		assert.NoError(t, tx.Users().Lock(ctx, jack.ID))
		return nil
	})

	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		require.NoError(t, tx.Users().Delete(ctx, jack.ID))
		assert.ErrorIs(t, tx.Users().Delete(ctx, jack.ID), storage.ErrNotFound)
		return nil
	})
}

func testTaskStatuses(t *testing.T, store storage.Store) {
	draft := newStatus(t, "draft", 0)

	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		return tx.TaskStatuses().Create(ctx, draft)
	})

	sameSlug := newStatus(t, "draft", 1)
	sameSlug.Name = "Another"
	sameName := newStatus(t, "other", 2)
	sameName.Name = draft.Name
	for _, status := range []*models.TaskStatus{sameSlug, sameName} {
		err := inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
			return tx.TaskStatuses().Create(ctx, status)
		})
		assert.ErrorIs(t, err, storage.ErrDuplicate)
	}

	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		found, err := tx.TaskStatuses().FindBySlug(ctx, "draft")
		require.NoError(t, err)
		assert.Equal(t, draft.ID, found.ID)
		assert.Equal(t, draft.Name, found.Name)

		_, err = tx.TaskStatuses().FindBySlug(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		exists, err := tx.TaskStatuses().ExistsByName(ctx, draft.Name)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = tx.TaskStatuses().ExistsBySlug(ctx, "published")
		require.NoError(t, err)
		assert.False(t, exists)

		draft.Slug = "rough_draft"
		require.NoError(t, tx.TaskStatuses().Update(ctx, draft))
		found, err = tx.TaskStatuses().FindByID(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, "rough_draft", found.Slug)

		statuses, err := tx.TaskStatuses().FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, statuses, 1)

		require.NoError(t, tx.TaskStatuses().Delete(ctx, draft.ID))
		assert.ErrorIs(t, tx.TaskStatuses().Delete(ctx, draft.ID), storage.ErrNotFound)
		return nil
	})
}

func testLabels(t *testing.T, store storage.Store) {
	feature := newLabel(t, "feature", 0)
	bug := newLabel(t, "bug", 1)

	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		require.NoError(t, tx.Labels().Create(ctx, feature))
		require.NoError(t, tx.Labels().Create(ctx, bug))
		return nil
	})

	bug.Name = "feature"
	err := inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		return tx.Labels().Update(ctx, bug)
	})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		labels, err := tx.Labels().FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, labels, 2)
		assert.Equal(t, "feature", labels[0].Name)
		assert.Equal(t, "bug", labels[1].Name)

		exists, err := tx.Labels().ExistsByName(ctx, "bug")
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = tx.Labels().FindByID(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		return nil
	})
}

type fixture struct {
	jack, will     *models.User
	draft, publish *models.TaskStatus
	feature, bug   *models.Label
}

func seed(t *testing.T, store storage.Store) fixture {
	f := fixture{
		jack:    newUser(t, "jack@example.com", 0),
		will:    newUser(t, "will@example.com", 1),
		draft:   newStatus(t, "draft", 2),
		publish: newStatus(t, "published", 3),
		feature: newLabel(t, "feature", 4),
		bug:     newLabel(t, "bug", 5),
	}
	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		for _, u := range []*models.User{f.jack, f.will} {
			require.NoError(t, tx.Users().Create(ctx, u))
		}
		for _, s := range []*models.TaskStatus{f.draft, f.publish} {
			require.NoError(t, tx.TaskStatuses().Create(ctx, s))
		}
		for _, l := range []*models.Label{f.feature, f.bug} {
			require.NoError(t, tx.Labels().Create(ctx, l))
		}
		return nil
	})
	return f
}

func testTasks(t *testing.T, store storage.Store) {
	f := seed(t, store)

	task := newTask(t, "Write docs", f.draft.ID, 10)
	index := 7
	task.Index = &index
	task.AssigneeID = &f.jack.ID
	task.LabelIDs = []string{f.feature.ID, f.bug.ID}

	bare := newTask(t, "Bare", f.publish.ID, 11)

	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		require.NoError(t, tx.Tasks().Create(ctx, task))
		require.NoError(t, tx.Tasks().Create(ctx, bare))

		found, err := tx.Tasks().FindByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Write docs", found.Title)
		assert.Equal(t, "draft", found.Status)
		require.NotNil(t, found.Index)
		assert.Equal(t, 7, *found.Index)
		require.NotNil(t, found.AssigneeID)
		assert.Equal(t, f.jack.ID, *found.AssigneeID)
		assert.ElementsMatch(t, []string{f.feature.ID, f.bug.ID}, found.LabelIDs)

		found, err = tx.Tasks().FindByID(ctx, bare.ID)
		require.NoError(t, err)
		assert.Nil(t, found.Index)
		assert.Nil(t, found.Description)
		assert.Nil(t, found.AssigneeID)
		assert.NotNil(t, found.LabelIDs)
		assert.Empty(t, found.LabelIDs)
		return nil
	})

	missing := []*models.Task{
		newTask(t, "No status", "missing", 12),
		func() *models.Task {
			task := newTask(t, "No assignee", f.draft.ID, 13)
			ghost := "missing"
			task.AssigneeID = &ghost
			return task
		}(),
		func() *models.Task {
			task := newTask(t, "No label", f.draft.ID, 14)
			task.LabelIDs = []string{"missing"}
			return task
		}(),
	}
	for i, task := range missing {
		t.Run(fmt.Sprintf("missing reference %d", i), func(t *testing.T) {
			err := inTx(t, store, func(ctx context.Context, tx storage.Tx) error {
				return tx.Tasks().Create(ctx, task)
			})
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}

	task.Title = "Write more docs"
	task.Index = nil
	task.AssigneeID = nil
	task.TaskStatusID = f.publish.ID
	task.LabelIDs = []string{f.bug.ID}
	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		require.NoError(t, tx.Tasks().Update(ctx, task))

		found, err := tx.Tasks().FindByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Write more docs", found.Title)
		assert.Equal(t, "published", found.Status)
		assert.Nil(t, found.Index)
		assert.Nil(t, found.AssigneeID)
		assert.Equal(t, []string{f.bug.ID}, found.LabelIDs)

		require.NoError(t, tx.Tasks().Delete(ctx, task.ID))
		_, err = tx.Tasks().FindByID(ctx, task.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, tx.Tasks().Delete(ctx, task.ID), storage.ErrNotFound)
		assert.ErrorIs(t, tx.Tasks().Update(ctx, task), storage.ErrNotFound)
		return nil
	})
}

func testDeleteReferenced(t *testing.T, store storage.Store) {
	f := seed(t, store)

	task := newTask(t, "Task", f.draft.ID, 10)
	task.AssigneeID = &f.jack.ID
	task.LabelIDs = []string{f.feature.ID}
	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		return tx.Tasks().Create(ctx, task)
	})

	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		referenced, err := tx.Tasks().ExistsByAssignee(ctx, f.jack.ID)
		require.NoError(t, err)
		assert.True(t, referenced)

		referenced, err = tx.Tasks().ExistsByAssignee(ctx, f.will.ID)
		require.NoError(t, err)
		assert.False(t, referenced)

		referenced, err = tx.Tasks().ExistsByStatus(ctx, f.draft.ID)
		require.NoError(t, err)
		assert.True(t, referenced)

		referenced, err = tx.Tasks().ExistsByLabel(ctx, f.feature.ID)
		require.NoError(t, err)
		assert.True(t, referenced)

		referenced, err = tx.Tasks().ExistsByLabel(ctx, f.bug.ID)
		require.NoError(t, err)
		assert.False(t, referenced)
		return nil
	})

	deletes := map[string]func(ctx context.Context, tx storage.Tx) error{
		"user": func(ctx context.Context, tx storage.Tx) error {
			return tx.Users().Delete(ctx, f.jack.ID)
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
			assert.ErrorIs(t, inTx(t, store, fn), storage.ErrReferenced)
		})
	}

	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		found, err := tx.Tasks().FindByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{f.feature.ID}, found.LabelIDs)

		require.NoError(t, tx.Tasks().Delete(ctx, task.ID))
		require.NoError(t, tx.Labels().Delete(ctx, f.feature.ID))
		require.NoError(t, tx.TaskStatuses().Delete(ctx, f.draft.ID))
		require.NoError(t, tx.Users().Delete(ctx, f.jack.ID))
		return nil
	})
}

func testFindByFilter(t *testing.T, store storage.Store) {
	f := seed(t, store)

	fix := newTask(t, "Fix Login Bug", f.draft.ID, 10)
	fix.AssigneeID = &f.jack.ID
	fix.LabelIDs = []string{f.bug.ID}

	docs := newTask(t, "Write docs", f.publish.ID, 11)
	docs.AssigneeID = &f.will.ID
	docs.LabelIDs = []string{f.feature.ID, f.bug.ID}

	prefix := newTask(t, "prefix fixture", f.draft.ID, 12)

	mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
		for _, task := range []*models.Task{fix, docs, prefix} {
			require.NoError(t, tx.Tasks().Create(ctx, task))
		}
		return nil
	})

	str := func(s string) *string { return &s }
	cases := []struct {
		name   string
		filter models.TaskFilter
		want   []string
	}{
		{"empty", models.TaskFilter{}, []string{fix.ID, docs.ID, prefix.ID}},
		{"title case-insensitive", models.TaskFilter{TitleCont: str("FIX")}, []string{fix.ID, prefix.ID}},
		{"title no match", models.TaskFilter{TitleCont: str("deploy")}, []string{}},
		{"assignee", models.TaskFilter{AssigneeID: str(f.will.ID)}, []string{docs.ID}},
		{"status", models.TaskFilter{Status: str("draft")}, []string{fix.ID, prefix.ID}},
		{"label", models.TaskFilter{LabelID: str(f.bug.ID)}, []string{fix.ID, docs.ID}},
		{"unknown status", models.TaskFilter{Status: str("missing")}, []string{}},
		{
			"conjunction",
			models.TaskFilter{TitleCont: str("fix"), Status: str("draft"), LabelID: str(f.bug.ID)},
			[]string{fix.ID},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mustTx(t, store, func(ctx context.Context, tx storage.Tx) error {
				tasks, err := tx.Tasks().FindByFilter(ctx, tc.filter)
				require.NoError(t, err)

				ids := make([]string, 0, len(tasks))
				for _, task := range tasks {
					ids = append(ids, task.ID)
				}
				assert.Equal(t, tc.want, ids)
				return nil
			})
		})
	}
}
