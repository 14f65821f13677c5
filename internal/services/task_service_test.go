package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/nullable"
)

type taskFixture struct {
	env     *testEnv
	user    *models.User
	draft   *models.TaskStatus
	review  *models.TaskStatus
	feature *models.Label
	bug     *models.Label
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	return newTaskFixtureIn(t, newTestEnv(t))
}

func newTaskFixtureIn(t *testing.T, env *testEnv) *taskFixture {
	t.Helper()
	return &taskFixture{
		env:     env,
		user:    env.createUser(t, "jack@example.com", false),
		draft:   env.createStatus(t, "Draft", "draft"),
		review:  env.createStatus(t, "To Review", "to_review"),
		feature: env.createLabel(t, "feature"),
		bug:     env.createLabel(t, "bug"),
	}
}

func (f *taskFixture) countTasks(t *testing.T) int {
	t.Helper()
	tasks, err := f.env.tasks.List(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	return len(tasks)
}

func TestTaskCreate(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.env.tasks.Create(ctx, CreateTaskParams{
		Index:       ptr(3),
		Title:       "New Task Title",
		Description: ptr("Some description"),
		Status:      "draft",
		AssigneeID:  &f.user.ID,
		LabelIDs:    []string{f.feature.ID, f.bug.ID, f.feature.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "draft", task.Status)
	assert.Equal(t, f.draft.ID, task.TaskStatusID)
	assert.ElementsMatch(t, []string{f.feature.ID, f.bug.ID}, task.LabelIDs)
	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, f.user.ID, *task.AssigneeID)
	require.NotNil(t, task.Index)
	assert.Equal(t, 3, *task.Index)

	stored, err := f.env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Task Title", stored.Title)
	assert.Equal(t, "draft", stored.Status)
	assert.ElementsMatch(t, []string{f.bug.ID, f.feature.ID}, stored.LabelIDs)
}

func TestTaskCreateMinimal(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.env.tasks.Create(context.Background(), CreateTaskParams{
		Title:  "T",
		Status: "to_review",
	})
	require.NoError(t, err)
	assert.Nil(t, task.AssigneeID)
	assert.Nil(t, task.Description)
	assert.Nil(t, task.Index)
	assert.Empty(t, task.LabelIDs)
	assert.Equal(t, "to_review", task.Status)
}

func TestTaskCreateUnresolvedReferences(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	_, err := f.env.tasks.Create(ctx, CreateTaskParams{
		Title:  "Task",
		Status: "missing",
	})
	assert.ErrorIs(t, err, ErrTaskStatusNotFound)
	assert.ErrorContains(t, err, `"missing"`)

	_, err = f.env.tasks.Create(ctx, CreateTaskParams{
		Title:      "Task",
		Status:     "draft",
		AssigneeID: ptr("missing"),
	})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.env.tasks.Create(ctx, CreateTaskParams{
		Title:    "Task",
		Status:   "draft",
		LabelIDs: []string{f.feature.ID, "missing"},
	})
	assert.ErrorIs(t, err, ErrLabelNotFound)

	assert.Zero(t, f.countTasks(t))
}

func TestTaskCreateValidation(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.env.tasks.Create(context.Background(), CreateTaskParams{Status: "draft"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.env.tasks.Create(context.Background(), CreateTaskParams{Title: "Task"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaskUpdateOmittedFieldsUnchanged(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.env.createTask(t, CreateTaskParams{
		Index:       ptr(1),
		Title:       "Test Task",
		Description: ptr("For Tests"),
		Status:      "draft",
		AssigneeID:  &f.user.ID,
		LabelIDs:    []string{f.feature.ID},
	})

	updated, err := f.env.tasks.Update(ctx, task.ID, UpdateTaskParams{
		Title: nullable.Value("Updated Title"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Updated Title", updated.Title)
	assert.Equal(t, task.Description, updated.Description)
	assert.Equal(t, task.Index, updated.Index)
	assert.Equal(t, task.AssigneeID, updated.AssigneeID)
	assert.Equal(t, "draft", updated.Status)
	assert.Equal(t, []string{f.feature.ID}, updated.LabelIDs)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)
}

func TestTaskUpdateValues(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.env.createTask(t, CreateTaskParams{
		Title:    "Test Task",
		Status:   "draft",
		LabelIDs: []string{f.feature.ID},
	})

	updated, err := f.env.tasks.Update(ctx, task.ID, UpdateTaskParams{
		Index:       nullable.Value(7),
		Description: nullable.Value("Updated description"),
		Status:      nullable.Value("to_review"),
		AssigneeID:  nullable.Value(f.user.ID),
		LabelIDs:    nullable.Value([]string{f.bug.ID}),
	})
	require.NoError(t, err)

	assert.Equal(t, "Test Task", updated.Title)
	require.NotNil(t, updated.Index)
	assert.Equal(t, 7, *updated.Index)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Updated description", *updated.Description)
	assert.Equal(t, "to_review", updated.Status)
	assert.Equal(t, f.review.ID, updated.TaskStatusID)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, f.user.ID, *updated.AssigneeID)
	assert.Equal(t, []string{f.bug.ID}, updated.LabelIDs)
}

func TestTaskUpdateClearsOptionalFields(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.env.createTask(t, CreateTaskParams{
		Index:       ptr(1),
		Title:       "Test Task",
		Description: ptr("For Tests"),
		Status:      "draft",
		AssigneeID:  &f.user.ID,
		LabelIDs:    []string{f.feature.ID, f.bug.ID},
	})

	updated, err := f.env.tasks.Update(ctx, task.ID, UpdateTaskParams{
		Index:       nullable.Null[int](),
		Description: nullable.Null[string](),
		AssigneeID:  nullable.Null[string](),
		LabelIDs:    nullable.Value([]string{}),
	})
	require.NoError(t, err)

	assert.Nil(t, updated.Index)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.AssigneeID)
	assert.Empty(t, updated.LabelIDs)
	assert.Equal(t, "Test Task", updated.Title)

	task = f.env.createTask(t, CreateTaskParams{
		Title:    "Another",
		Status:   "draft",
		LabelIDs: []string{f.feature.ID},
	})
	updated, err = f.env.tasks.Update(ctx, task.ID, UpdateTaskParams{
		LabelIDs: nullable.Null[[]string](),
	})
	require.NoError(t, err)
	assert.Empty(t, updated.LabelIDs)

	// The user is no longer referenced and can be deleted.
	err = f.env.users.Delete(ctx, f.user.Actor(), f.user.ID)
	assert.NoError(t, err)
}

func TestTaskUpdateIsAtomic(t *testing.T) {
	forEachStore(t, func(t *testing.T, env *testEnv) {
		f := newTaskFixtureIn(t, env)
		ctx := context.Background()
		task := f.env.createTask(t, CreateTaskParams{
			Title:    "Test Task",
			Status:   "draft",
			LabelIDs: []string{f.feature.ID},
		})

		cases := map[string]struct {
			params UpdateTaskParams
			err    error
		}{
			"unknown status": {
				params: UpdateTaskParams{
					Title:  nullable.Value("Changed"),
					Status: nullable.Value("missing"),
				},
				err: ErrTaskStatusNotFound,
			},
			"unknown assignee": {
				params: UpdateTaskParams{
					Title:      nullable.Value("Changed"),
					AssigneeID: nullable.Value("missing"),
				},
				err: ErrUserNotFound,
			},
			"unknown label": {
				params: UpdateTaskParams{
					Title:    nullable.Value("Changed"),
					Status:   nullable.Value("to_review"),
					LabelIDs: nullable.Value([]string{f.bug.ID, "missing"}),
				},
				err: ErrLabelNotFound,
			},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := f.env.tasks.Update(ctx, task.ID, tc.params)
				assert.ErrorIs(t, err, tc.err)

				stored, err := f.env.tasks.GetByID(ctx, task.ID)
				require.NoError(t, err)
				assert.Equal(t, "Test Task", stored.Title)
				assert.Equal(t, "draft", stored.Status)
				assert.Nil(t, stored.AssigneeID)
				assert.Equal(t, []string{f.feature.ID}, stored.LabelIDs)
			})
		}
	})
}

func TestTaskUpdateRejectsClearingRequiredFields(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.env.createTask(t, CreateTaskParams{Title: "Test Task", Status: "draft"})

	_, err := f.env.tasks.Update(ctx, task.ID, UpdateTaskParams{Title: nullable.Null[string]()})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.env.tasks.Update(ctx, task.ID, UpdateTaskParams{Title: nullable.Value("")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.env.tasks.Update(ctx, task.ID, UpdateTaskParams{Status: nullable.Null[string]()})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaskUpdateMissing(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.env.tasks.Update(context.Background(), "missing", UpdateTaskParams{
		Title: nullable.Value("Title"),
	})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, env *testEnv) {
		f := newTaskFixtureIn(t, env)
		ctx := context.Background()
		task := f.env.createTask(t, CreateTaskParams{
			Title:      "To be deleted",
			Status:     "draft",
			AssigneeID: &f.user.ID,
			LabelIDs:   []string{f.bug.ID},
		})

		err := f.env.tasks.Delete(ctx, task.ID)
		require.NoError(t, err)

		_, err = f.env.tasks.GetByID(ctx, task.ID)
		assert.ErrorIs(t, err, ErrTaskNotFound)

		err = f.env.tasks.Delete(ctx, task.ID)
		assert.ErrorIs(t, err, ErrTaskNotFound)

		// Deleting the task releases its references.
		require.NoError(t, f.env.labels.Delete(ctx, f.bug.ID))
		require.NoError(t, f.env.statuses.Delete(ctx, f.draft.ID))
	})
}

func TestTaskListFilters(t *testing.T) {
	forEachStore(t, func(t *testing.T, env *testEnv) {
		f := newTaskFixtureIn(t, env)
		ctx := context.Background()
		other := f.env.createUser(t, "will@example.com", false)

		t1 := f.env.createTask(t, CreateTaskParams{
			Title:      "Create new feature",
			Status:     "draft",
			AssigneeID: &f.user.ID,
			LabelIDs:   []string{f.feature.ID},
		})
		t2 := f.env.createTask(t, CreateTaskParams{
			Title:      "Fix bug",
			Status:     "to_review",
			AssigneeID: &other.ID,
			LabelIDs:   []string{f.bug.ID},
		})
		t3 := f.env.createTask(t, CreateTaskParams{
			Title:    "Document the FEATURE flag",
			Status:   "draft",
			LabelIDs: []string{f.feature.ID, f.bug.ID},
		})

		ids := func(tasks []*models.Task) []string {
			out := make([]string, 0, len(tasks))
			for _, task := range tasks {
				out = append(out, task.ID)
			}
			return out
		}

		cases := map[string]struct {
			filter models.TaskFilter
			want   []string
		}{
			"no criteria":    {models.TaskFilter{}, []string{t1.ID, t2.ID, t3.ID}},
			"title":          {models.TaskFilter{TitleCont: ptr("feature")}, []string{t1.ID, t3.ID}},
			"title case":     {models.TaskFilter{TitleCont: ptr("FIX")}, []string{t2.ID}},
			"assignee":       {models.TaskFilter{AssigneeID: &other.ID}, []string{t2.ID}},
			"status":         {models.TaskFilter{Status: ptr("draft")}, []string{t1.ID, t3.ID}},
			"label":          {models.TaskFilter{LabelID: &f.bug.ID}, []string{t2.ID, t3.ID}},
			"unknown status": {models.TaskFilter{Status: ptr("published")}, []string{}},
			"all criteria": {
				models.TaskFilter{
					TitleCont:  ptr("feature"),
					AssigneeID: &f.user.ID,
					Status:     ptr("draft"),
					LabelID:    &f.feature.ID,
				},
				[]string{t1.ID},
			},
			"all criteria mismatch": {
				models.TaskFilter{
					TitleCont:  ptr("feature"),
					AssigneeID: &f.user.ID,
					Status:     ptr("draft"),
					LabelID:    &f.bug.ID,
				},
				[]string{},
			},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				tasks, err := f.env.tasks.List(ctx, tc.filter)
				require.NoError(t, err)
				assert.ElementsMatch(t, tc.want, ids(tasks))
			})
		}
	})
}
