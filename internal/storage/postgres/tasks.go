package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type taskRepository struct {
	tx pgx.Tx
}

const selectTasksQuery = `
SELECT t.id,
       t.task_index,
       t.title,
       t.description,
       t.task_status_id,
       s.slug,
       t.assignee_id,
       COALESCE(ARRAY_AGG(tl.label_id ORDER BY tl.label_id) FILTER (WHERE tl.label_id IS NOT NULL), '{}'),
       t.created_at,
       t.updated_at
FROM tasks t
         JOIN task_statuses s ON s.id = t.task_status_id
         LEFT JOIN task_labels tl ON tl.task_id = t.id
`

const groupTasksClause = `
GROUP BY t.id, s.slug
ORDER BY t.created_at, t.id
`

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID,
		&task.Index,
		&task.Title,
		&task.Description,
		&task.TaskStatusID,
		&task.Status,
		&task.AssigneeID,
		&task.LabelIDs,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err, storage.ErrNotFound)
	}
	if task.LabelIDs == nil {
		task.LabelIDs = []string{}
	}
	return task, nil
}

func (r taskRepository) Create(ctx context.Context, task *models.Task) error {
	const insertTaskQuery = `
INSERT INTO tasks (id,
                   task_index,
                   title,
                   description,
                   task_status_id,
                   assignee_id,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.tx.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.Index,
		task.Title,
		task.Description,
		task.TaskStatusID,
		task.AssigneeID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return translateError(err, storage.ErrNotFound)
	}
	return r.insertLabels(ctx, task.ID, task.LabelIDs)
}

func (r taskRepository) insertLabels(ctx context.Context, taskID string, labelIDs []string) error {
	if len(labelIDs) == 0 {
		return nil
	}

	const insertTaskLabelsQuery = `
INSERT INTO task_labels (task_id, label_id)
SELECT $1, UNNEST($2::TEXT[])
ON CONFLICT DO NOTHING
`
	_, err := r.tx.Exec(ctx, insertTaskLabelsQuery, taskID, labelIDs)
	return translateError(err, storage.ErrNotFound)
}

func (r taskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	return scanTask(r.tx.QueryRow(ctx, selectTasksQuery+`WHERE t.id = $1`+groupTasksClause, id))
}

func (r taskRepository) FindByFilter(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	where, args := buildTaskFilter(filter)
	rows, err := r.tx.Query(ctx, selectTasksQuery+where+groupTasksClause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if !titleMatches(filter, task.Title) {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// titleMatches applies the title criterion with locale-independent folding.
func titleMatches(filter models.TaskFilter, title string) bool {
	return filter.TitleCont == nil || models.ContainsFold(title, *filter.TitleCont)
}

// buildTaskFilter returns a WHERE clause joining the present criteria other
// than the title with AND, and its positional arguments. A filter without
// such criteria yields no clause.
func buildTaskFilter(filter models.TaskFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg string) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "$?", "$"+strconv.Itoa(len(args))))
	}

	if filter.AssigneeID != nil {
		add(`t.assignee_id = $?`, *filter.AssigneeID)
	}
	if filter.Status != nil {
		add(`s.slug = $?`, *filter.Status)
	}
	if filter.LabelID != nil {
		add(`EXISTS (SELECT 1 FROM task_labels f WHERE f.task_id = t.id AND f.label_id = $?)`, *filter.LabelID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r taskRepository) Update(ctx context.Context, task *models.Task) error {
	const updateTaskQuery = `
UPDATE tasks
SET task_index     = $2,
    title          = $3,
    description    = $4,
    task_status_id = $5,
    assignee_id    = $6,
    updated_at     = $7
WHERE id = $1
`
	tag, err := r.tx.Exec(
		ctx,
		updateTaskQuery,
		task.ID,
		task.Index,
		task.Title,
		task.Description,
		task.TaskStatusID,
		task.AssigneeID,
		task.UpdatedAt,
	)
	if err != nil {
		return translateError(err, storage.ErrNotFound)
	}
	err = affectedOne(tag)
	if err != nil {
		return err
	}

	_, err = r.tx.Exec(ctx, `DELETE FROM task_labels WHERE task_id = $1`, task.ID)
	if err != nil {
		return err
	}
	return r.insertLabels(ctx, task.ID, task.LabelIDs)
}

func (r taskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return translateError(err, storage.ErrReferenced)
	}
	return affectedOne(tag)
}

func (r taskRepository) ExistsByAssignee(ctx context.Context, userID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE assignee_id = $1)`, userID)
}

func (r taskRepository) ExistsByStatus(ctx context.Context, statusID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE task_status_id = $1)`, statusID)
}

func (r taskRepository) ExistsByLabel(ctx context.Context, labelID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM task_labels WHERE label_id = $1)`, labelID)
}

func (r taskRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, query, arg).Scan(&exists)
	return exists, err
}
