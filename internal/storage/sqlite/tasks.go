package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type taskRepository struct {
	tx *sql.Tx
}

const selectTasksQuery = `SELECT t.id, t.task_index, t.title, t.description, t.task_status_id, s.slug,
            t.assignee_id, t.created_at, t.updated_at
        FROM tasks t
        JOIN task_statuses s ON s.id = t.task_status_id`

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
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err, storage.ErrNotFound)
	}
	return task, nil
}

func (r taskRepository) Create(ctx context.Context, task *models.Task) error {
	_, err := r.tx.ExecContext(
		ctx,
		`INSERT INTO tasks(id, task_index, title, description, task_status_id, assignee_id, created_at, updated_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.Index,
		task.Title,
		task.Description,
		task.TaskStatusID,
		task.AssigneeID,
		task.CreatedAt.UTC(),
		task.UpdatedAt.UTC(),
	)
	if err != nil {
		return translateError(err, storage.ErrNotFound)
	}
	return r.insertLabels(ctx, task.ID, task.LabelIDs)
}

func (r taskRepository) insertLabels(ctx context.Context, taskID string, labelIDs []string) error {
	for _, labelID := range labelIDs {
		_, err := r.tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO task_labels(task_id, label_id) VALUES(?, ?)`,
			taskID,
			labelID,
		)
		if err != nil {
			return translateError(err, storage.ErrNotFound)
		}
	}
	return nil
}

func (r taskRepository) loadLabels(ctx context.Context, task *models.Task) error {
	rows, err := r.tx.QueryContext(ctx, `SELECT label_id FROM task_labels WHERE task_id = ? ORDER BY label_id`, task.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	task.LabelIDs = make([]string, 0)
	for rows.Next() {
		var labelID string
		err = rows.Scan(&labelID)
		if err != nil {
			return err
		}
		task.LabelIDs = append(task.LabelIDs, labelID)
	}
	return rows.Err()
}

func (r taskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	task, err := scanTask(r.tx.QueryRowContext(ctx, selectTasksQuery+` WHERE t.id = ?`, id))
	if err != nil {
		return nil, err
	}
	err = r.loadLabels(ctx, task)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r taskRepository) FindByFilter(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	where, args := buildTaskFilter(filter)
	tasks, err := r.query(ctx, selectTasksQuery+where+` ORDER BY t.created_at, t.id`, args...)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		err = r.loadLabels(ctx, task)
		if err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// query reads every row before returning so that the label lookups do not
// run while the task cursor is open.
func (r taskRepository) query(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.tx.QueryContext(ctx, query, args...)
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
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// buildTaskFilter returns a WHERE clause joining the present criteria with
// AND, and its arguments. An empty filter yields no clause.
func buildTaskFilter(filter models.TaskFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.TitleCont != nil {
		conds = append(conds, `instr(casefold(t.title), casefold(?)) > 0`)
		args = append(args, *filter.TitleCont)
	}
	if filter.AssigneeID != nil {
		conds = append(conds, `t.assignee_id = ?`)
		args = append(args, *filter.AssigneeID)
	}
	if filter.Status != nil {
		conds = append(conds, `s.slug = ?`)
		args = append(args, *filter.Status)
	}
	if filter.LabelID != nil {
		conds = append(conds, `EXISTS(SELECT 1 FROM task_labels f WHERE f.task_id = t.id AND f.label_id = ?)`)
		args = append(args, *filter.LabelID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r taskRepository) Update(ctx context.Context, task *models.Task) error {
	res, err := r.tx.ExecContext(
		ctx,
		`UPDATE tasks SET task_index = ?, title = ?, description = ?, task_status_id = ?, assignee_id = ?, updated_at = ?
        WHERE id = ?`,
		task.Index,
		task.Title,
		task.Description,
		task.TaskStatusID,
		task.AssigneeID,
		task.UpdatedAt.UTC(),
		task.ID,
	)
	if err != nil {
		return translateError(err, storage.ErrNotFound)
	}
	err = affectedOne(res)
	if err != nil {
		return err
	}

	_, err = r.tx.ExecContext(ctx, `DELETE FROM task_labels WHERE task_id = ?`, task.ID)
	if err != nil {
		return err
	}
	return r.insertLabels(ctx, task.ID, task.LabelIDs)
}

func (r taskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return translateError(err, storage.ErrReferenced)
	}
	return affectedOne(res)
}

func (r taskRepository) ExistsByAssignee(ctx context.Context, userID string) (bool, error) {
	return exists(ctx, r.tx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE assignee_id = ?)`, userID)
}

func (r taskRepository) ExistsByStatus(ctx context.Context, statusID string) (bool, error) {
	return exists(ctx, r.tx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE task_status_id = ?)`, statusID)
}

func (r taskRepository) ExistsByLabel(ctx context.Context, labelID string) (bool, error) {
	return exists(ctx, r.tx, `SELECT EXISTS(SELECT 1 FROM task_labels WHERE label_id = ?)`, labelID)
}
