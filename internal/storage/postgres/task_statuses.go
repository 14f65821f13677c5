package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type taskStatusRepository struct {
	tx pgx.Tx
}

const taskStatusColumns = `id, name, slug, created_at, updated_at`

func scanTaskStatus(row rowScanner) (*models.TaskStatus, error) {
	status := &models.TaskStatus{}
	err := row.Scan(
		&status.ID,
		&status.Name,
		&status.Slug,
		&status.CreatedAt,
		&status.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err, storage.ErrNotFound)
	}
	return status, nil
}

func (r taskStatusRepository) Create(ctx context.Context, status *models.TaskStatus) error {
	const insertTaskStatusQuery = `
INSERT INTO task_statuses (id, name, slug, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.tx.Exec(
		ctx,
		insertTaskStatusQuery,
		status.ID,
		status.Name,
		status.Slug,
		status.CreatedAt,
		status.UpdatedAt,
	)
	return translateError(err, storage.ErrNotFound)
}

func (r taskStatusRepository) FindByID(ctx context.Context, id string) (*models.TaskStatus, error) {
	const selectTaskStatusByIDQuery = `SELECT ` + taskStatusColumns + ` FROM task_statuses WHERE id = $1`
	return scanTaskStatus(r.tx.QueryRow(ctx, selectTaskStatusByIDQuery, id))
}

func (r taskStatusRepository) FindBySlug(ctx context.Context, slug string) (*models.TaskStatus, error) {
	const selectTaskStatusBySlugQuery = `SELECT ` + taskStatusColumns + ` FROM task_statuses WHERE slug = $1`
	return scanTaskStatus(r.tx.QueryRow(ctx, selectTaskStatusBySlugQuery, slug))
}

func (r taskStatusRepository) FindAll(ctx context.Context) ([]*models.TaskStatus, error) {
	const selectTaskStatusesQuery = `SELECT ` + taskStatusColumns + ` FROM task_statuses ORDER BY created_at, id`
	rows, err := r.tx.Query(ctx, selectTaskStatusesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]*models.TaskStatus, 0)
	for rows.Next() {
		status, err := scanTaskStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}

func (r taskStatusRepository) Update(ctx context.Context, status *models.TaskStatus) error {
	const updateTaskStatusQuery = `
UPDATE task_statuses
SET name       = $2,
    slug       = $3,
    updated_at = $4
WHERE id = $1
`
	tag, err := r.tx.Exec(
		ctx,
		updateTaskStatusQuery,
		status.ID,
		status.Name,
		status.Slug,
		status.UpdatedAt,
	)
	if err != nil {
		return translateError(err, storage.ErrNotFound)
	}
	return affectedOne(tag)
}

func (r taskStatusRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM task_statuses WHERE id = $1`, id)
	if err != nil {
		return translateError(err, storage.ErrReferenced)
	}
	return affectedOne(tag)
}

func (r taskStatusRepository) Lock(ctx context.Context, id string) error {
	var locked string
	err := r.tx.QueryRow(ctx, `SELECT id FROM task_statuses WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	return translateError(err, storage.ErrNotFound)
}

func (r taskStatusRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM task_statuses WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r taskStatusRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM task_statuses WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}
