package sqlite

import (
	"context"
	"database/sql"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type taskStatusRepository struct {
	tx *sql.Tx
}

const taskStatusColumns = `id, name, slug, created_at, updated_at`

func scanTaskStatus(row rowScanner) (*models.TaskStatus, error) {
	status := &models.TaskStatus{}
	err := row.Scan(&status.ID, &status.Name, &status.Slug, &status.CreatedAt, &status.UpdatedAt)
	if err != nil {
		return nil, translateError(err, storage.ErrNotFound)
	}
	return status, nil
}

func (r taskStatusRepository) Create(ctx context.Context, status *models.TaskStatus) error {
	_, err := r.tx.ExecContext(
		ctx,
		`INSERT INTO task_statuses(`+taskStatusColumns+`) VALUES(?, ?, ?, ?, ?)`,
		status.ID,
		status.Name,
		status.Slug,
		status.CreatedAt.UTC(),
		status.UpdatedAt.UTC(),
	)
	return translateError(err, storage.ErrNotFound)
}

func (r taskStatusRepository) FindByID(ctx context.Context, id string) (*models.TaskStatus, error) {
	return scanTaskStatus(r.tx.QueryRowContext(ctx, `SELECT `+taskStatusColumns+` FROM task_statuses WHERE id = ?`, id))
}

func (r taskStatusRepository) FindBySlug(ctx context.Context, slug string) (*models.TaskStatus, error) {
	return scanTaskStatus(r.tx.QueryRowContext(ctx, `SELECT `+taskStatusColumns+` FROM task_statuses WHERE slug = ?`, slug))
}

func (r taskStatusRepository) FindAll(ctx context.Context) ([]*models.TaskStatus, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT `+taskStatusColumns+` FROM task_statuses ORDER BY created_at, id`)
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
	res, err := r.tx.ExecContext(
		ctx,
		`UPDATE task_statuses SET name = ?, slug = ?, updated_at = ? WHERE id = ?`,
		status.Name,
		status.Slug,
		status.UpdatedAt.UTC(),
		status.ID,
	)
	if err != nil {
		return translateError(err, storage.ErrNotFound)
	}
	return affectedOne(res)
}

func (r taskStatusRepository) Delete(ctx context.Context, id string) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM task_statuses WHERE id = ?`, id)
	if err != nil {
		return translateError(err, storage.ErrReferenced)
	}
	return affectedOne(res)
}

func (r taskStatusRepository) Lock(ctx context.Context, id string) error {
	var locked string
	err := r.tx.QueryRowContext(ctx, `SELECT id FROM task_statuses WHERE id = ?`, id).Scan(&locked)
	return translateError(err, storage.ErrNotFound)
}

func (r taskStatusRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	return exists(ctx, r.tx, `SELECT EXISTS(SELECT 1 FROM task_statuses WHERE slug = ?)`, slug)
}

func (r taskStatusRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return exists(ctx, r.tx, `SELECT EXISTS(SELECT 1 FROM task_statuses WHERE name = ?)`, name)
}
