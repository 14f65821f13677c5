package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type labelRepository struct {
	tx pgx.Tx
}

const labelColumns = `id, name, created_at, updated_at`

func scanLabel(row rowScanner) (*models.Label, error) {
	label := &models.Label{}
	err := row.Scan(
		&label.ID,
		&label.Name,
		&label.CreatedAt,
		&label.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err, storage.ErrNotFound)
	}
	return label, nil
}

func (r labelRepository) Create(ctx context.Context, label *models.Label) error {
	const insertLabelQuery = `
INSERT INTO labels (id, name, created_at, updated_at)
VALUES ($1, $2, $3, $4)
`
	_, err := r.tx.Exec(
		ctx,
		insertLabelQuery,
		label.ID,
		label.Name,
		label.CreatedAt,
		label.UpdatedAt,
	)
	return translateError(err, storage.ErrNotFound)
}

func (r labelRepository) FindByID(ctx context.Context, id string) (*models.Label, error) {
	const selectLabelByIDQuery = `SELECT ` + labelColumns + ` FROM labels WHERE id = $1`
	return scanLabel(r.tx.QueryRow(ctx, selectLabelByIDQuery, id))
}

func (r labelRepository) FindAll(ctx context.Context) ([]*models.Label, error) {
	const selectLabelsQuery = `SELECT ` + labelColumns + ` FROM labels ORDER BY created_at, id`
	rows, err := r.tx.Query(ctx, selectLabelsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make([]*models.Label, 0)
	for rows.Next() {
		label, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (r labelRepository) Update(ctx context.Context, label *models.Label) error {
	const updateLabelQuery = `
UPDATE labels
SET name       = $2,
    updated_at = $3
WHERE id = $1
`
	tag, err := r.tx.Exec(ctx, updateLabelQuery, label.ID, label.Name, label.UpdatedAt)
	if err != nil {
		return translateError(err, storage.ErrNotFound)
	}
	return affectedOne(tag)
}

func (r labelRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM labels WHERE id = $1`, id)
	if err != nil {
		return translateError(err, storage.ErrReferenced)
	}
	return affectedOne(tag)
}

func (r labelRepository) Lock(ctx context.Context, id string) error {
	var locked string
	err := r.tx.QueryRow(ctx, `SELECT id FROM labels WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	return translateError(err, storage.ErrNotFound)
}

func (r labelRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM labels WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}
