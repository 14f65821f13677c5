package sqlite

import (
	"context"
	"database/sql"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type labelRepository struct {
	tx *sql.Tx
}

const labelColumns = `id, name, created_at, updated_at`

func scanLabel(row rowScanner) (*models.Label, error) {
	label := &models.Label{}
	err := row.Scan(&label.ID, &label.Name, &label.CreatedAt, &label.UpdatedAt)
	if err != nil {
		return nil, translateError(err, storage.ErrNotFound)
	}
	return label, nil
}

func (r labelRepository) Create(ctx context.Context, label *models.Label) error {
	_, err := r.tx.ExecContext(
		ctx,
		`INSERT INTO labels(`+labelColumns+`) VALUES(?, ?, ?, ?)`,
		label.ID,
		label.Name,
		label.CreatedAt.UTC(),
		label.UpdatedAt.UTC(),
	)
	return translateError(err, storage.ErrNotFound)
}

func (r labelRepository) FindByID(ctx context.Context, id string) (*models.Label, error) {
	return scanLabel(r.tx.QueryRowContext(ctx, `SELECT `+labelColumns+` FROM labels WHERE id = ?`, id))
}

func (r labelRepository) FindAll(ctx context.Context) ([]*models.Label, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT `+labelColumns+` FROM labels ORDER BY created_at, id`)
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
	res, err := r.tx.ExecContext(
		ctx,
		`UPDATE labels SET name = ?, updated_at = ? WHERE id = ?`,
		label.Name,
		label.UpdatedAt.UTC(),
		label.ID,
	)
	if err != nil {
		return translateError(err, storage.ErrNotFound)
	}
	return affectedOne(res)
}

func (r labelRepository) Delete(ctx context.Context, id string) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM labels WHERE id = ?`, id)
	if err != nil {
		return translateError(err, storage.ErrReferenced)
	}
	return affectedOne(res)
}

func (r labelRepository) Lock(ctx context.Context, id string) error {
	var locked string
	err := r.tx.QueryRowContext(ctx, `SELECT id FROM labels WHERE id = ?`, id).Scan(&locked)
	return translateError(err, storage.ErrNotFound)
}

func (r labelRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return exists(ctx, r.tx, `SELECT EXISTS(SELECT 1 FROM labels WHERE name = ?)`, name)
}
