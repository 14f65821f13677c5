package sqlite

import (
	"context"
	"database/sql"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type userRepository struct {
	tx *sql.Tx
}

const userColumns = `id, email, first_name, last_name, password, is_admin, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Password,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err, storage.ErrNotFound)
	}
	return user, nil
}

func (r userRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.tx.ExecContext(
		ctx,
		`INSERT INTO users(`+userColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Password,
		user.IsAdmin,
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	)
	return translateError(err, storage.ErrNotFound)
}

func (r userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(r.tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r userRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r userRepository) Update(ctx context.Context, user *models.User) error {
	res, err := r.tx.ExecContext(
		ctx,
		`UPDATE users SET email = ?, first_name = ?, last_name = ?, password = ?, is_admin = ?, updated_at = ? WHERE id = ?`,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Password,
		user.IsAdmin,
		user.UpdatedAt.UTC(),
		user.ID,
	)
	if err != nil {
		return translateError(err, storage.ErrNotFound)
	}
	return affectedOne(res)
}

func (r userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return translateError(err, storage.ErrReferenced)
	}
	return affectedOne(res)
}

// Lock only checks existence: the IMMEDIATE transaction already holds the
// write lock.
func (r userRepository) Lock(ctx context.Context, id string) error {
	var locked string
	err := r.tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ?`, id).Scan(&locked)
	return translateError(err, storage.ErrNotFound)
}

func (r userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.tx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email)
}
