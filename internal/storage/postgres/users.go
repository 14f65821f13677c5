package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type userRepository struct {
	tx pgx.Tx
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
	const insertUserQuery = `
INSERT INTO users (id,
                   email,
                   first_name,
                   last_name,
                   password,
                   is_admin,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.tx.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Password,
		user.IsAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return translateError(err, storage.ErrNotFound)
}

func (r userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const selectUserByIDQuery = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.tx.QueryRow(ctx, selectUserByIDQuery, id))
}

func (r userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const selectUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.tx.QueryRow(ctx, selectUserByEmailQuery, email))
}

func (r userRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	const selectUsersQuery = `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	rows, err := r.tx.Query(ctx, selectUsersQuery)
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
	const updateUserQuery = `
UPDATE users
SET email      = $2,
    first_name = $3,
    last_name  = $4,
    password   = $5,
    is_admin   = $6,
    updated_at = $7
WHERE id = $1
`
	tag, err := r.tx.Exec(
		ctx,
		updateUserQuery,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Password,
		user.IsAdmin,
		user.UpdatedAt,
	)
	if err != nil {
		return translateError(err, storage.ErrNotFound)
	}
	return affectedOne(tag)
}

func (r userRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateError(err, storage.ErrReferenced)
	}
	return affectedOne(tag)
}

func (r userRepository) Lock(ctx context.Context, id string) error {
	var locked string
	err := r.tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	return translateError(err, storage.ErrNotFound)
}

func (r userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}
