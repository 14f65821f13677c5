// Package postgres implements storage.Store on top of a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(ctx, &pgTx{tx: tx})
	if err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range schema {
		_, err = tx.Exec(ctx, stmt)
		if err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return tx.Commit(ctx)
}

var schema = []string{
	`
CREATE TABLE IF NOT EXISTS users
(
    id         TEXT PRIMARY KEY,
    email      TEXT        NOT NULL UNIQUE,
    first_name TEXT,
    last_name  TEXT,
    password   TEXT        NOT NULL,
    is_admin   BOOLEAN     NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)
`,
	`
CREATE TABLE IF NOT EXISTS task_statuses
(
    id         TEXT PRIMARY KEY,
    name       TEXT        NOT NULL UNIQUE,
    slug       TEXT        NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)
`,
	`
CREATE TABLE IF NOT EXISTS labels
(
    id         TEXT PRIMARY KEY,
    name       TEXT        NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)
`,
	`
CREATE TABLE IF NOT EXISTS tasks
(
    id             TEXT PRIMARY KEY,
    task_index     INTEGER,
    title          TEXT        NOT NULL,
    description    TEXT,
    task_status_id TEXT        NOT NULL REFERENCES task_statuses (id) ON DELETE RESTRICT,
    assignee_id    TEXT REFERENCES users (id) ON DELETE RESTRICT,
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
)
`,
	`
CREATE TABLE IF NOT EXISTS task_labels
(
    task_id  TEXT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
    label_id TEXT NOT NULL REFERENCES labels (id) ON DELETE RESTRICT,
    PRIMARY KEY (task_id, label_id)
)
`,
	`CREATE INDEX IF NOT EXISTS tasks_task_status_id_idx ON tasks (task_status_id)`,
	`CREATE INDEX IF NOT EXISTS tasks_assignee_id_idx ON tasks (assignee_id)`,
	`CREATE INDEX IF NOT EXISTS task_labels_label_id_idx ON task_labels (label_id)`,
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Users() storage.UserRepository {
	return userRepository{tx: t.tx}
}

func (t *pgTx) TaskStatuses() storage.TaskStatusRepository {
	return taskStatusRepository{tx: t.tx}
}

func (t *pgTx) Labels() storage.LabelRepository {
	return labelRepository{tx: t.tx}
}

func (t *pgTx) Tasks() storage.TaskRepository {
	return taskRepository{tx: t.tx}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// translateError maps pgx and constraint errors to storage errors.
// A foreign key violation becomes fkErr: ErrReferenced for deletes,
// ErrNotFound for writes pointing at a missing row.
func translateError(err error, fkErr error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", storage.ErrDuplicate, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", fkErr, pgErr.ConstraintName)
		}
	}
	return err
}

func affectedOne(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
