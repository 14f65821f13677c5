// Package sqlite implements storage.Store on an embedded SQLite database.
//
// Transactions start with BEGIN IMMEDIATE, so a transaction holds the
// database write lock from its first statement and the referential checks
// of a delete cannot interleave with a concurrent task write.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/adanyl0v/go-task-manager/internal/storage"
)

const driverName = "sqlite3_task_manager"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", casefold, true)
		},
	})
}

// casefold lowercases independently of the process locale.
func casefold(s string) string {
	return strings.ToLower(s)
}

type Store struct {
	db *sql.DB
}

// Open opens the database at path. ":memory:" opens a private in-memory
// database, which lives as long as the Store.
func Open(path string, busyTimeoutMillis int) (*Store, error) {
	if path == "" {
		return nil, errors.New("empty database path")
	}

	dsn := fmt.Sprintf("file::memory:?_foreign_keys=on&_txlock=immediate&_busy_timeout=%d", busyTimeoutMillis)
	if path != ":memory:" {
		err := ensureDir(path)
		if err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_foreign_keys=on&_txlock=immediate&_busy_timeout=%d", path, busyTimeoutMillis)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	return &Store{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = fn(ctx, &sqliteTx{tx: tx})
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schema {
		_, err = tx.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return tx.Commit()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            first_name TEXT,
            last_name TEXT,
            password TEXT NOT NULL,
            is_admin BOOLEAN NOT NULL DEFAULT FALSE,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS task_statuses (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            slug TEXT NOT NULL UNIQUE,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS labels (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            task_index INTEGER,
            title TEXT NOT NULL,
            description TEXT,
            task_status_id TEXT NOT NULL,
            assignee_id TEXT,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            FOREIGN KEY(task_status_id) REFERENCES task_statuses(id) ON DELETE RESTRICT,
            FOREIGN KEY(assignee_id) REFERENCES users(id) ON DELETE RESTRICT
        );`,
	`CREATE TABLE IF NOT EXISTS task_labels (
            task_id TEXT NOT NULL,
            label_id TEXT NOT NULL,
            PRIMARY KEY(task_id, label_id),
            FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE,
            FOREIGN KEY(label_id) REFERENCES labels(id) ON DELETE RESTRICT
        );`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_task_status ON tasks(task_status_id);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);`,
	`CREATE INDEX IF NOT EXISTS idx_task_labels_label ON task_labels(label_id);`,
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Users() storage.UserRepository {
	return userRepository{tx: t.tx}
}

func (t *sqliteTx) TaskStatuses() storage.TaskStatusRepository {
	return taskStatusRepository{tx: t.tx}
}

func (t *sqliteTx) Labels() storage.LabelRepository {
	return labelRepository{tx: t.tx}
}

func (t *sqliteTx) Tasks() storage.TaskRepository {
	return taskRepository{tx: t.tx}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// translateError maps driver errors to storage errors. A foreign key
// violation becomes fkErr.
func translateError(err error, fkErr error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", storage.ErrDuplicate, sqliteErr.Error())
		case isForeignKeyViolation(sqliteErr):
			return fmt.Errorf("%w: %s", fkErr, sqliteErr.Error())
		}
	}
	return err
}

// isForeignKeyViolation matches both the insert-side failure and the
// restricted delete, which SQLite reports from its internal trigger
// (SQLITE_CONSTRAINT_TRIGGER) rather than as SQLITE_CONSTRAINT_FOREIGNKEY.
func isForeignKeyViolation(err sqlite3.Error) bool {
	switch err.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintTrigger:
		return true
	}
	return err.Code == sqlite3.ErrConstraint &&
		strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func exists(ctx context.Context, tx *sql.Tx, query string, arg string) (bool, error) {
	var found bool
	err := tx.QueryRowContext(ctx, query, arg).Scan(&found)
	return found, err
}
