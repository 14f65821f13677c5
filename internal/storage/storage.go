// Package storage declares the repositories the services persist through.
//
// Every service operation runs inside Store.InTx: the lookups, the
// referential checks and the final write of one operation share a single
// transaction. Implementations live in the postgres, sqlite and memory
// subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-task-manager/internal/models"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrReferenced = errors.New("record is referenced")
)

type Store interface {
	// InTx runs fn inside a transaction. The transaction is committed when
	// fn returns nil and rolled back otherwise; fn's error is returned as is.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Ping(ctx context.Context) error
	Close() error
}

type Tx interface {
	Users() UserRepository
	TaskStatuses() TaskStatusRepository
	Labels() LabelRepository
	Tasks() TaskRepository
}

// Repositories return ErrNotFound when the addressed record is missing,
// ErrDuplicate on a unique constraint violation and ErrReferenced when a
// delete is blocked by a foreign key.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	// Lock takes a write lock on the user until the transaction ends.
	Lock(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type TaskStatusRepository interface {
	Create(ctx context.Context, status *models.TaskStatus) error
	FindByID(ctx context.Context, id string) (*models.TaskStatus, error)
	FindBySlug(ctx context.Context, slug string) (*models.TaskStatus, error)
	FindAll(ctx context.Context) ([]*models.TaskStatus, error)
	Update(ctx context.Context, status *models.TaskStatus) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) error
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type LabelRepository interface {
	Create(ctx context.Context, label *models.Label) error
	FindByID(ctx context.Context, id string) (*models.Label, error)
	FindAll(ctx context.Context) ([]*models.Label, error)
	Update(ctx context.Context, label *models.Label) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type TaskRepository interface {
	// Create inserts the task and its label associations.
	Create(ctx context.Context, task *models.Task) error
	// FindByID returns the task with Status and LabelIDs populated.
	FindByID(ctx context.Context, id string) (*models.Task, error)
	FindByFilter(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)
	// Update rewrites the task row and replaces its label associations.
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error

	ExistsByAssignee(ctx context.Context, userID string) (bool, error)
	ExistsByStatus(ctx context.Context, statusID string) (bool, error)
	ExistsByLabel(ctx context.Context, labelID string) (bool, error)
}
