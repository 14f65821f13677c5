package services

import (
	"context"
	"fmt"

	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type entityKind int

const (
	kindUser entityKind = iota
	kindTaskStatus
	kindLabel
)

func (k entityKind) String() string {
	switch k {
	case kindUser:
		return "user"
	case kindTaskStatus:
		return "task status"
	case kindLabel:
		return "label"
	default:
		return fmt.Sprintf("entityKind(%d)", int(k))
	}
}

// conflictReason names the relationship that blocks the deletion.
func (k entityKind) conflictReason() string {
	switch k {
	case kindUser:
		return "user is assigned to a task"
	case kindTaskStatus:
		return "task status is used by a task"
	default:
		return "label is attached to a task"
	}
}

// canDelete reports whether no task references the entity. It must run in
// the transaction of the delete, after the entity has been locked.
func canDelete(ctx context.Context, tx storage.Tx, kind entityKind, id string) (bool, error) {
	var (
		referenced bool
		err        error
	)
	switch kind {
	case kindUser:
		referenced, err = tx.Tasks().ExistsByAssignee(ctx, id)
	case kindTaskStatus:
		referenced, err = tx.Tasks().ExistsByStatus(ctx, id)
	case kindLabel:
		referenced, err = tx.Tasks().ExistsByLabel(ctx, id)
	default:
		return false, fmt.Errorf("unknown entity kind: %s", kind)
	}
	if err != nil {
		return false, err
	}
	return !referenced, nil
}

// guardedDelete locks the entity, checks that no task references it and
// deletes it, all inside tx.
func guardedDelete(
	ctx context.Context,
	tx storage.Tx,
	kind entityKind,
	id string,
	lock func(ctx context.Context, id string) error,
	remove func(ctx context.Context, id string) error,
) error {
	err := lock(ctx, id)
	if err != nil {
		return err
	}

	ok, err := canDelete(ctx, tx, kind, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrConflict, kind.conflictReason())
	}

	return remove(ctx, id)
}
