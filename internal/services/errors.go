package services

import (
	"errors"
	"fmt"

	"github.com/adanyl0v/go-task-manager/internal/storage"
)

// translateStorageError maps storage sentinels onto service errors.
// notFound is returned for storage.ErrNotFound.
func translateStorageError(err, notFound error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return notFound
	case errors.Is(err, storage.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	case errors.Is(err, storage.ErrReferenced):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}
