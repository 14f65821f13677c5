package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type taskStatusServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
}

func NewTaskStatusService(
	logger zerolog.Logger,
	store storage.Store,
) TaskStatusService {
	return &taskStatusServiceImpl{
		logger: logger,
		store:  store,
	}
}

func (s *taskStatusServiceImpl) Create(ctx context.Context, params CreateTaskStatusParams) (*models.TaskStatus, error) {
	err := checkStruct(params)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("invalid task status")
		return nil, err
	}

	now := time.Now()
	status := &models.TaskStatus{
		Name:      params.Name,
		Slug:      params.Slug,
		CreatedAt: now,
		UpdatedAt: now,
	}

	statusUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task status uuid")
		return nil, err
	}
	status.ID = statusUUID.String()

	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.TaskStatuses().Create(ctx, status)
	})
	if err != nil {
		err = translateStorageError(err, ErrTaskStatusNotFound)
		if errors.Is(err, ErrAlreadyExists) {
			s.logger.Error().
				Str("name", status.Name).
				Str("slug", status.Slug).
				Msg("task status with this name or slug already exists")
			return nil, err
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task status")
		return nil, err
	}

	s.logger.Info().
		Str("task_status_id", status.ID).
		Str("slug", status.Slug).
		Msg("created task status")
	return status, nil
}

func (s *taskStatusServiceImpl) GetByID(ctx context.Context, id string) (*models.TaskStatus, error) {
	var status *models.TaskStatus
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		status, err = tx.TaskStatuses().FindByID(ctx, id)
		return err
	})
	if err != nil {
		err = translateStorageError(err, ErrTaskStatusNotFound)
		s.logger.Error().
			Err(err).
			Str("task_status_id", id).
			Msg("failed to select task status by id")
		return nil, err
	}
	return status, nil
}

func (s *taskStatusServiceImpl) List(ctx context.Context) ([]*models.TaskStatus, error) {
	var statuses []*models.TaskStatus
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		statuses, err = tx.TaskStatuses().FindAll(ctx)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select task statuses")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(statuses)).
		Msg("selected task statuses")
	return statuses, nil
}

func (s *taskStatusServiceImpl) Update(
	ctx context.Context,
	id string,
	params UpdateTaskStatusParams,
) (*models.TaskStatus, error) {
	err := params.validate()
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_status_id", id).
			Msg("invalid task status update")
		return nil, err
	}

	var status *models.TaskStatus
	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		status, err = tx.TaskStatuses().FindByID(ctx, id)
		if err != nil {
			return err
		}

		applyTaskStatusUpdate(status, params)
		status.UpdatedAt = time.Now()
		return tx.TaskStatuses().Update(ctx, status)
	})
	if err != nil {
		err = translateStorageError(err, ErrTaskStatusNotFound)
		s.logger.Error().
			Err(err).
			Str("task_status_id", id).
			Msg("failed to update task status")
		return nil, err
	}

	s.logger.Info().
		Str("task_status_id", status.ID).
		Msg("updated task status")
	return status, nil
}

func (s *taskStatusServiceImpl) Delete(ctx context.Context, id string) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		statuses := tx.TaskStatuses()
		return guardedDelete(ctx, tx, kindTaskStatus, id, statuses.Lock, statuses.Delete)
	})
	if err != nil {
		err = translateStorageError(err, ErrTaskStatusNotFound)
		s.logger.Error().
			Err(err).
			Str("task_status_id", id).
			Msg("failed to delete task status")
		return err
	}

	s.logger.Info().
		Str("task_status_id", id).
		Msg("deleted task status")
	return nil
}

func (s *taskStatusServiceImpl) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		exists, err = tx.TaskStatuses().ExistsBySlug(ctx, slug)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("slug", slug).
			Msg("failed to check task status existence")
		return false, err
	}
	return exists, nil
}

func (s *taskStatusServiceImpl) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		exists, err = tx.TaskStatuses().ExistsByName(ctx, name)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("name", name).
			Msg("failed to check task status existence")
		return false, err
	}
	return exists, nil
}
