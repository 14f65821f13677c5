package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
}

func NewTaskService(
	logger zerolog.Logger,
	store storage.Store,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		store:  store,
	}
}

func (s *taskServiceImpl) Create(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	err := checkStruct(params)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("invalid task")
		return nil, err
	}

	now := time.Now()
	task := &models.Task{
		Index:       params.Index,
		Title:       params.Title,
		Description: params.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	var created *models.Task
	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		status, err := s.resolveStatus(ctx, tx, params.Status)
		if err != nil {
			return err
		}
		task.TaskStatusID = status.ID

		if params.AssigneeID != nil {
			err = s.resolveAssignee(ctx, tx, *params.AssigneeID)
			if err != nil {
				return err
			}
			assigneeID := *params.AssigneeID
			task.AssigneeID = &assigneeID
		}

		task.LabelIDs, err = s.resolveLabels(ctx, tx, params.LabelIDs)
		if err != nil {
			return err
		}

		err = tx.Tasks().Create(ctx, task)
		if err != nil {
			return err
		}
		created, err = tx.Tasks().FindByID(ctx, task.ID)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("status", params.Status).
			Msg("failed to create task")
		return nil, s.translateError(err)
	}

	s.logger.Info().
		Str("task_id", created.ID).
		Str("status", created.Status).
		Int("labels", len(created.LabelIDs)).
		Msg("created task")
	return created, nil
}

func (s *taskServiceImpl) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task *models.Task
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		task, err = tx.Tasks().FindByID(ctx, id)
		return err
	})
	if err != nil {
		err = translateStorageError(err, ErrTaskNotFound)
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to select task by id")
		return nil, err
	}
	return task, nil
}

func (s *taskServiceImpl) List(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	var tasks []*models.Task
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		tasks, err = tx.Tasks().FindByFilter(ctx, filter)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks by filter")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Bool("filtered", !filter.IsEmpty()).
		Msg("selected tasks")
	return tasks, nil
}

func (s *taskServiceImpl) Update(ctx context.Context, id string, params UpdateTaskParams) (*models.Task, error) {
	err := params.validate()
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("invalid task update")
		return nil, err
	}

	var updated *models.Task
	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		task, err := tx.Tasks().FindByID(ctx, id)
		if err != nil {
			return translateStorageError(err, ErrTaskNotFound)
		}

		// Every present reference is resolved before the task is touched.
		var refs taskReferences
		if slug, ok := params.Status.Get(); ok {
			refs.status, err = s.resolveStatus(ctx, tx, slug)
			if err != nil {
				return err
			}
		}
		if assigneeID, ok := params.AssigneeID.Get(); ok {
			err = s.resolveAssignee(ctx, tx, assigneeID)
			if err != nil {
				return err
			}
		}
		if params.LabelIDs.IsSet() {
			labelIDs, _ := params.LabelIDs.Get()
			refs.labelIDs, err = s.resolveLabels(ctx, tx, labelIDs)
			if err != nil {
				return err
			}
		}

		applyTaskUpdate(task, params, refs)
		task.UpdatedAt = time.Now()

		err = tx.Tasks().Update(ctx, task)
		if err != nil {
			return err
		}
		updated, err = tx.Tasks().FindByID(ctx, task.ID)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return nil, s.translateError(err)
	}

	s.logger.Info().
		Str("task_id", updated.ID).
		Msg("updated task")
	return updated, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, id string) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Tasks().Delete(ctx, id)
	})
	if err != nil {
		err = translateStorageError(err, ErrTaskNotFound)
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) resolveStatus(ctx context.Context, tx storage.Tx, slug string) (*models.TaskStatus, error) {
	status, err := tx.TaskStatuses().FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: slug %q", ErrTaskStatusNotFound, slug)
		}
		return nil, err
	}
	s.logger.Debug().
		Str("task_status_id", status.ID).
		Str("slug", slug).
		Msg("resolved task status")
	return status, nil
}

func (s *taskServiceImpl) resolveAssignee(ctx context.Context, tx storage.Tx, userID string) error {
	_, err := tx.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: assignee id %q", ErrUserNotFound, userID)
		}
		return err
	}
	return nil
}

// resolveLabels checks that every label exists and returns the distinct ids.
func (s *taskServiceImpl) resolveLabels(ctx context.Context, tx storage.Tx, labelIDs []string) ([]string, error) {
	ids := uniqueIDs(labelIDs)
	for _, id := range ids {
		_, err := tx.Labels().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: id %q", ErrLabelNotFound, id)
			}
			return nil, err
		}
	}
	return ids, nil
}

// translateError keeps resolution errors intact and maps what the
// repositories report. A reference vanishing between resolution and write
// is reported as not found.
func (s *taskServiceImpl) translateError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return translateStorageError(err, ErrTaskNotFound)
}
