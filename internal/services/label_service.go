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

type labelServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
}

func NewLabelService(
	logger zerolog.Logger,
	store storage.Store,
) LabelService {
	return &labelServiceImpl{
		logger: logger,
		store:  store,
	}
}

func (s *labelServiceImpl) Create(ctx context.Context, params CreateLabelParams) (*models.Label, error) {
	err := checkStruct(params)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("invalid label")
		return nil, err
	}

	now := time.Now()
	label := &models.Label{
		Name:      params.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	labelUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate label uuid")
		return nil, err
	}
	label.ID = labelUUID.String()

	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Labels().Create(ctx, label)
	})
	if err != nil {
		err = translateStorageError(err, ErrLabelNotFound)
		if errors.Is(err, ErrAlreadyExists) {
			s.logger.Error().
				Str("name", label.Name).
				Msg("label with this name already exists")
			return nil, err
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert label")
		return nil, err
	}

	s.logger.Info().
		Str("label_id", label.ID).
		Msg("created label")
	return label, nil
}

func (s *labelServiceImpl) GetByID(ctx context.Context, id string) (*models.Label, error) {
	var label *models.Label
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		label, err = tx.Labels().FindByID(ctx, id)
		return err
	})
	if err != nil {
		err = translateStorageError(err, ErrLabelNotFound)
		s.logger.Error().
			Err(err).
			Str("label_id", id).
			Msg("failed to select label by id")
		return nil, err
	}
	return label, nil
}

func (s *labelServiceImpl) List(ctx context.Context) ([]*models.Label, error) {
	var labels []*models.Label
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		labels, err = tx.Labels().FindAll(ctx)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select labels")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(labels)).
		Msg("selected labels")
	return labels, nil
}

func (s *labelServiceImpl) Update(ctx context.Context, id string, params UpdateLabelParams) (*models.Label, error) {
	err := params.validate()
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("label_id", id).
			Msg("invalid label update")
		return nil, err
	}

	var label *models.Label
	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		label, err = tx.Labels().FindByID(ctx, id)
		if err != nil {
			return err
		}

		applyLabelUpdate(label, params)
		label.UpdatedAt = time.Now()
		return tx.Labels().Update(ctx, label)
	})
	if err != nil {
		err = translateStorageError(err, ErrLabelNotFound)
		s.logger.Error().
			Err(err).
			Str("label_id", id).
			Msg("failed to update label")
		return nil, err
	}

	s.logger.Info().
		Str("label_id", label.ID).
		Msg("updated label")
	return label, nil
}

func (s *labelServiceImpl) Delete(ctx context.Context, id string) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		labels := tx.Labels()
		return guardedDelete(ctx, tx, kindLabel, id, labels.Lock, labels.Delete)
	})
	if err != nil {
		err = translateStorageError(err, ErrLabelNotFound)
		s.logger.Error().
			Err(err).
			Str("label_id", id).
			Msg("failed to delete label")
		return err
	}

	s.logger.Info().
		Str("label_id", id).
		Msg("deleted label")
	return nil
}

func (s *labelServiceImpl) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		exists, err = tx.Labels().ExistsByName(ctx, name)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("name", name).
			Msg("failed to check label existence")
		return false, err
	}
	return exists, nil
}
