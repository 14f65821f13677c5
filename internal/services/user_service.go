package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/password"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type userServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
	hasher password.Hasher
}

func NewUserService(
	logger zerolog.Logger,
	store storage.Store,
	hasher password.Hasher,
) UserService {
	return &userServiceImpl{
		logger: logger,
		store:  store,
		hasher: hasher,
	}
}

func (s *userServiceImpl) Create(ctx context.Context, params CreateUserParams) (*models.User, error) {
	err := checkStruct(params)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("invalid user")
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Email:     params.Email,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		IsAdmin:   params.IsAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}
	user.ID = userUUID.String()

	user.Password, err = s.hasher.Hash(params.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		err = translateStorageError(err, ErrUserNotFound)
		if errors.Is(err, ErrAlreadyExists) {
			s.logger.Error().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return nil, err
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("created user")
	return user, nil
}

func (s *userServiceImpl) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		user, err = tx.Users().FindByID(ctx, id)
		return err
	})
	if err != nil {
		err = translateStorageError(err, ErrUserNotFound)
		s.logger.Error().
			Err(err).
			Str("user_id", id).
			Msg("failed to select user by id")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("selected user by id")
	return user, nil
}

func (s *userServiceImpl) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		user, err = tx.Users().FindByEmail(ctx, email)
		return err
	})
	if err != nil {
		err = translateStorageError(err, ErrUserNotFound)
		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to select user by email")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("selected user by email")
	return user, nil
}

func (s *userServiceImpl) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		users, err = tx.Users().FindAll(ctx)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select users")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(users)).
		Msg("selected users")
	return users, nil
}

func (s *userServiceImpl) Update(
	ctx context.Context,
	actor models.Actor,
	id string,
	params UpdateUserParams,
) (*models.User, error) {
	if !CanModify(actor, id) {
		s.logger.Error().
			Str("actor_id", actor.ID).
			Str("user_id", id).
			Msg("actor is not allowed to update user")
		return nil, ErrForbidden
	}

	err := params.validate()
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", id).
			Msg("invalid user update")
		return nil, err
	}

	var digest string
	if raw, ok := params.Password.Get(); ok {
		digest, err = s.hasher.Hash(raw)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to hash password")
			return nil, err
		}
	}

	var user *models.User
	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		user, err = tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}

		applyUserUpdate(user, params, digest)
		user.UpdatedAt = time.Now()
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		err = translateStorageError(err, ErrUserNotFound)
		s.logger.Error().
			Err(err).
			Str("user_id", id).
			Msg("failed to update user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("actor_id", actor.ID).
		Msg("updated user")
	return user, nil
}

func (s *userServiceImpl) Delete(ctx context.Context, actor models.Actor, id string) error {
	if !CanModify(actor, id) {
		s.logger.Error().
			Str("actor_id", actor.ID).
			Str("user_id", id).
			Msg("actor is not allowed to delete user")
		return ErrForbidden
	}

	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		users := tx.Users()
		return guardedDelete(ctx, tx, kindUser, id, users.Lock, users.Delete)
	})
	if err != nil {
		err = translateStorageError(err, ErrUserNotFound)
		s.logger.Error().
			Err(err).
			Str("user_id", id).
			Msg("failed to delete user")
		return err
	}

	s.logger.Info().
		Str("user_id", id).
		Str("actor_id", actor.ID).
		Msg("deleted user")
	return nil
}

func (s *userServiceImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		exists, err = tx.Users().ExistsByEmail(ctx, email)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to check user existence")
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}
