package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/nullable"
)

var (
	// ErrInvalidInput reports malformed or constraint-violating input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists reports a uniqueness violation. It belongs to the
	// same category as ErrInvalidInput.
	ErrAlreadyExists = errors.New("already exists")

	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrTaskStatusNotFound = fmt.Errorf("task status %w", ErrNotFound)
	ErrLabelNotFound      = fmt.Errorf("label %w", ErrNotFound)
	ErrTaskNotFound       = fmt.Errorf("task %w", ErrNotFound)

	// ErrConflict reports a deletion blocked by tasks referencing the entity.
	ErrConflict = errors.New("referenced by tasks")

	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthService interface {
	// Login authenticates the user by email and password and issues
	// a signed access token whose subject is the user ID.
	//
	// It returns ErrInvalidCredentials if the user doesn't exist
	// or the password doesn't match.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Authenticate verifies the access token and resolves the actor it
	// was issued to. The user is reloaded so that the admin flag is
	// current.
	//
	// It returns ErrInvalidCredentials if the token is invalid, expired
	// or its user no longer exists.
	Authenticate(ctx context.Context, accessToken string) (*models.Actor, error)
}

type UserService interface {
	// Create hashes the password and stores a new user.
	//
	// It returns ErrAlreadyExists if the email is taken.
	Create(ctx context.Context, params CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)

	// Update applies the present fields of params to the user. The
	// password is re-hashed only when a new value is present.
	//
	// It returns ErrForbidden without touching storage unless the actor
	// is the user or an admin.
	Update(ctx context.Context, actor models.Actor, id string, params UpdateUserParams) (*models.User, error)

	// Delete removes the user.
	//
	// It returns ErrForbidden unless the actor is the user or an admin,
	// and ErrConflict while the user is assigned to a task.
	Delete(ctx context.Context, actor models.Actor, id string) error

	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type TaskStatusService interface {
	Create(ctx context.Context, params CreateTaskStatusParams) (*models.TaskStatus, error)
	GetByID(ctx context.Context, id string) (*models.TaskStatus, error)
	List(ctx context.Context) ([]*models.TaskStatus, error)
	Update(ctx context.Context, id string, params UpdateTaskStatusParams) (*models.TaskStatus, error)

	// Delete returns ErrConflict while a task is in the status.
	Delete(ctx context.Context, id string) error

	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type LabelService interface {
	Create(ctx context.Context, params CreateLabelParams) (*models.Label, error)
	GetByID(ctx context.Context, id string) (*models.Label, error)
	List(ctx context.Context) ([]*models.Label, error)
	Update(ctx context.Context, id string, params UpdateLabelParams) (*models.Label, error)

	// Delete returns ErrConflict while a task carries the label.
	Delete(ctx context.Context, id string) error

	ExistsByName(ctx context.Context, name string) (bool, error)
}

type TaskService interface {
	// Create resolves the status slug, the assignee and every label
	// before writing anything.
	//
	// It returns ErrTaskStatusNotFound, ErrUserNotFound or
	// ErrLabelNotFound naming the first reference that doesn't resolve.
	Create(ctx context.Context, params CreateTaskParams) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)

	// List returns the tasks matching every present filter criterion.
	List(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)

	// Update applies the present fields of params. References are
	// resolved as in Create and the update is all-or-nothing.
	Update(ctx context.Context, id string, params UpdateTaskParams) (*models.Task, error)

	Delete(ctx context.Context, id string) error
}

type LoginParams struct {
	Email    string
	Password string
}

type LoginResult struct {
	UserID               string
	AccessToken          string
	AccessTokenExpiresAt time.Time
}

type CreateUserParams struct {
	Email     string  `validate:"required,email,max=255"`
	FirstName *string `validate:"omitnil,max=255"`
	LastName  *string `validate:"omitnil,max=255"`
	Password  string  `validate:"required,min=3,max=255"`
	IsAdmin   bool
}

type UpdateUserParams struct {
	Email     nullable.Field[string]
	FirstName nullable.Field[string]
	LastName  nullable.Field[string]
	Password  nullable.Field[string]
}

type CreateTaskStatusParams struct {
	Name string `validate:"required,min=1,max=255"`
	Slug string `validate:"required,slug,max=255"`
}

type UpdateTaskStatusParams struct {
	Name nullable.Field[string]
	Slug nullable.Field[string]
}

type CreateLabelParams struct {
	Name string `validate:"required,min=3,max=1000"`
}

type UpdateLabelParams struct {
	Name nullable.Field[string]
}

type CreateTaskParams struct {
	Index       *int
	Title       string `validate:"required,min=1,max=255"`
	Description *string
	// Status is the slug of the task status.
	Status     string `validate:"required"`
	AssigneeID *string
	LabelIDs   []string
}

type UpdateTaskParams struct {
	Index       nullable.Field[int]
	Title       nullable.Field[string]
	Description nullable.Field[string]
	Status      nullable.Field[string]
	AssigneeID  nullable.Field[string]
	LabelIDs    nullable.Field[[]string]
}
