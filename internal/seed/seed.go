// Package seed creates the bootstrap admin account, task statuses and
// labels. Seeding goes through the services and only creates what is
// missing, so it can run on every start.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/services"
)

//go:embed seed.toml
var defaultData []byte

type Data struct {
	TaskStatuses []TaskStatus `toml:"task_statuses"`
	Labels       []Label      `toml:"labels"`
}

type TaskStatus struct {
	Name string `toml:"name"`
	Slug string `toml:"slug"`
}

type Label struct {
	Name string `toml:"name"`
}

type Admin struct {
	Email    string
	Password string
}

// Load decodes the seed file at path, or the embedded defaults when path
// is empty.
func Load(path string) (*Data, error) {
	raw := defaultData
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
	}

	data := new(Data)
	md, err := toml.Decode(string(raw), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown seed keys: %v", undecoded)
	}
	return data, nil
}

type Seeder struct {
	logger   zerolog.Logger
	users    services.UserService
	statuses services.TaskStatusService
	labels   services.LabelService
}

func NewSeeder(
	logger zerolog.Logger,
	users services.UserService,
	statuses services.TaskStatusService,
	labels services.LabelService,
) *Seeder {
	return &Seeder{
		logger:   logger,
		users:    users,
		statuses: statuses,
		labels:   labels,
	}
}

func (s *Seeder) Run(ctx context.Context, admin Admin, data *Data) error {
	err := s.seedAdmin(ctx, admin)
	if err != nil {
		return err
	}

	for _, status := range data.TaskStatuses {
		err = s.seedTaskStatus(ctx, status)
		if err != nil {
			return err
		}
	}

	for _, label := range data.Labels {
		err = s.seedLabel(ctx, label)
		if err != nil {
			return err
		}
	}

	s.logger.Info().
		Int("task_statuses", len(data.TaskStatuses)).
		Int("labels", len(data.Labels)).
		Msg("seeded data")
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context, admin Admin) error {
	exists, err := s.users.ExistsByEmail(ctx, admin.Email)
	if err != nil {
		return fmt.Errorf("failed to check admin: %w", err)
	}
	if exists {
		s.logger.Debug().
			Str("email", admin.Email).
			Msg("admin already exists")
		return nil
	}

	_, err = s.users.Create(ctx, services.CreateUserParams{
		Email:    admin.Email,
		Password: admin.Password,
		IsAdmin:  true,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (s *Seeder) seedTaskStatus(ctx context.Context, status TaskStatus) error {
	bySlug, err := s.statuses.ExistsBySlug(ctx, status.Slug)
	if err != nil {
		return fmt.Errorf("failed to check task status %q: %w", status.Slug, err)
	}
	byName, err := s.statuses.ExistsByName(ctx, status.Name)
	if err != nil {
		return fmt.Errorf("failed to check task status %q: %w", status.Name, err)
	}
	if bySlug || byName {
		s.logger.Debug().
			Str("slug", status.Slug).
			Msg("task status already exists")
		return nil
	}

	_, err = s.statuses.Create(ctx, services.CreateTaskStatusParams{
		Name: status.Name,
		Slug: status.Slug,
	})
	if err != nil {
		return fmt.Errorf("failed to create task status %q: %w", status.Slug, err)
	}
	return nil
}

func (s *Seeder) seedLabel(ctx context.Context, label Label) error {
	exists, err := s.labels.ExistsByName(ctx, label.Name)
	if err != nil {
		return fmt.Errorf("failed to check label %q: %w", label.Name, err)
	}
	if exists {
		s.logger.Debug().
			Str("name", label.Name).
			Msg("label already exists")
		return nil
	}

	_, err = s.labels.Create(ctx, services.CreateLabelParams{Name: label.Name})
	if err != nil {
		return fmt.Errorf("failed to create label %q: %w", label.Name, err)
	}
	return nil
}
