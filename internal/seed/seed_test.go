package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-manager/internal/password"
	"github.com/adanyl0v/go-task-manager/internal/services"
	"github.com/adanyl0v/go-task-manager/internal/storage/memory"
)

type env struct {
	seeder   *Seeder
	users    services.UserService
	statuses services.TaskStatusService
	labels   services.LabelService
}

func newEnv() env {
	store := memory.New()
	hasher := password.NewHasherWithParams(&argon2id.Params{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	logger := zerolog.Nop()

	e := env{
		users:    services.NewUserService(logger, store, hasher),
		statuses: services.NewTaskStatusService(logger, store),
		labels:   services.NewLabelService(logger, store),
	}
	e.seeder = NewSeeder(logger, e.users, e.statuses, e.labels)
	return e
}

var admin = Admin{Email: "hexlet@example.com", Password: "qwerty"}

func TestLoadDefaults(t *testing.T) {
	data, err := Load("")
	require.NoError(t, err)

	slugs := make([]string, 0, len(data.TaskStatuses))
	for _, s := range data.TaskStatuses {
		slugs = append(slugs, s.Slug)
	}
	assert.Equal(t, []string{"draft", "to_review", "to_be_fixed", "to_publish", "published"}, slugs)
	assert.Equal(t, []Label{{Name: "feature"}, {Name: "bug"}}, data.Labels)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[labels]]
name = "urgent"
`), 0o600))

	data, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, data.TaskStatuses)
	assert.Equal(t, []Label{{Name: "urgent"}}, data.Labels)

	require.NoError(t, os.WriteFile(path, []byte(`colour = "red"`), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "unknown seed keys")

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestRunIsIdempotent(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	data, err := Load("")
	require.NoError(t, err)

	require.NoError(t, e.seeder.Run(ctx, admin, data))
	require.NoError(t, e.seeder.Run(ctx, admin, data))

	users, err := e.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "hexlet@example.com", users[0].Email)
	assert.True(t, users[0].IsAdmin)

	statuses, err := e.statuses.List(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 5)

	labels, err := e.labels.List(ctx)
	require.NoError(t, err)
	assert.Len(t, labels, 2)
}

func TestRunKeepsExistingRecords(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	existing, err := e.statuses.Create(ctx, services.CreateTaskStatusParams{Name: "Draft", Slug: "draft_v1"})
	require.NoError(t, err)

	data := &Data{TaskStatuses: []TaskStatus{{Name: "Draft", Slug: "draft"}}}
	require.NoError(t, e.seeder.Run(ctx, admin, data))

	statuses, err := e.statuses.List(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, existing.ID, statuses[0].ID)
	assert.Equal(t, "draft_v1", statuses[0].Slug)
}
