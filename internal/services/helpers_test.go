package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/password"
	"github.com/adanyl0v/go-task-manager/internal/storage"
	"github.com/adanyl0v/go-task-manager/internal/storage/memory"
	"github.com/adanyl0v/go-task-manager/internal/storage/sqlite"
)

var fastParams = &argon2id.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type testEnv struct {
	store    storage.Store
	hasher   password.Hasher
	users    UserService
	statuses TaskStatusService
	labels   LabelService
	tasks    TaskService
	auth     AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, memory.New())
}

func newTestEnvWithStore(t *testing.T, store storage.Store) *testEnv {
	t.Helper()

	hasher := password.NewHasherWithParams(fastParams)
	logger := zerolog.Nop()

	return &testEnv{
		store:    store,
		hasher:   hasher,
		users:    NewUserService(logger, store, hasher),
		statuses: NewTaskStatusService(logger, store),
		labels:   NewLabelService(logger, store),
		tasks:    NewTaskService(logger, store),
		auth:     NewAuthService(logger, store, hasher, "test", []byte("secret"), time.Hour),
	}
}

func openSQLite(t *testing.T) storage.Store {
	t.Helper()

	store, err := sqlite.Open(":memory:", 1000)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

var testStores = []struct {
	name string
	open func(t *testing.T) storage.Store
}{
	{"memory", func(*testing.T) storage.Store { return memory.New() }},
	{"sqlite", openSQLite},
}

// forEachStore runs fn once per storage backend, each with a fresh env.
func forEachStore(t *testing.T, fn func(t *testing.T, env *testEnv)) {
	t.Helper()
	for _, s := range testStores {
		t.Run(s.name, func(t *testing.T) {
			fn(t, newTestEnvWithStore(t, s.open(t)))
		})
	}
}

func (e *testEnv) createUser(t *testing.T, email string, isAdmin bool) *models.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), CreateUserParams{
		Email:    email,
		Password: "password",
		IsAdmin:  isAdmin,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createStatus(t *testing.T, name, slug string) *models.TaskStatus {
	t.Helper()
	status, err := e.statuses.Create(context.Background(), CreateTaskStatusParams{
		Name: name,
		Slug: slug,
	})
	require.NoError(t, err)
	return status
}

func (e *testEnv) createLabel(t *testing.T, name string) *models.Label {
	t.Helper()
	label, err := e.labels.Create(context.Background(), CreateLabelParams{Name: name})
	require.NoError(t, err)
	return label
}

func (e *testEnv) createTask(t *testing.T, params CreateTaskParams) *models.Task {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), params)
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T {
	return &v
}

var errStorageDown = errors.New("connection refused")

// brokenStore fails every transaction.
type brokenStore struct{}

func (brokenStore) InTx(context.Context, func(context.Context, storage.Tx) error) error {
	return errStorageDown
}

func (brokenStore) Ping(context.Context) error {
	return errStorageDown
}

func (brokenStore) Close() error {
	return nil
}
