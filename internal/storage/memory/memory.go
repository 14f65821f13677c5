// Package memory is a process-local storage.Store.
//
// Transactions are serialised by a single mutex and run against a copy of
// the data set which replaces the live one on commit, so a failed operation
// leaves no trace.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type Store struct {
	mu   sync.Mutex
	data *dataset
}

func New() *Store {
	return &Store{data: newDataset()}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := ctx.Err()
	if err != nil {
		return err
	}

	tx := &memoryTx{data: s.data.clone()}
	err = fn(ctx, tx)
	if err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

type dataset struct {
	users    map[string]models.User
	statuses map[string]models.TaskStatus
	labels   map[string]models.Label
	tasks    map[string]models.Task
}

func newDataset() *dataset {
	return &dataset{
		users:    make(map[string]models.User),
		statuses: make(map[string]models.TaskStatus),
		labels:   make(map[string]models.Label),
		tasks:    make(map[string]models.Task),
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		users:    make(map[string]models.User, len(d.users)),
		statuses: make(map[string]models.TaskStatus, len(d.statuses)),
		labels:   make(map[string]models.Label, len(d.labels)),
		tasks:    make(map[string]models.Task, len(d.tasks)),
	}
	for id, u := range d.users {
		c.users[id] = copyUser(u)
	}
	for id, s := range d.statuses {
		c.statuses[id] = s
	}
	for id, l := range d.labels {
		c.labels[id] = l
	}
	for id, t := range d.tasks {
		c.tasks[id] = copyTask(t)
	}
	return c
}

type memoryTx struct {
	data *dataset
}

func (tx *memoryTx) Users() storage.UserRepository {
	return userRepository{data: tx.data}
}

func (tx *memoryTx) TaskStatuses() storage.TaskStatusRepository {
	return taskStatusRepository{data: tx.data}
}

func (tx *memoryTx) Labels() storage.LabelRepository {
	return labelRepository{data: tx.data}
}

func (tx *memoryTx) Tasks() storage.TaskRepository {
	return taskRepository{data: tx.data}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyUser(u models.User) models.User {
	u.FirstName = copyPtr(u.FirstName)
	u.LastName = copyPtr(u.LastName)
	return u
}

func copyTask(t models.Task) models.Task {
	t.Index = copyPtr(t.Index)
	t.Description = copyPtr(t.Description)
	t.AssigneeID = copyPtr(t.AssigneeID)
	t.LabelIDs = slices.Clone(t.LabelIDs)
	return t
}

// sortedValues returns pointers to copies of the map values ordered by
// creation time, then by id.
func sortedValues[T any](m map[string]T, copyFn func(T) T, key func(*T) (int64, string)) []*T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		c := copyFn(v)
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *T) int {
		at, aid := key(a)
		bt, bid := key(b)
		return cmp.Or(cmp.Compare(at, bt), cmp.Compare(aid, bid))
	})
	return out
}

func identity[T any](v T) T {
	return v
}
