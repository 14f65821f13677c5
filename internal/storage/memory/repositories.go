package memory

import (
	"context"
	"slices"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type userRepository struct {
	data *dataset
}

func (r userRepository) Create(_ context.Context, user *models.User) error {
	if _, ok := r.data.users[user.ID]; ok {
		return storage.ErrDuplicate
	}
	if r.emailTaken(user.Email, user.ID) {
		return storage.ErrDuplicate
	}
	r.data.users[user.ID] = copyUser(*user)
	return nil
}

func (r userRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.data.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u = copyUser(u)
	return &u, nil
}

func (r userRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.data.users {
		if u.Email == email {
			u = copyUser(u)
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r userRepository) FindAll(context.Context) ([]*models.User, error) {
	return sortedValues(r.data.users, copyUser, func(u *models.User) (int64, string) {
		return u.CreatedAt.UnixNano(), u.ID
	}), nil
}

func (r userRepository) Update(_ context.Context, user *models.User) error {
	if _, ok := r.data.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return storage.ErrDuplicate
	}
	r.data.users[user.ID] = copyUser(*user)
	return nil
}

func (r userRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.data.users[id]; !ok {
		return storage.ErrNotFound
	}
	for _, t := range r.data.tasks {
		if t.AssigneeID != nil && *t.AssigneeID == id {
			return storage.ErrReferenced
		}
	}
	delete(r.data.users, id)
	return nil
}

func (r userRepository) Lock(_ context.Context, id string) error {
	if _, ok := r.data.users[id]; !ok {
		return storage.ErrNotFound
	}
	return nil
}

func (r userRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.emailTaken(email, ""), nil
}

func (r userRepository) emailTaken(email, exceptID string) bool {
	for id, u := range r.data.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

type taskStatusRepository struct {
	data *dataset
}

func (r taskStatusRepository) Create(_ context.Context, status *models.TaskStatus) error {
	if _, ok := r.data.statuses[status.ID]; ok {
		return storage.ErrDuplicate
	}
	if r.taken(status, status.ID) {
		return storage.ErrDuplicate
	}
	r.data.statuses[status.ID] = *status
	return nil
}

func (r taskStatusRepository) FindByID(_ context.Context, id string) (*models.TaskStatus, error) {
	s, ok := r.data.statuses[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &s, nil
}

func (r taskStatusRepository) FindBySlug(_ context.Context, slug string) (*models.TaskStatus, error) {
	for _, s := range r.data.statuses {
		if s.Slug == slug {
			return &s, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r taskStatusRepository) FindAll(context.Context) ([]*models.TaskStatus, error) {
	return sortedValues(r.data.statuses, identity[models.TaskStatus], func(s *models.TaskStatus) (int64, string) {
		return s.CreatedAt.UnixNano(), s.ID
	}), nil
}

func (r taskStatusRepository) Update(_ context.Context, status *models.TaskStatus) error {
	if _, ok := r.data.statuses[status.ID]; !ok {
		return storage.ErrNotFound
	}
	if r.taken(status, status.ID) {
		return storage.ErrDuplicate
	}
	r.data.statuses[status.ID] = *status
	return nil
}

func (r taskStatusRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.data.statuses[id]; !ok {
		return storage.ErrNotFound
	}
	for _, t := range r.data.tasks {
		if t.TaskStatusID == id {
			return storage.ErrReferenced
		}
	}
	delete(r.data.statuses, id)
	return nil
}

func (r taskStatusRepository) Lock(_ context.Context, id string) error {
	if _, ok := r.data.statuses[id]; !ok {
		return storage.ErrNotFound
	}
	return nil
}

func (r taskStatusRepository) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	for _, s := range r.data.statuses {
		if s.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r taskStatusRepository) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, s := range r.data.statuses {
		if s.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r taskStatusRepository) taken(status *models.TaskStatus, exceptID string) bool {
	for id, s := range r.data.statuses {
		if id != exceptID && (s.Slug == status.Slug || s.Name == status.Name) {
			return true
		}
	}
	return false
}

type labelRepository struct {
	data *dataset
}

func (r labelRepository) Create(_ context.Context, label *models.Label) error {
	if _, ok := r.data.labels[label.ID]; ok {
		return storage.ErrDuplicate
	}
	if r.nameTaken(label.Name, label.ID) {
		return storage.ErrDuplicate
	}
	r.data.labels[label.ID] = *label
	return nil
}

func (r labelRepository) FindByID(_ context.Context, id string) (*models.Label, error) {
	l, ok := r.data.labels[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &l, nil
}

func (r labelRepository) FindAll(context.Context) ([]*models.Label, error) {
	return sortedValues(r.data.labels, identity[models.Label], func(l *models.Label) (int64, string) {
		return l.CreatedAt.UnixNano(), l.ID
	}), nil
}

func (r labelRepository) Update(_ context.Context, label *models.Label) error {
	if _, ok := r.data.labels[label.ID]; !ok {
		return storage.ErrNotFound
	}
	if r.nameTaken(label.Name, label.ID) {
		return storage.ErrDuplicate
	}
	r.data.labels[label.ID] = *label
	return nil
}

func (r labelRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.data.labels[id]; !ok {
		return storage.ErrNotFound
	}
	for _, t := range r.data.tasks {
		if slices.Contains(t.LabelIDs, id) {
			return storage.ErrReferenced
		}
	}
	delete(r.data.labels, id)
	return nil
}

func (r labelRepository) Lock(_ context.Context, id string) error {
	if _, ok := r.data.labels[id]; !ok {
		return storage.ErrNotFound
	}
	return nil
}

func (r labelRepository) ExistsByName(_ context.Context, name string) (bool, error) {
	return r.nameTaken(name, ""), nil
}

func (r labelRepository) nameTaken(name, exceptID string) bool {
	for id, l := range r.data.labels {
		if id != exceptID && l.Name == name {
			return true
		}
	}
	return false
}

type taskRepository struct {
	data *dataset
}

func (r taskRepository) Create(_ context.Context, task *models.Task) error {
	if _, ok := r.data.tasks[task.ID]; ok {
		return storage.ErrDuplicate
	}
	err := r.checkReferences(task)
	if err != nil {
		return err
	}
	r.data.tasks[task.ID] = r.normalize(task)
	return nil
}

func (r taskRepository) FindByID(_ context.Context, id string) (*models.Task, error) {
	t, ok := r.data.tasks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return r.hydrate(t), nil
}

func (r taskRepository) FindByFilter(_ context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	all := sortedValues(r.data.tasks, copyTask, func(t *models.Task) (int64, string) {
		return t.CreatedAt.UnixNano(), t.ID
	})

	tasks := make([]*models.Task, 0, len(all))
	for _, t := range all {
		t = r.hydrate(*t)
		if filter.Matches(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (r taskRepository) Update(_ context.Context, task *models.Task) error {
	if _, ok := r.data.tasks[task.ID]; !ok {
		return storage.ErrNotFound
	}
	err := r.checkReferences(task)
	if err != nil {
		return err
	}
	r.data.tasks[task.ID] = r.normalize(task)
	return nil
}

func (r taskRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.data.tasks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.data.tasks, id)
	return nil
}

func (r taskRepository) ExistsByAssignee(_ context.Context, userID string) (bool, error) {
	for _, t := range r.data.tasks {
		if t.AssigneeID != nil && *t.AssigneeID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r taskRepository) ExistsByStatus(_ context.Context, statusID string) (bool, error) {
	for _, t := range r.data.tasks {
		if t.TaskStatusID == statusID {
			return true, nil
		}
	}
	return false, nil
}

func (r taskRepository) ExistsByLabel(_ context.Context, labelID string) (bool, error) {
	for _, t := range r.data.tasks {
		if slices.Contains(t.LabelIDs, labelID) {
			return true, nil
		}
	}
	return false, nil
}

// checkReferences mirrors the foreign keys of the SQL schemas.
func (r taskRepository) checkReferences(task *models.Task) error {
	if _, ok := r.data.statuses[task.TaskStatusID]; !ok {
		return storage.ErrNotFound
	}
	if task.AssigneeID != nil {
		if _, ok := r.data.users[*task.AssigneeID]; !ok {
			return storage.ErrNotFound
		}
	}
	for _, id := range task.LabelIDs {
		if _, ok := r.data.labels[id]; !ok {
			return storage.ErrNotFound
		}
	}
	return nil
}

func (r taskRepository) normalize(task *models.Task) models.Task {
	t := copyTask(*task)
	slices.Sort(t.LabelIDs)
	t.LabelIDs = slices.Compact(t.LabelIDs)
	t.Status = ""
	return t
}

func (r taskRepository) hydrate(t models.Task) *models.Task {
	t = copyTask(t)
	if t.LabelIDs == nil {
		t.LabelIDs = []string{}
	}
	t.Status = r.data.statuses[t.TaskStatusID].Slug
	return &t
}
