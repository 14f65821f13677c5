package services

import (
	"fmt"
	"slices"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/nullable"
	"github.com/adanyl0v/go-task-manager/internal/validation"
)

// checkRequired rejects a null for a required field and validates
// a present value against tag.
func checkRequired[T any](name string, f nullable.Field[T], tag string) error {
	if f.IsNull() {
		return fmt.Errorf("%w: %s cannot be null", ErrInvalidInput, name)
	}
	return checkOptional(name, f, tag)
}

// checkOptional validates a present value against tag. Null is allowed.
func checkOptional[T any](name string, f nullable.Field[T], tag string) error {
	v, ok := f.Get()
	if !ok || tag == "" {
		return nil
	}
	err := validation.Var(v, tag)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidInput, name, err)
	}
	return nil
}

func checkStruct(v any) error {
	err := validation.Struct(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func (p UpdateUserParams) validate() error {
	for _, err := range []error{
		checkRequired("email", p.Email, "required,email,max=255"),
		checkOptional("first name", p.FirstName, "max=255"),
		checkOptional("last name", p.LastName, "max=255"),
		checkRequired("password", p.Password, "required,min=3,max=255"),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (p UpdateTaskStatusParams) validate() error {
	err := checkRequired("name", p.Name, "required,min=1,max=255")
	if err != nil {
		return err
	}
	return checkRequired("slug", p.Slug, "required,slug,max=255")
}

func (p UpdateLabelParams) validate() error {
	return checkRequired("name", p.Name, "required,min=3,max=1000")
}

func (p UpdateTaskParams) validate() error {
	for _, err := range []error{
		checkRequired("title", p.Title, "required,min=1,max=255"),
		checkRequired("status", p.Status, "required"),
		checkOptional("assignee id", p.AssigneeID, "required"),
		checkOptional("label ids", p.LabelIDs, "dive,required"),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// applyUserUpdate applies the present fields of params. passwordDigest
// replaces the stored digest only when a new password was supplied; the
// raw password is never assigned.
func applyUserUpdate(user *models.User, params UpdateUserParams, passwordDigest string) {
	params.Email.Apply(&user.Email)
	params.FirstName.ApplyPtr(&user.FirstName)
	params.LastName.ApplyPtr(&user.LastName)
	if params.Password.IsValue() {
		user.Password = passwordDigest
	}
}

func applyTaskStatusUpdate(status *models.TaskStatus, params UpdateTaskStatusParams) {
	params.Name.Apply(&status.Name)
	params.Slug.Apply(&status.Slug)
}

func applyLabelUpdate(label *models.Label, params UpdateLabelParams) {
	params.Name.Apply(&label.Name)
}

// taskReferences holds the references of a task update after resolution.
// Only the fields present in the update are meaningful.
type taskReferences struct {
	status   *models.TaskStatus
	labelIDs []string
}

// applyTaskUpdate applies the present fields of params. It must only be
// called once every present reference has been resolved.
func applyTaskUpdate(task *models.Task, params UpdateTaskParams, refs taskReferences) {
	params.Index.ApplyPtr(&task.Index)
	params.Title.Apply(&task.Title)
	params.Description.ApplyPtr(&task.Description)
	params.AssigneeID.ApplyPtr(&task.AssigneeID)

	if params.Status.IsValue() {
		task.TaskStatusID = refs.status.ID
		task.Status = refs.status.Slug
	}
	if params.LabelIDs.IsSet() {
		task.LabelIDs = refs.labelIDs
	}
}

// uniqueIDs returns the distinct ids, sorted. It never returns nil.
func uniqueIDs(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}
