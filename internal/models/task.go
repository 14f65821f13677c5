package models

import (
	"slices"
	"strings"
	"time"
)

type Task struct {
	ID           string
	Index        *int
	Title        string
	Description  *string
	TaskStatusID string
	// Status is the slug of the referenced task status, filled on reads.
	Status     string
	AssigneeID *string
	LabelIDs   []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TaskFilter holds the optional criteria of a task listing.
// A nil criterion imposes no constraint.
type TaskFilter struct {
	TitleCont  *string
	AssigneeID *string
	Status     *string
	LabelID    *string
}

func (f TaskFilter) IsEmpty() bool {
	return f.TitleCont == nil &&
		f.AssigneeID == nil &&
		f.Status == nil &&
		f.LabelID == nil
}

// Matches reports whether the task satisfies every present criterion.
// The task's Status slug must be populated.
func (f TaskFilter) Matches(task *Task) bool {
	if f.TitleCont != nil && !ContainsFold(task.Title, *f.TitleCont) {
		return false
	}
	if f.AssigneeID != nil && (task.AssigneeID == nil || *task.AssigneeID != *f.AssigneeID) {
		return false
	}
	if f.Status != nil && task.Status != *f.Status {
		return false
	}
	if f.LabelID != nil && !slices.Contains(task.LabelIDs, *f.LabelID) {
		return false
	}
	return true
}

// ContainsFold reports whether substr is within s, ignoring case.
// Folding does not depend on the process locale.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
