package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task. Any status may follow any other.
type TaskStatus string

const (
	StatusOpen       TaskStatus = "OPEN"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// ParseTaskStatus validates a status coming from outside the core.
func ParseTaskStatus(value string) (TaskStatus, error) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", Invalid(fmt.Sprintf("unknown task status %q", value))
	}
	return status, nil
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Task is a unit of work owned by one organization.
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category,omitempty"`
	Status         TaskStatus `json:"status"`
	OrganizationID string     `json:"organization_id"`
	CreatedByID    string     `json:"created_by_id"`
	AssigneeID     string     `json:"assignee_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (t *Task) HasAssignee() bool {
	return t != nil && t.AssigneeID != ""
}

// IsAssignedTo reports whether userID is the task's current assignee.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.HasAssignee() && userID != "" && t.AssigneeID == userID
}

// TaskSummary pairs a task with the organizations of the users it references,
// which is all the visibility rules need to decide membership.
type TaskSummary struct {
	Task          Task
	CreatorOrgID  string
	AssigneeOrgID string
}

// UserRef identifies a user referenced by a task. Name falls back to the
// email when the directory has no name recorded.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUserRef returns nil for a nil user.
func NewUserRef(u *User) *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.DisplayName(), Email: u.Email}
}

// TaskView is a listed task with its creator and assignee resolved. Either
// reference is nil when the task has none or the user left the directory.
type TaskView struct {
	Task
	CreatedBy *UserRef `json:"createdBy"`
	Assignee  *UserRef `json:"assignee"`
}

// TaskDraft carries the caller-controlled fields of a new task.
type TaskDraft struct {
	Title       string
	Description string
	Category    string
	AssigneeID  string
}

// AssigneeChange distinguishes "leave the assignee alone" (zero value) from an
// explicit change. Present with an empty ID clears the assignee.
type AssigneeChange struct {
	Present bool
	ID      string
}

func (c AssigneeChange) Clears() bool {
	return c.Present && c.ID == ""
}

// TaskPatch is a partial update. Nil fields are left untouched; a non-nil
// empty string clears the field.
type TaskPatch struct {
	Title       *string
	Description *string
	Category    *string
	Status      *TaskStatus
	Assignee    AssigneeChange
}

// Apply copies the plain fields of the patch onto t. Assignee changes need a
// directory lookup and are handled by the caller.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}
