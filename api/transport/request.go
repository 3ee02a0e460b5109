package transport

import (
	"bytes"
	"encoding/json"

	"github.com/fastygo/taskguard/domain"
)

// Optional records whether a JSON field was present and whether it was null.
// Its UnmarshalJSON only runs for keys that appear in the payload.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns nil when absent, a pointer to the zero value when null, and a
// pointer to the value otherwise.
func (o Optional[T]) Ptr() *T {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	AssigneeID  string `json:"assigneeId"`
}

func (r CreateTaskRequest) Draft() domain.TaskDraft {
	return domain.TaskDraft{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		AssigneeID:  r.AssigneeID,
	}
}

type UpdateTaskRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Category    Optional[string] `json:"category"`
	Status      Optional[string] `json:"status"`
	AssigneeID  Optional[string] `json:"assigneeId"`
}

// Patch converts the request into a domain patch, validating the status.
func (r UpdateTaskRequest) Patch() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       r.Title.Ptr(),
		Description: r.Description.Ptr(),
		Category:    r.Category.Ptr(),
	}
	if r.Status.Set {
		status, err := domain.ParseTaskStatus(r.Status.Value)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.Status = &status
	}
	if r.AssigneeID.Set {
		patch.Assignee = domain.AssigneeChange{Present: true, ID: r.AssigneeID.Value}
	}
	return patch, nil
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}
