package domain

import "time"

// AuditAction names a mutating operation recorded in the audit log.
type AuditAction string

const (
	ActionCreateTask       AuditAction = "CREATE_TASK"
	ActionUpdateTask       AuditAction = "UPDATE_TASK"
	ActionUpdateTaskStatus AuditAction = "UPDATE_TASK_STATUS"
	ActionDeleteTask       AuditAction = "DELETE_TASK"
)

// AuditEvent is an immutable record of a mutating action.
type AuditEvent struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	ActorEmail string         `json:"actorEmail"`
	ActorRole  string         `json:"actorRole"`
	ActorOrgID string         `json:"actorOrgId"`
	Action     AuditAction    `json:"action"`
	Details    map[string]any `json:"details,omitempty"`
}

// NewAuditEvent stamps an event for actor at the given instant.
func NewAuditEvent(id string, at time.Time, actor Actor, action AuditAction, details map[string]any) AuditEvent {
	return AuditEvent{
		ID:         id,
		Timestamp:  at.UTC(),
		ActorEmail: actor.Email,
		ActorRole:  actor.Role.String(),
		ActorOrgID: actor.OrganizationID,
		Action:     action,
		Details:    details,
	}
}
