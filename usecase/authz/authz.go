// Package authz holds the pure permission rules for tasks. Nothing here
// performs I/O or mutates state; every function is a decision over an actor
// and, where relevant, a task.
package authz

import "github.com/fastygo/taskguard/domain"

// Denial reasons surfaced to callers.
const (
	ReasonViewerCannotCreate   = "VIEWER cannot create tasks"
	ReasonAssignOutsideOrg     = "Cannot assign tasks outside your organization"
	ReasonViewerCannotUpdate   = "VIEWER cannot update tasks"
	ReasonOwnerUpdateScope     = "Owners can only update tasks in their organization or tasks assigned to them"
	ReasonCannotUpdate         = "You cannot update this task"
	ReasonViewerStatusScope    = "You can only update status for tasks assigned to you"
	ReasonStatusOtherOrg       = "You cannot update tasks in another organization"
	ReasonCannotDelete         = "You cannot delete this task"
	ReasonAuditLogRestricted   = "Only ADMIN or OWNER can view audit log"
	ReasonUnknownRoleForCreate = "You cannot create tasks"
)

// Predicate decides whether a task summary is visible.
type Predicate func(domain.TaskSummary) bool

// VisibilityScope returns the membership test for the tasks actor may read.
func VisibilityScope(actor domain.Actor) Predicate {
	switch actor.Role {
	case domain.RoleAdmin:
		return func(domain.TaskSummary) bool { return true }
	case domain.RoleOwner:
		return func(s domain.TaskSummary) bool {
			return actor.InOrganization(s.Task.OrganizationID) ||
				actor.InOrganization(s.AssigneeOrgID) ||
				actor.InOrganization(s.CreatorOrgID) ||
				s.Task.IsAssignedTo(actor.ID)
		}
	case domain.RoleViewer:
		return func(s domain.TaskSummary) bool { return s.Task.IsAssignedTo(actor.ID) }
	default:
		return func(domain.TaskSummary) bool { return false }
	}
}

// CanView reports whether a single task summary is in actor's visibility scope.
func CanView(actor domain.Actor, summary domain.TaskSummary) bool {
	return VisibilityScope(actor)(summary)
}

func CanCreate(actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleOwner:
		return true
	case domain.RoleViewer:
		return false
	default:
		return false
	}
}

// CanAssign reports whether actor may make candidate a task's assignee.
// Only admins may assign across organizations.
func CanAssign(actor domain.Actor, candidate domain.User) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.InOrganization(candidate.OrganizationID)
}

// CanUpdate covers general field updates (title, description, category,
// assignee). Viewers only ever go through the status path.
func CanUpdate(actor domain.Actor, task domain.Task) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleOwner:
		return actor.InOrganization(task.OrganizationID) || task.IsAssignedTo(actor.ID)
	case domain.RoleViewer:
		return false
	default:
		return false
	}
}

// CanUpdateStatus is deliberately narrower than CanUpdate for owners: it checks
// organization only, so an owner assigned a task from another organization
// may edit its fields but not its status.
func CanUpdateStatus(actor domain.Actor, task domain.Task) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleViewer:
		return task.IsAssignedTo(actor.ID)
	case domain.RoleOwner:
		return actor.InOrganization(task.OrganizationID)
	default:
		return actor.InOrganization(task.OrganizationID)
	}
}

func CanDelete(actor domain.Actor, task domain.Task) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleOwner:
		return actor.InOrganization(task.OrganizationID)
	case domain.RoleViewer:
		return false
	default:
		return false
	}
}

// CanViewAuditLog gates the audit log read endpoint.
func CanViewAuditLog(actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleOwner:
		return true
	default:
		return false
	}
}
