package authz

import "github.com/fastygo/taskguard/domain"

// The Check functions wrap the boolean rules and pick the denial message that
// names the rule which failed. They return nil when the action is permitted.

func CheckCreate(actor domain.Actor) error {
	if CanCreate(actor) {
		return nil
	}
	if actor.IsViewer() {
		return domain.Forbidden(ReasonViewerCannotCreate)
	}
	return domain.Forbidden(ReasonUnknownRoleForCreate)
}

func CheckAssign(actor domain.Actor, candidate domain.User) error {
	if CanAssign(actor, candidate) {
		return nil
	}
	return domain.Forbidden(ReasonAssignOutsideOrg)
}

func CheckUpdate(actor domain.Actor, task domain.Task) error {
	if CanUpdate(actor, task) {
		return nil
	}
	switch actor.Role {
	case domain.RoleViewer:
		return domain.Forbidden(ReasonViewerCannotUpdate)
	case domain.RoleOwner:
		return domain.Forbidden(ReasonOwnerUpdateScope)
	default:
		return domain.Forbidden(ReasonCannotUpdate)
	}
}

func CheckUpdateStatus(actor domain.Actor, task domain.Task) error {
	if CanUpdateStatus(actor, task) {
		return nil
	}
	if actor.IsViewer() {
		return domain.Forbidden(ReasonViewerStatusScope)
	}
	return domain.Forbidden(ReasonStatusOtherOrg)
}

func CheckDelete(actor domain.Actor, task domain.Task) error {
	if CanDelete(actor, task) {
		return nil
	}
	return domain.Forbidden(ReasonCannotDelete)
}

func CheckViewAuditLog(actor domain.Actor) error {
	if CanViewAuditLog(actor) {
		return nil
	}
	return domain.Forbidden(ReasonAuditLogRestricted)
}
