package usecase

import (
	"context"

	"github.com/fastygo/taskguard/domain"
)

// AuditRecorder receives an event for every successful mutation. Recording
// never fails the calling operation, but it may block while durable sinks
// persist the event.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuditEvent)
}

// DecisionObserver is notified of every authorization decision the use cases
// take. It exists for metrics and may be nil.
type DecisionObserver interface {
	ObserveDecision(operation string, allowed bool)
}

// Operation names reported to a DecisionObserver.
const (
	OperationList         = "list"
	OperationCreate       = "create"
	OperationAssign       = "assign"
	OperationUpdate       = "update"
	OperationUpdateStatus = "update_status"
	OperationDelete       = "delete"
	OperationAuditLog     = "audit_log"
)
