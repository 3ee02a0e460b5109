package repository

import (
	"context"

	"github.com/fastygo/taskguard/domain"
)

// AuditEventRepository is the long-term home of shipped audit events.
type AuditEventRepository interface {
	// Insert is idempotent on event ID.
	Insert(ctx context.Context, event domain.AuditEvent) error
}
