package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/repository"
)

type auditEventRepository struct {
	pool *pgxpool.Pool
}

// NewAuditEventRepository persists shipped audit events. Inserting an event
// whose id already exists is a no-op so replays after a crash are safe.
func NewAuditEventRepository(pool *pgxpool.Pool) repository.AuditEventRepository {
	return &auditEventRepository{pool: pool}
}

func (r *auditEventRepository) Insert(ctx context.Context, event domain.AuditEvent) error {
	const query = `
	INSERT INTO audit_events (id, occurred_at, actor_email, actor_role, actor_org_id, action, details)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Timestamp,
		event.ActorEmail,
		event.ActorRole,
		event.ActorOrgID,
		string(event.Action),
		marshalDetails(event.Details),
	)
	return err
}
