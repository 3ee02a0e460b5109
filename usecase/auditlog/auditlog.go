package auditlog

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/usecase"
	"github.com/fastygo/taskguard/usecase/authz"
)

// EventSource exposes retained audit events, newest first.
type EventSource interface {
	Events() []domain.AuditEvent
}

type UseCase struct {
	source   EventSource
	observer usecase.DecisionObserver
	logger   *zap.Logger
}

func New(source EventSource, observer usecase.DecisionObserver, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{source: source, observer: observer, logger: logger}
}

// List returns the audit log for admins and owners.
func (uc *UseCase) List(_ context.Context, actor domain.Actor) ([]domain.AuditEvent, error) {
	err := authz.CheckViewAuditLog(actor)
	if uc.observer != nil {
		uc.observer.ObserveDecision(usecase.OperationAuditLog, err == nil)
	}
	if err != nil {
		uc.logger.Info("audit log access denied", zap.String("actor_id", actor.ID), zap.Stringer("role", actor.Role))
		return nil, err
	}
	return uc.source.Events(), nil
}
