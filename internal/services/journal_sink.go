package services

import (
	"context"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/internal/audit"
	"github.com/fastygo/taskguard/internal/infrastructure/journal"
)

// JournalSink persists every recorded audit event to the local journal so it
// survives restarts until the shipper moves it to Postgres.
type JournalSink struct {
	store *journal.Store
}

func NewJournalSink(store *journal.Store) *JournalSink {
	return &JournalSink{store: store}
}

func (s *JournalSink) Write(_ context.Context, event domain.AuditEvent) error {
	if s.store == nil {
		return domain.ErrInvalidPayload
	}
	return s.store.Append(journal.Entry{Event: event})
}

var _ audit.Sink = (*JournalSink)(nil)
