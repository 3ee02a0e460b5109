package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/internal/audit"
	"github.com/fastygo/taskguard/internal/infrastructure/journal"
)

type fakeAuditRepo struct {
	fail     map[string]bool
	inserted []domain.AuditEvent
}

func (r *fakeAuditRepo) Insert(_ context.Context, ev domain.AuditEvent) error {
	if r.fail[ev.ID] {
		return errors.New("insert failed")
	}
	r.inserted = append(r.inserted, ev)
	return nil
}

type online bool

func (o online) IsOnline() bool { return bool(o) }

type outcomes map[string]int

func (o outcomes) ObserveShipped(outcome string) { o[outcome]++ }

func openJournal(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "audit.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func recordVia(t *testing.T, store *journal.Store, ids ...string) {
	t.Helper()
	log := audit.NewLog(audit.DefaultCapacity, nil, NewJournalSink(store))
	actor := domain.Actor{ID: "10", Email: "admin@demo.com", Role: domain.RoleAdmin, OrganizationID: "1"}
	for i, id := range ids {
		at := time.Date(2026, 5, 1, 8, 0, i, 0, time.UTC)
		log.Record(context.Background(), domain.NewAuditEvent(id, at, actor, domain.ActionCreateTask, map[string]any{"taskId": id}))
	}
}

func TestDrainShipsAndRemoves(t *testing.T) {
	store := openJournal(t)
	recordVia(t, store, "e1", "e2")
	repo := &fakeAuditRepo{}
	seen := outcomes{}
	shipper := NewJournalShipper(store, online(true), repo, seen, nil, ShipperConfig{})

	require.NoError(t, shipper.Drain(context.Background()))

	require.Len(t, repo.inserted, 2)
	assert.Equal(t, "e1", repo.inserted[0].ID)
	assert.Equal(t, "ADMIN", repo.inserted[0].ActorRole)
	size, _ := store.Size()
	assert.Zero(t, size)
	assert.Equal(t, 2, seen["shipped"])
}

func TestDrainSkipsWhileOffline(t *testing.T) {
	store := openJournal(t)
	recordVia(t, store, "e1")
	repo := &fakeAuditRepo{}
	shipper := NewJournalShipper(store, online(false), repo, nil, nil, ShipperConfig{})

	require.NoError(t, shipper.Drain(context.Background()))
	assert.Empty(t, repo.inserted)
	size, _ := store.Size()
	assert.Equal(t, 1, size)
}

func TestDrainRetriesThenDrops(t *testing.T) {
	store := openJournal(t)
	recordVia(t, store, "bad", "good")
	repo := &fakeAuditRepo{fail: map[string]bool{"bad": true}}
	seen := outcomes{}
	shipper := NewJournalShipper(store, nil, repo, seen, nil, ShipperConfig{MaxRetries: 2})

	require.NoError(t, shipper.Drain(context.Background()))
	size, _ := store.Size()
	assert.Equal(t, 1, size)
	assert.Equal(t, 1, seen["retried"])

	require.NoError(t, shipper.Drain(context.Background()))
	size, _ = store.Size()
	assert.Zero(t, size)
	assert.Equal(t, 1, seen["dropped"])
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "good", repo.inserted[0].ID)
}

func TestPruneUsesRetention(t *testing.T) {
	store := openJournal(t)
	require.NoError(t, store.Append(journal.Entry{
		Event:    domain.AuditEvent{ID: "old", Timestamp: time.Now()},
		QueuedAt: time.Now().Add(-3 * time.Hour),
	}))
	require.NoError(t, store.Append(journal.Entry{
		Event: domain.AuditEvent{ID: "fresh", Timestamp: time.Now()},
	}))
	shipper := NewJournalShipper(store, nil, &fakeAuditRepo{}, nil, nil, ShipperConfig{Retention: time.Hour})

	removed, err := shipper.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
