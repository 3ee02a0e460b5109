package journal

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskguard/domain"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal", "audit.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func entryAt(i int, queued time.Time) Entry {
	return Entry{
		Event: domain.AuditEvent{
			ID:        fmt.Sprintf("e%d", i),
			Timestamp: time.Date(2026, 3, 1, 12, 0, i, 0, time.UTC),
			Action:    domain.ActionUpdateTask,
			Details:   map[string]any{"taskId": fmt.Sprintf("t%d", i)},
		},
		QueuedAt: queued,
	}
}

func TestStoreBatchIsOldestFirst(t *testing.T) {
	store := openTemp(t)
	now := time.Now()
	for _, i := range []int{3, 1, 2} {
		require.NoError(t, store.Append(entryAt(i, now)))
	}

	batch, err := store.Batch(2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "e1", batch[0].Event.ID)
	assert.Equal(t, "e2", batch[1].Event.ID)
	assert.Equal(t, "t1", batch[0].Event.Details["taskId"])

	require.NoError(t, store.Remove(batch[0]))
	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestStoreRetryKeepsSingleCopy(t *testing.T) {
	store := openTemp(t)
	require.NoError(t, store.Append(entryAt(1, time.Now())))

	batch, err := store.Batch(10)
	require.NoError(t, err)
	retried, err := store.Retry(batch[0])
	require.NoError(t, err)
	assert.Equal(t, 1, retried.Attempts)

	batch, err = store.Batch(10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, 1, batch[0].Attempts)
}

func TestStorePrune(t *testing.T) {
	store := openTemp(t)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Append(entryAt(1, old)))
	require.NoError(t, store.Append(entryAt(2, time.Now())))

	removed, err := store.Prune(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	batch, err := store.Batch(10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "e2", batch[0].Event.ID)
}

func TestStoreRejectsEventWithoutID(t *testing.T) {
	store := openTemp(t)
	assert.Error(t, store.Append(Entry{}))
}
