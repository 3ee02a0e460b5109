package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskguard/domain"
)

// These tests run against a migrated database named by
// TASKGUARD_TEST_DATABASE_URL and are skipped otherwise.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TASKGUARD_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TASKGUARD_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedDirectory(t *testing.T, pool *pgxpool.Pool) (orgID, userID string) {
	t.Helper()
	ctx := context.Background()
	orgID = uuid.NewString()
	userID = uuid.NewString()
	_, err := pool.Exec(ctx, `INSERT INTO organizations (id, name) VALUES ($1, $2)`, orgID, "IT")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO users (id, email, name, role, organization_id) VALUES ($1, $2, $3, $4, $5)`,
		userID, userID+"@demo.com", "Owner", "OWNER", orgID)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM tasks WHERE organization_id = $1`, orgID)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, orgID)
	})
	return orgID, userID
}

func TestDirectoryLookups(t *testing.T) {
	pool := testPool(t)
	orgID, userID := seedDirectory(t, pool)
	dir := NewDirectory(pool)
	ctx := context.Background()

	user, err := dir.FindUserByEmail(ctx, userID+"@DEMO.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, domain.RoleOwner, user.Role)
	assert.Equal(t, orgID, user.OrganizationID)

	org, err := dir.FindOrganizationByID(ctx, orgID)
	require.NoError(t, err)
	require.NotNil(t, org)
	assert.True(t, org.IsRoot())

	missing, err := dir.FindUserByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTaskStoreRoundTrip(t *testing.T) {
	pool := testPool(t)
	orgID, userID := seedDirectory(t, pool)
	store := NewTaskStore(pool)
	ctx := context.Background()

	saved, err := store.Save(ctx, &domain.Task{
		Title:          "Rotate keys",
		Category:       "ops",
		Status:         domain.StatusOpen,
		OrganizationID: orgID,
		CreatedByID:    userID,
		AssigneeID:     userID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	saved.Category = ""
	saved.Status = domain.StatusDone
	_, err = store.Save(ctx, saved)
	require.NoError(t, err)

	found, err := store.Find(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, domain.StatusDone, found.Status)
	assert.Empty(t, found.Category)
	assert.Equal(t, userID, found.AssigneeID)

	require.NoError(t, store.Remove(ctx, found))
	gone, err := store.Find(ctx, saved.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.ErrorIs(t, store.Remove(ctx, found), domain.ErrTaskNotFound)
}

func TestAuditInsertIsIdempotent(t *testing.T) {
	pool := testPool(t)
	repo := NewAuditEventRepository(pool)
	ctx := context.Background()
	actor := domain.Actor{ID: "10", Email: "admin@demo.com", Role: domain.RoleAdmin, OrganizationID: "1"}
	ev := domain.NewAuditEvent(uuid.NewString(), time.Now(), actor, domain.ActionDeleteTask, map[string]any{"taskId": "t1"})
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM audit_events WHERE id = $1`, ev.ID) })

	require.NoError(t, repo.Insert(ctx, ev))
	require.NoError(t, repo.Insert(ctx, ev))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM audit_events WHERE id = $1`, ev.ID).Scan(&count))
	assert.Equal(t, 1, count)
}
