package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/repository/memory"
)

type countingDirectory struct {
	*memory.Directory
	userLookups int
}

func (d *countingDirectory) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	d.userLookups++
	return d.Directory.FindUserByID(ctx, id)
}

func setup(t *testing.T) (*miniredis.Miniredis, *countingDirectory, *DirectoryCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backing := &countingDirectory{Directory: memory.NewDirectory()}
	backing.AddOrganization(domain.Organization{ID: "2", Name: "IT", ParentID: "1"})
	backing.AddUser(domain.User{ID: "20", Email: "owner@it.com", Name: "IT Owner", Role: domain.RoleOwner, OrganizationID: "2"})

	return mr, backing, NewDirectoryCache(client, backing, time.Minute, nil)
}

func TestCacheServesRepeatLookups(t *testing.T) {
	mr, backing, cache := setup(t)
	ctx := context.Background()

	first, err := cache.FindUserByID(ctx, "20")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := cache.FindUserByID(ctx, "20")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, domain.RoleOwner, second.Role)
	assert.Equal(t, 1, backing.userLookups)
	assert.True(t, mr.Exists("directory:user:20"))
	assert.Equal(t, time.Minute, mr.TTL("directory:user:20"))
}

func TestCacheDoesNotStoreMisses(t *testing.T) {
	mr, backing, cache := setup(t)
	ctx := context.Background()

	user, err := cache.FindUserByID(ctx, "404")
	require.NoError(t, err)
	assert.Nil(t, user)
	_, _ = cache.FindUserByID(ctx, "404")

	assert.Equal(t, 2, backing.userLookups)
	assert.False(t, mr.Exists("directory:user:404"))
}

func TestCacheKeysEmailCaseInsensitively(t *testing.T) {
	mr, _, cache := setup(t)

	user, err := cache.FindUserByEmail(context.Background(), "Owner@IT.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, mr.Exists("directory:user-email:owner@it.com"))
}

func TestCacheOrganization(t *testing.T) {
	mr, _, cache := setup(t)

	org, err := cache.FindOrganizationByID(context.Background(), "2")
	require.NoError(t, err)
	require.NotNil(t, org)
	assert.Equal(t, "1", org.ParentID)
	assert.True(t, mr.Exists("directory:org:2"))
}

func TestCacheFallsBackWhenRedisDown(t *testing.T) {
	mr, backing, cache := setup(t)
	mr.Close()

	user, err := cache.FindUserByID(context.Background(), "20")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 1, backing.userLookups)
}

func TestInvalidateDropsUserKeys(t *testing.T) {
	mr, backing, cache := setup(t)
	ctx := context.Background()
	user, err := cache.FindUserByID(ctx, "20")
	require.NoError(t, err)
	_, err = cache.FindUserByEmail(ctx, user.Email)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(ctx, *user))
	assert.False(t, mr.Exists("directory:user:20"))
	assert.False(t, mr.Exists("directory:user-email:owner@it.com"))
	_, _ = cache.FindUserByID(ctx, "20")
	assert.Equal(t, 2, backing.userLookups)
}
