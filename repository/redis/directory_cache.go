package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/repository"
)

const (
	userPrefix      = "directory:user:"
	userEmailPrefix = "directory:user-email:"
	orgPrefix       = "directory:org:"
)

// DirectoryCache is a read-through cache in front of another Directory.
// Only hits from the backing directory are cached, and any Redis failure
// falls back to the backing directory.
type DirectoryCache struct {
	client  redislib.Cmdable
	backing repository.Directory
	ttl     time.Duration
	logger  *zap.Logger
}

// NewDirectoryCache wraps backing with a Redis cache whose entries expire
// after ttl.
func NewDirectoryCache(client redislib.Cmdable, backing repository.Directory, ttl time.Duration, logger *zap.Logger) *DirectoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryCache{client: client, backing: backing, ttl: ttl, logger: logger}
}

func (c *DirectoryCache) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	return readThrough(ctx, c, userPrefix+id, func() (*domain.User, error) {
		return c.backing.FindUserByID(ctx, id)
	})
}

func (c *DirectoryCache) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	key := userEmailPrefix + strings.ToLower(email)
	return readThrough(ctx, c, key, func() (*domain.User, error) {
		return c.backing.FindUserByEmail(ctx, email)
	})
}

func (c *DirectoryCache) FindOrganizationByID(ctx context.Context, id string) (*domain.Organization, error) {
	return readThrough(ctx, c, orgPrefix+id, func() (*domain.Organization, error) {
		return c.backing.FindOrganizationByID(ctx, id)
	})
}

// Invalidate drops the cached entries for a user. Callers that change
// directory data out of band use it to avoid waiting for the TTL.
func (c *DirectoryCache) Invalidate(ctx context.Context, user domain.User) error {
	return c.client.Del(ctx, userPrefix+user.ID, userEmailPrefix+strings.ToLower(user.Email)).Err()
}

func readThrough[T any](ctx context.Context, c *DirectoryCache, key string, load func() (*T, error)) (*T, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var value T
		if err := json.Unmarshal(payload, &value); err == nil {
			return &value, nil
		}
		c.logger.Warn("discarding undecodable directory cache entry", zap.String("key", key))
	case !errors.Is(err, redislib.Nil):
		c.logger.Warn("directory cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := load()
	if err != nil || value == nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.Warn("directory cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

var _ repository.Directory = (*DirectoryCache)(nil)
