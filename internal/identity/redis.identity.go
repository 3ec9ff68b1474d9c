package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const externalIDKey = "identity:external_ids"

// RedisRegistry resolves and severs the internal-user to identity-provider
// mapping through the shared Redis the auth layer maintains. Resolution is
// best-effort: an absent mapping returns "", nil.
type RedisRegistry struct {
	rdb *redis.Client
}

func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{rdb: rdb}
}

func (r *RedisRegistry) ResolveExternalID(ctx context.Context, userID string) (string, error) {
	val, err := r.rdb.HGet(ctx, externalIDKey, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to resolve external id for user %s: %w", userID, err)
	}
	return val, nil
}

func (r *RedisRegistry) SeverMapping(ctx context.Context, userID string) error {
	if err := r.rdb.HDel(ctx, externalIDKey, userID).Err(); err != nil {
		return fmt.Errorf("failed to sever identity mapping for user %s: %w", userID, err)
	}
	return nil
}
