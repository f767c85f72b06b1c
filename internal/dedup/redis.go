package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-rule-store/internal/repo"
)

// Redis stores keys with SET NX and a TTL, so it can be shared by several
// bot processes.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

// NewRedis returns a Redis backend using prefix "rulestore:event:".
func NewRedis(c *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{Client: c, TTL: ttl, Prefix: "rulestore:event:"}
}

// FirstSeen sets the prefixed key with SETNX and the backend TTL.
func (r *Redis) FirstSeen(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	ok, err := r.Client.SetNX(ctx, r.Prefix+key, 1, r.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("%w: redis setnx: %w", repo.ErrUnavailable, err)
	}
	return ok, nil
}

// Forget deletes the prefixed key.
func (r *Redis) Forget(ctx context.Context, key string) error {
	if err := r.Client.Del(ctx, r.Prefix+key).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %w", repo.ErrUnavailable, err)
	}
	return nil
}
