package dedup

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory keeps keys in process memory. Suitable for a single bot process or
// tests; keys are lost on restart.
type Memory struct {
	c *gocache.Cache
}

// NewMemory returns a Memory backend whose keys expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &Memory{c: gocache.New(ttl, cleanup)}
}

// FirstSeen records key unless an unexpired entry exists.
func (m *Memory) FirstSeen(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	// Add fails if the key exists and has not expired.
	if err := m.c.Add(key, struct{}{}, gocache.DefaultExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

// Forget drops key.
func (m *Memory) Forget(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Len reports how many keys are currently remembered.
func (m *Memory) Len() int { return m.c.ItemCount() }
