package dedup

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-rule-store/internal/repo"
)

// DB stores keys in the processed_events table. A unique index on the key
// makes FirstSeen a single conflicting insert.
type DB struct {
	DB  *gorm.DB
	TTL time.Duration
	// PurgeEvery is the chance, as 1 in N, that a call also purges expired
	// rows. Zero disables purging.
	PurgeEvery int
}

// NewDB returns a DB backend with purging on roughly 1 in 100 calls.
func NewDB(db *gorm.DB, ttl time.Duration) *DB {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &DB{DB: db, TTL: ttl, PurgeEvery: 100}
}

// FirstSeen inserts key into processed_events; a unique violation means
// the key was already seen.
func (d *DB) FirstSeen(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	err := repo.MarkProcessed(ctx, d.DB, key, d.TTL)
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		return false, nil
	case err != nil:
		return false, err
	}
	if d.PurgeEvery > 0 && rand.Intn(d.PurgeEvery) == 0 {
		if n, err := repo.PurgeExpired(ctx, d.DB, time.Now().UTC()); err != nil {
			log.Warn().Err(err).Msg("dedup: purge expired keys")
		} else if n > 0 {
			log.Debug().Int64("purged", n).Msg("dedup: purged expired keys")
		}
	}
	return true, nil
}

// Forget deletes the processed_events row for key.
func (d *DB) Forget(ctx context.Context, key string) error {
	return repo.UnmarkProcessed(ctx, d.DB, key)
}
