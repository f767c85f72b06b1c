// Package dedup decides whether a gateway occurrence has been seen before,
// so redelivered events are not counted twice. Three backends share one
// interface: the database (processed_events), Redis, and process memory.
package dedup

import (
	"context"
	"errors"
	"time"
)

// Deduper reports first sightings of occurrence keys.
type Deduper interface {
	// FirstSeen atomically records key and reports whether this call was
	// the first to do so within the backend's TTL.
	FirstSeen(ctx context.Context, key string) (bool, error)
	// Forget releases key, so a caller whose write failed after FirstSeen
	// lets the redelivery through.
	Forget(ctx context.Context, key string) error
}

// DefaultTTL bounds how long a key is remembered when none is configured.
const DefaultTTL = 24 * time.Hour

// ErrEmptyKey is returned for blank occurrence keys.
var ErrEmptyKey = errors.New("dedup: empty key")

// Noop treats every key as new. Used when de-duplication is disabled.
type Noop struct{}

// FirstSeen always reports true.
func (Noop) FirstSeen(context.Context, string) (bool, error) {
	return true, nil
}

// Forget does nothing.
func (Noop) Forget(context.Context, string) error {
	return nil
}
