// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the processed-event ledger used to
// de-duplicate redelivered gateway events.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-rule-store/internal/domain"
)

// MarkProcessed records key as processed until now+ttl. It returns
// ErrDuplicate if an unexpired record already exists. An expired record for
// the same key is replaced.
func MarkProcessed(ctx context.Context, db *gorm.DB, key string, ttl time.Duration) error {
	now := time.Now().UTC()
	rec := &domain.ProcessedEvent{
		ID:        uuid.NewString(),
		Key:       key,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	err := Classify(db.WithContext(ctx).Create(rec).Error)
	if !errors.Is(err, ErrDuplicate) {
		return err
	}

	// Reclaim the key only if the existing record has expired.
	res := db.WithContext(ctx).Model(&domain.ProcessedEvent{}).
		Where("key = ? AND expires_at <= ?", key, now).
		Updates(map[string]any{"created_at": now, "expires_at": now.Add(ttl)})
	if res.Error != nil {
		return Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

// UnmarkProcessed forgets key.
func UnmarkProcessed(ctx context.Context, db *gorm.DB, key string) error {
	return Classify(db.WithContext(ctx).Where("key = ?", key).Delete(&domain.ProcessedEvent{}).Error)
}

// PurgeExpired deletes records that expired before now.
func PurgeExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.ProcessedEvent{})
	return res.RowsAffected, Classify(res.Error)
}
