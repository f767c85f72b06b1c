package domain

import "time"

// ProcessedEvent records that a gateway occurrence has already been
// applied, keyed by its occurrence key. Rows past ExpiresAt may be purged.
type ProcessedEvent struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Key       string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_processed_events_key"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (ProcessedEvent) TableName() string { return "processed_events" }
