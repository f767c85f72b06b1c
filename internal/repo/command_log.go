// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the append-only command audit log.
// There is deliberately no update or delete helper: rows leave the table
// only through the user/guild foreign-key cascades.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-rule-store/internal/domain"
)

// AppendCommand inserts an audit row with a server-assigned id and UTC
// timestamp.
func AppendCommand(ctx context.Context, db *gorm.DB, userID, guildID int64, command string, args []string) (*domain.CommandLog, error) {
	if args == nil {
		args = []string{}
	}
	e := &domain.CommandLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		GuildID:   guildID,
		Command:   command,
		Args:      domain.Args(args),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, Classify(err)
	}
	return e, nil
}

// CommandFilter narrows log listings. Zero fields are ignored.
type CommandFilter struct {
	GuildID int64
	UserID  int64
	Command string
}

func commandQuery(ctx context.Context, db *gorm.DB, f CommandFilter) *gorm.DB {
	q := db.WithContext(ctx).Model(&domain.CommandLog{})
	if f.GuildID != 0 {
		q = q.Where("guild_id = ?", f.GuildID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Command != "" {
		q = q.Where("command = ?", f.Command)
	}
	return q
}

// CountCommands returns the number of log rows matching f.
func CountCommands(ctx context.Context, db *gorm.DB, f CommandFilter) (int64, error) {
	var n int64
	err := commandQuery(ctx, db, f).Count(&n).Error
	return n, Classify(err)
}

// ListCommandsPage returns log rows matching f, newest first.
func ListCommandsPage(ctx context.Context, db *gorm.DB, f CommandFilter, offset, limit int) ([]domain.CommandLog, error) {
	var out []domain.CommandLog
	err := commandQuery(ctx, db, f).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, Classify(err)
}
