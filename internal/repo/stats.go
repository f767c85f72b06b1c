// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the per-guild activity aggregates built
// on the membership counters.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-rule-store/internal/domain"
)

// LeaderboardRow is one ranked member of a guild.
type LeaderboardRow struct {
	UserID          int64  `json:"user_id"`
	Username        string `json:"username"`
	MessagesSent    int64  `json:"messages_sent"`
	MessagesDeleted int64  `json:"messages_deleted"`
}

// Leaderboard returns the top members of a guild by counter c. Ties are
// ordered by user id so pages are stable.
func Leaderboard(ctx context.Context, db *gorm.DB, guildID int64, c Counter, offset, limit int) ([]LeaderboardRow, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	var rows []LeaderboardRow
	err := db.WithContext(ctx).
		Model(&domain.Membership{}).
		Select("guilds_users.user_id AS user_id, users.username AS username, " +
			"guilds_users.messages_sent AS messages_sent, guilds_users.messages_deleted AS messages_deleted").
		Joins("JOIN users ON users.id = guilds_users.user_id").
		Where("guilds_users.guild_id = ?", guildID).
		Order("guilds_users." + string(c) + " DESC").
		Order("guilds_users.user_id ASC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, Classify(err)
}

// CountMembers returns the number of memberships in a guild.
func CountMembers(ctx context.Context, db *gorm.DB, guildID int64) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Membership{}).Where("guild_id = ?", guildID).Count(&n).Error
	return n, Classify(err)
}

// Rank returns the 1-based position of the user's counter c within the
// guild: one more than the number of members with a strictly higher value.
// Members with equal counts share a rank.
func Rank(ctx context.Context, db *gorm.DB, userID, guildID int64, c Counter) (rank int64, m *domain.Membership, err error) {
	if err := c.check(); err != nil {
		return 0, nil, err
	}
	m, err = GetMembership(ctx, db, userID, guildID)
	if err != nil {
		return 0, nil, err
	}
	v := m.MessagesSent
	if c == CounterDeleted {
		v = m.MessagesDeleted
	}
	var ahead int64
	err = db.WithContext(ctx).Model(&domain.Membership{}).
		Where("guild_id = ? AND "+string(c)+" > ?", guildID, v).
		Count(&ahead).Error
	if err != nil {
		return 0, nil, Classify(err)
	}
	return ahead + 1, m, nil
}
