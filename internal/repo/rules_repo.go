// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides storage for the scoped rules: text
// filters, reply filters and reaction rules.
//
// The candidate queries only narrow by scope in SQL; the rules package makes
// the final decision, so these queries may over-select but never
// under-select.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-rule-store/internal/domain"
)

// ruleModel is the set of rule tables sharing id/enabled/created_at columns.
type ruleModel interface {
	domain.TextFilter | domain.ReplyFilter | domain.ReactionRule
}

// RuleFilter narrows rule listings. Zero fields are ignored.
type RuleFilter struct {
	GuildID     int64
	UserID      int64
	OnlyEnabled bool
}

// CreateRule inserts a rule row.
func CreateRule[T ruleModel](ctx context.Context, db *gorm.DB, r *T) error {
	return Classify(db.WithContext(ctx).Create(r).Error)
}

// GetRule fetches a rule by id.
func GetRule[T ruleModel](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	var r T
	if err := db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, Classify(err)
	}
	return &r, nil
}

// SetRuleEnabled flips the enabled flag without touching anything else.
func SetRuleEnabled[T ruleModel](ctx context.Context, db *gorm.DB, id string, enabled bool) error {
	res := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Update("enabled", enabled)
	if res.Error != nil {
		return Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRule hard-deletes a rule by id.
func DeleteRule[T ruleModel](ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func ruleQuery[T ruleModel](ctx context.Context, db *gorm.DB, f RuleFilter) *gorm.DB {
	q := db.WithContext(ctx).Model(new(T))
	if f.GuildID != 0 {
		q = q.Where("guild_id = ?", f.GuildID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.OnlyEnabled {
		q = q.Where("enabled = ?", true)
	}
	return q
}

// CountRules returns the number of rules matching f.
func CountRules[T ruleModel](ctx context.Context, db *gorm.DB, f RuleFilter) (int64, error) {
	var n int64
	err := ruleQuery[T](ctx, db, f).Count(&n).Error
	return n, Classify(err)
}

// ListRulesPage returns rules matching f, oldest first.
func ListRulesPage[T ruleModel](ctx context.Context, db *gorm.DB, f RuleFilter, offset, limit int) ([]T, error) {
	var out []T
	err := ruleQuery[T](ctx, db, f).
		Order("created_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, Classify(err)
}

// scopeCandidates restricts q to rows whose nullable scope columns are either
// NULL or equal to the event's value.
func scopeCandidates(q *gorm.DB, guildID, channelID int64) *gorm.DB {
	return q.
		Where("enabled = ?", true).
		Where("(guild_id IS NULL OR guild_id = ?)", guildID).
		Where("(channel_id IS NULL OR channel_id = ?)", channelID)
}

// TextFilterCandidates loads the enabled text filters that can apply to an
// event at (guild, channel, user).
func TextFilterCandidates(ctx context.Context, db *gorm.DB, guildID, channelID, userID int64) ([]domain.TextFilter, error) {
	var out []domain.TextFilter
	err := scopeCandidates(db.WithContext(ctx), guildID, channelID).
		Where("(user_id IS NULL OR user_id = ?)", userID).
		Find(&out).Error
	return out, Classify(err)
}

// ReplyFilterCandidates loads the enabled reply filters for replies written
// by appliesTo to a message at (guild, channel, user).
func ReplyFilterCandidates(ctx context.Context, db *gorm.DB, appliesTo, guildID, channelID, userID int64) ([]domain.ReplyFilter, error) {
	var out []domain.ReplyFilter
	err := scopeCandidates(db.WithContext(ctx), guildID, channelID).
		Where("applies_to = ?", appliesTo).
		Where("(user_id IS NULL OR user_id = ?)", userID).
		Find(&out).Error
	return out, Classify(err)
}

// ReactionCandidates loads the enabled reaction rules for messages from
// userID at (guild, channel).
func ReactionCandidates(ctx context.Context, db *gorm.DB, guildID, channelID, userID int64) ([]domain.ReactionRule, error) {
	var out []domain.ReactionRule
	err := scopeCandidates(db.WithContext(ctx), guildID, channelID).
		Where("user_id = ?", userID).
		Find(&out).Error
	return out, Classify(err)
}

// DeleteReactionsFor removes every reaction rule for (user, emoji) and
// reports how many were removed.
func DeleteReactionsFor(ctx context.Context, db *gorm.DB, userID int64, emoji string) (int64, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND emoji = ?", userID, emoji).
		Delete(&domain.ReactionRule{})
	return res.RowsAffected, Classify(res.Error)
}
