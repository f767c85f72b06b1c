// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the registry queries: users, guilds,
// memberships and channel settings.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. Upserts are single conflict-aware
// statements, so concurrent first sightings of the same entity converge on
// one row.
//
// Error semantics:
//   - Missing rows surface as ErrNotFound (gorm.ErrRecordNotFound).
//   - Writes run through Classify, so constraint violations carry
//     ErrDuplicate or ErrMissingReference and connectivity failures carry
//     ErrUnavailable.
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-rule-store/internal/domain"
)

// UpsertUser inserts the user or refreshes its username. An empty username
// leaves an existing row untouched. ID, created_at and the ban flag are
// never changed by this call.
func UpsertUser(ctx context.Context, db *gorm.DB, id int64, username string) (*domain.User, error) {
	u := &domain.User{ID: id, Username: username, CreatedAt: time.Now().UTC()}
	oc := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}
	if username != "" {
		oc = clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username"}),
		}
	}
	if err := db.WithContext(ctx).Clauses(oc).Create(u).Error; err != nil {
		return nil, Classify(err)
	}
	return GetUser(ctx, db, id)
}

// GetUser fetches a user by snowflake.
func GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, Classify(err)
	}
	return &u, nil
}

// SetUserBanned updates the ban flag. Returns ErrNotFound if the user does
// not exist.
func SetUserBanned(ctx context.Context, db *gorm.DB, id int64, banned bool) error {
	return updateByID(ctx, db, &domain.User{}, id, map[string]any{"banned": banned})
}

// DeleteUser hard-deletes a user; dependents go with it through the foreign
// keys.
func DeleteUser(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id)
	if res.Error != nil {
		return Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertGuild inserts the guild with default settings, or refreshes its
// name.
func UpsertGuild(ctx context.Context, db *gorm.DB, id int64, name string) (*domain.Guild, error) {
	g := &domain.Guild{
		ID:            id,
		Name:          name,
		Prefix:        domain.DefaultPrefix,
		SlashCommands: true,
		CreatedAt:     time.Now().UTC(),
	}
	oc := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}
	if name != "" {
		oc = clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}
	}
	if err := db.WithContext(ctx).Clauses(oc).Create(g).Error; err != nil {
		return nil, Classify(err)
	}
	return GetGuild(ctx, db, id)
}

// GetGuild fetches a guild by snowflake.
func GetGuild(ctx context.Context, db *gorm.DB, id int64) (*domain.Guild, error) {
	var g domain.Guild
	if err := db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, Classify(err)
	}
	return &g, nil
}

// GuildSettings holds the mutable guild settings. Nil fields are left
// unchanged.
type GuildSettings struct {
	Prefix        *string
	SlashCommands *bool
}

// UpdateGuildSettings applies the non-nil settings.
func UpdateGuildSettings(ctx context.Context, db *gorm.DB, id int64, s GuildSettings) error {
	cols := map[string]any{}
	if s.Prefix != nil {
		cols["prefix"] = *s.Prefix
	}
	if s.SlashCommands != nil {
		cols["slash_commands"] = *s.SlashCommands
	}
	if len(cols) == 0 {
		_, err := GetGuild(ctx, db, id)
		return err
	}
	return updateByID(ctx, db, &domain.Guild{}, id, cols)
}

// DeleteGuild hard-deletes a guild and, through the foreign keys, its
// memberships, channel settings, guild-scoped rules and command log.
func DeleteGuild(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Delete(&domain.Guild{}, "id = ?", id)
	if res.Error != nil {
		return Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func updateByID(ctx context.Context, db *gorm.DB, model any, id int64, cols map[string]any) error {
	res := db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		// Updates reports 0 for a row whose values did not change on some
		// drivers, so confirm absence before failing.
		var n int64
		if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
			return Classify(err)
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// GetChannelSetting returns the per-channel row, or ErrNotFound when the
// channel has never been configured.
func GetChannelSetting(ctx context.Context, db *gorm.DB, guildID, channelID int64) (*domain.ChannelSetting, error) {
	var cs domain.ChannelSetting
	err := db.WithContext(ctx).
		Where("guild_id = ? AND channel_id = ?", guildID, channelID).
		First(&cs).Error
	if err != nil {
		return nil, Classify(err)
	}
	return &cs, nil
}

// UpsertChannelTracking sets the channel's message-tracking flag, creating
// the row on first use.
func UpsertChannelTracking(ctx context.Context, db *gorm.DB, guildID, channelID int64, enabled bool) (*domain.ChannelSetting, error) {
	cs := &domain.ChannelSetting{
		ID:              uuid.NewString(),
		GuildID:         guildID,
		ChannelID:       channelID,
		MessageTracking: enabled,
		CreatedAt:       time.Now().UTC(),
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"message_tracking"}),
	}).Create(cs).Error
	if err != nil {
		return nil, Classify(err)
	}
	return GetChannelSetting(ctx, db, guildID, channelID)
}

// GetMembership fetches the (user, guild) row.
func GetMembership(ctx context.Context, db *gorm.DB, userID, guildID int64) (*domain.Membership, error) {
	var m domain.Membership
	err := db.WithContext(ctx).
		Where("user_id = ? AND guild_id = ?", userID, guildID).
		First(&m).Error
	if err != nil {
		return nil, Classify(err)
	}
	return &m, nil
}

// Counter names one of the per-member activity columns of guilds_users.
type Counter string

const (
	CounterSent    Counter = "messages_sent"
	CounterDeleted Counter = "messages_deleted"
)

// Valid reports whether c is a known column. Counter values are spliced
// into SQL; functions taking one reject unknown values.
func (c Counter) Valid() bool {
	return c == CounterSent || c == CounterDeleted
}

func (c Counter) check() error {
	if !c.Valid() {
		return fmt.Errorf("unknown counter %q", string(c))
	}
	return nil
}

// countExpr adds by to column c only while the member is tracked.
func countExpr(c Counter, by int64) clause.Expr {
	col := "guilds_users." + string(c)
	return gorm.Expr("CASE WHEN guilds_users.message_tracking THEN "+col+" + ? ELSE "+col+" END", by)
}

// IncrementMembership creates the (user, guild) row if absent and adds by to
// counter c when the member is tracked, in one statement. by may be 0 to
// only ensure the row exists.
func IncrementMembership(ctx context.Context, db *gorm.DB, userID, guildID int64, c Counter, by int64) error {
	if err := c.check(); err != nil {
		return err
	}
	m := &domain.Membership{
		ID:              uuid.NewString(),
		UserID:          userID,
		GuildID:         guildID,
		MessageTracking: true,
		CreatedAt:       time.Now().UTC(),
	}
	if c == CounterSent {
		m.MessagesSent = by
	} else {
		m.MessagesDeleted = by
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "guild_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{string(c): countExpr(c, by)}),
	}).Create(m).Error
	return Classify(err)
}

// AddToCounter bumps counter c on an existing tracked row. It is the
// fallback when the upsert loses a race it cannot resolve in-statement.
func AddToCounter(ctx context.Context, db *gorm.DB, userID, guildID int64, c Counter, by int64) error {
	if err := c.check(); err != nil {
		return err
	}
	res := db.WithContext(ctx).Model(&domain.Membership{}).
		Where("user_id = ? AND guild_id = ? AND message_tracking = ?", userID, guildID, true).
		Update(string(c), gorm.Expr(string(c)+" + ?", by))
	return Classify(res.Error)
}

// UpsertMemberTracking sets the member's tracking flag, creating the row on
// first use.
func UpsertMemberTracking(ctx context.Context, db *gorm.DB, userID, guildID int64, enabled bool) (*domain.Membership, error) {
	m := &domain.Membership{
		ID:              uuid.NewString(),
		UserID:          userID,
		GuildID:         guildID,
		MessageTracking: enabled,
		CreatedAt:       time.Now().UTC(),
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"message_tracking"}),
	}).Create(m).Error
	if err != nil {
		return nil, Classify(err)
	}
	return GetMembership(ctx, db, userID, guildID)
}
