// Package domain defines the persistence models of the rule store: the
// Discord entities the bot observes (users, guilds, memberships, channel
// settings) and the moderation rules scoped to them. These types are mapped
// with GORM and shared by the repository, service, and HTTP layers.
//
// Snowflake columns that belong to a rule scope are nullable; NULL is the
// wildcard. Use Scope/Target to work with them instead of the raw pointers.
package domain

import "time"

// User is a Discord account the bot has seen.
//
// Fields:
//   - ID: the Discord snowflake (not generated).
//   - Username: last observed username.
//   - Banned: global ban flag consulted before text filters.
//   - CreatedAt: first time the user was observed; never changed by upserts.
type User struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement:false"`
	Username  string    `json:"username"   gorm:"type:varchar(100);not null"`
	Banned    bool      `json:"banned"     gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Guild is a Discord server the bot is installed in.
//
// Fields:
//   - ID: the guild snowflake.
//   - Name: last observed guild name.
//   - Prefix: text command prefix, "!" for new guilds.
//   - SlashCommands: whether slash commands are enabled, true for new guilds.
//   - CreatedAt: first time the guild was observed.
type Guild struct {
	ID            int64     `json:"id"             gorm:"primaryKey;autoIncrement:false"`
	Name          string    `json:"name"           gorm:"type:varchar(100);not null"`
	Prefix        string    `json:"prefix"         gorm:"type:varchar(16);not null"`
	SlashCommands bool      `json:"slash_commands" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"     gorm:"not null"`
}

// TableName returns the database table name for Guild.
func (Guild) TableName() string { return "guilds" }

// DefaultPrefix is assigned to guilds on first observation.
const DefaultPrefix = "!"

// Membership links a user to a guild and carries the per-guild message
// counters. At most one row exists per (user, guild).
type Membership struct {
	ID              string    `json:"id"               gorm:"type:char(36);primaryKey"`
	UserID          int64     `json:"user_id"          gorm:"not null;uniqueIndex:ux_guilds_users_user_guild,priority:1"`
	GuildID         int64     `json:"guild_id"         gorm:"not null;uniqueIndex:ux_guilds_users_user_guild,priority:2;index:idx_guilds_users_rank,priority:1;index:idx_guilds_users_deleted_rank,priority:1"`
	MessageTracking bool      `json:"message_tracking" gorm:"not null"`
	MessagesSent    int64     `json:"messages_sent"    gorm:"not null;index:idx_guilds_users_rank,priority:2"`
	MessagesDeleted int64     `json:"messages_deleted" gorm:"not null;default:0;index:idx_guilds_users_deleted_rank,priority:2"`
	CreatedAt       time.Time `json:"created_at"       gorm:"not null"`

	User  User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Guild Guild `json:"-" gorm:"foreignKey:GuildID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Membership.
func (Membership) TableName() string { return "guilds_users" }

// ChannelSetting holds per-channel flags inside a guild. A channel without
// a row tracks messages.
type ChannelSetting struct {
	ID              string    `json:"id"               gorm:"type:char(36);primaryKey"`
	GuildID         int64     `json:"guild_id"         gorm:"not null;uniqueIndex:ux_guilds_channels_guild_channel,priority:1"`
	ChannelID       int64     `json:"channel_id"       gorm:"not null;uniqueIndex:ux_guilds_channels_guild_channel,priority:2"`
	MessageTracking bool      `json:"message_tracking" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"       gorm:"not null"`

	Guild Guild `json:"-" gorm:"foreignKey:GuildID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ChannelSetting.
func (ChannelSetting) TableName() string { return "guilds_channels" }

// TextFilter deletes messages whose text matches Regex within its scope.
//
// Fields:
//   - GuildID / ChannelID / UserID: scope; NULL matches any value.
//   - Regex: the pattern, validated when the rule is written.
//   - Enabled: disabled rules never match.
//   - Reason / AddedBy: moderator note and author; the author reference is
//     cleared when that user is deleted.
type TextFilter struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	GuildID   *int64    `json:"guild_id"   gorm:"index"`
	ChannelID *int64    `json:"channel_id" gorm:"index"`
	UserID    *int64    `json:"user_id"    gorm:"index"`
	Regex     string    `json:"regex"      gorm:"type:text;not null"`
	Enabled   bool      `json:"enabled"    gorm:"not null"`
	Reason    *string   `json:"reason,omitempty"   gorm:"type:text"`
	AddedBy   *int64    `json:"added_by,omitempty" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`

	Guild  *Guild `json:"-" gorm:"foreignKey:GuildID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User   *User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Author *User  `json:"-" gorm:"foreignKey:AddedBy;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for TextFilter.
func (TextFilter) TableName() string { return "text_filters" }

// RuleScope returns the rule scope.
func (f TextFilter) RuleScope() Scope {
	return Scope{Guild: TargetFromPtr(f.GuildID), Channel: TargetFromPtr(f.ChannelID), User: TargetFromPtr(f.UserID)}
}

// ReplyFilter is a text filter applied to replies written by AppliesTo.
// The scope describes the message being replied to; AppliesTo is a
// mandatory precondition and does not count toward specificity.
type ReplyFilter struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	AppliesTo int64     `json:"applies_to" gorm:"not null;index"`
	GuildID   *int64    `json:"guild_id"   gorm:"index"`
	ChannelID *int64    `json:"channel_id" gorm:"index"`
	UserID    *int64    `json:"user_id"    gorm:"index"`
	Regex     string    `json:"regex"      gorm:"type:text;not null"`
	Enabled   bool      `json:"enabled"    gorm:"not null"`
	Reason    *string   `json:"reason,omitempty"   gorm:"type:text"`
	AddedBy   *int64    `json:"added_by,omitempty" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`

	Replier *User  `json:"-" gorm:"foreignKey:AppliesTo;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Guild   *Guild `json:"-" gorm:"foreignKey:GuildID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User    *User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Author  *User  `json:"-" gorm:"foreignKey:AddedBy;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for ReplyFilter.
func (ReplyFilter) TableName() string { return "reply_filters" }

// RuleScope returns the rule scope, excluding AppliesTo.
func (f ReplyFilter) RuleScope() Scope {
	return Scope{Guild: TargetFromPtr(f.GuildID), Channel: TargetFromPtr(f.ChannelID), User: TargetFromPtr(f.UserID)}
}

// ReactionRule makes the bot react with Emoji to messages from UserID.
// The user dimension is always concrete.
type ReactionRule struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    int64     `json:"user_id"    gorm:"not null;index"`
	GuildID   *int64    `json:"guild_id"   gorm:"index"`
	ChannelID *int64    `json:"channel_id" gorm:"index"`
	Emoji     string    `json:"emoji"      gorm:"type:varchar(255);not null"`
	Enabled   bool      `json:"enabled"    gorm:"not null"`
	AddedBy   *int64    `json:"added_by,omitempty" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`

	User   *User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Guild  *Guild `json:"-" gorm:"foreignKey:GuildID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Author *User  `json:"-" gorm:"foreignKey:AddedBy;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for ReactionRule.
func (ReactionRule) TableName() string { return "reaction_rules" }

// RuleScope returns the rule scope.
func (r ReactionRule) RuleScope() Scope {
	return Scope{Guild: TargetFromPtr(r.GuildID), Channel: TargetFromPtr(r.ChannelID), User: Only(r.UserID)}
}

// CommandLog is one audit row for an executed bot command.
type CommandLog struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    int64     `json:"user_id"    gorm:"not null;index:idx_command_log_user"`
	GuildID   int64     `json:"guild_id"   gorm:"not null;index:idx_command_log_guild,priority:1"`
	Command   string    `json:"command"    gorm:"type:varchar(100);not null;index"`
	Args      Args      `json:"args"       gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index:idx_command_log_guild,priority:2"`

	User  User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Guild Guild `json:"-" gorm:"foreignKey:GuildID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CommandLog.
func (CommandLog) TableName() string { return "command_log" }

// All returns every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Guild{}, &Membership{}, &ChannelSetting{},
		&TextFilter{}, &ReplyFilter{}, &ReactionRule{}, &CommandLog{},
		&ProcessedEvent{},
	}
}
