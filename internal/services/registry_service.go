// Package services – RegistryService
//
// This file implements RegistryService, which keeps the user, guild,
// membership and channel-setting rows in step with what the bot observes.
// Every write is a conflict-aware upsert so concurrent first sightings of
// the same entity converge on one row, and message and deletion counting is
// gated by an occurrence key so a redelivered event is not counted twice.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// carry the guild/user/channel snowflakes involved.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-rule-store/internal/dedup"
	"github.com/tbourn/go-rule-store/internal/domain"
	"github.com/tbourn/go-rule-store/internal/observability"
	"github.com/tbourn/go-rule-store/internal/repo"
	"github.com/tbourn/go-rule-store/internal/utils"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// MaxPrefixRunes caps a guild's command prefix.
	MaxPrefixRunes = 16
	// MaxNameRunes is the width of users.username and guilds.name. Longer
	// observed names are clipped.
	MaxNameRunes = 100
)

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// RegistryService upserts the entities the bot observes and maintains the
// per-guild message counters.
type RegistryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Dedup filters redelivered message events. Nil disables filtering.
	Dedup dedup.Deduper
}

// MessageEvent is one message the bot saw.
//
// OccurrenceKey identifies the delivery (typically the message snowflake).
// Two events with the same key are the same occurrence; an empty key
// counts unconditionally.
type MessageEvent struct {
	OccurrenceKey string
	GuildID       int64
	ChannelID     int64
	UserID        int64
	Username      string
}

// Observation reports what ObserveMessage or ObserveDeletion did.
type Observation struct {
	// Counted is true when the event's counter was incremented.
	Counted bool
	// Duplicate is true when the occurrence key had already been processed
	// and nothing was written.
	Duplicate bool
	// Membership is the row after the update. Nil for duplicates.
	Membership *domain.Membership
}

const registryTracer = "services/RegistryService"

// ObserveUser inserts the user or refreshes its username.
func (s *RegistryService) ObserveUser(ctx context.Context, id int64, username string) (*domain.User, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "ObserveUser",
		trace.WithAttributes(attribute.Int64("user.id", id)),
	)
	defer span.End()

	if id <= 0 {
		return nil, ErrInvalidID
	}
	u, err := repo.UpsertUser(ctx, s.DB, id, clip(username, MaxNameRunes))
	return u, translate(err)
}

// ObserveGuild inserts the guild with default settings or refreshes its
// name.
func (s *RegistryService) ObserveGuild(ctx context.Context, id int64, name string) (*domain.Guild, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "ObserveGuild",
		trace.WithAttributes(attribute.Int64("guild.id", id)),
	)
	defer span.End()

	if id <= 0 {
		return nil, ErrInvalidID
	}
	g, err := repo.UpsertGuild(ctx, s.DB, id, clip(name, MaxNameRunes))
	return g, translate(err)
}

// ObserveMessage records one message: the author is upserted, the guild
// must already exist, and the member's messages_sent counter is incremented
// unless the channel or the member has tracking disabled. All writes happen
// in one transaction.
func (s *RegistryService) ObserveMessage(ctx context.Context, ev MessageEvent) (*Observation, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "ObserveMessage",
		trace.WithAttributes(
			attribute.Int64("guild.id", ev.GuildID),
			attribute.Int64("channel.id", ev.ChannelID),
			attribute.Int64("user.id", ev.UserID),
		),
	)
	defer span.End()

	if ev.GuildID <= 0 || ev.ChannelID <= 0 || ev.UserID <= 0 {
		return nil, ErrInvalidID
	}
	obs, err := s.observe(ctx, ev.OccurrenceKey, ev, repo.CounterSent, 1)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("event.duplicate", obs.Duplicate),
		attribute.Bool("event.counted", obs.Counted),
	)
	return obs, nil
}

// MaxBulkDeletion is the most messages one deletion event may report.
const MaxBulkDeletion = 100

// DeletionEvent is one or more messages by the same author removed from a
// channel. Count defaults to 1.
//
// OccurrenceKey identifies the delivery and lives in its own namespace, so
// a message snowflake may key both its creation and its deletion.
type DeletionEvent struct {
	OccurrenceKey string
	GuildID       int64
	ChannelID     int64
	UserID        int64
	Username      string
	Count         int64
}

// deletionKeyPrefix separates deletion occurrence keys from message keys.
const deletionKeyPrefix = "deleted:"

// ObserveDeletion records deleted messages on the member's messages_deleted
// counter. Tracking flags and duplicate handling are the same as for
// ObserveMessage.
func (s *RegistryService) ObserveDeletion(ctx context.Context, ev DeletionEvent) (*Observation, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "ObserveDeletion",
		trace.WithAttributes(
			attribute.Int64("guild.id", ev.GuildID),
			attribute.Int64("channel.id", ev.ChannelID),
			attribute.Int64("user.id", ev.UserID),
			attribute.Int64("event.count", ev.Count),
		),
	)
	defer span.End()

	if ev.GuildID <= 0 || ev.ChannelID <= 0 || ev.UserID <= 0 {
		return nil, ErrInvalidID
	}
	n := ev.Count
	if n == 0 {
		n = 1
	}
	if n < 0 || n > MaxBulkDeletion {
		return nil, fmt.Errorf("%w: %d (1..%d)", ErrInvalidCount, ev.Count, MaxBulkDeletion)
	}
	key := ev.OccurrenceKey
	if key != "" {
		key = deletionKeyPrefix + key
	}
	obs, err := s.observe(ctx, key, MessageEvent{
		GuildID:   ev.GuildID,
		ChannelID: ev.ChannelID,
		UserID:    ev.UserID,
		Username:  ev.Username,
	}, repo.CounterDeleted, n)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("event.duplicate", obs.Duplicate),
		attribute.Bool("event.counted", obs.Counted),
	)
	return obs, nil
}

// observe claims key, then upserts the author and adds by to counter c in
// one transaction. A failed transaction releases the claim so a retry can
// succeed.
func (s *RegistryService) observe(ctx context.Context, key string, ev MessageEvent, c repo.Counter, by int64) (*Observation, error) {
	claimed := false
	if key != "" && s.Dedup != nil {
		first, err := s.Dedup.FirstSeen(ctx, key)
		if err != nil {
			return nil, translate(err)
		}
		if !first {
			observability.DuplicateEvents.Inc()
			return &Observation{Duplicate: true}, nil
		}
		claimed = true
	}

	var obs Observation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.UpsertUser(ctx, tx, ev.UserID, clip(ev.Username, MaxNameRunes)); err != nil {
			return err
		}
		if _, err := repo.GetGuild(ctx, tx, ev.GuildID); err != nil {
			return err
		}

		tracked := true
		cs, err := repo.GetChannelSetting(ctx, tx, ev.GuildID, ev.ChannelID)
		switch {
		case err == nil:
			tracked = cs.MessageTracking
		case !errors.Is(err, repo.ErrNotFound):
			return err
		}

		var n int64
		if tracked {
			n = by
		}
		if err := incrementMembership(ctx, tx, ev.UserID, ev.GuildID, c, n); err != nil {
			return err
		}

		m, err := repo.GetMembership(ctx, tx, ev.UserID, ev.GuildID)
		if err != nil {
			return err
		}
		obs.Membership = m
		obs.Counted = tracked && m.MessageTracking
		return nil
	})
	if err != nil {
		if claimed {
			if ferr := s.Dedup.Forget(context.WithoutCancel(ctx), key); ferr != nil {
				log.Warn().Err(ferr).Str("key", key).Msg("registry: release occurrence key")
			}
		}
		return nil, translate(err)
	}
	return &obs, nil
}

// incrementMembership runs the membership upsert inside a savepoint and,
// if it still loses a uniqueness race, retries once as a plain update.
func incrementMembership(ctx context.Context, tx *gorm.DB, userID, guildID int64, c repo.Counter, by int64) error {
	const sp = "membership_upsert"
	if err := tx.SavePoint(sp).Error; err != nil {
		return repo.Classify(err)
	}
	err := repo.IncrementMembership(ctx, tx, userID, guildID, c, by)
	if err == nil || !errors.Is(err, repo.ErrDuplicate) {
		return err
	}
	log.Debug().Int64("user_id", userID).Int64("guild_id", guildID).Msg("registry: membership upsert conflict, retrying as update")
	if rerr := tx.RollbackTo(sp).Error; rerr != nil {
		return repo.Classify(rerr)
	}
	if by == 0 {
		return nil
	}
	return repo.AddToCounter(ctx, tx, userID, guildID, c, by)
}

// GetUser returns a user by snowflake.
func (s *RegistryService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "GetUser",
		trace.WithAttributes(attribute.Int64("user.id", id)),
	)
	defer span.End()

	u, err := repo.GetUser(ctx, s.DB, id)
	return u, translate(err)
}

// GetGuild returns a guild by snowflake.
func (s *RegistryService) GetGuild(ctx context.Context, id int64) (*domain.Guild, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "GetGuild",
		trace.WithAttributes(attribute.Int64("guild.id", id)),
	)
	defer span.End()

	g, err := repo.GetGuild(ctx, s.DB, id)
	return g, translate(err)
}

// GetMembership returns the (user, guild) row.
func (s *RegistryService) GetMembership(ctx context.Context, userID, guildID int64) (*domain.Membership, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "GetMembership",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("guild.id", guildID),
		),
	)
	defer span.End()

	m, err := repo.GetMembership(ctx, s.DB, userID, guildID)
	return m, translate(err)
}

// SetUserBanned updates the user's global ban flag.
func (s *RegistryService) SetUserBanned(ctx context.Context, id int64, banned bool) (*domain.User, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "SetUserBanned",
		trace.WithAttributes(
			attribute.Int64("user.id", id),
			attribute.Bool("user.banned", banned),
		),
	)
	defer span.End()

	if err := repo.SetUserBanned(ctx, s.DB, id, banned); err != nil {
		return nil, translate(err)
	}
	u, err := repo.GetUser(ctx, s.DB, id)
	return u, translate(err)
}

// GuildSettings holds the mutable guild settings. Nil fields are left
// unchanged.
type GuildSettings struct {
	Prefix        *string `json:"prefix,omitempty"`
	SlashCommands *bool   `json:"slash_commands,omitempty"`
}

// UpdateGuildSettings validates and applies the non-nil settings.
func (s *RegistryService) UpdateGuildSettings(ctx context.Context, id int64, in GuildSettings) (*domain.Guild, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "UpdateGuildSettings",
		trace.WithAttributes(attribute.Int64("guild.id", id)),
	)
	defer span.End()

	var set repo.GuildSettings
	if in.Prefix != nil {
		p := strings.TrimSpace(*in.Prefix)
		if p == "" || utf8.RuneCountInString(p) > MaxPrefixRunes {
			return nil, ErrInvalidPrefix
		}
		set.Prefix = &p
	}
	set.SlashCommands = in.SlashCommands

	if err := repo.UpdateGuildSettings(ctx, s.DB, id, set); err != nil {
		return nil, translate(err)
	}
	g, err := repo.GetGuild(ctx, s.DB, id)
	return g, translate(err)
}

// SetGuildPrefix changes the guild's text command prefix.
func (s *RegistryService) SetGuildPrefix(ctx context.Context, id int64, prefix string) (*domain.Guild, error) {
	return s.UpdateGuildSettings(ctx, id, GuildSettings{Prefix: &prefix})
}

// SetSlashCommands enables or disables slash commands for the guild.
func (s *RegistryService) SetSlashCommands(ctx context.Context, id int64, enabled bool) (*domain.Guild, error) {
	return s.UpdateGuildSettings(ctx, id, GuildSettings{SlashCommands: &enabled})
}

// SetMemberTracking sets whether the member's messages are counted. The
// membership row is created if absent; the user and guild must exist.
func (s *RegistryService) SetMemberTracking(ctx context.Context, userID, guildID int64, enabled bool) (*domain.Membership, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "SetMemberTracking",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("guild.id", guildID),
			attribute.Bool("tracking", enabled),
		),
	)
	defer span.End()

	m, err := repo.UpsertMemberTracking(ctx, s.DB, userID, guildID, enabled)
	return m, translate(err)
}

// SetChannelTracking sets whether messages in the channel are counted.
func (s *RegistryService) SetChannelTracking(ctx context.Context, guildID, channelID int64, enabled bool) (*domain.ChannelSetting, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "SetChannelTracking",
		trace.WithAttributes(
			attribute.Int64("guild.id", guildID),
			attribute.Int64("channel.id", channelID),
			attribute.Bool("tracking", enabled),
		),
	)
	defer span.End()

	if channelID <= 0 {
		return nil, ErrInvalidID
	}
	cs, err := repo.UpsertChannelTracking(ctx, s.DB, guildID, channelID, enabled)
	return cs, translate(err)
}

// ParseCounter maps a leaderboard ordering name onto its counter. The empty
// string selects messages sent.
func ParseCounter(name string) (repo.Counter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sent", "messages_sent":
		return repo.CounterSent, nil
	case "deleted", "messages_deleted":
		return repo.CounterDeleted, nil
	}
	return "", fmt.Errorf("%w: %q (want sent or deleted)", ErrInvalidCounter, name)
}

// Leaderboard returns a page of the guild's members ordered by counter c,
// with the total member count.
func (s *RegistryService) Leaderboard(ctx context.Context, guildID int64, c repo.Counter, page, pageSize int) ([]repo.LeaderboardRow, int64, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "Leaderboard",
		trace.WithAttributes(
			attribute.Int64("guild.id", guildID),
			attribute.String("leaderboard.counter", string(c)),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if !c.Valid() {
		return nil, 0, ErrInvalidCounter
	}
	if _, err := repo.GetGuild(ctx, s.DB, guildID); err != nil {
		return nil, 0, translate(err)
	}
	_, size, offset := utils.Paginate(page, pageSize)

	total, err := repo.CountMembers(ctx, s.DB, guildID)
	if err != nil {
		return nil, 0, translate(err)
	}
	if total == 0 {
		return []repo.LeaderboardRow{}, 0, nil
	}
	rows, err := repo.Leaderboard(ctx, s.DB, guildID, c, offset, size)
	return rows, total, translate(err)
}

// Rank returns the member's 1-based position in the guild leaderboard for
// counter c together with the membership row.
func (s *RegistryService) Rank(ctx context.Context, userID, guildID int64, c repo.Counter) (int64, *domain.Membership, error) {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "Rank",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("guild.id", guildID),
			attribute.String("leaderboard.counter", string(c)),
		),
	)
	defer span.End()

	if !c.Valid() {
		return 0, nil, ErrInvalidCounter
	}
	rank, m, err := repo.Rank(ctx, s.DB, userID, guildID, c)
	return rank, m, translate(err)
}

// PurgeUser hard-deletes a user. Memberships, rules scoped to or owned by
// the user and their command log go with it; rules they authored keep
// existing with no author.
func (s *RegistryService) PurgeUser(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "PurgeUser",
		trace.WithAttributes(attribute.Int64("user.id", id)),
	)
	defer span.End()

	if err := repo.DeleteUser(ctx, s.DB, id); err != nil {
		return translate(err)
	}
	log.Info().Int64("user_id", id).Msg("registry: user purged")
	return nil
}

// PurgeGuild hard-deletes a guild with its memberships, channel settings,
// guild-scoped rules and command log.
func (s *RegistryService) PurgeGuild(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer(registryTracer).Start(ctx, "PurgeGuild",
		trace.WithAttributes(attribute.Int64("guild.id", id)),
	)
	defer span.End()

	if err := repo.DeleteGuild(ctx, s.DB, id); err != nil {
		return translate(err)
	}
	log.Info().Int64("guild_id", id).Msg("registry: guild purged")
	return nil
}
