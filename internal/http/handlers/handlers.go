// Package handlers exposes the rule store over HTTP. Handlers are
// transport-thin: they bind and validate input, call a service and map the
// result onto the response envelope in response.go.
package handlers

import (
	"context"

	"github.com/tbourn/go-rule-store/internal/domain"
	"github.com/tbourn/go-rule-store/internal/repo"
	"github.com/tbourn/go-rule-store/internal/rules"
	"github.com/tbourn/go-rule-store/internal/services"
)

//
// Service contracts (context-aware)
//

// RegistryService maintains users, guilds, memberships and their settings.
type RegistryService interface {
	ObserveUser(ctx context.Context, id int64, username string) (*domain.User, error)
	ObserveGuild(ctx context.Context, id int64, name string) (*domain.Guild, error)
	ObserveMessage(ctx context.Context, ev services.MessageEvent) (*services.Observation, error)
	ObserveDeletion(ctx context.Context, ev services.DeletionEvent) (*services.Observation, error)

	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetGuild(ctx context.Context, id int64) (*domain.Guild, error)

	SetUserBanned(ctx context.Context, id int64, banned bool) (*domain.User, error)
	UpdateGuildSettings(ctx context.Context, id int64, in services.GuildSettings) (*domain.Guild, error)
	SetMemberTracking(ctx context.Context, userID, guildID int64, enabled bool) (*domain.Membership, error)
	SetChannelTracking(ctx context.Context, guildID, channelID int64, enabled bool) (*domain.ChannelSetting, error)

	Leaderboard(ctx context.Context, guildID int64, by repo.Counter, page, pageSize int) ([]repo.LeaderboardRow, int64, error)
	Rank(ctx context.Context, userID, guildID int64, by repo.Counter) (int64, *domain.Membership, error)

	PurgeUser(ctx context.Context, id int64) error
	PurgeGuild(ctx context.Context, id int64) error
}

// RuleService administers the three rule kinds.
type RuleService interface {
	CreateTextFilter(ctx context.Context, in services.FilterInput) (*domain.TextFilter, error)
	ListTextFilters(ctx context.Context, f repo.RuleFilter, page, pageSize int) ([]domain.TextFilter, int64, error)
	GetTextFilter(ctx context.Context, id string) (*domain.TextFilter, error)
	SetTextFilterEnabled(ctx context.Context, id string, enabled bool) (*domain.TextFilter, error)
	DeleteTextFilter(ctx context.Context, id string) error

	CreateReplyFilter(ctx context.Context, appliesTo int64, in services.FilterInput) (*domain.ReplyFilter, error)
	ListReplyFilters(ctx context.Context, f repo.RuleFilter, page, pageSize int) ([]domain.ReplyFilter, int64, error)
	GetReplyFilter(ctx context.Context, id string) (*domain.ReplyFilter, error)
	SetReplyFilterEnabled(ctx context.Context, id string, enabled bool) (*domain.ReplyFilter, error)
	DeleteReplyFilter(ctx context.Context, id string) error

	CreateReaction(ctx context.Context, in services.ReactionInput) (*domain.ReactionRule, error)
	ListReactions(ctx context.Context, f repo.RuleFilter, page, pageSize int) ([]domain.ReactionRule, int64, error)
	GetReaction(ctx context.Context, id string) (*domain.ReactionRule, error)
	SetReactionEnabled(ctx context.Context, id string, enabled bool) (*domain.ReactionRule, error)
	DeleteReaction(ctx context.Context, id string) error
	DeleteReactionsFor(ctx context.Context, userID int64, emoji string) (int64, error)
}

// MatchService resolves stored rules against a live event.
type MatchService interface {
	TextFilterDecision(ctx context.Context, ev rules.Event) (*services.TextDecision, error)
	ReplyFilterDecision(ctx context.Context, appliesTo int64, ev rules.Event) (*services.ReplyDecision, error)
	ReactionDecision(ctx context.Context, ev rules.Event) (*services.ReactionDecision, error)
}

// AuditService records executed bot commands.
type AuditService interface {
	Record(ctx context.Context, userID, guildID int64, command string, args []string) (*domain.CommandLog, error)
	List(ctx context.Context, f repo.CommandFilter, page, pageSize int) ([]domain.CommandLog, int64, error)
}

//
// Handler wiring
//

// Handlers groups every endpoint behind the service interfaces above.
type Handlers struct {
	registry RegistryService
	rules    RuleService
	match    MatchService
	audit    AuditService
}

// New constructs a Handlers instance bound to the given services.
func New(registry RegistryService, ruleSvc RuleService, match MatchService, audit AuditService) *Handlers {
	return &Handlers{registry: registry, rules: ruleSvc, match: match, audit: audit}
}
