// Package services – RuleService
//
// This file implements RuleService, the administrative side of the scoped
// rules: creating, listing, toggling and deleting text filters, reply
// filters and reaction rules. Patterns are compiled with the same Matcher
// that evaluates them, so a rule that is accepted here compiles at match
// time too.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-rule-store/internal/domain"
	"github.com/tbourn/go-rule-store/internal/repo"
	"github.com/tbourn/go-rule-store/internal/rules"
	"github.com/tbourn/go-rule-store/internal/utils"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const ruleTracer = "services/RuleService"

// RuleService manages the stored moderation rules.
type RuleService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Matcher validates patterns. Nil falls back to a default matcher.
	Matcher *rules.Matcher
}

// FilterInput describes a text or reply filter to create.
type FilterInput struct {
	Scope   domain.Scope  `json:"scope"`
	Regex   string        `json:"regex"`
	Reason  string        `json:"reason,omitempty"`
	AddedBy domain.Target `json:"added_by"`
	// Disabled creates the rule switched off.
	Disabled bool `json:"disabled,omitempty"`
}

// ReactionInput describes a reaction rule to create.
type ReactionInput struct {
	GuildID   domain.Target `json:"guild_id"`
	ChannelID domain.Target `json:"channel_id"`
	UserID    int64         `json:"user_id"`
	Emoji     string        `json:"emoji"`
	AddedBy   domain.Target `json:"added_by"`
	Disabled  bool          `json:"disabled,omitempty"`
}

// MaxEmojiRunes is the width of reaction_rules.emoji.
const MaxEmojiRunes = 255

// fallbackMatcher compiles patterns for services built without a Matcher.
var fallbackMatcher = rules.NewMatcher(rules.WithPatternCache(0, 0))

func (s *RuleService) matcher() *rules.Matcher {
	if s.Matcher == nil {
		return fallbackMatcher
	}
	return s.Matcher
}

// ValidatePattern reports whether pattern compiles under the configured
// match mode. The error wraps ErrInvalidPattern.
func (s *RuleService) ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("%w: pattern is empty", ErrInvalidPattern)
	}
	_, err := s.matcher().Compile(pattern)
	return err
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CreateTextFilter stores a new text filter. Referenced users and guilds
// must exist.
func (s *RuleService) CreateTextFilter(ctx context.Context, in FilterInput) (*domain.TextFilter, error) {
	ctx, span := otel.Tracer(ruleTracer).Start(ctx, "CreateTextFilter",
		trace.WithAttributes(attribute.String("rule.scope", in.Scope.String())),
	)
	defer span.End()

	if err := s.ValidatePattern(in.Regex); err != nil {
		return nil, err
	}
	f := &domain.TextFilter{
		ID:        uuid.NewString(),
		GuildID:   in.Scope.Guild.Ptr(),
		ChannelID: in.Scope.Channel.Ptr(),
		UserID:    in.Scope.User.Ptr(),
		Regex:     in.Regex,
		Enabled:   !in.Disabled,
		Reason:    optString(in.Reason),
		AddedBy:   in.AddedBy.Ptr(),
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateRule(ctx, s.DB, f); err != nil {
		return nil, translate(err)
	}
	return f, nil
}

// CreateReplyFilter stores a new filter for replies written by appliesTo.
func (s *RuleService) CreateReplyFilter(ctx context.Context, appliesTo int64, in FilterInput) (*domain.ReplyFilter, error) {
	ctx, span := otel.Tracer(ruleTracer).Start(ctx, "CreateReplyFilter",
		trace.WithAttributes(
			attribute.Int64("rule.applies_to", appliesTo),
			attribute.String("rule.scope", in.Scope.String()),
		),
	)
	defer span.End()

	if appliesTo <= 0 {
		return nil, ErrMissingUser
	}
	if err := s.ValidatePattern(in.Regex); err != nil {
		return nil, err
	}
	f := &domain.ReplyFilter{
		ID:        uuid.NewString(),
		AppliesTo: appliesTo,
		GuildID:   in.Scope.Guild.Ptr(),
		ChannelID: in.Scope.Channel.Ptr(),
		UserID:    in.Scope.User.Ptr(),
		Regex:     in.Regex,
		Enabled:   !in.Disabled,
		Reason:    optString(in.Reason),
		AddedBy:   in.AddedBy.Ptr(),
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateRule(ctx, s.DB, f); err != nil {
		return nil, translate(err)
	}
	return f, nil
}

// CreateReaction stores a new reaction rule. The emoji is trimmed and must
// not be blank.
func (s *RuleService) CreateReaction(ctx context.Context, in ReactionInput) (*domain.ReactionRule, error) {
	ctx, span := otel.Tracer(ruleTracer).Start(ctx, "CreateReaction",
		trace.WithAttributes(attribute.Int64("rule.user_id", in.UserID)),
	)
	defer span.End()

	if in.UserID <= 0 {
		return nil, ErrMissingUser
	}
	emoji := strings.TrimSpace(in.Emoji)
	if emoji == "" {
		return nil, ErrEmptyEmoji
	}
	if utf8.RuneCountInString(emoji) > MaxEmojiRunes {
		return nil, fmt.Errorf("%w: emoji exceeds %d characters", ErrTooLong, MaxEmojiRunes)
	}
	r := &domain.ReactionRule{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		GuildID:   in.GuildID.Ptr(),
		ChannelID: in.ChannelID.Ptr(),
		Emoji:     emoji,
		Enabled:   !in.Disabled,
		AddedBy:   in.AddedBy.Ptr(),
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateRule(ctx, s.DB, r); err != nil {
		return nil, translate(err)
	}
	return r, nil
}

// GetTextFilter returns a text filter by id.
func (s *RuleService) GetTextFilter(ctx context.Context, id string) (*domain.TextFilter, error) {
	return getRule[domain.TextFilter](ctx, s.DB, "GetTextFilter", id)
}

// GetReplyFilter returns a reply filter by id.
func (s *RuleService) GetReplyFilter(ctx context.Context, id string) (*domain.ReplyFilter, error) {
	return getRule[domain.ReplyFilter](ctx, s.DB, "GetReplyFilter", id)
}

// GetReaction returns a reaction rule by id.
func (s *RuleService) GetReaction(ctx context.Context, id string) (*domain.ReactionRule, error) {
	return getRule[domain.ReactionRule](ctx, s.DB, "GetReaction", id)
}

// ListTextFilters returns a page of text filters, oldest first, with the
// total count.
func (s *RuleService) ListTextFilters(ctx context.Context, f repo.RuleFilter, page, pageSize int) ([]domain.TextFilter, int64, error) {
	return listRules[domain.TextFilter](ctx, s.DB, "ListTextFilters", f, page, pageSize)
}

// ListReplyFilters returns a page of reply filters, oldest first.
func (s *RuleService) ListReplyFilters(ctx context.Context, f repo.RuleFilter, page, pageSize int) ([]domain.ReplyFilter, int64, error) {
	return listRules[domain.ReplyFilter](ctx, s.DB, "ListReplyFilters", f, page, pageSize)
}

// ListReactions returns a page of reaction rules, oldest first.
func (s *RuleService) ListReactions(ctx context.Context, f repo.RuleFilter, page, pageSize int) ([]domain.ReactionRule, int64, error) {
	return listRules[domain.ReactionRule](ctx, s.DB, "ListReactions", f, page, pageSize)
}

// SetTextFilterEnabled toggles a text filter. Disabled rules are kept but
// never match.
func (s *RuleService) SetTextFilterEnabled(ctx context.Context, id string, enabled bool) (*domain.TextFilter, error) {
	return setRuleEnabled[domain.TextFilter](ctx, s.DB, "SetTextFilterEnabled", id, enabled)
}

// SetReplyFilterEnabled toggles a reply filter.
func (s *RuleService) SetReplyFilterEnabled(ctx context.Context, id string, enabled bool) (*domain.ReplyFilter, error) {
	return setRuleEnabled[domain.ReplyFilter](ctx, s.DB, "SetReplyFilterEnabled", id, enabled)
}

// SetReactionEnabled toggles a reaction rule.
func (s *RuleService) SetReactionEnabled(ctx context.Context, id string, enabled bool) (*domain.ReactionRule, error) {
	return setRuleEnabled[domain.ReactionRule](ctx, s.DB, "SetReactionEnabled", id, enabled)
}

// DeleteTextFilter hard-deletes a text filter.
func (s *RuleService) DeleteTextFilter(ctx context.Context, id string) error {
	return deleteRule[domain.TextFilter](ctx, s.DB, "DeleteTextFilter", id)
}

// DeleteReplyFilter hard-deletes a reply filter.
func (s *RuleService) DeleteReplyFilter(ctx context.Context, id string) error {
	return deleteRule[domain.ReplyFilter](ctx, s.DB, "DeleteReplyFilter", id)
}

// DeleteReaction hard-deletes a reaction rule.
func (s *RuleService) DeleteReaction(ctx context.Context, id string) error {
	return deleteRule[domain.ReactionRule](ctx, s.DB, "DeleteReaction", id)
}

// DeleteReactionsFor removes every reaction rule for (user, emoji) across
// all scopes and returns how many were removed. Removing nothing is not an
// error.
func (s *RuleService) DeleteReactionsFor(ctx context.Context, userID int64, emoji string) (int64, error) {
	ctx, span := otel.Tracer(ruleTracer).Start(ctx, "DeleteReactionsFor",
		trace.WithAttributes(attribute.Int64("rule.user_id", userID)),
	)
	defer span.End()

	if userID <= 0 {
		return 0, ErrMissingUser
	}
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return 0, ErrEmptyEmoji
	}
	n, err := repo.DeleteReactionsFor(ctx, s.DB, userID, emoji)
	return n, translate(err)
}

func getRule[T ruleModel](ctx context.Context, db *gorm.DB, op, id string) (*T, error) {
	ctx, span := otel.Tracer(ruleTracer).Start(ctx, op,
		trace.WithAttributes(attribute.String("rule.id", id)),
	)
	defer span.End()

	r, err := repo.GetRule[T](ctx, db, id)
	return r, translate(err)
}

func listRules[T ruleModel](ctx context.Context, db *gorm.DB, op string, f repo.RuleFilter, page, pageSize int) ([]T, int64, error) {
	ctx, span := otel.Tracer(ruleTracer).Start(ctx, op,
		trace.WithAttributes(
			attribute.Int64("guild.id", f.GuildID),
			attribute.Int64("user.id", f.UserID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	_, size, offset := utils.Paginate(page, pageSize)
	total, err := repo.CountRules[T](ctx, db, f)
	if err != nil {
		return nil, 0, translate(err)
	}
	if total == 0 {
		return []T{}, 0, nil
	}
	items, err := repo.ListRulesPage[T](ctx, db, f, offset, size)
	return items, total, translate(err)
}

func setRuleEnabled[T ruleModel](ctx context.Context, db *gorm.DB, op, id string, enabled bool) (*T, error) {
	ctx, span := otel.Tracer(ruleTracer).Start(ctx, op,
		trace.WithAttributes(
			attribute.String("rule.id", id),
			attribute.Bool("rule.enabled", enabled),
		),
	)
	defer span.End()

	if err := repo.SetRuleEnabled[T](ctx, db, id, enabled); err != nil {
		return nil, translate(err)
	}
	r, err := repo.GetRule[T](ctx, db, id)
	return r, translate(err)
}

func deleteRule[T ruleModel](ctx context.Context, db *gorm.DB, op, id string) error {
	ctx, span := otel.Tracer(ruleTracer).Start(ctx, op,
		trace.WithAttributes(attribute.String("rule.id", id)),
	)
	defer span.End()

	return translate(repo.DeleteRule[T](ctx, db, id))
}

// ruleModel mirrors the repository's rule constraint.
type ruleModel interface {
	domain.TextFilter | domain.ReplyFilter | domain.ReactionRule
}
