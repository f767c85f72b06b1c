// Package services – MatcherService
//
// This file implements MatcherService, the read path the bot runtime calls
// for every event. It loads the candidate rules that can possibly apply
// (scope-prefiltered in SQL, enabled only), lets rules.Resolve make the
// final decision, and turns the ordered result into a decision the runtime
// can enforce. Rules whose stored pattern no longer compiles are skipped,
// logged and counted; they never fail the call.
package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-rule-store/internal/domain"
	"github.com/tbourn/go-rule-store/internal/observability"
	"github.com/tbourn/go-rule-store/internal/repo"
	"github.com/tbourn/go-rule-store/internal/rules"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const matcherTracer = "services/MatcherService"

// MatcherService resolves stored rules against incoming events.
type MatcherService struct {
	// DB is the GORM handle used to load candidates.
	DB *gorm.DB
	// Matcher applies scope and pattern semantics. Nil uses a default
	// (search, case-sensitive) matcher.
	Matcher *rules.Matcher
}

// TextDecision tells the runtime whether to delete a message.
type TextDecision struct {
	// Delete is true when at least one filter matched.
	Delete bool `json:"delete"`
	// Rule is the winning filter.
	Rule *domain.TextFilter `json:"rule,omitempty"`
	// Matches lists every matching filter in precedence order.
	Matches []domain.TextFilter `json:"matches"`
	// UserBanned reports the author's global ban flag.
	UserBanned bool `json:"user_banned"`
}

// ReplyDecision tells the runtime whether to block a reply.
type ReplyDecision struct {
	Block   bool                 `json:"block"`
	Rule    *domain.ReplyFilter  `json:"rule,omitempty"`
	Matches []domain.ReplyFilter `json:"matches"`
}

// ReactionDecision tells the runtime which emoji to react with.
type ReactionDecision struct {
	React bool                 `json:"react"`
	Emoji string               `json:"emoji,omitempty"`
	Rule  *domain.ReactionRule `json:"rule,omitempty"`
	// Emojis lists the emoji of every applicable rule in precedence order,
	// without repeats.
	Emojis []string `json:"emojis"`
}

func (s *MatcherService) matcher() *rules.Matcher {
	if s.Matcher == nil {
		return fallbackMatcher
	}
	return s.Matcher
}

func validateEvent(ev rules.Event) error {
	if ev.GuildID < 0 || ev.ChannelID < 0 || ev.UserID < 0 {
		return ErrInvalidScope
	}
	if ev.UserID == 0 {
		return ErrMissingUser
	}
	return nil
}

func eventAttrs(ev rules.Event) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.Int64("guild.id", ev.GuildID),
		attribute.Int64("channel.id", ev.ChannelID),
		attribute.Int64("user.id", ev.UserID),
	)
}

// TextFilterDecision decides whether a message from ev.UserID must be
// deleted.
func (s *MatcherService) TextFilterDecision(ctx context.Context, ev rules.Event) (*TextDecision, error) {
	ctx, span := otel.Tracer(matcherTracer).Start(ctx, "TextFilterDecision", eventAttrs(ev))
	defer span.End()

	if err := validateEvent(ev); err != nil {
		return nil, err
	}
	cands, err := repo.TextFilterCandidates(ctx, s.DB, ev.GuildID, ev.ChannelID, ev.UserID)
	if err != nil {
		return nil, translate(err)
	}
	res := evaluate(s.matcher(), observability.KindTextFilter, ev, cands)

	out := &TextDecision{Matches: nonNil(res.Applicable)}
	if best, ok := res.Best(); ok {
		out.Delete = true
		out.Rule = &best
	}

	u, err := repo.GetUser(ctx, s.DB, ev.UserID)
	switch {
	case err == nil:
		out.UserBanned = u.Banned
	case !errors.Is(err, repo.ErrNotFound):
		return nil, translate(err)
	}

	span.SetAttributes(
		attribute.Int("rules.candidates", len(cands)),
		attribute.Int("rules.matched", len(res.Applicable)),
	)
	return out, nil
}

// ReplyFilterDecision decides whether a reply written by appliesTo must be
// blocked. ev locates the message being replied to and carries the reply
// text.
func (s *MatcherService) ReplyFilterDecision(ctx context.Context, appliesTo int64, ev rules.Event) (*ReplyDecision, error) {
	ctx, span := otel.Tracer(matcherTracer).Start(ctx, "ReplyFilterDecision", eventAttrs(ev))
	defer span.End()
	span.SetAttributes(attribute.Int64("rule.applies_to", appliesTo))

	if appliesTo <= 0 {
		return nil, ErrMissingUser
	}
	if ev.GuildID < 0 || ev.ChannelID < 0 || ev.UserID < 0 {
		return nil, ErrInvalidScope
	}
	cands, err := repo.ReplyFilterCandidates(ctx, s.DB, appliesTo, ev.GuildID, ev.ChannelID, ev.UserID)
	if err != nil {
		return nil, translate(err)
	}
	res := evaluate(s.matcher(), observability.KindReplyFilter, ev, cands)

	out := &ReplyDecision{Matches: nonNil(res.Applicable)}
	if best, ok := res.Best(); ok {
		out.Block = true
		out.Rule = &best
	}
	return out, nil
}

// ReactionDecision picks the emoji for a message from ev.UserID. ev.Text
// is ignored.
func (s *MatcherService) ReactionDecision(ctx context.Context, ev rules.Event) (*ReactionDecision, error) {
	ctx, span := otel.Tracer(matcherTracer).Start(ctx, "ReactionDecision", eventAttrs(ev))
	defer span.End()

	if err := validateEvent(ev); err != nil {
		return nil, err
	}
	cands, err := repo.ReactionCandidates(ctx, s.DB, ev.GuildID, ev.ChannelID, ev.UserID)
	if err != nil {
		return nil, translate(err)
	}
	res := evaluate(s.matcher(), observability.KindReaction, ev, cands)

	out := &ReactionDecision{Emojis: []string{}}
	seen := make(map[string]bool, len(res.Applicable))
	for _, r := range res.Applicable {
		if !seen[r.Emoji] {
			seen[r.Emoji] = true
			out.Emojis = append(out.Emojis, r.Emoji)
		}
	}
	if best, ok := res.Best(); ok {
		out.React = true
		out.Emoji = best.Emoji
		out.Rule = &best
	}
	return out, nil
}

// evaluate runs the matcher and reports skipped rules to the log and the
// metrics.
func evaluate[R rules.Rule](m *rules.Matcher, kind string, ev rules.Event, cands []R) rules.Result[R] {
	observability.RuleEvaluations.WithLabelValues(kind).Inc()
	res := rules.Resolve(m, ev, cands)
	for _, pe := range res.Skipped {
		observability.InvalidPatterns.WithLabelValues(kind).Inc()
		log.Warn().
			Str("kind", kind).
			Str("rule_id", pe.RuleID).
			Str("pattern", pe.Pattern).
			Err(pe.Err).
			Msg("matcher: skipping rule with invalid pattern")
	}
	if res.Matched() {
		observability.RuleMatches.WithLabelValues(kind).Inc()
	}
	return res
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
