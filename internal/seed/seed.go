// Package seed loads guilds, users and moderation rules from a YAML file
// and applies them through the services layer, so seeded data passes the
// same validation as API writes.
//
// Example file:
//
//	guilds:
//	  - id: 81384788765712384
//	    name: Gophers
//	    prefix: "?"
//	users:
//	  - id: 80351110224678912
//	    username: nelly
//	text_filters:
//	  - guild_id: 81384788765712384
//	    regex: "(?i)free nitro"
//	    reason: scam
//	reply_filters:
//	  - applies_to: 80351110224678912
//	    user_id: 80351110224678912
//	    regex: "^lol$"
//	reactions:
//	  - user_id: 80351110224678912
//	    emoji: "🔥"
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tbourn/go-rule-store/internal/domain"
	"github.com/tbourn/go-rule-store/internal/services"
)

// File is the decoded seed document. Absent scope ids mean "any".
type File struct {
	Guilds       []Guild       `yaml:"guilds"`
	Users        []User        `yaml:"users"`
	TextFilters  []Filter      `yaml:"text_filters"`
	ReplyFilters []ReplyFilter `yaml:"reply_filters"`
	Reactions    []Reaction    `yaml:"reactions"`
}

type Guild struct {
	ID            int64  `yaml:"id"`
	Name          string `yaml:"name"`
	Prefix        string `yaml:"prefix"`
	SlashCommands *bool  `yaml:"slash_commands"`
}

type User struct {
	ID       int64  `yaml:"id"`
	Username string `yaml:"username"`
	Banned   bool   `yaml:"banned"`
}

type Filter struct {
	GuildID   *int64 `yaml:"guild_id"`
	ChannelID *int64 `yaml:"channel_id"`
	UserID    *int64 `yaml:"user_id"`
	Regex     string `yaml:"regex"`
	Reason    string `yaml:"reason"`
	AddedBy   *int64 `yaml:"added_by"`
	Disabled  bool   `yaml:"disabled"`
}

type ReplyFilter struct {
	AppliesTo int64 `yaml:"applies_to"`
	Filter    `yaml:",inline"`
}

type Reaction struct {
	UserID    int64  `yaml:"user_id"`
	GuildID   *int64 `yaml:"guild_id"`
	ChannelID *int64 `yaml:"channel_id"`
	Emoji     string `yaml:"emoji"`
	AddedBy   *int64 `yaml:"added_by"`
	Disabled  bool   `yaml:"disabled"`
}

func (f Filter) input() services.FilterInput {
	return services.FilterInput{
		Scope: domain.Scope{
			Guild:   domain.TargetFromPtr(f.GuildID),
			Channel: domain.TargetFromPtr(f.ChannelID),
			User:    domain.TargetFromPtr(f.UserID),
		},
		Regex:    f.Regex,
		Reason:   f.Reason,
		AddedBy:  domain.TargetFromPtr(f.AddedBy),
		Disabled: f.Disabled,
	}
}

func (r Reaction) input() services.ReactionInput {
	return services.ReactionInput{
		GuildID:   domain.TargetFromPtr(r.GuildID),
		ChannelID: domain.TargetFromPtr(r.ChannelID),
		UserID:    r.UserID,
		Emoji:     r.Emoji,
		AddedBy:   domain.TargetFromPtr(r.AddedBy),
		Disabled:  r.Disabled,
	}
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("seed: parse: %w", err)
	}
	return &f, nil
}

// Validate checks the file without touching the store. pattern validates
// regexes, typically RuleService.ValidatePattern. All problems are
// reported together.
func Validate(f *File, pattern func(string) error) error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	for i, g := range f.Guilds {
		if g.ID <= 0 {
			add("guilds[%d]: id must be a positive snowflake", i)
		}
	}
	for i, u := range f.Users {
		if u.ID <= 0 {
			add("users[%d]: id must be a positive snowflake", i)
		}
	}
	for i, tf := range f.TextFilters {
		if err := pattern(tf.Regex); err != nil {
			add("text_filters[%d]: %w", i, err)
		}
	}
	for i, rf := range f.ReplyFilters {
		if rf.AppliesTo <= 0 {
			add("reply_filters[%d]: applies_to is required", i)
		}
		if err := pattern(rf.Regex); err != nil {
			add("reply_filters[%d]: %w", i, err)
		}
	}
	for i, r := range f.Reactions {
		if r.UserID <= 0 {
			add("reactions[%d]: user_id is required", i)
		}
		if strings.TrimSpace(r.Emoji) == "" {
			add("reactions[%d]: emoji is required", i)
		}
	}
	return errors.Join(errs...)
}

// Registry is the part of services.RegistryService the loader needs.
type Registry interface {
	ObserveGuild(ctx context.Context, id int64, name string) (*domain.Guild, error)
	ObserveUser(ctx context.Context, id int64, username string) (*domain.User, error)
	UpdateGuildSettings(ctx context.Context, id int64, in services.GuildSettings) (*domain.Guild, error)
	SetUserBanned(ctx context.Context, id int64, banned bool) (*domain.User, error)
}

// Rules is the part of services.RuleService the loader needs.
type Rules interface {
	CreateTextFilter(ctx context.Context, in services.FilterInput) (*domain.TextFilter, error)
	CreateReplyFilter(ctx context.Context, appliesTo int64, in services.FilterInput) (*domain.ReplyFilter, error)
	CreateReaction(ctx context.Context, in services.ReactionInput) (*domain.ReactionRule, error)
}

// Report counts what Apply wrote.
type Report struct {
	Guilds       int
	Users        int
	TextFilters  int
	ReplyFilters int
	Reactions    int
}

// Apply writes f in dependency order: guilds and users first, then rules.
// It stops at the first failure; run it inside a transaction to make the
// load atomic.
func Apply(ctx context.Context, reg Registry, rs Rules, f *File) (Report, error) {
	var rep Report
	for i, g := range f.Guilds {
		if _, err := reg.ObserveGuild(ctx, g.ID, g.Name); err != nil {
			return rep, fmt.Errorf("guilds[%d]: %w", i, err)
		}
		if g.Prefix != "" || g.SlashCommands != nil {
			set := services.GuildSettings{SlashCommands: g.SlashCommands}
			if g.Prefix != "" {
				set.Prefix = &g.Prefix
			}
			if _, err := reg.UpdateGuildSettings(ctx, g.ID, set); err != nil {
				return rep, fmt.Errorf("guilds[%d]: settings: %w", i, err)
			}
		}
		rep.Guilds++
	}
	for i, u := range f.Users {
		if _, err := reg.ObserveUser(ctx, u.ID, u.Username); err != nil {
			return rep, fmt.Errorf("users[%d]: %w", i, err)
		}
		if u.Banned {
			if _, err := reg.SetUserBanned(ctx, u.ID, true); err != nil {
				return rep, fmt.Errorf("users[%d]: ban: %w", i, err)
			}
		}
		rep.Users++
	}
	for i, tf := range f.TextFilters {
		if _, err := rs.CreateTextFilter(ctx, tf.input()); err != nil {
			return rep, fmt.Errorf("text_filters[%d]: %w", i, err)
		}
		rep.TextFilters++
	}
	for i, rf := range f.ReplyFilters {
		if _, err := rs.CreateReplyFilter(ctx, rf.AppliesTo, rf.input()); err != nil {
			return rep, fmt.Errorf("reply_filters[%d]: %w", i, err)
		}
		rep.ReplyFilters++
	}
	for i, r := range f.Reactions {
		if _, err := rs.CreateReaction(ctx, r.input()); err != nil {
			return rep, fmt.Errorf("reactions[%d]: %w", i, err)
		}
		rep.Reactions++
	}
	return rep, nil
}
