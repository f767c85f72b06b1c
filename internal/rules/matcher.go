// Package rules resolves which scoped moderation rules apply to an event.
//
// Resolution is a pure function of the event and the candidate rules: the
// caller loads candidates however it likes, and the Matcher filters them by
// scope, enabled flag and pattern, then orders the survivors by precedence.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/karlseguin/ccache"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-rule-store/internal/domain"
)

// ErrInvalidPattern is wrapped by every PatternError.
var ErrInvalidPattern = errors.New("invalid pattern")

// PatternError reports a rule whose pattern does not compile.
type PatternError struct {
	RuleID  string
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("rule %s: invalid pattern %q: %v", e.RuleID, e.Pattern, e.Err)
}

// Unwrap exposes both ErrInvalidPattern and the compiler error.
func (e *PatternError) Unwrap() []error { return []error{ErrInvalidPattern, e.Err} }

// Event is the (guild, channel, user, text) tuple rules are matched against.
type Event struct {
	GuildID   int64
	ChannelID int64
	UserID    int64
	Text      string
}

// Rule is the view of a stored rule the matcher needs.
type Rule interface {
	RuleID() string
	RuleScope() domain.Scope
	RuleCreatedAt() time.Time
	RuleEnabled() bool
}

// PatternRule is a Rule that also requires its pattern to match the text.
type PatternRule interface {
	Rule
	RulePattern() string
}

// Mode selects how a pattern is applied to text.
type Mode int

const (
	// Search matches if the pattern is found anywhere in the text.
	Search Mode = iota
	// FullMatch requires the pattern to cover the whole text.
	FullMatch
)

// ParseMode maps a config string onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "search":
		return Search, nil
	case "full", "fullmatch", "full_match":
		return FullMatch, nil
	}
	return Search, fmt.Errorf("unknown match mode %q", s)
}

func (m Mode) String() string {
	if m == FullMatch {
		return "full"
	}
	return "search"
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithMode sets the match mode. Default Search.
func WithMode(m Mode) Option { return func(x *Matcher) { x.mode = m } }

// WithCaseInsensitive compiles every pattern with the (?i) flag.
func WithCaseInsensitive(on bool) Option { return func(x *Matcher) { x.fold = on } }

// WithNormalize applies Unicode NFKC normalization to the text before
// matching.
func WithNormalize(on bool) Option { return func(x *Matcher) { x.normalize = on } }

// WithPatternCache bounds the compiled-pattern cache. size<=0 disables it.
func WithPatternCache(size int64, ttl time.Duration) Option {
	return func(x *Matcher) {
		x.cacheSize = size
		if ttl > 0 {
			x.cacheTTL = ttl
		}
	}
}

// WithPatternErrorHook is invoked for each rule skipped because its pattern
// does not compile.
func WithPatternErrorHook(fn func(*PatternError)) Option {
	return func(x *Matcher) { x.onPatternErr = fn }
}

// Matcher resolves rules against events. It is safe for concurrent use.
type Matcher struct {
	mode         Mode
	fold         bool
	normalize    bool
	cacheSize    int64
	cacheTTL     time.Duration
	onPatternErr func(*PatternError)

	cache *ccache.Cache
}

// NewMatcher builds a Matcher with the given options.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{cacheSize: 1024, cacheTTL: time.Hour}
	for _, o := range opts {
		o(m)
	}
	if m.cacheSize > 0 {
		m.cache = ccache.New(ccache.Configure().MaxSize(m.cacheSize))
	}
	return m
}

// Close stops the pattern cache's background worker.
func (m *Matcher) Close() {
	if m.cache != nil {
		m.cache.Stop()
	}
}

// Mode reports the configured match mode.
func (m *Matcher) Mode() Mode { return m.mode }

type compiled struct {
	re  *regexp.Regexp
	err error
}

func (m *Matcher) source(pattern string) string {
	src := pattern
	if m.mode == FullMatch {
		src = `^(?:` + src + `)$`
	}
	if m.fold {
		src = `(?i)` + src
	}
	return src
}

// build compiles pattern on its own before anchoring it, so a pattern that
// only parses once wrapped (such as "a)|(b") is still rejected.
func (m *Matcher) build(pattern string) compiled {
	if _, err := regexp.Compile(pattern); err != nil {
		return compiled{err: err}
	}
	re, err := regexp.Compile(m.source(pattern))
	return compiled{re: re, err: err}
}

// Compile compiles pattern the way it will be applied at match time. The
// returned error wraps ErrInvalidPattern.
func (m *Matcher) Compile(pattern string) (*regexp.Regexp, error) {
	c := m.compile(pattern)
	if c.err != nil {
		return nil, &PatternError{Pattern: pattern, Err: c.err}
	}
	return c.re, nil
}

func (m *Matcher) compile(pattern string) compiled {
	if m.cache == nil {
		return m.build(pattern)
	}
	item, _ := m.cache.Fetch(m.source(pattern), m.cacheTTL, func() (interface{}, error) {
		return m.build(pattern), nil
	})
	return item.Value().(compiled)
}

func (m *Matcher) prepare(text string) string {
	if m.normalize {
		return norm.NFKC.String(text)
	}
	return text
}

// Result is the outcome of resolving an event.
//
// Applicable holds every matching rule in precedence order: more concrete
// scope dimensions first, then older rules, then lower ids. Skipped holds
// rules whose patterns failed to compile; they never match.
type Result[R Rule] struct {
	Applicable []R
	Skipped    []*PatternError
}

// Best returns the winning rule, if any.
func (r Result[R]) Best() (R, bool) {
	if len(r.Applicable) == 0 {
		var zero R
		return zero, false
	}
	return r.Applicable[0], true
}

// Matched reports whether any rule applies.
func (r Result[R]) Matched() bool { return len(r.Applicable) > 0 }

// Resolve filters candidates down to the rules that apply to ev and orders
// them by precedence. Candidates that implement PatternRule must also match
// ev.Text.
func Resolve[R Rule](m *Matcher, ev Event, candidates []R) Result[R] {
	var (
		res  Result[R]
		text string
		prep bool
	)
	for _, r := range candidates {
		if !r.RuleEnabled() {
			continue
		}
		if !r.RuleScope().Contains(ev.GuildID, ev.ChannelID, ev.UserID) {
			continue
		}
		if pr, ok := any(r).(PatternRule); ok {
			c := m.compile(pr.RulePattern())
			if c.err != nil {
				pe := &PatternError{RuleID: r.RuleID(), Pattern: pr.RulePattern(), Err: c.err}
				res.Skipped = append(res.Skipped, pe)
				if m.onPatternErr != nil {
					m.onPatternErr(pe)
				}
				continue
			}
			if !prep {
				text, prep = m.prepare(ev.Text), true
			}
			if !c.re.MatchString(text) {
				continue
			}
		}
		res.Applicable = append(res.Applicable, r)
	}
	sortByPrecedence(res.Applicable)
	return res
}

func sortByPrecedence[R Rule](rs []R) {
	sort.SliceStable(rs, func(i, j int) bool {
		si, sj := rs[i].RuleScope().Specificity(), rs[j].RuleScope().Specificity()
		if si != sj {
			return si > sj
		}
		ti, tj := rs[i].RuleCreatedAt(), rs[j].RuleCreatedAt()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return rs[i].RuleID() < rs[j].RuleID()
	})
}
