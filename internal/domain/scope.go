package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Target is one dimension of a rule scope. It either names a concrete
// Discord snowflake or matches any value in that dimension.
//
// The zero value is Any. Snowflakes are always positive, so Only(0) is
// folded into Any as well; a stored NULL and a legacy 0 mean the same thing.
type Target struct {
	id  int64
	set bool
}

// Any returns the wildcard target.
func Any() Target { return Target{} }

// Only returns a target bound to id. Non-positive ids yield Any.
func Only(id int64) Target {
	if id <= 0 {
		return Target{}
	}
	return Target{id: id, set: true}
}

// TargetFromPtr maps a nullable column value onto a Target.
func TargetFromPtr(p *int64) Target {
	if p == nil {
		return Any()
	}
	return Only(*p)
}

// IsAny reports whether t is the wildcard.
func (t Target) IsAny() bool { return !t.set }

// ID returns the concrete id and true, or 0 and false for Any.
func (t Target) ID() (int64, bool) { return t.id, t.set }

// Ptr returns the nullable column representation of t.
func (t Target) Ptr() *int64 {
	if !t.set {
		return nil
	}
	v := t.id
	return &v
}

// Matches reports whether an event value v falls inside t.
func (t Target) Matches(v int64) bool { return !t.set || t.id == v }

func (t Target) String() string {
	if !t.set {
		return "*"
	}
	return strconv.FormatInt(t.id, 10)
}

// MarshalJSON encodes Any as null and a concrete target as a number.
func (t Target) MarshalJSON() ([]byte, error) {
	if !t.set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(t.id, 10)), nil
}

// UnmarshalJSON accepts null, a number, or a quoted number. Zero decodes
// to Any.
func (t *Target) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = Any()
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" || s == "*" {
			*t = Any()
			return nil
		}
		b = []byte(s)
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("target: invalid snowflake %q", string(b))
	}
	if v < 0 {
		return fmt.Errorf("target: negative snowflake %d", v)
	}
	*t = Only(v)
	return nil
}

// Scope is the (guild, channel, user) triple a rule applies to.
type Scope struct {
	Guild   Target `json:"guild_id"`
	Channel Target `json:"channel_id"`
	User    Target `json:"user_id"`
}

// Contains reports whether an event at (guild, channel, user) is inside s.
func (s Scope) Contains(guild, channel, user int64) bool {
	return s.Guild.Matches(guild) && s.Channel.Matches(channel) && s.User.Matches(user)
}

// Specificity counts the concrete dimensions of s, from 0 to 3.
func (s Scope) Specificity() int {
	n := 0
	for _, t := range [...]Target{s.Guild, s.Channel, s.User} {
		if !t.IsAny() {
			n++
		}
	}
	return n
}

func (s Scope) String() string {
	return fmt.Sprintf("guild=%s channel=%s user=%s", s.Guild, s.Channel, s.User)
}
