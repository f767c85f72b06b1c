package domain

import "time"

// RuleID returns the text filter id.
func (f TextFilter) RuleID() string {
	return f.ID
}

// RuleCreatedAt returns when the text filter was created.
func (f TextFilter) RuleCreatedAt() time.Time {
	return f.CreatedAt
}

// RuleEnabled reports whether the text filter is active.
func (f TextFilter) RuleEnabled() bool {
	return f.Enabled
}

// RulePattern returns the regex the text filter applies.
func (f TextFilter) RulePattern() string {
	return f.Regex
}

// RuleID returns the reply filter id.
func (f ReplyFilter) RuleID() string {
	return f.ID
}

// RuleCreatedAt returns when the reply filter was created.
func (f ReplyFilter) RuleCreatedAt() time.Time {
	return f.CreatedAt
}

// RuleEnabled reports whether the reply filter is active.
func (f ReplyFilter) RuleEnabled() bool {
	return f.Enabled
}

// RulePattern returns the regex the reply filter applies.
func (f ReplyFilter) RulePattern() string {
	return f.Regex
}

// RuleID returns the reaction rule id.
func (r ReactionRule) RuleID() string {
	return r.ID
}

// RuleCreatedAt returns when the reaction rule was created.
func (r ReactionRule) RuleCreatedAt() time.Time {
	return r.CreatedAt
}

// RuleEnabled reports whether the reaction rule is active.
func (r ReactionRule) RuleEnabled() bool {
	return r.Enabled
}
