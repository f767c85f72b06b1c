// Package services defines the business logic of the rule store: the entity
// registry, rule administration, rule resolution and the command audit log.
// This file centralizes the service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/go-rule-store/internal/repo"
	"github.com/tbourn/go-rule-store/internal/rules"
)

// Store errors.
var (
	// ErrNotFound indicates that a referenced user, guild, membership or
	// rule does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned for uniqueness violations that could not be
	// resolved by retrying as an update.
	ErrConflict = errors.New("conflict")

	// ErrStoreUnavailable marks a transient connectivity failure. Callers
	// may retry with backoff; the service never retries internally.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Validation errors.
var (
	// ErrInvalidPattern is returned when a rule's regular expression does
	// not compile. It is the same value the matcher wraps.
	ErrInvalidPattern = rules.ErrInvalidPattern

	// ErrInvalidID is returned for a non-positive user or guild snowflake.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidScope is returned when a rule scope references a
	// non-positive id.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrEmptyEmoji is returned when a reaction rule has a blank emoji.
	ErrEmptyEmoji = errors.New("emoji is empty")

	// ErrEmptyCommand is returned when an audit entry has a blank command.
	ErrEmptyCommand = errors.New("command is empty")

	// ErrTooLong is returned when a value exceeds its column width.
	ErrTooLong = errors.New("value too long")

	// ErrMissingUser is returned when a rule lacks its mandatory user
	// (the reply filter's applies-to user or the reaction target).
	ErrMissingUser = errors.New("user is required")

	// ErrInvalidPrefix is returned for a blank or overlong command prefix.
	ErrInvalidPrefix = errors.New("invalid prefix")

	// ErrInvalidCounter is returned for a leaderboard ordering other than
	// sent or deleted.
	ErrInvalidCounter = errors.New("invalid counter")

	// ErrInvalidCount is returned when a deletion event reports a negative
	// or out-of-range number of messages.
	ErrInvalidCount = errors.New("invalid message count")
)

// translate maps repository error kinds onto service errors, keeping the
// original chain. A foreign-key violation means a referenced user or guild
// is absent, which callers see as ErrNotFound.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, repo.ErrMissingReference):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repo.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, repo.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}
