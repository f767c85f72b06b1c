package repo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

var (
	// ErrDuplicate marks a unique-constraint violation.
	ErrDuplicate = errors.New("duplicate")
	// ErrMissingReference marks a foreign-key violation: the row points at a
	// user or guild that does not exist.
	ErrMissingReference = errors.New("missing referenced row")
	// ErrUnavailable marks a transient connectivity failure or timeout.
	ErrUnavailable = errors.New("store unavailable")
)

// Classify annotates err with one of ErrNotFound, ErrDuplicate,
// ErrMissingReference or ErrUnavailable when it recognises the failure.
// The original error stays in the chain. Unknown errors are returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if kind := classify(err); kind != nil && !errors.Is(err, kind) {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return err
}

func classify(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, ErrMissingReference), errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrMissingReference
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		return ErrUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return ErrDuplicate
		case pgErr.Code == "23503":
			return ErrMissingReference
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == "57P01", pgErr.Code == "53300":
			return ErrUnavailable
		}
		return nil
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return ErrUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrUnavailable
	}

	// glebarez/sqlite often returns plain-text errors for constraint violations.
	low := strings.ToLower(err.Error())
	switch {
	case strings.Contains(low, "unique constraint failed"),
		strings.Contains(low, "constraint failed: unique"),
		strings.Contains(low, "duplicate key"):
		return ErrDuplicate
	case strings.Contains(low, "foreign key constraint failed"),
		strings.Contains(low, "violates foreign key constraint"):
		return ErrMissingReference
	case strings.Contains(low, "database is locked"),
		strings.Contains(low, "connection refused"),
		strings.Contains(low, "sql: database is closed"):
		return ErrUnavailable
	}
	return nil
}
