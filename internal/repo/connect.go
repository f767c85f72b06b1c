package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// newBackOff builds the retry schedule for connection attempts.
var newBackOff = func() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// retrying runs op once, then up to retries more times while it fails with
// a connectivity error. Any other failure is returned immediately.
func retrying(ctx context.Context, what string, retries int, op func() error) error {
	if retries <= 0 {
		return op()
	}
	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), uint64(retries)), ctx)
	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := op()
		if err != nil && !errors.Is(Classify(err), ErrUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msgf("repo: %s failed", what)
	})
}

// Connect opens the database like Open, retrying with exponential backoff
// while the server refuses connections. retries is the number of attempts
// after the first; ctx cancels the wait.
func Connect(ctx context.Context, driver, dsn string, opt Options, retries int) (*gorm.DB, error) {
	var db *gorm.DB
	err := retrying(ctx, "connect", retries, func() error {
		var err error
		db, err = Open(driver, dsn, opt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// PingRetry pings db until it answers or the retries run out.
func PingRetry(ctx context.Context, db *sql.DB, retries int) error {
	return retrying(ctx, "ping", retries, func() error {
		return db.PingContext(ctx)
	})
}
