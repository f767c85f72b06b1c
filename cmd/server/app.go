package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-rule-store/internal/config"
	"github.com/tbourn/go-rule-store/internal/dedup"
	httpapi "github.com/tbourn/go-rule-store/internal/http"
	"github.com/tbourn/go-rule-store/internal/repo"
	"github.com/tbourn/go-rule-store/internal/rules"
)

// app owns the process-wide resources built from the configuration.
type app struct {
	deps      httpapi.Deps
	dedupName string
	closers   []func() error
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	db, err := openStore(ctx, cfg.DB, cfg.OTEL.Enabled)
	if err != nil {
		return nil, err
	}
	a := &app{}
	a.closers = append(a.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	d, name, closeDedup := newDeduper(ctx, cfg, db)
	if closeDedup != nil {
		a.closers = append(a.closers, closeDedup)
	}
	a.dedupName = name

	m := newMatcher(cfg.Match)
	a.closers = append(a.closers, func() error { m.Close(); return nil })
	a.deps = httpapi.Deps{DB: db, Dedup: d, Matcher: m}
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func dsnFor(c config.DBConfig) string {
	if c.Driver == config.DriverPostgres {
		return c.URL
	}
	return c.Path
}

// openStore connects with retries and brings the schema up to date.
func openStore(ctx context.Context, c config.DBConfig, tracing bool) (*gorm.DB, error) {
	db, err := repo.Connect(ctx, c.Driver, dsnFor(c), repo.Options{
		SlowQuery: c.SlowQuery,
		Tracing:   tracing,
	}, c.ConnectRetries-1)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Driver, err)
	}

	switch c.SchemaMode {
	case config.SchemaSQL:
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		applied, err := repo.ApplyMigrations(ctx, sqlDB)
		if err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info().Ints("applied", applied).Msg("sql migrations")
	default:
		if err := repo.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}
	return db, nil
}

// newDeduper builds the configured backend. An unreachable Redis degrades to
// the in-process backend instead of failing startup. It returns a nil
// Deduper for the "none" backend.
func newDeduper(ctx context.Context, cfg config.Config, db *gorm.DB) (dedup.Deduper, string, func() error) {
	switch cfg.Dedup.Backend {
	case config.DedupNone:
		return nil, config.DedupNone, nil
	case config.DedupMemory:
		return dedup.NewMemory(cfg.Dedup.TTL), config.DedupMemory, nil
	case config.DedupRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, de-duplicating in memory")
			_ = client.Close()
			return dedup.NewMemory(cfg.Dedup.TTL), config.DedupMemory, nil
		}
		return dedup.NewRedis(client, cfg.Dedup.TTL), config.DedupRedis, client.Close
	default:
		return dedup.NewDB(db, cfg.Dedup.TTL), config.DedupDB, nil
	}
}

func newMatcher(c config.MatchConfig) *rules.Matcher {
	return rules.NewMatcher(
		rules.WithMode(c.Mode),
		rules.WithCaseInsensitive(c.CaseInsensitive),
		rules.WithNormalize(c.Normalize),
		rules.WithPatternCache(c.CacheSize, c.CacheTTL),
	)
}
