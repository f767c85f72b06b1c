package config

import (
	"errors"
	"strings"
	"time"
)

// validate reports every invalid setting at once.
func (c Config) validate() error {
	return errors.Join(
		c.validateServer(),
		c.DB.validate(),
		c.validateDedup(),
		c.Match.validate(),
		c.validateEdge(),
	)
}

func (c Config) validateServer() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"))
	}
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	for _, d := range []time.Duration{
		c.ReadTimeout, c.ReadHeaderTimeout, c.WriteTimeout, c.IdleTimeout, c.ShutdownTimeout,
	} {
		if d <= 0 {
			errs = append(errs, errors.New("timeouts must be positive durations"))
			break
		}
	}
	if c.MaxHeaderBytes <= 0 {
		errs = append(errs, errors.New("MAX_HEADER_BYTES must be > 0"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be > 0"))
	}
	return errors.Join(errs...)
}

func (d DBConfig) validate() error {
	var errs []error
	switch d.Driver {
	case DriverSQLite:
		if strings.TrimSpace(d.Path) == "" {
			errs = append(errs, errors.New("DB_PATH must not be empty"))
		}
		if d.SchemaMode == SchemaSQL {
			errs = append(errs, errors.New("DB_SCHEMA_MODE=sql requires DB_DRIVER=postgres"))
		}
	case DriverPostgres:
		if strings.TrimSpace(d.URL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, errors.New("DB_DRIVER must be one of: sqlite, postgres"))
	}
	if d.SchemaMode != SchemaAuto && d.SchemaMode != SchemaSQL {
		errs = append(errs, errors.New("DB_SCHEMA_MODE must be one of: auto, sql"))
	}
	if d.ConnectRetries < 1 {
		errs = append(errs, errors.New("DB_CONNECT_RETRIES must be >= 1"))
	}
	return errors.Join(errs...)
}

func (c Config) validateDedup() error {
	var errs []error
	switch c.Dedup.Backend {
	case DedupDB, DedupMemory, DedupNone:
	case DedupRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when DEDUP_BACKEND=redis"))
		}
	default:
		errs = append(errs, errors.New("DEDUP_BACKEND must be one of: db, redis, memory, none"))
	}
	if c.Dedup.TTL <= 0 {
		errs = append(errs, errors.New("DEDUP_TTL must be > 0"))
	}
	return errors.Join(errs...)
}

func (m MatchConfig) validate() error {
	var errs []error
	if m.CacheSize < 0 {
		errs = append(errs, errors.New("PATTERN_CACHE_SIZE must be >= 0"))
	}
	if m.CacheTTL <= 0 {
		errs = append(errs, errors.New("PATTERN_CACHE_TTL must be > 0"))
	}
	return errors.Join(errs...)
}

// validateEdge covers rate limiting, HSTS and tracing.
func (c Config) validateEdge() error {
	var errs []error
	if c.RateRPS < 0 {
		errs = append(errs, errors.New("RATE_RPS must be >= 0"))
	}
	if c.RateBurst < 1 {
		errs = append(errs, errors.New("RATE_BURST must be >= 1"))
	}
	if c.Security.HSTSMaxAge < 0 {
		errs = append(errs, errors.New("HSTS_MAX_AGE must be >= 0"))
	}
	if r := c.OTEL.SampleRatio; r < 0 || r > 1 {
		errs = append(errs, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]"))
	}
	return errors.Join(errs...)
}
