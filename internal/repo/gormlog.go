package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger routes GORM's logging through zerolog. Record-not-found is
// never logged; it is a normal outcome for lookups.
type GormLogger struct {
	Level         logger.LogLevel
	SlowThreshold time.Duration
	// Log overrides the global zerolog logger; nil means log.Logger.
	Log *zerolog.Logger
}

// NewGormLogger returns a warn-level logger with the given slow threshold.
func NewGormLogger(slow time.Duration) *GormLogger {
	return &GormLogger{Level: logger.Warn, SlowThreshold: slow}
}

func (l *GormLogger) z() *zerolog.Logger {
	if l.Log != nil {
		return l.Log
	}
	return &log.Logger
}

// LogMode implements logger.Interface.
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.Level = level
	return &cp
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.Level >= logger.Info {
		l.z().Info().Str("component", "gorm").Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.Level >= logger.Warn {
		l.z().Warn().Str("component", "gorm").Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.Level >= logger.Error {
		l.z().Error().Str("component", "gorm").Msg(fmt.Sprintf(msg, data...))
	}
}

// Trace logs failed, slow, or (at Info) all statements.
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.Level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.z().Error().Err(err).Str("component", "gorm").
			Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).
			Msg("query failed")
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.Level >= logger.Warn:
		sql, rows := fc()
		l.z().Warn().Str("component", "gorm").
			Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).
			Msg("slow query")
	case l.Level >= logger.Info:
		sql, rows := fc()
		l.z().Debug().Str("component", "gorm").
			Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).
			Msg("query")
	}
}
