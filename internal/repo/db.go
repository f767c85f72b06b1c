// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver, dev and tests) and Postgres (production), plus
// schema migration.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-rule-store/internal/domain"
)

// Drivers understood by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqlitePragmas are applied to every pooled connection through the DSN, so
// foreign keys (and therefore cascades) hold no matter which connection
// serves a query.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// Options tunes Open.
type Options struct {
	// SlowQuery is the threshold above which the GORM logger warns.
	SlowQuery time.Duration
	// Tracing installs the OpenTelemetry GORM plugin.
	Tracing bool
}

// Open connects to the given driver. For sqlite, dsn is a file path or a
// file: URI; for postgres, a libpq-style DSN or URL.
func Open(driver, dsn string, opt Options) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case DriverSQLite, "":
		db, err = OpenSQLite(dsn)
	case DriverPostgres:
		db, err = OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("repo: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if opt.SlowQuery > 0 {
		db.Logger = NewGormLogger(opt.SlowQuery)
	}
	if opt.Tracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, fmt.Errorf("repo: otel plugin: %w", err)
		}
	}
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         NewGormLogger(200 * time.Millisecond),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// SQLiteDSN appends the connection pragmas to path.
func SQLiteDSN(path string) string {
	params := make([]string, 0, len(sqlitePragmas))
	for _, p := range sqlitePragmas {
		params = append(params, "_pragma="+p)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// OpenSQLite opens (or creates) a SQLite database with foreign keys enforced.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if _, err := os.Stat(dir); err != nil {
				return nil, err
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(SQLiteDSN(path)), gormConfig())
	if err != nil {
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// OpenPostgres connects through pgx.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// AutoMigrate creates or updates every table from the GORM models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(domain.All()...)
}
