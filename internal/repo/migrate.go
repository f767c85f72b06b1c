package repo

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Migration is one versioned Postgres schema script.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

func (m Migration) String() string { return fmt.Sprintf("%04d_%s", m.Version, m.Name) }

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrations returns the embedded migrations ordered by version.
func Migrations() ([]Migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var out []Migration
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		base := strings.TrimSuffix(name, ".up.sql")
		parts := strings.SplitN(base, "_", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("migration %s: want NNNN_name.up.sql", name)
		}
		v, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version: %w", name, err)
		}
		up, err := migrationFS.ReadFile(path.Join("migrations", name))
		if err != nil {
			return nil, err
		}
		down, err := migrationFS.ReadFile(path.Join("migrations", base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %s: missing down script: %w", name, err)
		}
		out = append(out, Migration{Version: v, Name: parts[1], Up: string(up), Down: string(down)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

const schemaMigrationsDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// AppliedVersions creates the bookkeeping table if needed and reports which
// versions are recorded as applied.
func AppliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	if _, err := db.ExecContext(ctx, schemaMigrationsDDL); err != nil {
		return nil, Classify(fmt.Errorf("create schema_migrations: %w", err))
	}

	applied := map[int]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, Classify(err)
	}
	defer rows.Close()
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, Classify(err)
	}
	return applied, nil
}

// ApplyMigrations runs every pending up-migration against a Postgres
// database, each in its own transaction. It returns the versions applied.
func ApplyMigrations(ctx context.Context, db *sql.DB) ([]int, error) {
	ms, err := Migrations()
	if err != nil {
		return nil, err
	}
	applied, err := AppliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}

	var done []int
	for _, m := range ms {
		if applied[m.Version] {
			continue
		}
		if err := applyOne(ctx, db, m); err != nil {
			return done, err
		}
		log.Info().Str("migration", m.String()).Msg("applied")
		done = append(done, m.Version)
	}
	return done, nil
}

func applyOne(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Classify(err)
	}
	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %s: %w", m, Classify(err))
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", m, Classify(err))
	}
	return Classify(tx.Commit())
}

// RollbackLast reverts the most recently applied migration and returns its
// version, or 0 when nothing is applied.
func RollbackLast(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, `SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, Classify(err)
	}

	ms, err := Migrations()
	if err != nil {
		return 0, err
	}
	idx := sort.Search(len(ms), func(i int) bool { return ms[i].Version >= v })
	if idx == len(ms) || ms[idx].Version != v {
		return 0, fmt.Errorf("migration %04d is applied but not embedded", v)
	}
	m := ms[idx]

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, Classify(err)
	}
	if _, err := tx.ExecContext(ctx, m.Down); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("rollback %s: %w", m, Classify(err))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, v); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("unrecord migration %s: %w", m, Classify(err))
	}
	if err := tx.Commit(); err != nil {
		return 0, Classify(err)
	}
	log.Info().Str("migration", m.String()).Msg("rolled back")
	return v, nil
}
