package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/tbourn/go-rule-store/internal/config"
	"github.com/tbourn/go-rule-store/internal/dedup"
	"github.com/tbourn/go-rule-store/internal/domain"
	"github.com/tbourn/go-rule-store/internal/rules"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		DB: config.DBConfig{
			Driver:         config.DriverSQLite,
			Path:           filepath.Join(t.TempDir(), "rules.db"),
			SchemaMode:     config.SchemaAuto,
			ConnectRetries: 1,
			SlowQuery:      time.Second,
		},
		Dedup: config.DedupConfig{Backend: config.DedupDB, TTL: time.Hour},
		Match: config.MatchConfig{Mode: rules.Search, CacheSize: 16, CacheTTL: time.Minute},
	}
}

func TestNewApp_SQLite(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if a.dedupName != config.DedupDB {
		t.Fatalf("dedup = %q", a.dedupName)
	}
	if _, ok := a.deps.Dedup.(*dedup.DB); !ok {
		t.Fatalf("expected DB deduper, got %T", a.deps.Dedup)
	}
	if !a.deps.DB.Migrator().HasTable(&domain.TextFilter{}) {
		t.Fatalf("schema not migrated")
	}
	if a.deps.Matcher == nil {
		t.Fatalf("matcher not built")
	}
}

func TestNewApp_OpenFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.Path = filepath.Join(t.TempDir(), "missing", "rules.db")
	if _, err := newApp(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unreachable database")
	}
}

func TestNewDeduper_Backends(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cases := []struct {
		backend  string
		addr     string
		wantName string
		wantNil  bool
		closes   bool
	}{
		{config.DedupNone, "", config.DedupNone, true, false},
		{config.DedupMemory, "", config.DedupMemory, false, false},
		{config.DedupRedis, mr.Addr(), config.DedupRedis, false, true},
		// Nothing listens on port 1.
		{config.DedupRedis, "127.0.0.1:1", config.DedupMemory, false, false},
	}
	for _, tc := range cases {
		cfg := testConfig(t)
		cfg.Dedup.Backend = tc.backend
		cfg.Redis.Addr = tc.addr

		d, name, closer := newDeduper(ctx, cfg, nil)
		if name != tc.wantName {
			t.Fatalf("%s@%s: name = %q; want %q", tc.backend, tc.addr, name, tc.wantName)
		}
		if (d == nil) != tc.wantNil {
			t.Fatalf("%s: deduper = %v", tc.backend, d)
		}
		if (closer != nil) != tc.closes {
			t.Fatalf("%s: closer presence = %v", tc.backend, closer != nil)
		}
		if d != nil {
			first, err := d.FirstSeen(ctx, "k1")
			if err != nil || !first {
				t.Fatalf("%s: FirstSeen = %v, %v", tc.backend, first, err)
			}
		}
		if closer != nil {
			_ = closer()
		}
	}
}

func TestNewMatcher_FromConfig(t *testing.T) {
	m := newMatcher(config.MatchConfig{Mode: rules.FullMatch, CaseInsensitive: true, CacheTTL: time.Minute})
	t.Cleanup(m.Close)

	if m.Mode() != rules.FullMatch {
		t.Fatalf("mode = %v", m.Mode())
	}
	re, err := m.Compile("gold")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !re.MatchString("GOLD") || re.MatchString("cheap gold") {
		t.Fatalf("full, case-insensitive semantics not applied: %s", re)
	}
}

func TestDSNFor(t *testing.T) {
	if got := dsnFor(config.DBConfig{Driver: config.DriverPostgres, URL: "postgres://x", Path: "p"}); got != "postgres://x" {
		t.Fatalf("postgres dsn = %q", got)
	}
	if got := dsnFor(config.DBConfig{Driver: config.DriverSQLite, URL: "postgres://x", Path: "p"}); got != "p" {
		t.Fatalf("sqlite dsn = %q", got)
	}
}
