package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-rule-store/internal/domain"
)

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "does-not-exist", "rules.db")
	db, err := OpenSQLite(bad)
	if db != nil || !os.IsNotExist(err) {
		t.Fatalf("OpenSQLite(%q) = %v, %v; want not-exist", bad, db, err)
	}
}

func TestOpenSQLite_PragmasOnEveryConnection(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "rules.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	// Pin one connection so the pragmas are read from a second one.
	tx := db.Begin()
	defer tx.Rollback()

	for pragma, want := range map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"busy_timeout": "5000",
		"synchronous":  "1",
	} {
		var got string
		if err := db.Raw("PRAGMA " + pragma).Row().Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", pragma, err)
		}
		if strings.ToLower(got) != want {
			t.Fatalf("PRAGMA %s = %q; want %q", pragma, got, want)
		}
	}
	if n := sqlDB.Stats().MaxOpenConnections; n != 10 {
		t.Fatalf("MaxOpenConnections = %d; want 10", n)
	}
}

func TestAutoMigrate_CreatesSchema(t *testing.T) {
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "rules.db"), Options{SlowQuery: time.Second})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range domain.All() {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	// Idempotent.
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("second AutoMigrate: %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := SQLiteDSN("a.db"); !strings.HasPrefix(got, "a.db?_pragma=") {
		t.Fatalf("SQLiteDSN(a.db) = %q", got)
	}
	if got := SQLiteDSN("file:x?mode=memory"); !strings.HasPrefix(got, "file:x?mode=memory&_pragma=") {
		t.Fatalf("SQLiteDSN(uri) = %q", got)
	}
}
