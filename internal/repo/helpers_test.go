package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-rule-store/internal/domain"
)

// newTestDB opens a private in-memory database with foreign keys on. A single
// connection keeps cascades and the shared cache deterministic.
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func newSchemaDB(t *testing.T) *gorm.DB {
	t.Helper()
	return newTestDB(t, domain.All()...)
}

func seedUserGuild(t *testing.T, db *gorm.DB, userID, guildID int64) {
	t.Helper()
	ctx := context.Background()
	if _, err := UpsertUser(ctx, db, userID, fmt.Sprintf("user%d", userID)); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := UpsertGuild(ctx, db, guildID, fmt.Sprintf("guild%d", guildID)); err != nil {
		t.Fatalf("seed guild: %v", err)
	}
}

func at(minute int) time.Time {
	return time.Date(2024, 5, 1, 12, minute, 0, 0, time.UTC)
}
