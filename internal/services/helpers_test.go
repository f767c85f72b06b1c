package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-rule-store/internal/domain"
	"github.com/tbourn/go-rule-store/internal/repo"
)

// ---------- test helpers ----------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
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
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seed(t *testing.T, db *gorm.DB, guildID int64, userIDs ...int64) {
	t.Helper()
	ctx := context.Background()
	if _, err := repo.UpsertGuild(ctx, db, guildID, fmt.Sprintf("guild%d", guildID)); err != nil {
		t.Fatalf("seed guild: %v", err)
	}
	for _, id := range userIDs {
		if _, err := repo.UpsertUser(ctx, db, id, fmt.Sprintf("user%d", id)); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
}

func ptr(v int64) *int64 { return &v }

func at(minute int) time.Time {
	return time.Date(2024, 5, 1, 12, minute, 0, 0, time.UTC)
}

func textFilter(id string, g, c, u *int64, regex string, minute int) *domain.TextFilter {
	return &domain.TextFilter{
		ID: id, GuildID: g, ChannelID: c, UserID: u,
		Regex: regex, Enabled: true, CreatedAt: at(minute),
	}
}
