package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-rule-store/internal/repo"
)

func TestAudit_RecordAndList(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42, 10, 11)
	s := &AuditService{DB: db}
	ctx := context.Background()

	e, err := s.Record(ctx, 10, 42, " ban ", []string{"@spammer", "7d"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if e.ID == "" || e.Command != "ban" || e.CreatedAt.IsZero() {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.CreatedAt.Location().String() != "UTC" {
		t.Fatalf("timestamp should be UTC, got %v", e.CreatedAt.Location())
	}
	if _, err := s.Record(ctx, 11, 42, "ping", nil); err != nil {
		t.Fatalf("Record: %v", err)
	}

	items, total, err := s.List(ctx, repo.CommandFilter{GuildID: 42}, 1, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("total=%d items=%d", total, len(items))
	}
	if items[0].Command != "ping" {
		t.Fatalf("newest entry should come first, got %q", items[0].Command)
	}
	if len(items[0].Args) != 0 {
		t.Fatalf("nil args should be stored empty, got %v", items[0].Args)
	}
	if got := items[1].Args; len(got) != 2 || got[0] != "@spammer" || got[1] != "7d" {
		t.Fatalf("args not preserved: %v", got)
	}

	items, total, err = s.List(ctx, repo.CommandFilter{Command: "ban"}, 1, 10)
	if err != nil || total != 1 || items[0].UserID != 10 {
		t.Fatalf("filter by command: items=%+v total=%d err=%v", items, total, err)
	}
}

func TestAudit_Record_Validation(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42, 10)
	s := &AuditService{DB: db}
	ctx := context.Background()

	if _, err := s.Record(ctx, 10, 42, "  ", nil); !errors.Is(err, ErrEmptyCommand) {
		t.Fatalf("expected ErrEmptyCommand, got %v", err)
	}
	if _, err := s.Record(ctx, 999, 42, "ping", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Record(ctx, 10, 999, "ping", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown guild: expected ErrNotFound, got %v", err)
	}
}

func TestAudit_RecordRejectsOverlongCommand(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42, 10)
	s := &AuditService{DB: db}
	ctx := context.Background()

	long := strings.Repeat("é", MaxCommandRunes+1)
	if _, err := s.Record(ctx, 10, 42, long, nil); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
	// The limit counts characters, not bytes.
	if _, err := s.Record(ctx, 10, 42, long[:len(long)-2], nil); err != nil {
		t.Fatalf("Record at limit: %v", err)
	}
}
