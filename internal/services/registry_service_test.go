package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/tbourn/go-rule-store/internal/dedup"
	"github.com/tbourn/go-rule-store/internal/domain"
	"github.com/tbourn/go-rule-store/internal/repo"
)

func TestRegistry_ObserveUser_UpsertKeepsIdentity(t *testing.T) {
	db := newTestDB(t)
	s := &RegistryService{DB: db}
	ctx := context.Background()

	u1, err := s.ObserveUser(ctx, 10, "alice")
	if err != nil {
		t.Fatalf("ObserveUser: %v", err)
	}
	if _, err := s.SetUserBanned(ctx, 10, true); err != nil {
		t.Fatalf("SetUserBanned: %v", err)
	}

	u2, err := s.ObserveUser(ctx, 10, "  alice2 ")
	if err != nil {
		t.Fatalf("ObserveUser again: %v", err)
	}
	if u2.Username != "alice2" {
		t.Fatalf("username not refreshed: %q", u2.Username)
	}
	if !u2.CreatedAt.Equal(u1.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", u1.CreatedAt, u2.CreatedAt)
	}
	if !u2.Banned {
		t.Fatal("ban flag should survive an upsert")
	}

	if _, err := s.ObserveUser(ctx, 0, "x"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestRegistry_ObserveClipsLongNames(t *testing.T) {
	db := newTestDB(t)
	s := &RegistryService{DB: db}
	ctx := context.Background()

	long := strings.Repeat("ü", MaxNameRunes+20)
	u, err := s.ObserveUser(ctx, 10, long)
	if err != nil {
		t.Fatalf("ObserveUser: %v", err)
	}
	g, err := s.ObserveGuild(ctx, 42, long)
	if err != nil {
		t.Fatalf("ObserveGuild: %v", err)
	}
	if n := utf8.RuneCountInString(u.Username); n != MaxNameRunes {
		t.Fatalf("username runes = %d; want %d", n, MaxNameRunes)
	}
	if n := utf8.RuneCountInString(g.Name); n != MaxNameRunes {
		t.Fatalf("guild name runes = %d; want %d", n, MaxNameRunes)
	}
}

func TestRegistry_ObserveGuild_Defaults(t *testing.T) {
	db := newTestDB(t)
	s := &RegistryService{DB: db}
	ctx := context.Background()

	g, err := s.ObserveGuild(ctx, 42, "guild")
	if err != nil {
		t.Fatalf("ObserveGuild: %v", err)
	}
	if g.Prefix != domain.DefaultPrefix || !g.SlashCommands {
		t.Fatalf("unexpected defaults: %+v", g)
	}

	if _, err := s.SetGuildPrefix(ctx, 42, "?"); err != nil {
		t.Fatalf("SetGuildPrefix: %v", err)
	}
	g, err = s.ObserveGuild(ctx, 42, "renamed")
	if err != nil {
		t.Fatalf("ObserveGuild again: %v", err)
	}
	if g.Name != "renamed" || g.Prefix != "?" {
		t.Fatalf("upsert should only touch the name: %+v", g)
	}
}

func TestRegistry_GuildSettings(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42)
	s := &RegistryService{DB: db}
	ctx := context.Background()

	for _, bad := range []string{"", "   ", "abcdefghijklmnopq"} {
		if _, err := s.SetGuildPrefix(ctx, 42, bad); !errors.Is(err, ErrInvalidPrefix) {
			t.Fatalf("prefix %q: expected ErrInvalidPrefix, got %v", bad, err)
		}
	}

	g, err := s.SetSlashCommands(ctx, 42, false)
	if err != nil {
		t.Fatalf("SetSlashCommands: %v", err)
	}
	if g.SlashCommands {
		t.Fatal("slash commands should be off")
	}

	if _, err := s.SetSlashCommands(ctx, 99, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_ObserveMessage_CountsExactly(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42)
	s := &RegistryService{DB: db, Dedup: dedup.NewMemory(time.Minute)}
	ctx := context.Background()

	const n = 5
	for i := 0; i < n; i++ {
		obs, err := s.ObserveMessage(ctx, MessageEvent{
			OccurrenceKey: fmt.Sprintf("msg-%d", i),
			GuildID:       42, ChannelID: 7, UserID: 10, Username: "alice",
		})
		if err != nil {
			t.Fatalf("ObserveMessage %d: %v", i, err)
		}
		if !obs.Counted || obs.Duplicate {
			t.Fatalf("event %d: %+v", i, obs)
		}
	}

	m, err := s.GetMembership(ctx, 10, 42)
	if err != nil {
		t.Fatalf("GetMembership: %v", err)
	}
	if m.MessagesSent != n {
		t.Fatalf("messages_sent = %d; want %d", m.MessagesSent, n)
	}

	var rows int64
	db.Model(&domain.Membership{}).Where("user_id = ? AND guild_id = ?", 10, 42).Count(&rows)
	if rows != 1 {
		t.Fatalf("want one membership row, got %d", rows)
	}
}

func TestRegistry_ObserveMessage_DuplicateIgnored(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42)
	s := &RegistryService{DB: db, Dedup: dedup.NewDB(db, time.Hour)}
	ctx := context.Background()

	ev := MessageEvent{OccurrenceKey: "msg-1", GuildID: 42, ChannelID: 7, UserID: 10}
	if _, err := s.ObserveMessage(ctx, ev); err != nil {
		t.Fatalf("first: %v", err)
	}
	obs, err := s.ObserveMessage(ctx, ev)
	if err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if !obs.Duplicate || obs.Counted {
		t.Fatalf("redelivery should be a duplicate: %+v", obs)
	}

	m, _ := s.GetMembership(ctx, 10, 42)
	if m.MessagesSent != 1 {
		t.Fatalf("messages_sent = %d; want 1", m.MessagesSent)
	}
}

func TestRegistry_ObserveMessage_EmptyKeyAlwaysCounts(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42)
	s := &RegistryService{DB: db, Dedup: dedup.NewMemory(time.Minute)}
	ctx := context.Background()

	ev := MessageEvent{GuildID: 42, ChannelID: 7, UserID: 10}
	for i := 0; i < 2; i++ {
		if _, err := s.ObserveMessage(ctx, ev); err != nil {
			t.Fatalf("ObserveMessage: %v", err)
		}
	}
	m, _ := s.GetMembership(ctx, 10, 42)
	if m.MessagesSent != 2 {
		t.Fatalf("messages_sent = %d; want 2", m.MessagesSent)
	}
}

func TestRegistry_ObserveMessage_MissingGuildReleasesKey(t *testing.T) {
	db := newTestDB(t)
	s := &RegistryService{DB: db, Dedup: dedup.NewMemory(time.Minute)}
	ctx := context.Background()

	ev := MessageEvent{OccurrenceKey: "msg-1", GuildID: 42, ChannelID: 7, UserID: 10, Username: "alice"}
	if _, err := s.ObserveMessage(ctx, ev); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetUser(ctx, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("failed observation must not leave the user behind, got %v", err)
	}

	seed(t, db, 42)
	obs, err := s.ObserveMessage(ctx, ev)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !obs.Counted {
		t.Fatalf("key should have been released after the failure: %+v", obs)
	}
}

func TestRegistry_ObserveMessage_TrackingFlags(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42, 10, 11)
	s := &RegistryService{DB: db}
	ctx := context.Background()

	if _, err := s.SetChannelTracking(ctx, 42, 7, false); err != nil {
		t.Fatalf("SetChannelTracking: %v", err)
	}
	if _, err := s.SetMemberTracking(ctx, 11, 42, false); err != nil {
		t.Fatalf("SetMemberTracking: %v", err)
	}

	// untracked channel: row exists, counter stays at zero
	obs, err := s.ObserveMessage(ctx, MessageEvent{GuildID: 42, ChannelID: 7, UserID: 10})
	if err != nil {
		t.Fatalf("ObserveMessage: %v", err)
	}
	if obs.Counted || obs.Membership.MessagesSent != 0 {
		t.Fatalf("untracked channel counted: %+v", obs.Membership)
	}

	// untracked member in a tracked channel
	obs, err = s.ObserveMessage(ctx, MessageEvent{GuildID: 42, ChannelID: 8, UserID: 11})
	if err != nil {
		t.Fatalf("ObserveMessage: %v", err)
	}
	if obs.Counted || obs.Membership.MessagesSent != 0 {
		t.Fatalf("untracked member counted: %+v", obs.Membership)
	}

	// tracked member in a tracked channel
	obs, err = s.ObserveMessage(ctx, MessageEvent{GuildID: 42, ChannelID: 8, UserID: 10})
	if err != nil {
		t.Fatalf("ObserveMessage: %v", err)
	}
	if !obs.Counted || obs.Membership.MessagesSent != 1 {
		t.Fatalf("expected one counted message: %+v", obs.Membership)
	}
}

func TestRegistry_ObserveMessage_Concurrent(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42)
	s := &RegistryService{DB: db, Dedup: dedup.NewMemory(time.Minute)}
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n*2)
	for i := 0; i < n; i++ {
		wg.Add(2)
		key := fmt.Sprintf("msg-%d", i)
		// every occurrence is delivered twice
		for j := 0; j < 2; j++ {
			go func() {
				defer wg.Done()
				_, err := s.ObserveMessage(ctx, MessageEvent{OccurrenceKey: key, GuildID: 42, ChannelID: 7, UserID: 10})
				errs <- err
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("ObserveMessage: %v", err)
		}
	}

	m, err := s.GetMembership(ctx, 10, 42)
	if err != nil {
		t.Fatalf("GetMembership: %v", err)
	}
	if m.MessagesSent != n {
		t.Fatalf("messages_sent = %d; want %d", m.MessagesSent, n)
	}
}

func TestRegistry_SetTracking_MissingReferences(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42)
	s := &RegistryService{DB: db}
	ctx := context.Background()

	if _, err := s.SetMemberTracking(ctx, 999, 42, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: expected ErrNotFound, got %v", err)
	}
	if _, err := s.SetChannelTracking(ctx, 999, 7, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown guild: expected ErrNotFound, got %v", err)
	}
	if _, err := s.SetChannelTracking(ctx, 42, 0, false); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestRegistry_LeaderboardAndRank(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42)
	s := &RegistryService{DB: db}
	ctx := context.Background()

	counts := map[int64]int{10: 3, 11: 5, 12: 3}
	for uid, c := range counts {
		for i := 0; i < c; i++ {
			if _, err := s.ObserveMessage(ctx, MessageEvent{GuildID: 42, ChannelID: 7, UserID: uid}); err != nil {
				t.Fatalf("ObserveMessage: %v", err)
			}
		}
	}

	rows, total, err := s.Leaderboard(ctx, 42, repo.CounterSent, 1, 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if total != 3 || len(rows) != 3 {
		t.Fatalf("total=%d rows=%d", total, len(rows))
	}
	wantOrder := []int64{11, 10, 12}
	for i, r := range rows {
		if r.UserID != wantOrder[i] {
			t.Fatalf("row %d = user %d; want %d", i, r.UserID, wantOrder[i])
		}
	}

	rank, m, err := s.Rank(ctx, 12, 42, repo.CounterSent)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if rank != 2 || m.MessagesSent != 3 {
		t.Fatalf("rank=%d messages=%d; want 2, 3", rank, m.MessagesSent)
	}

	if _, _, err := s.Leaderboard(ctx, 99, repo.CounterSent, 1, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown guild: expected ErrNotFound, got %v", err)
	}
	if _, _, err := s.Rank(ctx, 99, 42, repo.CounterSent); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown member: expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_ObserveDeletion(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42)
	s := &RegistryService{DB: db, Dedup: dedup.NewMemory(time.Minute)}
	ctx := context.Background()

	// The same snowflake keys the creation and the deletion.
	if _, err := s.ObserveMessage(ctx, MessageEvent{OccurrenceKey: "m1", GuildID: 42, ChannelID: 7, UserID: 10}); err != nil {
		t.Fatalf("ObserveMessage: %v", err)
	}
	obs, err := s.ObserveDeletion(ctx, DeletionEvent{OccurrenceKey: "m1", GuildID: 42, ChannelID: 7, UserID: 10})
	if err != nil {
		t.Fatalf("ObserveDeletion: %v", err)
	}
	if obs.Duplicate || !obs.Counted || obs.Membership.MessagesDeleted != 1 || obs.Membership.MessagesSent != 1 {
		t.Fatalf("deletion = %+v / %+v", obs, obs.Membership)
	}

	obs, err = s.ObserveDeletion(ctx, DeletionEvent{OccurrenceKey: "m1", GuildID: 42, ChannelID: 7, UserID: 10})
	if err != nil || !obs.Duplicate {
		t.Fatalf("redelivered deletion should be a duplicate: %+v %v", obs, err)
	}

	obs, err = s.ObserveDeletion(ctx, DeletionEvent{OccurrenceKey: "bulk-1", GuildID: 42, ChannelID: 7, UserID: 10, Count: 5})
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if obs.Membership.MessagesDeleted != 6 {
		t.Fatalf("messages_deleted = %d; want 6", obs.Membership.MessagesDeleted)
	}

	if _, err := s.SetChannelTracking(ctx, 42, 8, false); err != nil {
		t.Fatalf("SetChannelTracking: %v", err)
	}
	obs, err = s.ObserveDeletion(ctx, DeletionEvent{GuildID: 42, ChannelID: 8, UserID: 10, Count: 3})
	if err != nil || obs.Counted || obs.Membership.MessagesDeleted != 6 {
		t.Fatalf("untracked channel must not count: %+v %v", obs, err)
	}
}

func TestRegistry_ObserveDeletion_Validation(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42)
	s := &RegistryService{DB: db}
	ctx := context.Background()

	for _, n := range []int64{-1, MaxBulkDeletion + 1} {
		_, err := s.ObserveDeletion(ctx, DeletionEvent{GuildID: 42, ChannelID: 7, UserID: 10, Count: n})
		if !errors.Is(err, ErrInvalidCount) {
			t.Fatalf("count %d: expected ErrInvalidCount, got %v", n, err)
		}
	}
	if _, err := s.ObserveDeletion(ctx, DeletionEvent{GuildID: 42, UserID: 10}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("missing channel: expected ErrInvalidID, got %v", err)
	}
	if _, err := s.ObserveDeletion(ctx, DeletionEvent{GuildID: 99, ChannelID: 7, UserID: 10}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown guild: expected ErrNotFound, got %v", err)
	}
	if _, err := s.ObserveDeletion(ctx, DeletionEvent{GuildID: 42, ChannelID: 7, UserID: 10, Count: MaxBulkDeletion}); err != nil {
		t.Fatalf("max bulk: %v", err)
	}
}

func TestRegistry_LeaderboardByDeleted(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42)
	s := &RegistryService{DB: db}
	ctx := context.Background()

	for uid, n := range map[int64]int64{10: 1, 11: 4} {
		if _, err := s.ObserveMessage(ctx, MessageEvent{GuildID: 42, ChannelID: 7, UserID: uid}); err != nil {
			t.Fatalf("ObserveMessage: %v", err)
		}
		if _, err := s.ObserveDeletion(ctx, DeletionEvent{GuildID: 42, ChannelID: 7, UserID: uid, Count: n}); err != nil {
			t.Fatalf("ObserveDeletion: %v", err)
		}
	}
	// 12 has only sent messages.
	if _, err := s.ObserveMessage(ctx, MessageEvent{GuildID: 42, ChannelID: 7, UserID: 12}); err != nil {
		t.Fatalf("ObserveMessage: %v", err)
	}

	rows, total, err := s.Leaderboard(ctx, 42, repo.CounterDeleted, 1, 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if total != 3 || len(rows) != 2 || rows[0].UserID != 11 || rows[1].UserID != 10 {
		t.Fatalf("total=%d rows=%+v", total, rows)
	}
	rank, m, err := s.Rank(ctx, 12, 42, repo.CounterDeleted)
	if err != nil || rank != 3 || m.MessagesDeleted != 0 {
		t.Fatalf("rank=%d m=%+v err=%v; want 3", rank, m, err)
	}

	if _, _, err := s.Leaderboard(ctx, 42, repo.Counter("bogus"), 1, 10); !errors.Is(err, ErrInvalidCounter) {
		t.Fatalf("expected ErrInvalidCounter, got %v", err)
	}
	if _, _, err := s.Rank(ctx, 12, 42, repo.Counter("bogus")); !errors.Is(err, ErrInvalidCounter) {
		t.Fatalf("expected ErrInvalidCounter, got %v", err)
	}
}

func TestParseCounter(t *testing.T) {
	cases := map[string]repo.Counter{
		"":                 repo.CounterSent,
		"sent":             repo.CounterSent,
		" Deleted ":        repo.CounterDeleted,
		"messages_deleted": repo.CounterDeleted,
	}
	for in, want := range cases {
		got, err := ParseCounter(in)
		if err != nil || got != want {
			t.Fatalf("ParseCounter(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseCounter("reactions"); !errors.Is(err, ErrInvalidCounter) {
		t.Fatalf("expected ErrInvalidCounter, got %v", err)
	}
}

func TestRegistry_PurgeUser_Cascades(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42, 10, 20)
	reg := &RegistryService{DB: db}
	audit := &AuditService{DB: db}
	ctx := context.Background()

	if _, err := reg.ObserveMessage(ctx, MessageEvent{GuildID: 42, ChannelID: 7, UserID: 10}); err != nil {
		t.Fatalf("ObserveMessage: %v", err)
	}
	if _, err := reg.ObserveMessage(ctx, MessageEvent{GuildID: 42, ChannelID: 7, UserID: 20}); err != nil {
		t.Fatalf("ObserveMessage: %v", err)
	}
	if _, err := audit.Record(ctx, 10, 42, "ping", nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	owned := textFilter("f-owned", ptr(42), nil, ptr(10), "x", 1)
	authored := textFilter("f-authored", ptr(42), nil, nil, "y", 2)
	authored.AddedBy = ptr(10)
	for _, f := range []*domain.TextFilter{owned, authored} {
		if err := repo.CreateRule(ctx, db, f); err != nil {
			t.Fatalf("CreateRule: %v", err)
		}
	}

	if err := reg.PurgeUser(ctx, 10); err != nil {
		t.Fatalf("PurgeUser: %v", err)
	}

	if _, err := reg.GetMembership(ctx, 10, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("membership should be gone, got %v", err)
	}
	if _, err := reg.GetMembership(ctx, 20, 42); err != nil {
		t.Fatalf("unrelated membership removed: %v", err)
	}
	if _, total, _ := audit.List(ctx, repo.CommandFilter{UserID: 10}, 1, 10); total != 0 {
		t.Fatalf("command log should be gone, got %d rows", total)
	}
	if _, err := repo.GetRule[domain.TextFilter](ctx, db, "f-owned"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("owned filter should be gone, got %v", err)
	}
	kept, err := repo.GetRule[domain.TextFilter](ctx, db, "f-authored")
	if err != nil {
		t.Fatalf("authored filter should survive: %v", err)
	}
	if kept.AddedBy != nil {
		t.Fatalf("added_by should be cleared, got %d", *kept.AddedBy)
	}

	if err := reg.PurgeUser(ctx, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second purge: expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_PurgeGuild_Cascades(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 42, 10)
	seed(t, db, 43)
	reg := &RegistryService{DB: db}
	ctx := context.Background()

	if _, err := reg.ObserveMessage(ctx, MessageEvent{GuildID: 42, ChannelID: 7, UserID: 10}); err != nil {
		t.Fatalf("ObserveMessage: %v", err)
	}
	if _, err := reg.ObserveMessage(ctx, MessageEvent{GuildID: 43, ChannelID: 8, UserID: 10}); err != nil {
		t.Fatalf("ObserveMessage: %v", err)
	}
	if _, err := reg.SetChannelTracking(ctx, 42, 7, false); err != nil {
		t.Fatalf("SetChannelTracking: %v", err)
	}
	if err := repo.CreateRule(ctx, db, textFilter("f-guild", ptr(42), nil, nil, "x", 1)); err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	if err := repo.CreateRule(ctx, db, textFilter("f-global", nil, nil, nil, "x", 2)); err != nil {
		t.Fatalf("CreateRule: %v", err)
	}

	if err := reg.PurgeGuild(ctx, 42); err != nil {
		t.Fatalf("PurgeGuild: %v", err)
	}

	if _, err := reg.GetMembership(ctx, 10, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("membership should be gone, got %v", err)
	}
	if _, err := repo.GetChannelSetting(ctx, db, 42, 7); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("channel setting should be gone, got %v", err)
	}
	if _, err := repo.GetRule[domain.TextFilter](ctx, db, "f-guild"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("guild filter should be gone, got %v", err)
	}
	if _, err := repo.GetRule[domain.TextFilter](ctx, db, "f-global"); err != nil {
		t.Fatalf("global filter removed: %v", err)
	}
	if _, err := reg.GetUser(ctx, 10); err != nil {
		t.Fatalf("user removed with guild: %v", err)
	}
	if _, err := reg.GetMembership(ctx, 10, 43); err != nil {
		t.Fatalf("other guild membership removed: %v", err)
	}
}
