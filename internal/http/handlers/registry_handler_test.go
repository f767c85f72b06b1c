package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/go-rule-store/internal/domain"
	"github.com/tbourn/go-rule-store/internal/repo"
)

const (
	guildID   = "81384788765712384"
	channelID = "81384788765712385"
	userID    = "80351110224678912"
)

func TestUsersAndGuilds_Lifecycle(t *testing.T) {
	h, _ := newRealHandlers(t)
	r := mount(h)

	w := do(t, r, http.MethodPut, "/users/"+userID, PutUserRequest{Username: "nelly"})
	if w.Code != http.StatusOK {
		t.Fatalf("put user: %d %s", w.Code, w.Body.String())
	}
	if u := decode[domain.User](t, w); u.Username != "nelly" || u.Banned {
		t.Fatalf("user = %+v", u)
	}

	w = do(t, r, http.MethodPut, "/users/"+userID+"/banned", `{"banned":true}`)
	if u := decode[domain.User](t, w); w.Code != http.StatusOK || !u.Banned {
		t.Fatalf("ban: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, "/guilds/"+guildID, PutGuildRequest{Name: "Gophers"})
	g := decode[domain.Guild](t, w)
	if w.Code != http.StatusOK || g.Prefix != domain.DefaultPrefix || g.SlashCommands {
		t.Fatalf("put guild: %d %+v", w.Code, g)
	}

	w = do(t, r, http.MethodPut, "/guilds/"+guildID+"/settings", `{"prefix":"?","slash_commands":true}`)
	g = decode[domain.Guild](t, w)
	if w.Code != http.StatusOK || g.Prefix != "?" || !g.SlashCommands {
		t.Fatalf("settings: %d %+v", w.Code, g)
	}

	w = do(t, r, http.MethodGet, "/guilds/"+guildID, nil)
	if g = decode[domain.Guild](t, w); g.Name != "Gophers" {
		t.Fatalf("get guild: %+v", g)
	}

	expectCode(t, do(t, r, http.MethodDelete, "/users/"+userID, nil), http.StatusNoContent, "")
	expectCode(t, do(t, r, http.MethodGet, "/users/"+userID, nil), http.StatusNotFound, ErrCodeNotFound)
	expectCode(t, do(t, r, http.MethodDelete, "/guilds/"+guildID, nil), http.StatusNoContent, "")
	expectCode(t, do(t, r, http.MethodDelete, "/guilds/"+guildID, nil), http.StatusNotFound, ErrCodeNotFound)
}

func TestRegistry_BadInput(t *testing.T) {
	h, _ := newRealHandlers(t)
	r := mount(h)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"non-numeric id", http.MethodGet, "/users/abc", nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"zero id", http.MethodPut, "/guilds/0", `{}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"banned missing", http.MethodPut, "/users/" + userID + "/banned", `{}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"bad json", http.MethodPut, "/users/" + userID, `{`, http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown guild settings", http.MethodPut, "/guilds/" + guildID + "/settings", `{"prefix":"?"}`, http.StatusNotFound, ErrCodeNotFound},
		{"tracking missing flag", http.MethodPut, "/guilds/" + guildID + "/channels/" + channelID + "/tracking", `{}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"member of unknown guild", http.MethodGet, "/guilds/" + guildID + "/members/" + userID, nil, http.StatusNotFound, ErrCodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectCode(t, do(t, r, tc.method, tc.path, tc.body), tc.status, tc.code)
		})
	}
}

func TestUpdateGuildSettings_InvalidPrefix(t *testing.T) {
	h, _ := newRealHandlers(t)
	r := mount(h)
	do(t, r, http.MethodPut, "/guilds/"+guildID, PutGuildRequest{Name: "g"})

	expectCode(t, do(t, r, http.MethodPut, "/guilds/"+guildID+"/settings", `{"prefix":""}`),
		http.StatusBadRequest, ErrCodeValidation)
}

func TestObserveMessage_CountsAndDedups(t *testing.T) {
	h, _ := newRealHandlers(t)
	r := mount(h)
	do(t, r, http.MethodPut, "/guilds/"+guildID, PutGuildRequest{Name: "g"})

	ev := `{"message_id":"1098765432109876543","guild_id":81384788765712384,"channel_id":81384788765712385,"user_id":80351110224678912,"username":"nelly"}`

	w := do(t, r, http.MethodPost, "/events/messages", ev)
	obs := decode[ObservationResponse](t, w)
	if w.Code != http.StatusOK || !obs.Counted || obs.Duplicate || obs.MessagesSent != 1 {
		t.Fatalf("first delivery: %d %+v", w.Code, obs)
	}

	w = do(t, r, http.MethodPost, "/events/messages", ev)
	if obs = decode[ObservationResponse](t, w); !obs.Duplicate || obs.Counted {
		t.Fatalf("redelivery must be a duplicate: %+v", obs)
	}

	// The header wins over the body id.
	w = do(t, r, http.MethodPost, "/events/messages", ev, "Idempotency-Key", "gw:42")
	if obs = decode[ObservationResponse](t, w); obs.Duplicate || obs.MessagesSent != 2 {
		t.Fatalf("distinct header key: %+v", obs)
	}

	w = do(t, r, http.MethodGet, "/guilds/"+guildID+"/members/"+userID, nil)
	m := decode[MemberResponse](t, w)
	if w.Code != http.StatusOK || m.MessagesSent != 2 || m.Rank != 1 {
		t.Fatalf("member: %d %+v", w.Code, m)
	}
}

func TestObserveMessage_TrackingOffAndErrors(t *testing.T) {
	h, _ := newRealHandlers(t)
	r := mount(h)
	do(t, r, http.MethodPut, "/guilds/"+guildID, PutGuildRequest{Name: "g"})

	w := do(t, r, http.MethodPut, "/guilds/"+guildID+"/channels/"+channelID+"/tracking", `{"enabled":false}`)
	if cs := decode[domain.ChannelSetting](t, w); w.Code != http.StatusOK || cs.MessageTracking {
		t.Fatalf("channel tracking: %d %+v", w.Code, cs)
	}

	ev := `{"guild_id":81384788765712384,"channel_id":81384788765712385,"user_id":80351110224678912}`
	w = do(t, r, http.MethodPost, "/events/messages", ev)
	if obs := decode[ObservationResponse](t, w); obs.Counted || obs.MessagesSent != 0 {
		t.Fatalf("untracked channel counted: %+v", obs)
	}

	expectCode(t, do(t, r, http.MethodPost, "/events/messages", `{"guild_id":1,"channel_id":2,"user_id":3}`),
		http.StatusNotFound, ErrCodeNotFound)
	expectCode(t, do(t, r, http.MethodPost, "/events/messages", `{"guild_id":1}`),
		http.StatusBadRequest, ErrCodeBadRequest)
	expectCode(t, do(t, r, http.MethodPost, "/events/messages",
		`{"message_id":"abc","guild_id":1,"channel_id":2,"user_id":3}`),
		http.StatusBadRequest, ErrCodeBadRequest)
	expectCode(t, do(t, r, http.MethodPost, "/events/messages", ev, "Idempotency-Key", "has space"),
		http.StatusBadRequest, "bad_idempotency_key")
}

func TestLeaderboard_Paginates(t *testing.T) {
	h, _ := newRealHandlers(t)
	r := mount(h)
	do(t, r, http.MethodPut, "/guilds/"+guildID, PutGuildRequest{Name: "g"})

	for i, uid := range []string{"101", "102", "103"} {
		for n := 0; n <= i; n++ {
			body := `{"guild_id":81384788765712384,"channel_id":5,"user_id":` + uid + `}`
			if w := do(t, r, http.MethodPost, "/events/messages", body); w.Code != http.StatusOK {
				t.Fatalf("event: %d %s", w.Code, w.Body.String())
			}
		}
	}

	w := do(t, r, http.MethodGet, "/guilds/"+guildID+"/leaderboard?page_size=2", nil)
	p := decode[Page[repo.LeaderboardRow]](t, w)
	if w.Code != http.StatusOK || len(p.Items) != 2 || p.Pagination.Total != 3 || !p.Pagination.HasNext {
		t.Fatalf("leaderboard: %d %+v", w.Code, p)
	}
	if p.Items[0].MessagesSent != 3 || p.Items[1].MessagesSent != 2 {
		t.Fatalf("order: %+v", p.Items)
	}

	w = do(t, r, http.MethodGet, "/guilds/"+guildID+"/members/101", nil)
	if m := decode[MemberResponse](t, w); m.Rank != 3 {
		t.Fatalf("rank = %d; want 3", m.Rank)
	}
}

func TestObserveDeletion_CountsAndRanks(t *testing.T) {
	h, _ := newRealHandlers(t)
	r := mount(h)
	do(t, r, http.MethodPut, "/guilds/"+guildID, PutGuildRequest{Name: "g"})

	msg := `{"message_id":"1098765432109876543","guild_id":81384788765712384,"channel_id":5,"user_id":101}`
	if w := do(t, r, http.MethodPost, "/events/messages", msg); w.Code != http.StatusOK {
		t.Fatalf("message: %d %s", w.Code, w.Body.String())
	}

	// Same snowflake as the message above: deletions have their own keys.
	del := `{"message_id":"1098765432109876543","guild_id":81384788765712384,"channel_id":5,"user_id":101}`
	w := do(t, r, http.MethodPost, "/events/deletions", del)
	obs := decode[ObservationResponse](t, w)
	if w.Code != http.StatusOK || !obs.Counted || obs.Duplicate || obs.MessagesDeleted != 1 || obs.MessagesSent != 1 {
		t.Fatalf("first deletion: %d %+v", w.Code, obs)
	}
	if obs = decode[ObservationResponse](t, do(t, r, http.MethodPost, "/events/deletions", del)); !obs.Duplicate {
		t.Fatalf("redelivered deletion: %+v", obs)
	}

	bulk := `{"guild_id":81384788765712384,"channel_id":5,"user_id":102,"count":3}`
	if obs = decode[ObservationResponse](t, do(t, r, http.MethodPost, "/events/deletions", bulk)); obs.MessagesDeleted != 3 {
		t.Fatalf("bulk deletion: %+v", obs)
	}

	w = do(t, r, http.MethodGet, "/guilds/"+guildID+"/leaderboard?by=deleted", nil)
	p := decode[Page[repo.LeaderboardRow]](t, w)
	if w.Code != http.StatusOK || len(p.Items) != 2 || p.Items[0].UserID != 102 || p.Items[0].MessagesDeleted != 3 {
		t.Fatalf("deleted leaderboard: %d %+v", w.Code, p)
	}
	w = do(t, r, http.MethodGet, "/guilds/"+guildID+"/leaderboard", nil)
	if p = decode[Page[repo.LeaderboardRow]](t, w); p.Items[0].UserID != 101 {
		t.Fatalf("sent leaderboard: %+v", p.Items)
	}

	w = do(t, r, http.MethodGet, "/guilds/"+guildID+"/members/101?by=deleted", nil)
	if m := decode[MemberResponse](t, w); m.Rank != 2 || m.By != "deleted" || m.MessagesDeleted != 1 {
		t.Fatalf("deleted rank: %+v", m)
	}
	w = do(t, r, http.MethodGet, "/guilds/"+guildID+"/members/101", nil)
	if m := decode[MemberResponse](t, w); m.Rank != 1 || m.By != "sent" {
		t.Fatalf("sent rank: %+v", m)
	}
}

func TestObserveDeletion_Errors(t *testing.T) {
	h, _ := newRealHandlers(t)
	r := mount(h)
	do(t, r, http.MethodPut, "/guilds/"+guildID, PutGuildRequest{Name: "g"})

	expectCode(t, do(t, r, http.MethodPost, "/events/deletions", `{"guild_id":1}`),
		http.StatusBadRequest, ErrCodeBadRequest)
	expectCode(t, do(t, r, http.MethodPost, "/events/deletions",
		`{"message_id":"abc","guild_id":81384788765712384,"channel_id":5,"user_id":101}`),
		http.StatusBadRequest, ErrCodeBadRequest)
	expectCode(t, do(t, r, http.MethodPost, "/events/deletions",
		`{"guild_id":81384788765712384,"channel_id":5,"user_id":101,"count":101}`),
		http.StatusBadRequest, ErrCodeValidation)
	expectCode(t, do(t, r, http.MethodPost, "/events/deletions", `{"guild_id":1,"channel_id":2,"user_id":3}`),
		http.StatusNotFound, ErrCodeNotFound)
	expectCode(t, do(t, r, http.MethodGet, "/guilds/"+guildID+"/leaderboard?by=reactions", nil),
		http.StatusBadRequest, ErrCodeBadRequest)
	expectCode(t, do(t, r, http.MethodGet, "/guilds/"+guildID+"/members/101?by=x", nil),
		http.StatusBadRequest, ErrCodeBadRequest)
}

func TestSetMemberTracking(t *testing.T) {
	h, _ := newRealHandlers(t)
	r := mount(h)
	do(t, r, http.MethodPut, "/guilds/"+guildID, PutGuildRequest{Name: "g"})
	do(t, r, http.MethodPut, "/users/"+userID, PutUserRequest{Username: "u"})

	w := do(t, r, http.MethodPut, "/guilds/"+guildID+"/members/"+userID+"/tracking", `{"enabled":false}`)
	if m := decode[domain.Membership](t, w); w.Code != http.StatusOK || m.MessageTracking {
		t.Fatalf("member tracking: %d %+v", w.Code, m)
	}

	ev := `{"guild_id":81384788765712384,"channel_id":81384788765712385,"user_id":80351110224678912}`
	if obs := decode[ObservationResponse](t, do(t, r, http.MethodPost, "/events/messages", ev)); obs.Counted {
		t.Fatalf("untracked member counted: %+v", obs)
	}
}
