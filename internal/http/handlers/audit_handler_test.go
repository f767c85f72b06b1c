package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/tbourn/go-rule-store/internal/domain"
)

func TestCommands_RecordAndList(t *testing.T) {
	h, _ := newRealHandlers(t)
	r := mount(h)
	seedGuildAndUser(t, r)

	for _, cmd := range []string{"ban", "kick", "ban"} {
		body := RecordCommandRequest{UserID: 80351110224678912, GuildID: 81384788765712384, Command: cmd, Args: []string{"@spammer"}}
		w := do(t, r, http.MethodPost, "/commands", body)
		if w.Code != http.StatusCreated {
			t.Fatalf("record %s: %d %s", cmd, w.Code, w.Body.String())
		}
		if e := decode[domain.CommandLog](t, w); e.ID == "" || e.CreatedAt.IsZero() {
			t.Fatalf("server fields missing: %+v", e)
		}
	}

	w := do(t, r, http.MethodGet, "/commands?guild_id="+guildID+"&command=ban", nil)
	p := decode[Page[domain.CommandLog]](t, w)
	if w.Code != http.StatusOK || p.Pagination.Total != 2 || len(p.Items) != 2 {
		t.Fatalf("list: %d %+v", w.Code, p)
	}
	if p.Items[0].CreatedAt.Before(p.Items[1].CreatedAt) {
		t.Fatalf("entries must be newest first")
	}

	w = do(t, r, http.MethodGet, "/commands?user_id="+userID+"&page_size=1&page=3", nil)
	if p = decode[Page[domain.CommandLog]](t, w); len(p.Items) != 1 || p.Pagination.HasNext {
		t.Fatalf("last page: %+v", p)
	}
}

func TestCommands_Errors(t *testing.T) {
	h, _ := newRealHandlers(t)
	r := mount(h)

	expectCode(t, do(t, r, http.MethodPost, "/commands", `{"user_id":1,"guild_id":2}`),
		http.StatusBadRequest, ErrCodeBadRequest)
	expectCode(t, do(t, r, http.MethodPost, "/commands", `{"user_id":1,"guild_id":2,"command":"   "}`),
		http.StatusBadRequest, ErrCodeValidation)
	long := `{"user_id":1,"guild_id":2,"command":"` + strings.Repeat("x", 101) + `"}`
	expectCode(t, do(t, r, http.MethodPost, "/commands", long), http.StatusBadRequest, ErrCodeValidation)
	expectCode(t, do(t, r, http.MethodPost, "/commands", `{"user_id":1,"guild_id":2,"command":"ban"}`),
		http.StatusNotFound, ErrCodeNotFound)
	expectCode(t, do(t, r, http.MethodGet, "/commands?guild_id=x", nil),
		http.StatusBadRequest, ErrCodeBadRequest)

	w := do(t, r, http.MethodGet, "/commands", nil)
	if p := decode[Page[domain.CommandLog]](t, w); w.Code != http.StatusOK || p.Items == nil {
		t.Fatalf("empty list: %d %+v", w.Code, p)
	}
}
