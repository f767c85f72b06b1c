package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-rule-store/internal/dedup"
	"github.com/tbourn/go-rule-store/internal/http/middleware"
	"github.com/tbourn/go-rule-store/internal/repo"
	"github.com/tbourn/go-rule-store/internal/services"
)

// ---------- test DB + router ----------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
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

// newRealHandlers binds Handlers to services over a fresh database.
func newRealHandlers(t *testing.T) (*Handlers, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	h := New(
		&services.RegistryService{DB: db, Dedup: dedup.NewMemory(time.Hour)},
		&services.RuleService{DB: db},
		&services.MatcherService{DB: db},
		&services.AuditService{DB: db},
	)
	return h, db
}

// mount registers the API routes the same way the router does, minus the
// cross-cutting middleware that has its own tests.
func mount(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.OccurrenceKey(middleware.OccurrenceOptions{}))

	r.PUT("/users/:id", h.PutUser)
	r.GET("/users/:id", h.GetUser)
	r.DELETE("/users/:id", h.DeleteUser)
	r.PUT("/users/:id/banned", h.SetUserBanned)

	r.PUT("/guilds/:id", h.PutGuild)
	r.GET("/guilds/:id", h.GetGuild)
	r.DELETE("/guilds/:id", h.DeleteGuild)
	r.PUT("/guilds/:id/settings", h.UpdateGuildSettings)
	r.PUT("/guilds/:id/channels/:channel_id/tracking", h.SetChannelTracking)
	r.PUT("/guilds/:id/members/:user_id/tracking", h.SetMemberTracking)
	r.GET("/guilds/:id/members/:user_id", h.GetMember)
	r.GET("/guilds/:id/leaderboard", h.Leaderboard)

	r.POST("/events/messages", h.ObserveMessage)
	r.POST("/events/deletions", h.ObserveDeletion)

	r.POST("/match/text", h.MatchText)
	r.POST("/match/reply", h.MatchReply)
	r.POST("/match/reaction", h.MatchReaction)

	r.POST("/text-filters", h.CreateTextFilter)
	r.GET("/text-filters", h.ListTextFilters)
	r.GET("/text-filters/:id", h.GetTextFilter)
	r.PATCH("/text-filters/:id", h.SetTextFilterEnabled)
	r.DELETE("/text-filters/:id", h.DeleteTextFilter)

	r.POST("/reply-filters", h.CreateReplyFilter)
	r.GET("/reply-filters", h.ListReplyFilters)
	r.GET("/reply-filters/:id", h.GetReplyFilter)
	r.PATCH("/reply-filters/:id", h.SetReplyFilterEnabled)
	r.DELETE("/reply-filters/:id", h.DeleteReplyFilter)

	r.POST("/reactions", h.CreateReaction)
	r.GET("/reactions", h.ListReactions)
	r.DELETE("/reactions", h.DeleteReactionsFor)
	r.GET("/reactions/:id", h.GetReaction)
	r.PATCH("/reactions/:id", h.SetReactionEnabled)
	r.DELETE("/reactions/:id", h.DeleteReaction)

	r.POST("/commands", h.RecordCommand)
	r.GET("/commands", h.ListCommands)
	return r
}

// do sends a JSON request. body may be nil, a string or any value that
// encodes to JSON.
func do(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body=%s)", v, err, w.Body.String())
	}
	return v
}

func expectCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d; want %d (body=%s)", w.Code, status, w.Body.String())
	}
	if code == "" {
		return
	}
	if er := decode[ErrorResponse](t, w); er.Code != code {
		t.Fatalf("code = %q; want %q", er.Code, code)
	}
}
