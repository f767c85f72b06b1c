package middleware

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestOccurrenceKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	var present bool
	newRouter := func(opts OccurrenceOptions) *gin.Engine {
		r := gin.New()
		r.Use(OccurrenceKey(opts))
		r.POST("/events/messages", func(c *gin.Context) {
			seen, present = GetOccurrenceKey(c)
			c.Status(http.StatusAccepted)
		})
		return r
	}

	cases := []struct {
		name        string
		opts        OccurrenceOptions
		key         string
		wantCode    int
		wantPresent bool
	}{
		{"absent", OccurrenceOptions{}, "", http.StatusAccepted, false},
		{"snowflake", OccurrenceOptions{}, "1098765432109876543", http.StatusAccepted, true},
		{"namespaced", OccurrenceOptions{}, "msg:123.edit~1", http.StatusAccepted, true},
		{"bad chars", OccurrenceOptions{}, "a b", http.StatusBadRequest, false},
		{"too long", OccurrenceOptions{}, strings.Repeat("k", 201), http.StatusBadRequest, false},
		{"custom max", OccurrenceOptions{MaxLen: 4}, "12345", http.StatusBadRequest, false},
		{"custom pattern", OccurrenceOptions{Pattern: regexp.MustCompile(`^\d+$`)}, "abc", http.StatusBadRequest, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen, present = "", false
			req := httptest.NewRequest(http.MethodPost, "/events/messages", nil)
			if tc.key != "" {
				req.Header.Set(HeaderIdempotencyKey, tc.key)
			}
			w := httptest.NewRecorder()
			newRouter(tc.opts).ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("code = %d; want %d (%s)", w.Code, tc.wantCode, w.Body.String())
			}
			if present != tc.wantPresent || (present && seen != tc.key) {
				t.Fatalf("GetOccurrenceKey = %q,%v", seen, present)
			}
			if w.Code == http.StatusBadRequest && !strings.Contains(w.Body.String(), "bad_idempotency_key") {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}
}
