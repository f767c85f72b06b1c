package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the occurrence key of a gateway event. A bot
// that redelivers the same Discord message must send the same key, usually
// the message snowflake.
const HeaderIdempotencyKey = "Idempotency-Key"

const ctxKeyOccurrence = "occurrence.key"

// OccurrenceOptions configures OccurrenceKey. Zero values pick defaults.
type OccurrenceOptions struct {
	// MaxLen caps the accepted key length. Default 200.
	MaxLen int
	// Pattern restricts allowed characters. Default ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// OccurrenceKey validates the Idempotency-Key header when present and
// stashes it for GetOccurrenceKey. Malformed keys are rejected with 400.
// Requests without the header pass through untouched.
func OccurrenceKey(opts OccurrenceOptions) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyOccurrence, key)
		c.Next()
	}
}

// GetOccurrenceKey returns the validated key, if any.
func GetOccurrenceKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyOccurrence)
	return s, s != ""
}
