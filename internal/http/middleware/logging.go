// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the correlation id injector, the structured access log,
// and panic recovery. Compose them in that order so panics and access lines
// carry the request id:
//
//	r.Use(RequestID(), AccessLog(LogOptions{}), Recovery())
//
// The access log never records bodies. Query strings and header values pass
// through a redactor (see redact.go) before they are emitted.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	loggerKey       = "logger"
	requestIDHeader = "X-Request-ID"

	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
	maxRequestIDLen   = 128
)

// RequestID reuses the caller's X-Request-ID when it is present and sane,
// otherwise it generates a UUIDv4. The id is echoed on the response and
// stored in the Gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// RequestIDFrom returns the id assigned by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// LogOptions tunes AccessLog.
type LogOptions struct {
	// MaskHeaders lists extra header names whose values are replaced by
	// "[REDACTED]" in addition to Authorization, Cookie and Set-Cookie.
	MaskHeaders []string
	// LogHeaders adds the scrubbed request headers to every access line.
	LogHeaders bool
	// SkipPaths are logged at debug level only (health checks, scrapes).
	SkipPaths []string
}

// AccessLog emits one structured line per request and attaches a
// request-scoped logger to the Gin context (see LoggerFrom).
//
// Level follows the outcome: error for 5xx or collected Gin errors, warn
// for 4xx, info otherwise.
func AccessLog(opts LogOptions) gin.HandlerFunc {
	rd := newRedactor(opts.MaskHeaders)
	quiet := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		quiet[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		lc := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("query", truncate(rd.scrub(c.Request.URL.RawQuery), maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength)
		if opts.LogHeaders {
			lc = lc.Interface("headers", rd.headers(c.Request.Header))
		}
		l := lc.Logger()
		c.Set(loggerKey, &l)

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = l.Error().Str("errors", rd.scrub(c.Errors.String()))
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		default:
			if _, ok := quiet[path]; ok {
				ev = l.Debug()
			} else {
				ev = l.Info()
			}
		}
		ev.Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Msg("request")
	}
}

// Recovery turns a panic into a JSON 500 using the standard error envelope,
// unless the handler already started writing.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global logger when
// AccessLog is not installed.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// truncate cuts s to max bytes and appends an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
