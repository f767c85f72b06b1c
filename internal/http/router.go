// Package httpapi wires the HTTP transport (Gin) to the rule store services,
// middleware and route handlers. It owns the cross-cutting concerns: tracing,
// correlation IDs, access logging with redaction, panic recovery, metrics,
// compression, occurrence keys, rate limiting, CORS and security headers.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLog: structured logs with token/webhook scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Gzip
//  8. Occurrence key validation (rejects malformed Idempotency-Key)
//  9. Rate limiter (per client/IP; /health and /metrics exempt)
//  10. CORS and security headers
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-rule-store/docs"
	"github.com/tbourn/go-rule-store/internal/config"
	"github.com/tbourn/go-rule-store/internal/dedup"
	"github.com/tbourn/go-rule-store/internal/http/handlers"
	"github.com/tbourn/go-rule-store/internal/http/middleware"
	"github.com/tbourn/go-rule-store/internal/rules"
	"github.com/tbourn/go-rule-store/internal/services"
)

const (
	healthPath  = "/health"
	metricsPath = "/metrics"
)

// Deps are the collaborators the API needs. Dedup may be nil, in which
// case message events are not de-duplicated. Matcher may be nil to use the
// services' default.
type Deps struct {
	DB      *gorm.DB
	Dedup   dedup.Deduper
	Matcher *rules.Matcher
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(middleware.LogOptions{
		MaskHeaders: []string{"X-API-Key"},
		SkipPaths:   []string{healthPath, metricsPath},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(cfg.MaxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET(metricsPath, gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{metricsPath})))

	r.Use(middleware.OccurrenceKey(middleware.OccurrenceOptions{MaxLen: 200}))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientOrIP(), healthPath, metricsPath)
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)

	// HSTS is only emitted over HTTPS
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET(healthPath, func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(
		&services.RegistryService{DB: deps.DB, Dedup: deps.Dedup},
		&services.RuleService{DB: deps.DB, Matcher: deps.Matcher},
		&services.MatcherService{DB: deps.DB, Matcher: deps.Matcher},
		&services.AuditService{DB: deps.DB},
	)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Users
		api.PUT("/users/:id", h.PutUser)
		api.GET("/users/:id", h.GetUser)
		api.DELETE("/users/:id", h.DeleteUser)
		api.PUT("/users/:id/banned", h.SetUserBanned)

		// Guilds and memberships
		api.PUT("/guilds/:id", h.PutGuild)
		api.GET("/guilds/:id", h.GetGuild)
		api.DELETE("/guilds/:id", h.DeleteGuild)
		api.PUT("/guilds/:id/settings", h.UpdateGuildSettings)
		api.PUT("/guilds/:id/channels/:channel_id/tracking", h.SetChannelTracking)
		api.PUT("/guilds/:id/members/:user_id/tracking", h.SetMemberTracking)
		api.GET("/guilds/:id/members/:user_id", h.GetMember)
		api.GET("/guilds/:id/leaderboard", h.Leaderboard)

		// Gateway events
		api.POST("/events/messages", h.ObserveMessage)
		api.POST("/events/deletions", h.ObserveDeletion)

		// Decisions
		api.POST("/match/text", h.MatchText)
		api.POST("/match/reply", h.MatchReply)
		api.POST("/match/reaction", h.MatchReaction)

		// Rules
		api.POST("/text-filters", h.CreateTextFilter)
		api.GET("/text-filters", h.ListTextFilters)
		api.GET("/text-filters/:id", h.GetTextFilter)
		api.PATCH("/text-filters/:id", h.SetTextFilterEnabled)
		api.DELETE("/text-filters/:id", h.DeleteTextFilter)

		api.POST("/reply-filters", h.CreateReplyFilter)
		api.GET("/reply-filters", h.ListReplyFilters)
		api.GET("/reply-filters/:id", h.GetReplyFilter)
		api.PATCH("/reply-filters/:id", h.SetReplyFilterEnabled)
		api.DELETE("/reply-filters/:id", h.DeleteReplyFilter)

		api.POST("/reactions", h.CreateReaction)
		api.GET("/reactions", h.ListReactions)
		api.DELETE("/reactions", h.DeleteReactionsFor)
		api.GET("/reactions/:id", h.GetReaction)
		api.PATCH("/reactions/:id", h.SetReactionEnabled)
		api.DELETE("/reactions/:id", h.DeleteReaction)

		// Command audit log
		api.POST("/commands", h.RecordCommand)
		api.GET("/commands", h.ListCommands)
	}
}

// corsMiddleware allows every origin when none are configured; otherwise it
// echoes allowlisted origins.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			middleware.HeaderClientID, middleware.HeaderIdempotencyKey,
		},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			// Set ACAO even without an Origin header so health checkers see it.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody caps the request body at maxBytes. Reads past the cap fail, which
// handlers surface as a 400.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
