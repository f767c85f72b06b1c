// Command server runs the rule store HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-rule-store/internal/config"
	httpapi "github.com/tbourn/go-rule-store/internal/http"
	"github.com/tbourn/go-rule-store/internal/observability"
	"github.com/tbourn/go-rule-store/internal/sysutil"
)

var version = "dev"

// @title       Rule Store API
// @version     1.0
// @description Scoped moderation rules, guild registry and command audit log for a Discord bot.
// @BasePath    /api/v1

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.OTEL.ServiceName, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Warn().Err(err).Msg("otel disabled")
	}

	app, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, app.deps, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("db_driver", cfg.DB.Driver).
			Str("dedup", app.dedupName).
			Str("version", version).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := app.Close(); err != nil {
		log.Error().Err(err).Msg("close resources")
	}
	if shutdownOTel != nil {
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("otel shutdown")
		}
	}
}
