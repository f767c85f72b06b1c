// Command seed loads guilds, users and rules from a YAML file into the
// configured store. The whole file is applied in one transaction.
//
//	seed -file rules.yaml [-dry-run]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-rule-store/internal/config"
	"github.com/tbourn/go-rule-store/internal/repo"
	"github.com/tbourn/go-rule-store/internal/rules"
	"github.com/tbourn/go-rule-store/internal/seed"
	"github.com/tbourn/go-rule-store/internal/services"
	"github.com/tbourn/go-rule-store/internal/sysutil"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()
	sysutil.SetupLogger("rule-store-seed", cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
}

type options struct {
	file   string
	dryRun bool
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var o options
	fs.StringVar(&o.file, "file", os.Getenv("SEED_FILE"), "YAML file to load")
	fs.BoolVar(&o.dryRun, "dry-run", sysutil.IsTruthy(os.Getenv("SEED_DRY_RUN")), "validate only")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.file == "" {
		return o, errors.New("usage: seed -file rules.yaml [-dry-run]")
	}
	return o, nil
}

func run(ctx context.Context, cfg config.Config, args []string) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	f, err := readFile(o.file)
	if err != nil {
		return err
	}
	m := rules.NewMatcher(
		rules.WithMode(cfg.Match.Mode),
		rules.WithCaseInsensitive(cfg.Match.CaseInsensitive),
		rules.WithNormalize(cfg.Match.Normalize),
		rules.WithPatternCache(0, 0),
	)
	defer m.Close()

	if err := seed.Validate(f, (&services.RuleService{Matcher: m}).ValidatePattern); err != nil {
		return fmt.Errorf("%s: %w", o.file, err)
	}
	if o.dryRun {
		log.Info().Str("file", o.file).Msg("seed file is valid")
		return nil
	}

	dsn := cfg.DB.Path
	if cfg.DB.Driver == config.DriverPostgres {
		dsn = cfg.DB.URL
	}
	db, err := repo.Connect(ctx, cfg.DB.Driver, dsn, repo.Options{SlowQuery: cfg.DB.SlowQuery}, cfg.DB.ConnectRetries-1)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.DB.Driver, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.DB.SchemaMode == config.SchemaAuto {
		if err := repo.AutoMigrate(db); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
	}

	rep, err := load(ctx, db, m, f)
	if err != nil {
		return err
	}
	log.Info().
		Str("file", o.file).
		Int("guilds", rep.Guilds).
		Int("users", rep.Users).
		Int("text_filters", rep.TextFilters).
		Int("reply_filters", rep.ReplyFilters).
		Int("reactions", rep.Reactions).
		Msg("seeded")
	return nil
}

func readFile(path string) (*seed.File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	f, err := seed.Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// load applies f through the services so every write gets the same
// validation as the API.
func load(ctx context.Context, db *gorm.DB, m *rules.Matcher, f *seed.File) (seed.Report, error) {
	var rep seed.Report
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rep, err = seed.Apply(ctx,
			&services.RegistryService{DB: tx},
			&services.RuleService{DB: tx, Matcher: m},
			f,
		)
		return err
	})
	return rep, err
}
