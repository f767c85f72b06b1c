// Command migrate manages the SQL schema of a Postgres rule store.
//
//	migrate [-dsn URL] [-retries N] <up|down|status>
//
// The DSN defaults to DATABASE_URL.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-rule-store/internal/repo"
	"github.com/tbourn/go-rule-store/internal/sysutil"
)

func main() {
	_ = godotenv.Load()
	sysutil.SetupLogger("rule-store-migrate", os.Getenv("LOG_LEVEL"), sysutil.IsTruthy(os.Getenv("LOG_PRETTY")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
}

func usage() error {
	return fmt.Errorf("usage: migrate [-dsn URL] [-retries N] <up|down|status>")
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dsn := fs.String("dsn", "", "postgres connection URL (default $DATABASE_URL)")
	retries := fs.Int("retries", 4, "connection retries before giving up")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usage()
	}
	cmd := strings.ToLower(strings.TrimSpace(fs.Arg(0)))
	switch cmd {
	case "up", "down", "status":
	default:
		return usage()
	}

	url := sysutil.FirstNonEmpty(*dsn, os.Getenv("DATABASE_URL"))
	if url == "" {
		return fmt.Errorf("no DSN: pass -dsn or set DATABASE_URL")
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	if err := repo.PingRetry(ctx, db, *retries); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return execute(ctx, db, cmd, out)
}

func execute(ctx context.Context, db *sql.DB, cmd string, out io.Writer) error {
	switch cmd {
	case "up":
		applied, err := repo.ApplyMigrations(ctx, db)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "applied %d migration(s)\n", len(applied))
	case "down":
		v, err := repo.RollbackLast(ctx, db)
		if err != nil {
			return err
		}
		if v == 0 {
			fmt.Fprintln(out, "nothing to roll back")
			return nil
		}
		fmt.Fprintf(out, "rolled back %04d\n", v)
	case "status":
		return status(ctx, db, out)
	default:
		return usage()
	}
	return nil
}

func status(ctx context.Context, db *sql.DB, out io.Writer) error {
	ms, err := repo.Migrations()
	if err != nil {
		return err
	}
	applied, err := repo.AppliedVersions(ctx, db)
	if err != nil {
		return err
	}
	pending := 0
	for _, m := range ms {
		state := "applied"
		if !applied[m.Version] {
			state = "pending"
			pending++
		}
		fmt.Fprintf(out, "%-8s %s\n", state, m)
	}
	fmt.Fprintf(out, "%d pending\n", pending)
	return nil
}
