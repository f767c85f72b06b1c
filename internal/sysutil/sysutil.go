// Package sysutil holds the process-level helpers shared by the commands:
// logger setup and small env parsing utilities.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a LOG_LEVEL value to a zerolog level. It accepts the
// zerolog names plus "warning"; anything it does not recognise is info.
func ParseLevel(lvl string) zerolog.Level {
	lvl = strings.ToLower(strings.TrimSpace(lvl))
	if lvl == "warning" {
		lvl = "warn"
	}
	l, err := zerolog.ParseLevel(lvl)
	if err != nil || l == zerolog.NoLevel || l == zerolog.Disabled {
		return zerolog.InfoLevel
	}
	return l
}

// SetLogLevel sets the global zerolog level from a LOG_LEVEL value.
func SetLogLevel(lvl string) { zerolog.SetGlobalLevel(ParseLevel(lvl)) }

// SetupLogger installs the global logger for a command. Output goes to
// stderr as JSON, or through a console writer when pretty is set.
func SetupLogger(service, level string, pretty bool) {
	setupLogger(os.Stderr, service, level, pretty)
}

func setupLogger(w io.Writer, service, level string, pretty bool) {
	SetLogLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Str("service", service).Logger()
}

// IsTruthy reports whether an env value switches a flag on: 1, true, yes,
// y or on, in any case.
func IsTruthy(v string) bool {
	_, ok := truthy[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

var truthy = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "y": {}, "on": {}}

// FirstNonEmpty returns the first value that is not blank, unmodified.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
