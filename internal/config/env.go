package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup returns the parsed value of k, or def when k is unset, empty or
// unparsable.
func lookup[T any](k string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func getenv(k, def string) string {
	return lookup(k, def, func(s string) (string, error) { return s, nil })
}

func getint(k string, def int) int { return lookup(k, def, strconv.Atoi) }

func getfloat(k string, def float64) float64 {
	return lookup(k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func getdur(k string, def time.Duration) time.Duration { return lookup(k, def, time.ParseDuration) }

func getbool(k string, def bool) bool {
	return lookup(k, def, func(s string) (bool, error) {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		case "0", "false", "no", "n", "off":
			return false, nil
		}
		return false, strconv.ErrSyntax
	})
}

// splitCSV splits a comma list, dropping blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath returns p with exactly one leading slash and no
// trailing slash; blank input is "/".
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
