package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// Patterns are applied in order. Tokens and webhook URLs go first because
// they contain runs that the looser patterns would otherwise split.
var redactions = []struct {
	re   *regexp.Regexp
	repl string
}{
	// Discord bot tokens: base64 user id, timestamp, HMAC.
	{regexp.MustCompile(`[MNO][A-Za-z\d_-]{23,27}\.[A-Za-z\d_-]{6}\.[A-Za-z\d_-]{27,38}`), "[REDACTED:token]"},
	{regexp.MustCompile(`(?i)https?://(?:[a-z]+\.)?discord(?:app)?\.com/api/webhooks/\d+/[A-Za-z\d_-]+`), "[REDACTED:webhook]"},
	{regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`), "[REDACTED:email]"},
}

var defaultMaskedHeaders = []string{"authorization", "cookie", "set-cookie"}

type redactor struct {
	masked map[string]struct{}
}

func newRedactor(extra []string) redactor {
	m := make(map[string]struct{}, len(defaultMaskedHeaders)+len(extra))
	for _, h := range append(append([]string{}, defaultMaskedHeaders...), extra...) {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			m[h] = struct{}{}
		}
	}
	return redactor{masked: m}
}

// scrub replaces credentials and email addresses in s.
func (r redactor) scrub(s string) string {
	if s == "" {
		return s
	}
	for _, x := range redactions {
		s = x.re.ReplaceAllString(s, x.repl)
	}
	return s
}

// headers returns a flattened copy of h with masked headers hidden and the
// remaining values scrubbed.
func (r redactor) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.masked[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.scrub(strings.Join(vv, ", "))
	}
	return out
}
