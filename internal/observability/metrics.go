package observability

import "github.com/prometheus/client_golang/prometheus"

const namespace = "rulestore"

// Rule kinds used as the "kind" label.
const (
	KindTextFilter  = "text_filter"
	KindReplyFilter = "reply_filter"
	KindReaction    = "reaction"
)

// Matcher and registry collectors.
var (
	// RuleEvaluations counts matcher runs by rule kind.
	RuleEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_evaluations_total",
			Help:      "Number of events evaluated against stored rules.",
		},
		[]string{"kind"},
	)

	// RuleMatches counts evaluations that produced a decision.
	RuleMatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_matches_total",
			Help:      "Number of evaluations where at least one rule applied.",
		},
		[]string{"kind"},
	)

	// InvalidPatterns counts rules skipped because their pattern does not
	// compile.
	InvalidPatterns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_patterns_total",
			Help:      "Number of rule evaluations skipped due to an invalid pattern.",
		},
		[]string{"kind"},
	)

	// DuplicateEvents counts redelivered occurrences ignored by the registry.
	DuplicateEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_events_total",
			Help:      "Number of message events ignored as already processed.",
		},
	)
)

// HTTP collectors, fed by middleware.Metrics. The path label is the
// registered route template, never the raw URL.
var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency. Match endpoints sit on the bot's hot path.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	HTTPInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_inflight",
			Help:      "HTTP requests currently being served.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RuleEvaluations, RuleMatches, InvalidPatterns, DuplicateEvents,
		HTTPRequests, HTTPDuration, HTTPInflight,
	)
}
