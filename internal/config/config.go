// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes the server, storage,
// de-duplication, matching and observability settings of the rule store.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/tbourn/go-rule-store/internal/rules"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Schema modes.
const (
	// SchemaAuto creates tables from the GORM models at startup.
	SchemaAuto = "auto"
	// SchemaSQL applies the embedded SQL migrations; cmd/migrate manages them
	// out of band.
	SchemaSQL = "sql"
)

// Dedup backends.
const (
	DedupDB     = "db"
	DedupRedis  = "redis"
	DedupMemory = "memory"
	DedupNone   = "none"
)

// DBConfig selects and tunes the relational store.
type DBConfig struct {
	Driver         string        // DB_DRIVER: sqlite|postgres
	Path           string        // DB_PATH: SQLite file
	URL            string        // DATABASE_URL: Postgres DSN
	SchemaMode     string        // DB_SCHEMA_MODE: auto|sql
	ConnectRetries int           // DB_CONNECT_RETRIES: attempts before giving up
	SlowQuery      time.Duration // DB_SLOW_QUERY: GORM slow-query threshold
}

// RedisConfig locates the Redis server used by the redis de-dup backend.
type RedisConfig struct {
	Addr     string // REDIS_ADDR
	Password string // REDIS_PASSWORD
	DB       int    // REDIS_DB
}

// DedupConfig selects how redelivered message events are detected.
type DedupConfig struct {
	Backend string        // DEDUP_BACKEND: db|redis|memory|none
	TTL     time.Duration // DEDUP_TTL
}

// MatchConfig controls regex semantics of the rule matcher.
type MatchConfig struct {
	Mode            rules.Mode    // MATCH_MODE: search|full
	CaseInsensitive bool          // MATCH_CASE_INSENSITIVE
	Normalize       bool          // MATCH_NORMALIZE (Unicode NFKC)
	CacheSize       int64         // PATTERN_CACHE_SIZE, 0 disables
	CacheTTL        time.Duration // PATTERN_CACHE_TTL
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	ShutdownTimeout   time.Duration // graceful shutdown budget
	MaxHeaderBytes    int           // bytes
	MaxBodyBytes      int64         // request body cap
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DB    DBConfig
	Redis RedisConfig
	Dedup DedupConfig
	Match MatchConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   getdur("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:      int64(getint("MAX_BODY_BYTES", 1<<20)),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		DB: DBConfig{
			Driver:         strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
			Path:           getenv("DB_PATH", "rulestore.db"),
			URL:            getenv("DATABASE_URL", ""),
			SchemaMode:     strings.ToLower(getenv("DB_SCHEMA_MODE", SchemaAuto)),
			ConnectRetries: getint("DB_CONNECT_RETRIES", 5),
			SlowQuery:      getdur("DB_SLOW_QUERY", 200*time.Millisecond),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getint("REDIS_DB", 0),
		},
		Dedup: DedupConfig{
			Backend: strings.ToLower(getenv("DEDUP_BACKEND", DedupDB)),
			TTL:     getdur("DEDUP_TTL", 24*time.Hour),
		},
		Match: MatchConfig{
			CaseInsensitive: getbool("MATCH_CASE_INSENSITIVE", false),
			Normalize:       getbool("MATCH_NORMALIZE", false),
			CacheSize:       int64(getint("PATTERN_CACHE_SIZE", 1024)),
			CacheTTL:        getdur("PATTERN_CACHE_TTL", time.Hour),
		},

		RateRPS:   getfloat("RATE_RPS", 20.0),
		RateBurst: getint("RATE_BURST", 40),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-rule-store"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	cfg.normalize()

	mode, err := rules.ParseMode(strings.ToLower(getenv("MATCH_MODE", "search")))
	if err != nil {
		return cfg, errors.New("MATCH_MODE must be one of: search, full")
	}
	cfg.Match.Mode = mode

	return cfg, cfg.validate()
}

// normalize folds accepted aliases into their canonical spelling.
func (c *Config) normalize() {
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
	switch c.DB.Driver {
	case "postgresql", "pg":
		c.DB.Driver = DriverPostgres
	}
}
