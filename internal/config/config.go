// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const insecureDefaultKey = "0000000000000000000000000000000000000000000000000000000000000000"

// Results backend kinds.
const (
	ResultsBackendBadger = "badger"
	ResultsBackendS3     = "s3"
	ResultsBackendGCS    = "gcs"
	ResultsBackendAzure  = "azure"
	ResultsBackendNone   = "none"
)

// Validator kinds selectable per engine.
const (
	ValidatorPostgreSQL = "postgresql"
	ValidatorExplain    = "explain"
)

// AuthConfig holds authentication and identity provider configuration.
type AuthConfig struct {
	IssuerURL      string        // OIDC issuer URL
	JWKSURL        string        // Override JWKS URL (if no .well-known discovery)
	JWTSecret      string        // HS256 shared secret for local/dev JWT auth
	Audience       string        // Required JWT audience claim
	AllowedIssuers []string      // Accepted issuers (defaults to [IssuerURL])
	JWKSCacheTTL   time.Duration // JWKS cache duration (default: 1h)
	NameClaim      string        // JWT claim used as the username (default: "email")
	AdminSubjects  []string      // Subjects that may see every user's queries
}

// OIDCEnabled returns true when an external identity provider is configured.
func (a *AuthConfig) OIDCEnabled() bool {
	return a.IssuerURL != "" || a.JWKSURL != ""
}

// Enabled returns true when any token validator is configured.
func (a *AuthConfig) Enabled() bool {
	return a.OIDCEnabled() || a.JWTSecret != ""
}

// Validate checks that the auth configuration is internally consistent.
func (a *AuthConfig) Validate() error {
	if a.IssuerURL != "" && a.Audience == "" {
		return fmt.Errorf("AUTH_AUDIENCE is required when AUTH_ISSUER_URL is set")
	}
	return nil
}

// ResultsConfig selects and configures the results cache backend.
type ResultsConfig struct {
	Backend string        // badger, s3, gcs, azure, or none
	TTL     time.Duration // entry lifetime (default 24h)
	Prefix  string        // object key prefix for bucket backends

	BadgerDir string // empty means in-memory

	S3Bucket   string
	S3Endpoint string
	S3Region   string
	S3KeyID    string
	S3Secret   string

	GCSBucket          string
	GCSCredentialsFile string

	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string
}

// WorkerConfig controls task consumers.
type WorkerConfig struct {
	Concurrency  int           // goroutines per worker process (default 4)
	Lease        time.Duration // task lease length (default 1m)
	PollInterval time.Duration // idle poll interval (default 1s)
	MaxAttempts  int           // deliveries before a task is failed (default 3)
	RetryBackoff time.Duration // delay before a released task is visible again (default 5s)
	EmbedInServe bool          // run workers inside the serve process (default true)
}

// Config holds the configuration for the SQL Lab API and workers.
type Config struct {
	MetaDBPath        string // path to SQLite metastore
	ListenAddr        string // HTTP listen address (default ":8080")
	TLSCertFile       string // TLS certificate file path (optional)
	TLSKeyFile        string // TLS private key file path (optional)
	AllowInsecureHTTP bool   // allow non-TLS listener in production (for trusted TLS termination)
	EncryptionKey     string // 64-char hex string (32-byte AES key) for encrypting stored DSNs
	LogLevel          string // log level: debug, info, warn, error (default "info")
	Env               string // environment: "development" (default) or "production"

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	Auth AuthConfig

	// Execution limits.
	SQLMaxRow         int           // hard row ceiling (default 100000)
	DisplayMaxRow     int           // rows returned to interactive callers (default 10000)
	SyncTimeout       time.Duration // SQLLAB_TIMEOUT (default 30s)
	AsyncTimeLimit    time.Duration // SQLLAB_ASYNC_TIME_LIMIT (default 6h)
	ValidationTimeout time.Duration // SQLLAB_VALIDATION_TIMEOUT (default 10s)
	QuerySearchLimit  int           // max search page size (default 1000)
	CSVDelimiter      rune          // CSV export delimiter (default ',')

	// ValidatorsByEngine maps an engine to a validator kind.
	ValidatorsByEngine map[string]string

	// Feature flags.
	FeatureAsyncQueue        bool
	FeatureCSVExport         bool
	FeatureCTAS              bool
	FeatureRequestValidation bool // validate requests against the OpenAPI document

	Results ResultsConfig
	Worker  WorkerConfig

	MaintenanceSchedule string // cron spec (default "@every 5m")
	DatabasesFile       string // optional YAML file of database registrations
	WatchDatabasesFile  bool   // reload DatabasesFile on change

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		MetaDBPath:               os.Getenv("META_DB_PATH"),
		ListenAddr:               os.Getenv("LISTEN_ADDR"),
		TLSCertFile:              os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:               os.Getenv("TLS_KEY_FILE"),
		EncryptionKey:            os.Getenv("ENCRYPTION_KEY"),
		LogLevel:                 os.Getenv("LOG_LEVEL"),
		Env:                      os.Getenv("ENV"),
		FeatureAsyncQueue:        parseBoolEnvDefault("FEATURE_ASYNC_QUEUE", true),
		FeatureCSVExport:         parseBoolEnvDefault("FEATURE_CSV_EXPORT", true),
		FeatureCTAS:              parseBoolEnvDefault("FEATURE_CTAS", true),
		FeatureRequestValidation: parseBoolEnvDefault("FEATURE_REQUEST_VALIDATION", false),
		MaintenanceSchedule:      os.Getenv("MAINTENANCE_SCHEDULE"),
		DatabasesFile:            os.Getenv("DATABASES_FILE"),
		WatchDatabasesFile:       parseBoolEnvDefault("WATCH_DATABASES_FILE", false),
		AllowInsecureHTTP:        parseBoolEnvDefault("ALLOW_INSECURE_HTTP", false),
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	cfg.RateLimitBurst = cfg.intEnv("RATE_LIMIT_BURST", 200)

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}

	// Execution limits
	cfg.SQLMaxRow = cfg.intEnv("SQL_MAX_ROW", 100000)
	cfg.DisplayMaxRow = cfg.intEnv("DISPLAY_MAX_ROW", 10000)
	cfg.QuerySearchLimit = cfg.intEnv("QUERY_SEARCH_LIMIT", 1000)
	cfg.SyncTimeout = cfg.durationEnv("SQLLAB_TIMEOUT", 30*time.Second)
	cfg.AsyncTimeLimit = cfg.durationEnv("SQLLAB_ASYNC_TIME_LIMIT", 6*time.Hour)
	cfg.ValidationTimeout = cfg.durationEnv("SQLLAB_VALIDATION_TIMEOUT", 10*time.Second)
	cfg.CSVDelimiter = ','
	if v := os.Getenv("CSV_DELIMITER"); v != "" {
		r := []rune(v)
		if len(r) == 1 {
			cfg.CSVDelimiter = r[0]
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("CSV_DELIMITER %q must be a single character; using ','", v))
		}
	}

	validators, err := parseValidators(os.Getenv("SQL_VALIDATORS_BY_ENGINE"))
	if err != nil {
		return nil, err
	}
	cfg.ValidatorsByEngine = validators

	// Results backend
	cfg.Results = ResultsConfig{
		Backend:            strings.ToLower(os.Getenv("RESULTS_BACKEND")),
		TTL:                cfg.durationEnv("RESULTS_TTL", 24*time.Hour),
		Prefix:             os.Getenv("RESULTS_PREFIX"),
		BadgerDir:          os.Getenv("RESULTS_BADGER_DIR"),
		S3Bucket:           os.Getenv("RESULTS_S3_BUCKET"),
		S3Endpoint:         os.Getenv("RESULTS_S3_ENDPOINT"),
		S3Region:           os.Getenv("RESULTS_S3_REGION"),
		S3KeyID:            os.Getenv("RESULTS_S3_KEY_ID"),
		S3Secret:           os.Getenv("RESULTS_S3_SECRET"),
		GCSBucket:          os.Getenv("RESULTS_GCS_BUCKET"),
		GCSCredentialsFile: os.Getenv("RESULTS_GCS_CREDENTIALS_FILE"),
		AzureAccountName:   os.Getenv("RESULTS_AZURE_ACCOUNT"),
		AzureAccountKey:    os.Getenv("RESULTS_AZURE_KEY"),
		AzureContainer:     os.Getenv("RESULTS_AZURE_CONTAINER"),
	}
	if cfg.Results.Backend == "" {
		cfg.Results.Backend = ResultsBackendBadger
	}
	if cfg.Results.Prefix == "" {
		cfg.Results.Prefix = "sqllab/results/"
	}
	if err := cfg.Results.validate(); err != nil {
		return nil, err
	}
	if cfg.Results.Backend == ResultsBackendNone {
		cfg.Warnings = append(cfg.Warnings, "RESULTS_BACKEND=none: queries fail because results cannot be stored")
	}

	// Workers
	cfg.Worker = WorkerConfig{
		Concurrency:  cfg.intEnv("WORKER_CONCURRENCY", 4),
		Lease:        cfg.durationEnv("WORKER_LEASE", time.Minute),
		PollInterval: cfg.durationEnv("WORKER_POLL_INTERVAL", time.Second),
		MaxAttempts:  cfg.intEnv("WORKER_MAX_ATTEMPTS", 3),
		RetryBackoff: cfg.durationEnv("WORKER_RETRY_BACKOFF", 5*time.Second),
		EmbedInServe: parseBoolEnvDefault("WORKER_EMBED_IN_SERVE", true),
	}

	if cfg.Results.ProcessLocal() && cfg.FeatureAsyncQueue {
		cfg.Warnings = append(cfg.Warnings, "RESULTS_BACKEND=badger is private to one process; async queries work only with workers embedded in serve")
	}

	// Auth config
	cfg.Auth = AuthConfig{
		IssuerURL: os.Getenv("AUTH_ISSUER_URL"),
		JWKSURL:   os.Getenv("AUTH_JWKS_URL"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		Audience:  os.Getenv("AUTH_AUDIENCE"),
		NameClaim: os.Getenv("AUTH_NAME_CLAIM"),
	}
	if v := os.Getenv("AUTH_ALLOWED_ISSUERS"); v != "" {
		cfg.Auth.AllowedIssuers = splitList(v)
	}
	if v := os.Getenv("AUTH_ADMIN_SUBJECTS"); v != "" {
		cfg.Auth.AdminSubjects = splitList(v)
	}
	cfg.Auth.JWKSCacheTTL = cfg.durationEnv("AUTH_JWKS_CACHE_TTL", time.Hour)
	if cfg.Auth.NameClaim == "" {
		cfg.Auth.NameClaim = "email"
	}
	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}

	// Defaults
	if cfg.MetaDBPath == "" {
		cfg.MetaDBPath = "sqllab_meta.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.MaintenanceSchedule == "" {
		cfg.MaintenanceSchedule = "@every 5m"
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return nil, fmt.Errorf("both TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	if !cfg.Auth.Enabled() {
		cfg.Warnings = append(cfg.Warnings, "authentication is not configured; requests run as the anonymous development user")
	}
	if cfg.EncryptionKey == "" {
		cfg.EncryptionKey = insecureDefaultKey
		cfg.Warnings = append(cfg.Warnings, "ENCRYPTION_KEY not set, using insecure default. Set ENCRYPTION_KEY in production!")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.DisplayMaxRow > cfg.SQLMaxRow {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("DISPLAY_MAX_ROW %d exceeds SQL_MAX_ROW %d; clamping", cfg.DisplayMaxRow, cfg.SQLMaxRow))
		cfg.DisplayMaxRow = cfg.SQLMaxRow
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if !cfg.Auth.Enabled() {
			return nil, fmt.Errorf("authentication must be configured in production (set AUTH_ISSUER_URL, AUTH_JWKS_URL, or JWT_SECRET)")
		}
		if cfg.EncryptionKey == insecureDefaultKey {
			return nil, fmt.Errorf("ENCRYPTION_KEY must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
		if cfg.TLSCertFile == "" && !cfg.AllowInsecureHTTP {
			return nil, fmt.Errorf("TLS_CERT_FILE/TLS_KEY_FILE must be set in production unless ALLOW_INSECURE_HTTP=true")
		}
	}

	return cfg, nil
}

func (r *ResultsConfig) validate() error {
	switch r.Backend {
	case ResultsBackendBadger, ResultsBackendNone:
		return nil
	case ResultsBackendS3:
		if r.S3Bucket == "" || r.S3Region == "" {
			return fmt.Errorf("RESULTS_S3_BUCKET and RESULTS_S3_REGION are required for RESULTS_BACKEND=s3")
		}
	case ResultsBackendGCS:
		if r.GCSBucket == "" {
			return fmt.Errorf("RESULTS_GCS_BUCKET is required for RESULTS_BACKEND=gcs")
		}
	case ResultsBackendAzure:
		if r.AzureAccountName == "" || r.AzureAccountKey == "" || r.AzureContainer == "" {
			return fmt.Errorf("RESULTS_AZURE_ACCOUNT, RESULTS_AZURE_KEY, and RESULTS_AZURE_CONTAINER are required for RESULTS_BACKEND=azure")
		}
	default:
		return fmt.Errorf("unknown RESULTS_BACKEND %q", r.Backend)
	}
	return nil
}

// ProcessLocal reports whether results written by one process are
// invisible to every other process. Badger holds an exclusive directory
// lock, so even an on-disk store cannot be shared.
func (r *ResultsConfig) ProcessLocal() bool {
	return r.Backend == ResultsBackendBadger
}

// RequireSharedResults fails when async results would be written by a
// process other than the API server while the results backend is private
// to one process. externalWorkers is true for the worker command and for
// serve without embedded workers.
func (c *Config) RequireSharedResults(externalWorkers bool) error {
	if !externalWorkers || !c.FeatureAsyncQueue || !c.Results.ProcessLocal() {
		return nil
	}
	return fmt.Errorf("RESULTS_BACKEND=%s cannot be shared between serve and separate worker processes; "+
		"use s3, gcs, or azure, or run workers embedded in serve", c.Results.Backend)
}

// parseValidators parses "engine=kind,engine=kind". An empty value selects
// pg_query for PostgreSQL and EXPLAIN for DuckDB and SQLite.
func parseValidators(v string) (map[string]string, error) {
	out := map[string]string{
		"postgresql": ValidatorPostgreSQL,
		"duckdb":     ValidatorExplain,
		"sqlite":     ValidatorExplain,
	}
	if strings.TrimSpace(v) == "" {
		return out, nil
	}
	out = make(map[string]string)
	for _, pair := range splitList(v) {
		engine, kind, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("SQL_VALIDATORS_BY_ENGINE entry %q must be engine=validator", pair)
		}
		kind = strings.ToLower(strings.TrimSpace(kind))
		if kind != ValidatorPostgreSQL && kind != ValidatorExplain {
			return nil, fmt.Errorf("unknown validator %q for engine %q", kind, engine)
		}
		out[strings.ToLower(strings.TrimSpace(engine))] = kind
	}
	return out, nil
}

func (c *Config) intEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not a positive integer; using %d", key, v, def))
		return def
	}
	return n
}

func (c *Config) durationEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not a positive duration; using %s", key, v, def))
		return def
	}
	return d
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
