// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20

	// DefaultClientRetryMaxAttempts is the default number of attempts for idempotent store calls.
	DefaultClientRetryMaxAttempts = 3

	// DefaultClientRetryMultiplier is the default exponential backoff multiplier.
	DefaultClientRetryMultiplier = 2.0

	// DefaultClientRetryJitterFactor is the default jitter percentage (±25%).
	DefaultClientRetryJitterFactor = 0.25

	// DefaultClientCircuitMaxFailures is the default failures before circuit opens.
	DefaultClientCircuitMaxFailures = 5

	// DefaultClientCircuitHalfOpenLimit is the default successes to close circuit.
	DefaultClientCircuitHalfOpenLimit = 3

	// DefaultTransportMaxIdleConns is the default max idle connections.
	DefaultTransportMaxIdleConns = 100

	// DefaultTransportMaxIdleConnsPerHost is the default max idle connections per host.
	DefaultTransportMaxIdleConnsPerHost = 10

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28

	// DefaultSearchLimit caps quote and client search results.
	DefaultSearchLimit = 25

	// DefaultTaxRate is the fractional tax rate a new draft starts with.
	DefaultTaxRate = "0.08"
)

// Store drivers.
const (
	StoreDriverMemory    = "memory"
	StoreDriverPostgREST = "postgrest"
	StoreDriverSQL       = "sql"
)

// View tracking modes. ViewTrackingStore uses the record store's own tracker,
// which is the track_quote_view RPC for the postgrest driver.
const (
	ViewTrackingStore  = "store"
	ViewTrackingDirect = "direct"
	ViewTrackingOff    = "off"
)

// Notify modes.
const (
	NotifyModeLog    = "log"
	NotifyModeMailto = "mailto"
)

// Config is the root configuration structure.
type Config struct {
	App          AppConfig          `koanf:"app"           validate:"required"`
	Server       ServerConfig       `koanf:"server"        validate:"required"`
	Log          LogConfig          `koanf:"log"           validate:"required"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
	Identity     IdentityConfig     `koanf:"identity"`
	Client       ClientConfig       `koanf:"client"        validate:"required"`
	Store        StoreConfig        `koanf:"store"         validate:"required"`
	ViewTracking ViewTrackingConfig `koanf:"view_tracking" validate:"required"`
	History      HistoryConfig      `koanf:"history"`
	Notify       NotifyConfig       `koanf:"notify"        validate:"required"`
	Features     FeaturesConfig     `koanf:"features"`
	Quote        QuoteConfig        `koanf:"quote"         validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	Insecure     bool    `koanf:"insecure"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// IdentityConfig names the gateway headers that carry the caller's identity.
// Drafts are scoped to the subject. Requests without one fall back to DefaultOwner.
type IdentityConfig struct {
	SubjectHeader string `koanf:"subject_header"`
	RolesHeader   string `koanf:"roles_header"`
	DefaultOwner  string `koanf:"default_owner"`
}

// ClientConfig contains HTTP client settings for the hosted store.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Driver    string          `koanf:"driver"    validate:"required,oneof=memory postgrest sql"`
	PostgREST PostgRESTConfig `koanf:"postgrest"`
	SQL       SQLConfig       `koanf:"sql"`
}

// PostgRESTConfig points at a hosted PostgREST (Supabase) project.
type PostgRESTConfig struct {
	URL    string `koanf:"url"     validate:"omitempty,url"`
	APIKey string `koanf:"api_key"`
	Schema string `koanf:"schema"`
}

// SQLConfig configures the gorm-backed store.
type SQLConfig struct {
	Dialect string `koanf:"dialect" validate:"omitempty,oneof=postgres sqlite"`
	DSN     string `koanf:"dsn"`
	// Migrate runs the embedded migrations on start instead of AutoMigrate.
	Migrate bool `koanf:"migrate"`
	// MaxOpenConns bounds the database/sql pool behind gorm.
	MaxOpenConns int `koanf:"max_open_conns" validate:"omitempty,min=1"`
}

// ViewTrackingConfig selects how client views are counted.
type ViewTrackingConfig struct {
	Mode    string        `koanf:"mode"    validate:"required,oneof=store direct off"`
	DSN     string        `koanf:"dsn"     validate:"required_if=Mode direct"`
	Timeout time.Duration `koanf:"timeout" validate:"required,min=100ms"`
}

// HistoryConfig configures the local save log.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"    validate:"required_if=Enabled true"`
}

// NotifyConfig configures how quote emails go out.
type NotifyConfig struct {
	Mode  string        `koanf:"mode"  validate:"required,oneof=log mailto"`
	Delay time.Duration `koanf:"delay" validate:"min=0"`
	From  string        `koanf:"from"`
}

// FeaturesConfig holds static feature flag values keyed by flag name.
type FeaturesConfig struct {
	Flags map[string]bool `koanf:"flags"`
	Ints  map[string]int  `koanf:"ints"`
}

// QuoteConfig contains quote defaults.
type QuoteConfig struct {
	DefaultTaxRate string `koanf:"default_tax_rate" validate:"required,numeric"`
	PublicBaseURL  string `koanf:"public_base_url"  validate:"required,url"`

	// DraftIdleTTL drops editing sessions unused for this long. Zero keeps them.
	DraftIdleTTL       time.Duration `koanf:"draft_idle_ttl"       validate:"min=0"`
	DraftSweepInterval time.Duration `koanf:"draft_sweep_interval" validate:"min=0"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quotedesk",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.insecure":      false,
		"telemetry.service_name":  "quotedesk",
		"telemetry.sampling_rate": 1.0,

		"identity.subject_header": "X-User-ID",
		"identity.roles_header":   "X-User-Roles",
		"identity.default_owner":  "anonymous",

		"client.timeout":                           "15s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "2s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"store.driver":           StoreDriverMemory,
		"store.postgrest.schema": "public",
		"store.sql.dialect":      "sqlite",
		"store.sql.dsn":          "file:quotedesk.db?cache=shared",
		"store.sql.migrate":      false,

		"view_tracking.mode":    ViewTrackingStore,
		"view_tracking.timeout": "5s",

		"history.enabled": false,
		"history.path":    "./data/history.db",

		"notify.mode":  NotifyModeLog,
		"notify.delay": "1s",
		"notify.from":  "quotes@quotedesk.local",

		"features.flags.block-unbalanced-schedule": false,
		"features.flags.track-client-views":        true,
		"features.ints.quote-search-limit":         DefaultSearchLimit,

		"quote.default_tax_rate":     DefaultTaxRate,
		"quote.public_base_url":      "http://localhost:8080",
		"quote.draft_idle_ttl":       "12h",
		"quote.draft_sweep_interval": "10m",
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix), including those from a .env file
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	return LoadFrom("configs", profile)
}

// LoadFrom is Load with an explicit config directory.
func LoadFrom(dir, profile string) (*Config, error) {
	// Variables already in the environment win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	k := koanf.New(".")

	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	err = loadFileIfExists(k, dir+"/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		profilePath := fmt.Sprintf("%s/%s.yaml", dir, profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	err = k.Load(env.Provider("APP_", ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_STORE__POSTGREST__API_KEY to store.postgrest.api_key.
// A double underscore separates sections so keys may keep single underscores.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "APP_"))
	if strings.Contains(s, "__") {
		return strings.ReplaceAll(s, "__", ".")
	}

	return strings.ReplaceAll(s, "_", ".")
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
