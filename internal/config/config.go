// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, storage paths, notification delivery,
// rate limiting, and observability.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
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
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-hydration-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// NotifyConfig defines the embedded notification center.
type NotifyConfig struct {
	DBPath           string        // NOTIFY_DB_PATH; SQLite file for requests, settings and idempotency
	Authorization    string        // NOTIFY_AUTHORIZATION: grant|deny, the answer to the permission prompt
	DispatchInterval time.Duration // NOTIFY_DISPATCH_INTERVAL
}

// TelegramConfig enables the Telegram delivery channel when both fields are set.
type TelegramConfig struct {
	Token  string // TELEGRAM_TOKEN
	ChatID int64  // TELEGRAM_CHAT_ID
}

// Enabled reports whether Telegram delivery is configured.
func (t TelegramConfig) Enabled() bool { return t.Token != "" && t.ChatID != 0 }

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DataDir     string // DATA_DIR; holds the entries file
	EntriesFile string // ENTRIES_FILE; relative names resolve under DataDir
	Timezone    string // APP_TIMEZONE; IANA name, "Local" for the host zone
	Locale      string // APP_LOCALE; BCP 47 tag used for keyword case folding

	// Notifications
	Notify   NotifyConfig
	Telegram TelegramConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad is Load for main: an invalid environment aborts startup.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the environment, applies defaults and normalization, and
// returns every validation problem joined into one error.
func Load() (Config, error) {
	cfg := Config{
		Port:              envString("PORT", "8080"),
		ReadTimeout:       envDuration("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: envDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      envDuration("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       envDuration("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    envInt("MAX_HEADER_BYTES", 1<<20),
		GinMode:           oneOf(strings.ToLower(envString("GIN_MODE", "release")), "release", "debug", "release", "test"),

		LogLevel:       normalizeLevel(envString("LOG_LEVEL", "info")),
		LogPretty:      envBool("LOG_PRETTY", false),
		SwaggerEnabled: envBool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(envString("API_BASE_PATH", "/api/v1")),

		DataDir:     envString("DATA_DIR", "data"),
		EntriesFile: envString("ENTRIES_FILE", "waterEntries.xml"),
		Timezone:    envString("APP_TIMEZONE", "Local"),
		Locale:      envString("APP_LOCALE", "en"),

		Notify: NotifyConfig{
			DBPath:           envString("NOTIFY_DB_PATH", "data/notifications.db"),
			Authorization:    strings.ToLower(envString("NOTIFY_AUTHORIZATION", "grant")),
			DispatchInterval: envDuration("NOTIFY_DISPATCH_INTERVAL", 15*time.Second),
		},
		Telegram: TelegramConfig{
			Token:  strings.TrimSpace(envString("TELEGRAM_TOKEN", "")),
			ChatID: envInt64("TELEGRAM_CHAT_ID", 0),
		},

		RateRPS:   envFloat("RATE_RPS", 5.0),
		RateBurst: envInt("RATE_BURST", 10),

		CORS: CORSConfig{AllowedOrigins: splitCSV(envString("CORS_ALLOWED_ORIGINS", ""))},
		Security: SecurityConfig{
			EnableHSTS: envBool("ENABLE_HSTS", false),
			HSTSMaxAge: envDuration("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: envDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			Endpoint:    envString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: envString("OTEL_SERVICE_NAME", "go-hydration-backend"),
			SampleRatio: envFloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(oneOf(c.LogLevel, "", "debug", "info", "warn", "error", "fatal", "panic") != "",
		"LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic (got %q)", c.LogLevel)
	check(strings.TrimSpace(c.Port) != "", "PORT must not be empty")
	check(c.ReadTimeout > 0 && c.ReadHeaderTimeout > 0 && c.WriteTimeout > 0 && c.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")

	check(strings.TrimSpace(c.EntriesFile) != "", "ENTRIES_FILE must not be empty")
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE must be an IANA time zone name: %w", err))
	}

	check(strings.TrimSpace(c.Notify.DBPath) != "", "NOTIFY_DB_PATH must not be empty")
	check(oneOf(c.Notify.Authorization, "", "grant", "deny") != "",
		"NOTIFY_AUTHORIZATION must be one of: grant, deny (got %q)", c.Notify.Authorization)
	check(c.Notify.DispatchInterval >= time.Second, "NOTIFY_DISPATCH_INTERVAL must be >= 1s")
	check((c.Telegram.Token == "") == (c.Telegram.ChatID == 0),
		"TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together")

	check(c.RateRPS >= 0, "RATE_RPS must be >= 0")
	check(c.RateBurst >= 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(c.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")
	check(c.OTEL.SampleRatio >= 0 && c.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")

	return errors.Join(errs...)
}

// EntriesPath is the entries file location; absolute ENTRIES_FILE values are
// used as-is.
func (c Config) EntriesPath() string {
	if filepath.IsAbs(c.EntriesFile) {
		return c.EntriesFile
	}
	return filepath.Join(c.DataDir, c.EntriesFile)
}

// Location resolves Timezone. It falls back to time.Local for names Load
// would have rejected.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// env returns parse(value) for a set, non-empty key and def otherwise,
// including when the value does not parse.
func env[T any](key string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	out, err := parse(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return out
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int { return env(key, def, strconv.Atoi) }

func envInt64(key string, def int64) int64 {
	return env(key, def, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

func envFloat(key string, def float64) float64 {
	return env(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func envDuration(key string, def time.Duration) time.Duration {
	return env(key, def, time.ParseDuration)
}

func envBool(key string, def bool) bool { return env(key, def, parseBool) }

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// oneOf returns v when it is among allowed, else fallback.
func oneOf(v, fallback string, allowed ...string) string {
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}

func normalizeLevel(l string) string {
	l = strings.ToLower(strings.TrimSpace(l))
	if l == "warning" {
		return "warn"
	}
	return l
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures a leading '/' and drops trailing ones; blank
// input is the root.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
