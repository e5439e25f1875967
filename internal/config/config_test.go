package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Clear all env that might affect defaults. t.Setenv isolates per test.
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// App
	t.Setenv("DATA_DIR", "/var/lib/hydration")
	t.Setenv("ENTRIES_FILE", "entries.xml")
	t.Setenv("APP_TIMEZONE", "Europe/Athens")
	t.Setenv("APP_LOCALE", "tr")

	// Notifications
	t.Setenv("NOTIFY_DB_PATH", "notify.db")
	t.Setenv("NOTIFY_AUTHORIZATION", "DENY")
	t.Setenv("NOTIFY_DISPATCH_INTERVAL", "5s")
	t.Setenv("TELEGRAM_TOKEN", " 123:abc ")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// Idempotency
	t.Setenv("IDEMPOTENCY_TTL", "48h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging / Docs
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}

	// App
	if cfg.EntriesPath() != "/var/lib/hydration/entries.xml" || cfg.Locale != "tr" {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}
	if cfg.Location().String() != "Europe/Athens" {
		t.Fatalf("location unexpected: %v", cfg.Location())
	}

	// Notifications
	if cfg.Notify.DBPath != "notify.db" || cfg.Notify.Authorization != "deny" || cfg.Notify.DispatchInterval != 5*time.Second {
		t.Fatalf("notify unexpected: %+v", cfg.Notify)
	}
	if !cfg.Telegram.Enabled() || cfg.Telegram.Token != "123:abc" || cfg.Telegram.ChatID != -1001 {
		t.Fatalf("telegram unexpected: %+v", cfg.Telegram)
	}

	// Rate limiting (parse fallback to defaults)
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}

	// Web protection
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}

	// Idempotency
	if cfg.IdempotencyTTL != 48*time.Hour {
		t.Fatalf("idempotency ttl unexpected: %v", cfg.IdempotencyTTL)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		key, val, want string
	}{
		{"LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"PORT", "   ", "PORT must not be empty"},
		{"READ_TIMEOUT", "0s", "timeouts must be positive"},
		{"MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"ENTRIES_FILE", "   ", "ENTRIES_FILE must not be empty"},
		{"NOTIFY_DB_PATH", "   ", "NOTIFY_DB_PATH must not be empty"},
		{"APP_TIMEZONE", "Mars/Olympus", "APP_TIMEZONE"},
		{"NOTIFY_AUTHORIZATION", "maybe", "NOTIFY_AUTHORIZATION"},
		{"NOTIFY_DISPATCH_INTERVAL", "10ms", "NOTIFY_DISPATCH_INTERVAL"},
		{"TELEGRAM_TOKEN", "123:abc", "TELEGRAM_CHAT_ID"},
		{"TELEGRAM_CHAT_ID", "42", "TELEGRAM_TOKEN"},
		{"RATE_RPS", "-1", "RATE_RPS"},
		{"RATE_BURST", "0", "RATE_BURST"},
		{"HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"IDEMPOTENCY_TTL", "0s", "IDEMPOTENCY_TTL"},
		{"OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); !containsErr(err, tc.want) {
				t.Fatalf("want error containing %q, got %v", tc.want, err)
			}
		})
	}
}

// --- env readers ---

func TestEnvReaders(t *testing.T) {
	t.Setenv("X_SET", "val")
	t.Setenv("X_EMPTY", "")
	t.Setenv("F_VALID", " 3.14 ")
	t.Setenv("F_BAD", "abc")
	t.Setenv("I_VALID", "42")
	t.Setenv("I_BAD", "4x2")
	t.Setenv("I64_VALID", "-100123456789")
	t.Setenv("D_VALID", "150ms")
	t.Setenv("D_BAD", "soon")

	if envString("X_EMPTY", "d") != "d" || envString("X_SET", "d") != "val" || envString("X_UNSET", "d") != "d" {
		t.Fatal("envString")
	}
	if envFloat("F_VALID", 0) != 3.14 || envFloat("F_BAD", 1.23) != 1.23 {
		t.Fatal("envFloat")
	}
	if envInt("I_VALID", 0) != 42 || envInt("I_BAD", 7) != 7 {
		t.Fatal("envInt")
	}
	if envInt64("I64_VALID", 0) != -100123456789 {
		t.Fatal("envInt64")
	}
	if envDuration("D_VALID", time.Second) != 150*time.Millisecond || envDuration("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatal("envDuration")
	}
}

func TestEnvBool(t *testing.T) {
	for i, v := range []string{"1", "true", "YES", "y", "On"} {
		k := "B_TRUE_" + strconv.Itoa(i)
		t.Setenv(k, v)
		if !envBool(k, false) {
			t.Fatalf("envBool(%q) = false", v)
		}
	}
	for i, v := range []string{"0", "false", "No", "n", "OFF"} {
		k := "B_FALSE_" + strconv.Itoa(i)
		t.Setenv(k, v)
		if envBool(k, true) {
			t.Fatalf("envBool(%q) = true", v)
		}
	}
	t.Setenv("B_JUNK", "perhaps")
	if !envBool("B_JUNK", true) || envBool("B_JUNK", false) {
		t.Fatal("unparseable value should fall back to default")
	}
}

func TestSplitCSV_NormalizeBasePath(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty = %#v", out)
	}
	if got := splitCSV(" a, ,b ,"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("splitCSV = %#v", got)
	}
	for in, want := range map[string]string{"": "/", "v1": "/v1", "/v1/": "/v1", " / ": "/", "api/v1/": "/api/v1"} {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	t.Setenv("RATE_BURST", "0")
	t.Setenv("IDEMPOTENCY_TTL", "0s")
	t.Setenv("NOTIFY_AUTHORIZATION", "maybe")
	_, err := Load()
	for _, want := range []string{"RATE_BURST", "IDEMPOTENCY_TTL", "NOTIFY_AUTHORIZATION"} {
		if !containsErr(err, want) {
			t.Errorf("missing %s in %v", want, err)
		}
	}
}

// Keep a PORT from the outer environment out of the defaults.
func TestMain(m *testing.M) {
	os.Unsetenv("PORT")
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("API_BASE_PATH default expected '/api/v1', got %q", cfg.APIBasePath)
	}
	if cfg.EntriesPath() != "data/waterEntries.xml" {
		t.Fatalf("entries path default unexpected: %q", cfg.EntriesPath())
	}
	if cfg.Location() != time.Local {
		t.Fatalf("expected time.Local by default")
	}
	if cfg.Notify.Authorization != "grant" || cfg.Telegram.Enabled() {
		t.Fatalf("notify defaults unexpected: %+v %+v", cfg.Notify, cfg.Telegram)
	}
}

func TestEntriesPath_Absolute(t *testing.T) {
	cfg := Config{DataDir: "data", EntriesFile: "/srv/x.xml"}
	if cfg.EntriesPath() != "/srv/x.xml" {
		t.Fatalf("absolute ENTRIES_FILE not kept: %q", cfg.EntriesPath())
	}
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	// No special env needed; defaults are valid.
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.APIBasePath == "" {
		t.Fatalf("unexpected empty config from MustLoad")
	}
}
