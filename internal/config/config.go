package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full runtime configuration tree.
type Config struct {
	App         AppConfig
	Backend     BackendConfig
	DeviceAgent DeviceAgentConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Cors        CORSConfig
	Monitoring  MonitoringConfig
	Diagnostics DiagnosticsConfig
	Jobs        JobsConfig
}

// AppConfig captures application-level settings.
type AppConfig struct {
	Name           string
	Env            string
	Version        string
	Port           string
	BaseURL        string
	AllowedOrigins []string
}

// BackendConfig points at the remote LINC REST backend.
type BackendConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// DeviceAgentConfig points at the local fingerprint device agent.
type DeviceAgentConfig struct {
	BaseURL      string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// DatabaseConfig stores connectivity for the local report archive.
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig stores redis connectivity info.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	TLS      bool
}

// AuthConfig stores bearer-token validation settings. Tokens are issued
// by the backend; the gateway only verifies and forwards them.
type AuthConfig struct {
	AccessSecret string
	TokenIssuer  string
}

// RateLimitConfig manages throttling parameters.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
	RedisPrefix       string
}

// CORSConfig declares cross-origin policy.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// MonitoringConfig adds observability tunables.
type MonitoringConfig struct {
	PrometheusEnabled bool
	SentryDSN         string
	SentrySampleRate  float64
}

// DiagnosticsConfig governs the log capture buffer.
type DiagnosticsConfig struct {
	MaxLogLines       int
	EnabledLevels     []string
	IncludeTimestamps bool
	IncludeRawArgs    bool
}

// JobsConfig schedules background maintenance.
type JobsConfig struct {
	Enabled         bool
	PruneSpec       string
	ReportRetention time.Duration
	AgentProbeSpec  string
}

// Load reads from environment (optionally .env) and builds Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:           getenv("APP_NAME", "linc-print-gateway"),
			Env:            getenv("APP_ENV", "development"),
			Version:        getenv("APP_VERSION", "0.1.0"),
			Port:           getenv("PORT", "8080"),
			BaseURL:        getenv("BASE_URL", "http://localhost:8080"),
			AllowedOrigins: splitAndTrim(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Backend: BackendConfig{
			BaseURL:        getenv("BACKEND_BASE_URL", "http://localhost:9000/api/v1"),
			RequestTimeout: time.Duration(getInt("BACKEND_TIMEOUT_SEC", 30)) * time.Second,
		},
		DeviceAgent: DeviceAgentConfig{
			BaseURL:      getenv("DEVICE_AGENT_URL", "http://127.0.0.1:18768"),
			PollInterval: time.Duration(getInt("DEVICE_AGENT_POLL_MS", 500)) * time.Millisecond,
			PollTimeout:  time.Duration(getInt("DEVICE_AGENT_TIMEOUT_SEC", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getenv("DB_DRIVER", "postgres")),
			DSN:             getenv("DB_DSN", "postgres://postgres:postgres@db:5432/gateway_db?sslmode=disable"),
			MaxOpenConns:    getInt("DB_MAX_OPEN", 10),
			MaxIdleConns:    getInt("DB_MAX_IDLE", 5),
			ConnMaxLifetime: time.Duration(getInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Username: getenv("REDIS_USER", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			TLS:      getBool("REDIS_TLS", false),
		},
		Auth: AuthConfig{
			AccessSecret: getenv("JWT_ACCESS_SECRET", getenv("JWT_SECRET", "change-me")),
			TokenIssuer:  getenv("JWT_ISSUER", "linc-print"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getInt("RATE_LIMIT_PER_MIN", 120),
			Burst:             getInt("RATE_LIMIT_BURST", 10),
			RedisPrefix:       getenv("RATE_LIMIT_PREFIX", "ratelimit"),
		},
		Cors: CORSConfig{
			AllowedOrigins:   splitAndTrim(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
			AllowedMethods:   splitAndTrim(getenv("CORS_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")),
			AllowedHeaders:   splitAndTrim(getenv("CORS_HEADERS", "Authorization,Content-Type,Accept,X-Requested-With")),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", true),
		},
		Monitoring: MonitoringConfig{
			PrometheusEnabled: getBool("PROMETHEUS_ENABLED", true),
			SentryDSN:         getenv("SENTRY_DSN", ""),
			SentrySampleRate:  getFloat("SENTRY_SAMPLE_RATE", 0.2),
		},
		Diagnostics: DiagnosticsConfig{
			MaxLogLines:       getInt("DEBUG_LOG_LIMIT", 100),
			EnabledLevels:     splitAndTrim(getenv("DEBUG_LOG_LEVELS", "debug,info,log,warn,error")),
			IncludeTimestamps: getBool("DEBUG_LOG_TIMESTAMPS", true),
			IncludeRawArgs:    getBool("DEBUG_LOG_RAW_ARGS", false),
		},
		Jobs: JobsConfig{
			Enabled:         getBool("JOBS_ENABLED", true),
			PruneSpec:       getenv("JOBS_PRUNE_SPEC", "0 3 * * *"),
			ReportRetention: time.Duration(getInt("JOBS_REPORT_RETENTION_DAYS", 90)) * 24 * time.Hour,
			AgentProbeSpec:  getenv("JOBS_AGENT_PROBE_SPEC", "*/5 * * * *"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base url must be provided")
	}
	if c.Auth.AccessSecret == "" {
		return fmt.Errorf("jwt secret must be provided")
	}
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported db driver %s", c.Database.Driver)
	}
	if c.Diagnostics.MaxLogLines <= 0 {
		c.Diagnostics.MaxLogLines = 100
	}
	return nil
}

func getenv(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getInt(key string, def int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}

func getFloat(key string, def float64) float64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
