package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Holds the full gateway configuration, built once at startup and passed
// into components explicitly. Request handlers never read the environment.
type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	Upstream UpstreamConfig
	Quota    QuotaConfig
	Postgres PostgresConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port        string
	Environment string
}

type CORSConfig struct {
	AllowedOrigin string
}

type UpstreamConfig struct {
	BaseURL string
	// Action name -> target. Values may be absolute URLs or paths
	// resolved against BaseURL.
	Routes map[string]string
	// PlatformMode means the process runs under a host that kills the
	// request at a hard ceiling (e.g. 26s). The forward timeout must
	// fire first so the caller gets a parseable error body.
	PlatformMode bool
	Timeout      time.Duration
}

type QuotaConfig struct {
	Backend       string // "postgres", "redis" or "memory"
	Window        time.Duration
	MaxRequests   int
	ExemptActions []string
	StoreTimeout  time.Duration
}

type PostgresConfig struct {
	DSN string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

const (
	// Internal deadline when the platform cuts execution at ~26s.
	platformTimeout = 25 * time.Second
	// Long-running deployments wait out the business operation instead.
	longRunningTimeout = 10 * time.Minute
)

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8787"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		CORS: CORSConfig{
			AllowedOrigin: getEnv("FRONT_ORIGIN", "*"),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_BASE_URL", "https://n8n.icc-e.org"),
			Routes: map[string]string{
				"chat":       getEnv("ROUTE_CHAT", "/webhook/mentor-chat-mode"),
				"pdf_status": getEnv("ROUTE_PDF_STATUS", "/webhook/mentor-chat-mode-pdf"),
				"task":       getEnv("ROUTE_TASK", "/webhook/mentor-task"),
			},
			PlatformMode: getEnvBool("GATEWAY_PLATFORM_MODE", false),
		},
		Quota: QuotaConfig{
			Backend:       getEnv("QUOTA_BACKEND", "postgres"),
			Window:        getEnvDuration("QUOTA_WINDOW", 24*time.Hour),
			MaxRequests:   getEnvInt("QUOTA_MAX_REQUESTS", 60),
			ExemptActions: splitList(getEnv("QUOTA_EXEMPT_ACTIONS", "ping")),
			StoreTimeout:  getEnvDuration("QUOTA_STORE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}

	if cfg.Upstream.PlatformMode {
		cfg.Upstream.Timeout = getEnvDuration("UPSTREAM_TIMEOUT", platformTimeout)
	} else {
		cfg.Upstream.Timeout = getEnvDuration("UPSTREAM_TIMEOUT", longRunningTimeout)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Quota.Backend {
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required when QUOTA_BACKEND is postgres")
		}
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown QUOTA_BACKEND %q", c.Quota.Backend)
	}

	if c.Quota.Window <= 0 {
		return fmt.Errorf("QUOTA_WINDOW must be positive")
	}
	if c.Quota.MaxRequests <= 0 {
		return fmt.Errorf("QUOTA_MAX_REQUESTS must be positive")
	}

	for action, target := range c.Upstream.Routes {
		if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") && c.Upstream.BaseURL == "" {
			return fmt.Errorf("route %q is relative but UPSTREAM_BASE_URL is not set", action)
		}
	}

	return nil
}

func (r *RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
