package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("QUOTA_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8787", cfg.Server.Port)
	require.Equal(t, "development", cfg.Server.Environment)
	require.Equal(t, "*", cfg.CORS.AllowedOrigin)
	require.Equal(t, 24*time.Hour, cfg.Quota.Window)
	require.Equal(t, 60, cfg.Quota.MaxRequests)
	require.Equal(t, []string{"ping"}, cfg.Quota.ExemptActions)
	require.False(t, cfg.Upstream.PlatformMode)
	require.Equal(t, 10*time.Minute, cfg.Upstream.Timeout)
	require.Contains(t, cfg.Upstream.Routes, "chat")
	require.Contains(t, cfg.Upstream.Routes, "pdf_status")
	require.Contains(t, cfg.Upstream.Routes, "task")
	require.NotEmpty(t, cfg.Upstream.BaseURL)
}

func TestLoad_PlatformModeShortensTimeout(t *testing.T) {
	t.Setenv("QUOTA_BACKEND", "memory")
	t.Setenv("GATEWAY_PLATFORM_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	require.True(t, cfg.Upstream.PlatformMode)
	require.Equal(t, 25*time.Second, cfg.Upstream.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("QUOTA_BACKEND", "redis")
	t.Setenv("QUOTA_WINDOW", "10m")
	t.Setenv("QUOTA_MAX_REQUESTS", "50")
	t.Setenv("QUOTA_EXEMPT_ACTIONS", "ping, healthz")
	t.Setenv("UPSTREAM_TIMEOUT", "42s")
	t.Setenv("FRONT_ORIGIN", "https://frontend.example.com")
	t.Setenv("ROUTE_CHAT", "https://hooks.example.com/webhook/chat")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 10*time.Minute, cfg.Quota.Window)
	require.Equal(t, 50, cfg.Quota.MaxRequests)
	require.Equal(t, []string{"ping", "healthz"}, cfg.Quota.ExemptActions)
	require.Equal(t, 42*time.Second, cfg.Upstream.Timeout)
	require.Equal(t, "https://frontend.example.com", cfg.CORS.AllowedOrigin)
	require.Equal(t, "https://hooks.example.com/webhook/chat", cfg.Upstream.Routes["chat"])
	require.Equal(t, "redis.internal:6380", cfg.Redis.Addr())
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("QUOTA_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_UnknownBackendRejected(t *testing.T) {
	t.Setenv("QUOTA_BACKEND", "etcd")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_BaseURLOverride(t *testing.T) {
	t.Setenv("QUOTA_BACKEND", "memory")
	t.Setenv("UPSTREAM_BASE_URL", "https://hooks.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://hooks.example.com", cfg.Upstream.BaseURL)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("QUOTA_BACKEND", "memory")
	t.Setenv("QUOTA_MAX_REQUESTS", "not-a-number")
	t.Setenv("QUOTA_WINDOW", "sideways")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 60, cfg.Quota.MaxRequests)
	require.Equal(t, 24*time.Hour, cfg.Quota.Window)
}
