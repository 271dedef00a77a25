package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "http://localhost:8181", cfg.BackendURL)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3*time.Second, cfg.ToastTTL)
	assert.Equal(t, "./data/checkout.db", cfg.CheckoutLogPath)
	assert.Equal(t, 10, cfg.AuthRateBurst)
	assert.False(t, cfg.TrustProxyHeaders, "forwarded headers are ignored unless enabled")
	assert.False(t, cfg.MemoryBackend())
	assert.True(t, cfg.PaymentLimitAmount().IsZero())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("BACKEND_URL", "memory")
	t.Setenv("TOAST_TTL", "5s")
	t.Setenv("PAYMENT_LIMIT", "500")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.MemoryBackend())
	assert.Equal(t, 5*time.Second, cfg.ToastTTL)
	assert.Equal(t, "500", cfg.PaymentLimitAmount().String())
	assert.True(t, cfg.TracingEnabled)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("REDIS_ADDR=cache:6379\n"), 0o600))
	t.Setenv("REDIS_ADDR", "")
	require.NoError(t, os.Unsetenv("REDIS_ADDR"))

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "relative backend", key: "BACKEND_URL", val: "localhost:8181"},
		{name: "bad port", key: "PORT", val: "70000"},
		{name: "bad limit", key: "PAYMENT_LIMIT", val: "lots"},
		{name: "zero burst", key: "AUTH_RATE_BURST", val: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
