package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every CHECKOUTRELAY_ env var that Load() reads.
var allConfigKeys = []string{
	"CHECKOUTRELAY_LISTEN_ADDR",
	"CHECKOUTRELAY_DB_PATH",
	"CHECKOUTRELAY_PUBLIC_BASE_URL",
	"CHECKOUTRELAY_DEFAULT_TENANT_ID",
	"CHECKOUTRELAY_DEFAULT_TENANT_SECRET_KEY",
	"CHECKOUTRELAY_DEFAULT_TENANT_PUBLIC_KEY",
	"CHECKOUTRELAY_DEFAULT_TENANT_ACCOUNT_ID",
	"CHECKOUTRELAY_PLATFORM_SECRET_KEY",
	"CHECKOUTRELAY_SECRET_KEY",
	"CHECKOUTRELAY_ADMIN_TOKEN",
	"CHECKOUTRELAY_CORS_ORIGINS",
	"CHECKOUTRELAY_POST_MESSAGE_ORIGIN",
	"CHECKOUTRELAY_REMOTE_TIMEOUT",
	"CHECKOUTRELAY_REQUEST_TIMEOUT",
	"CHECKOUTRELAY_EVENT_LOG_LIMIT",
	"CHECKOUTRELAY_LOG_FILE",
	"CHECKOUTRELAY_LOG_LEVEL",
}

// isolateConfigEnv saves and unsets all CHECKOUTRELAY_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4242", cfg.ListenAddr)
	assert.Equal(t, "checkoutrelay.db", cfg.DBPath)
	assert.Equal(t, "http://localhost:4242", cfg.PublicBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 40*time.Second, cfg.WriteTimeout())
	assert.Equal(t, 0, cfg.EventLogLimit)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.CORSOrigins)
	assert.Equal(t, "*", cfg.PostMessageOrigin)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Nil(t, cfg.DefaultTenant)
	assert.False(t, cfg.HasDefaultTenant())
	assert.Nil(t, cfg.SecretKey)
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CHECKOUTRELAY_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("CHECKOUTRELAY_DB_PATH", "/tmp/test.db")
	t.Setenv("CHECKOUTRELAY_PUBLIC_BASE_URL", "https://relay.example/")
	t.Setenv("CHECKOUTRELAY_REMOTE_TIMEOUT", "3s")
	t.Setenv("CHECKOUTRELAY_REQUEST_TIMEOUT", "12s")
	t.Setenv("CHECKOUTRELAY_EVENT_LOG_LIMIT", "500")
	t.Setenv("CHECKOUTRELAY_CORS_ORIGINS", "https://a.example, https://*.elfsight.com")
	t.Setenv("CHECKOUTRELAY_LOG_LEVEL", "debug")
	t.Setenv("CHECKOUTRELAY_ADMIN_TOKEN", "s3cret")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "https://relay.example", cfg.PublicBaseURL)
	assert.Equal(t, 3*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 12*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 22*time.Second, cfg.WriteTimeout())
	assert.Equal(t, 500, cfg.EventLogLimit)
	assert.Equal(t, []string{"https://a.example", "https://*.elfsight.com"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "s3cret", cfg.AdminToken)
}

func TestLoad_DefaultTenant(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CHECKOUTRELAY_DEFAULT_TENANT_ID", "default")
	t.Setenv("CHECKOUTRELAY_DEFAULT_TENANT_SECRET_KEY", "sk_test_default")
	t.Setenv("CHECKOUTRELAY_DEFAULT_TENANT_PUBLIC_KEY", "pk_test_default")
	t.Setenv("CHECKOUTRELAY_DEFAULT_TENANT_ACCOUNT_ID", "acct_1")

	cfg, err := Load()

	require.NoError(t, err)
	require.True(t, cfg.HasDefaultTenant())
	assert.Equal(t, "default", cfg.DefaultTenant.TenantID)
	assert.Equal(t, "sk_test_default", cfg.DefaultTenant.SecretKey)
	assert.Equal(t, "pk_test_default", cfg.DefaultTenant.PublicKey)
	assert.Equal(t, "acct_1", cfg.DefaultTenant.AccountID)
}

func TestLoad_PartialDefaultTenant(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CHECKOUTRELAY_DEFAULT_TENANT_ID", "default")
	t.Setenv("CHECKOUTRELAY_DEFAULT_TENANT_SECRET_KEY", "sk_test_default")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECKOUTRELAY_DEFAULT_TENANT_PUBLIC_KEY")
}

func TestLoad_InvalidRemoteTimeout(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CHECKOUTRELAY_REMOTE_TIMEOUT", "not-a-duration")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECKOUTRELAY_REMOTE_TIMEOUT")
}

func TestLoad_NonPositiveRemoteTimeout(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CHECKOUTRELAY_REMOTE_TIMEOUT", "0s")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
}

func TestLoad_InvalidRequestTimeout(t *testing.T) {
	for _, v := range []string{"soon", "-5s", "0"} {
		t.Run(v, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv("CHECKOUTRELAY_REQUEST_TIMEOUT", v)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "CHECKOUTRELAY_REQUEST_TIMEOUT")
		})
	}
}

func TestLoad_InvalidEventLogLimit(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CHECKOUTRELAY_EVENT_LOG_LIMIT", "-1")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECKOUTRELAY_EVENT_LOG_LIMIT")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CHECKOUTRELAY_LOG_LEVEL", "loud")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECKOUTRELAY_LOG_LEVEL")
}

func TestLoad_SecretKey_Valid(t *testing.T) {
	isolateConfigEnv(t)
	// 64 hex chars = 32 bytes
	t.Setenv("CHECKOUTRELAY_SECRET_KEY", "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Len(t, cfg.SecretKey, 32)
}

func TestLoad_SecretKey_TooShort(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CHECKOUTRELAY_SECRET_KEY", "deadbeef")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECKOUTRELAY_SECRET_KEY")
}

func TestLoad_SecretKey_NotHex(t *testing.T) {
	isolateConfigEnv(t)
	// 64 chars but not valid hex
	t.Setenv("CHECKOUTRELAY_SECRET_KEY", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECKOUTRELAY_SECRET_KEY")
}
