// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr    string
	DBPath        string
	PublicBaseURL string

	// DefaultTenant is nil unless id, secret key and public key are all set.
	DefaultTenant *model.Credential

	PlatformSecretKey string
	SecretKey         []byte // 32-byte AES-256 key for secrets at rest; nil when unset.
	AdminToken        string

	CORSOrigins       []string
	PostMessageOrigin string
	RemoteTimeout     time.Duration // per remote call
	RequestTimeout    time.Duration // per checkout request, across all its remote calls
	EventLogLimit     int

	LogFile  string
	LogLevel slog.Level
}

// writeMargin is the time left after RequestTimeout to write the error body.
const writeMargin = 10 * time.Second

// WriteTimeout is the HTTP server write timeout. It outlasts RequestTimeout so
// a request that hits its deadline still gets a JSON error response.
func (c *Config) WriteTimeout() time.Duration {
	return c.RequestTimeout + writeMargin
}

// HasDefaultTenant reports whether a default tenant is configured.
func (c *Config) HasDefaultTenant() bool {
	return c.DefaultTenant != nil
}

// Load reads configuration from CHECKOUTRELAY_* environment variables and
// returns a validated Config. Every variable is optional; see the defaults
// below. The default tenant is all-or-nothing: setting only some of its id,
// secret key and public key is an error.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:        envOr("CHECKOUTRELAY_LISTEN_ADDR", "127.0.0.1:4242"),
		DBPath:            envOr("CHECKOUTRELAY_DB_PATH", "checkoutrelay.db"),
		PublicBaseURL:     strings.TrimSuffix(envOr("CHECKOUTRELAY_PUBLIC_BASE_URL", "http://localhost:4242"), "/"),
		PlatformSecretKey: os.Getenv("CHECKOUTRELAY_PLATFORM_SECRET_KEY"),
		AdminToken:        os.Getenv("CHECKOUTRELAY_ADMIN_TOKEN"),
		PostMessageOrigin: envOr("CHECKOUTRELAY_POST_MESSAGE_ORIGIN", "*"),
		LogFile:           os.Getenv("CHECKOUTRELAY_LOG_FILE"),
		RemoteTimeout:     15 * time.Second,
		RequestTimeout:    30 * time.Second,
		LogLevel:          slog.LevelInfo,
	}

	defaultTenant, err := loadDefaultTenant()
	if err != nil {
		return nil, err
	}
	cfg.DefaultTenant = defaultTenant

	if v, ok := os.LookupEnv("CHECKOUTRELAY_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("CHECKOUTRELAY_SECRET_KEY must be hex-encoded: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("CHECKOUTRELAY_SECRET_KEY must decode to 32 bytes, got %d", len(key))
		}
		cfg.SecretKey = key
	}

	if err := positiveDuration("CHECKOUTRELAY_REMOTE_TIMEOUT", &cfg.RemoteTimeout); err != nil {
		return nil, err
	}
	if err := positiveDuration("CHECKOUTRELAY_REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv("CHECKOUTRELAY_EVENT_LOG_LIMIT"); ok && v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("CHECKOUTRELAY_EVENT_LOG_LIMIT must be a non-negative integer, got %q", v)
		}
		cfg.EventLogLimit = limit
	}

	if v, ok := os.LookupEnv("CHECKOUTRELAY_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("CHECKOUTRELAY_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	cfg.CORSOrigins = splitList(envOr("CHECKOUTRELAY_CORS_ORIGINS", "http://localhost:4200"))

	return cfg, nil
}

func loadDefaultTenant() (*model.Credential, error) {
	cred := model.Credential{
		TenantID:  os.Getenv("CHECKOUTRELAY_DEFAULT_TENANT_ID"),
		SecretKey: os.Getenv("CHECKOUTRELAY_DEFAULT_TENANT_SECRET_KEY"),
		PublicKey: os.Getenv("CHECKOUTRELAY_DEFAULT_TENANT_PUBLIC_KEY"),
		AccountID: os.Getenv("CHECKOUTRELAY_DEFAULT_TENANT_ACCOUNT_ID"),
	}

	if cred.TenantID == "" && cred.SecretKey == "" && cred.PublicKey == "" {
		return nil, nil
	}
	if !cred.Complete() {
		return nil, errors.New("CHECKOUTRELAY_DEFAULT_TENANT_ID, CHECKOUTRELAY_DEFAULT_TENANT_SECRET_KEY and CHECKOUTRELAY_DEFAULT_TENANT_PUBLIC_KEY must be set together")
	}
	return &cred, nil
}

// positiveDuration overwrites *dst with the duration in key, when set.
func positiveDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	if parsed <= 0 {
		return fmt.Errorf("%s must be positive, got %s", key, parsed)
	}
	*dst = parsed
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	out := []string{}
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
