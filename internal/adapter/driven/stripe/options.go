// Package stripe implements the PaymentGateway and AccountLinker ports on the
// stripe-go SDK.
package stripe

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sdk "github.com/stripe/stripe-go/v82"
)

// DefaultTimeout bounds every remote call when Options.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Options configures the SDK backends shared by every tenant handle.
type Options struct {
	// APIURL and ConnectURL override the SDK endpoints; tests point them at an
	// httptest server. Empty means the SDK defaults.
	APIURL     string
	ConnectURL string

	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// newBackends builds the SDK backends. Network retries are disabled: a
// timed-out or failed call is reported to the caller, never retried here.
func newBackends(opts Options) *sdk.Backends {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.timeout()}
	}
	leveled := &slogLeveledLogger{logger: opts.logger().With("component", "stripe")}

	config := func(url string) *sdk.BackendConfig {
		c := &sdk.BackendConfig{
			HTTPClient:        httpClient,
			LeveledLogger:     leveled,
			MaxNetworkRetries: sdk.Int64(0),
		}
		if url != "" {
			c.URL = sdk.String(url)
		}
		return c
	}

	return &sdk.Backends{
		API:     sdk.GetBackendWithConfig(sdk.APIBackend, config(opts.APIURL)),
		Connect: sdk.GetBackendWithConfig(sdk.ConnectBackend, config(opts.ConnectURL)),
		Uploads: sdk.GetBackendWithConfig(sdk.UploadsBackend, config("")),
	}
}

// slogLeveledLogger routes SDK log output through slog.
type slogLeveledLogger struct {
	logger *slog.Logger
}

func (l *slogLeveledLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

func (l *slogLeveledLogger) Infof(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

func (l *slogLeveledLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l *slogLeveledLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
