package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	sqliteadapter "github.com/ericfisherdev/checkoutrelay/internal/adapter/driven/sqlite"
	stripeadapter "github.com/ericfisherdev/checkoutrelay/internal/adapter/driven/stripe"
	httphandler "github.com/ericfisherdev/checkoutrelay/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/checkoutrelay/internal/adapter/driving/web"
	"github.com/ericfisherdev/checkoutrelay/internal/application"
	"github.com/ericfisherdev/checkoutrelay/internal/config"
	"github.com/ericfisherdev/checkoutrelay/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Logger: stdout, plus a rotating JSON file when configured.
	logger, logCloser := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	defer func() { _ = logCloser.Close() }()
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"public_base_url", cfg.PublicBaseURL,
		"default_tenant", cfg.HasDefaultTenant(),
		"encryption_at_rest", cfg.SecretKey != nil,
		"admin_guard", cfg.AdminToken != "",
		"account_linking", cfg.PlatformSecretKey != "",
		"remote_timeout", cfg.RemoteTimeout,
		"request_timeout", cfg.RequestTimeout,
	)
	if cfg.AdminToken == "" {
		logger.Warn("CHECKOUTRELAY_ADMIN_TOKEN not set: /examine exposes stored secret keys without authentication")
	}

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Info("database opened", "path", db.Path())

	// 5. Run migrations on writer connection.
	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	logger.Info("migrations complete", "schema_version", version)

	// 6. Wire adapters.
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	stripeOpts := stripeadapter.Options{Timeout: cfg.RemoteTimeout, Logger: logger}
	gatewayFactory := stripeadapter.NewGatewayFactory(stripeOpts)
	linker := stripeadapter.NewAccountLinker(cfg.PlatformSecretKey, stripeOpts)

	// 7. Tenant registry, seeded with the configured default tenant.
	events := application.NewEventLog(cfg.EventLogLimit, logger)
	clientCache := application.NewClientCache()
	registry := application.NewTenantRegistry(
		credentialStore,
		clientCache,
		gatewayFactory,
		cfg.DefaultTenant,
		events,
		logger,
	)
	if err := registry.Seed(ctx); err != nil {
		return err
	}
	if cfg.HasDefaultTenant() {
		logger.Info("default tenant seeded", "tenant_id", cfg.DefaultTenant.TenantID)
	}

	// 8. Application services.
	checkoutSvc := application.NewCheckoutService(registry, cfg.PublicBaseURL, events, logger,
		application.WithRequestTimeout(cfg.RequestTimeout))
	authSvc := application.NewAuthService(registry, linker, events, logger)
	healthSvc := application.NewHealthService(credentialStore, clientCache, events)

	// 9. Create HTTP handlers and register routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(checkoutSvc, authSvc, healthSvc, logger))

	webHandler := webhandler.NewHandler(authSvc, registry, events, webhandler.Options{
		AdminToken:        cfg.AdminToken,
		PostMessageOrigin: cfg.PostMessageOrigin,
	}, logger)
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, logger, httphandler.MiddlewareOptions{
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// 10. Wait for shutdown signal.
	<-ctx.Done()
	logger.Info("shutting down")

	// 11. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
