// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/config"
	"github.com/holomush/accounts/internal/httpapi"
	"github.com/holomush/accounts/internal/logging"
	"github.com/holomush/accounts/internal/observability"
	"github.com/holomush/accounts/internal/user"
	userpostgres "github.com/holomush/accounts/internal/user/postgres"
	"github.com/holomush/accounts/pkg/errutil"
)

const serviceName = "accounts"

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var printConfig bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the accounts API server",
		Long: `Start the REST API together with the metrics and health server.
Configuration is read from the config file, then flags, then the
environment (DATABASE_URL, JWT_SECRET, REDIS_URL, ACCOUNTS_ADDR,
CORS_ORIGINS).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if printConfig {
				return writeYAML(cmd.OutOrStdout(), cfg.Redacted())
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().BoolVar(&printConfig, "print-config", false, "print the effective configuration (secrets redacted) and exit")

	return cmd
}

// runServeWithDeps starts the service with injectable dependencies and
// blocks until a signal arrives, ctx is cancelled or a server fails.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := cfg.Validate(); err != nil {
		return oops.Wrapf(err, "invalid configuration")
	}

	logger := logging.New(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
		Output:  deps.LogOutput,
	})
	slog.SetDefault(logger)

	logger.Info("starting accounts service",
		"addr", cfg.Addr,
		"metrics_addr", cfg.MetricsAddr,
		"password_hasher", cfg.PasswordHasher,
		"log_format", cfg.LogFormat,
		"log_level", cfg.LogLevel,
	)

	db, err := deps.DatabaseFactory(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Wrapf(err, "connect to database")
	}
	defer db.Close()
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		if err := migrateUp(deps, cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}

	hasher, err := auth.NewHasher(cfg.PasswordHasher)
	if err != nil {
		return err
	}
	tokens, err := auth.NewJWTIssuer(auth.JWTConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.TokenIssuer,
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		return err
	}

	users := user.NewService(userpostgres.NewRepository(db), logger)
	authService := auth.NewService(users, hasher, tokens, logger)

	limiter, err := deps.LimiterFactory(ctx, cfg.RedisURL, logger)
	if err != nil {
		return oops.Wrapf(err, "create rate limiter")
	}
	defer func() {
		if closeErr := limiter.Close(); closeErr != nil {
			logger.Warn("error closing rate limiter", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var metrics *observability.Metrics
	var obsServer ObservabilityServer
	if cfg.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.MetricsAddr, db.Ping, logger)
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return oops.Wrapf(err, "start observability server")
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability", logger)
		metrics = obsServer.Metrics()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	router, err := httpapi.NewRouter(httpapi.Options{
		Auth:            authService,
		Users:           users,
		Tokens:          tokens,
		Limiter:         limiter,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
		CORSOrigins:     cfg.Origins(),
		Metrics:         metrics,
		Logger:          logger,
	})
	if err != nil {
		stopServer(obsServer, cfg, "observability", logger)
		return err
	}

	api := deps.APIServerFactory(cfg.Addr, router, logger)
	apiErrCh, err := api.Start()
	if err != nil {
		stopServer(obsServer, cfg, "observability", logger)
		return oops.Wrapf(err, "start API server")
	}
	go monitorServerErrors(ctx, cancel, apiErrCh, "api", logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("accounts service started")
	logger.Info("accounts service ready", "addr", api.Addr())

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")
	stopServer(api, cfg, "api", logger)
	stopServer(obsServer, cfg, "observability", logger)
	logger.Info("shutdown complete")
	return nil
}

func migrateUp(deps *ServeDeps, databaseURL string, logger *slog.Logger) error {
	m, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return oops.Wrapf(err, "create migrator")
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			errutil.LogError(context.Background(), logger, "error closing migrator", closeErr)
		}
	}()

	if err := m.Up(); err != nil {
		return oops.Wrapf(err, "apply migrations")
	}
	version, _, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info("database schema up to date", "version", version)
	return nil
}

// stopServer stops srv within the configured shutdown timeout. A nil srv
// is skipped.
func stopServer(srv Server, cfg *config.Config, name string, logger *slog.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Warn("error stopping server", "server", name, "error", err)
	}
}

// monitorServerErrors cancels ctx when a server reports an error. It
// returns when the channel closes or ctx is done.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			errutil.LogError(ctx, logger, "server error, triggering shutdown", err, "server", serverName)
			cancel()
		}
	case <-ctx.Done():
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return oops.Wrapf(err, "encode yaml")
	}
	return enc.Close()
}
