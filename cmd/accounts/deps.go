// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/holomush/accounts/internal/httpapi"
	"github.com/holomush/accounts/internal/observability"
	"github.com/holomush/accounts/internal/store"
	userpostgres "github.com/holomush/accounts/internal/user/postgres"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// DatabaseFactory opens the connection pool.
	// Default: store.Connect
	DatabaseFactory func(ctx context.Context, url string) (Database, error)

	// MigratorFactory creates a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (Migrator, error)

	// LimiterFactory creates the register/login rate limiter. An empty
	// redisURL selects the in-process limiter.
	// Default: httpapi.NewRedisLimiter or httpapi.NewMemoryLimiter
	LimiterFactory func(ctx context.Context, redisURL string, logger *slog.Logger) (httpapi.Limiter, error)

	// ObservabilityServerFactory creates the metrics and health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer

	// APIServerFactory creates the HTTP server for the API.
	// Default: httpapi.NewServer
	APIServerFactory func(addr string, handler http.Handler, logger *slog.Logger) Server

	// LogOutput receives the service logs.
	// Default: os.Stderr
	LogOutput io.Writer
}

// Database is the connection pool used by serve. *pgxpool.Pool
// implements it.
type Database interface {
	userpostgres.Pool
	Ping(ctx context.Context) error
	Close()
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Status() (*store.Status, error)
	Close() error
}

// Server is the httpserver.Server lifecycle.
type Server interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Server
	Metrics() *observability.Metrics
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	if d == nil {
		d = &ServeDeps{}
	}
	if d.DatabaseFactory == nil {
		d.DatabaseFactory = func(ctx context.Context, url string) (Database, error) {
			return store.Connect(ctx, url, store.ConnectOptions{})
		}
	}
	if d.MigratorFactory == nil {
		d.MigratorFactory = newStoreMigrator
	}
	if d.LimiterFactory == nil {
		d.LimiterFactory = func(ctx context.Context, redisURL string, logger *slog.Logger) (httpapi.Limiter, error) {
			if redisURL == "" {
				return httpapi.NewMemoryLimiter(), nil
			}
			return httpapi.NewRedisLimiter(ctx, redisURL, logger)
		}
	}
	if d.ObservabilityServerFactory == nil {
		d.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, ready, logger)
		}
	}
	if d.APIServerFactory == nil {
		d.APIServerFactory = func(addr string, handler http.Handler, logger *slog.Logger) Server {
			return httpapi.NewServer(addr, handler, logger)
		}
	}
	return d
}

func newStoreMigrator(url string) (Migrator, error) {
	return store.NewMigrator(url)
}
