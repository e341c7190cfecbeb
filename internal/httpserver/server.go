// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package httpserver runs an http.Handler on its own listener with the
// Start/Stop lifecycle used by the API and the observability endpoints.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/samber/oops"
)

// Timeouts bounds each phase of a connection. Zero values disable the
// corresponding limit.
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

// Server serves one handler. It may be restarted after Stop.
type Server struct {
	name     string
	addr     string
	handler  http.Handler
	timeouts Timeouts
	logger   *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
}

// New creates a Server named name (used in logs and errors) for handler
// on addr ("host:port", port 0 picks a free one). A nil logger uses
// slog.Default().
func New(name, addr string, handler http.Handler, timeouts Timeouts, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		name:     name,
		addr:     addr,
		handler:  handler,
		timeouts: timeouts,
		logger:   logger.With("server", name),
	}
}

// Start binds the listener and serves in the background. The returned
// channel receives an unexpected serve error, if any, and is closed when
// serving ends. Callers should watch it to notice a dead server.
func (s *Server) Start() (<-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return nil, oops.Code("HTTP_SERVER_RUNNING").With("server", s.name).Errorf("%s server already running", s.name)
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, oops.Code("HTTP_LISTEN_FAILED").With("server", s.name).With("addr", s.addr).Wrap(err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.timeouts.ReadHeader,
		ReadTimeout:       s.timeouts.Read,
		WriteTimeout:      s.timeouts.Write,
		IdleTimeout:       s.timeouts.Idle,
	}
	s.listener = listener
	s.srv = srv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("serve failed", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop drains in-flight requests until ctx is done. Stopping a server that
// is not running is a no-op. If draining fails the server counts as still
// running so Stop can be retried.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		s.mu.Lock()
		if s.srv == nil {
			s.srv = srv
		}
		s.mu.Unlock()
		return oops.Code("HTTP_SHUTDOWN_FAILED").With("server", s.name).Wrap(err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Addr returns the address last bound by Start, or "" if Start never
// succeeded.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
