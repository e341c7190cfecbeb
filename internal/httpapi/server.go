// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/holomush/accounts/internal/httpserver"
)

var apiTimeouts = httpserver.Timeouts{
	ReadHeader: 10 * time.Second,
	Read:       30 * time.Second,
	Write:      30 * time.Second,
	Idle:       2 * time.Minute,
}

// NewServer returns the listener that serves handler (normally the
// NewRouter engine) on addr.
func NewServer(addr string, handler http.Handler, logger *slog.Logger) *httpserver.Server {
	return httpserver.New("api", addr, handler, apiTimeouts, logger)
}
