// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/observability"
	"github.com/holomush/accounts/internal/store"
)

// fakeMigrator implements Migrator for testing.
type fakeMigrator struct {
	upErr    error
	status   *store.Status
	version  uint
	forceErr error

	upCalls    int
	downCalls  int
	steps      []int
	forced     []int
	closeCalls int
}

func (m *fakeMigrator) Up() error {
	m.upCalls++
	return m.upErr
}

func (m *fakeMigrator) Down() error {
	m.downCalls++
	return nil
}

func (m *fakeMigrator) Steps(n int) error {
	m.steps = append(m.steps, n)
	return nil
}

func (m *fakeMigrator) Version() (uint, bool, error) {
	return m.version, false, nil
}

func (m *fakeMigrator) Force(version int) error {
	m.forced = append(m.forced, version)
	return m.forceErr
}

func (m *fakeMigrator) Status() (*store.Status, error) {
	if m.status == nil {
		return &store.Status{}, nil
	}
	return m.status, nil
}

func (m *fakeMigrator) Close() error {
	m.closeCalls++
	return nil
}

// mockServer implements Server for testing.
type mockServer struct {
	startFunc func() (<-chan error, error)

	mu      sync.Mutex
	stopped bool
}

func (m *mockServer) Start() (<-chan error, error) {
	if m.startFunc != nil {
		return m.startFunc()
	}
	return make(chan error, 1), nil
}

func (m *mockServer) Stop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockServer) Addr() string {
	return "127.0.0.1:3000"
}

func (m *mockServer) wasStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// mockObservabilityServer implements ObservabilityServer for testing.
type mockObservabilityServer struct {
	mockServer
}

func (m *mockObservabilityServer) Metrics() *observability.Metrics {
	return nil
}

// notifyingServer reports the bound address once Start succeeds.
type notifyingServer struct {
	Server
	started chan<- string
}

func (s *notifyingServer) Start() (<-chan error, error) {
	errCh, err := s.Server.Start()
	if err == nil {
		s.started <- s.Server.Addr()
	}
	return errCh, err
}

// notifyingObservabilityServer reports the bound address once Start
// succeeds.
type notifyingObservabilityServer struct {
	ObservabilityServer
	started chan<- string
}

func (s *notifyingObservabilityServer) Start() (<-chan error, error) {
	errCh, err := s.ObservabilityServer.Start()
	if err == nil {
		s.started <- s.ObservabilityServer.Addr()
	}
	return errCh, err
}

// lockedBuffer is a bytes.Buffer safe for concurrent log writes.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newMockCmd creates a command with discarded output.
func newMockCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd
}
