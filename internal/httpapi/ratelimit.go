// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"context"
	"sync"
	"time"
)

const (
	defaultRateWindow = time.Minute
	rateSweepInterval = 5 * time.Minute
)

// Decision is the outcome of one Limiter.Allow call.
type Decision struct {
	Allowed bool
	// Count is the number of requests seen in the current window,
	// including this one.
	Count int
	// Reset is when the current window ends.
	Reset time.Time
}

// Limiter is a fixed-window request counter.
type Limiter interface {
	// Allow counts one request under key. A limit <= 0 allows everything.
	Allow(ctx context.Context, key string, limit int, window time.Duration) Decision
	Close() error
}

type rateWindow struct {
	count int
	end   time.Time
}

// MemoryLimiter counts requests in process. Expired windows are swept in
// the background until Close.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]rateWindow
	now     func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewMemoryLimiter creates a MemoryLimiter and starts its sweeper.
func NewMemoryLimiter() *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string]rateWindow),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go l.sweepLoop(rateSweepInterval)
	return l
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = defaultRateWindow
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.end) {
		w = rateWindow{count: 1, end: now.Add(window)}
		l.windows[key] = w
		return Decision{Allowed: true, Count: w.count, Reset: w.end}
	}
	if w.count >= limit {
		return Decision{Allowed: false, Count: w.count, Reset: w.end}
	}
	w.count++
	l.windows[key] = w
	return Decision{Allowed: true, Count: w.count, Reset: w.end}
}

// Close stops the sweeper and waits for it to exit.
func (l *MemoryLimiter) Close() error {
	l.once.Do(func() {
		close(l.stop)
	})
	<-l.done
	return nil
}

func (l *MemoryLimiter) sweepLoop(interval time.Duration) {
	defer close(l.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops windows that have ended.
func (l *MemoryLimiter) sweep() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if !now.Before(w.end) {
			delete(l.windows, key)
		}
	}
}

func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
