// Package cache memoizes rendered chart documents.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Cache is what the chart renderer memoizes SVG documents behind.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Clear drops every entry, e.g. when the theme changes.
	Clear()
	Size() int
}

// Cleaner is a cache with entries that can expire.
type Cleaner interface {
	CleanExpired() int
}

// Manager sweeps expired entries out of registered caches on a timer.
type Manager struct {
	mu      sync.Mutex
	caches  []Cleaner
	logger  *slog.Logger
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// StartCleanup sweeps every interval until Stop. Later calls are no-ops.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil || interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.stopped = make(chan struct{})
	go m.sweep(ctx, interval, m.stopped)
}

func (m *Manager) sweep(ctx context.Context, interval time.Duration, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.CleanAll(); n > 0 {
				m.logger.Debug("Expired cache entries removed", "count", n)
			}
		}
	}
}

// CleanAll expires entries in every registered cache and returns the total.
func (m *Manager) CleanAll() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop ends the sweep and waits for it. Safe to call more than once, and
// before StartCleanup.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel, stopped := m.cancel, m.stopped
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}
