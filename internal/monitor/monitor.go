// Package monitor caches the coordinator's health fan-out on an interval
// so the host's health endpoint answers without probing three stores per
// request.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/domain"
)

// HealthSource is the slice of the coordinator the monitor polls.
type HealthSource interface {
	HealthStatus(ctx context.Context) domain.HealthStatus
}

// Monitor periodically refreshes a cached HealthStatus snapshot.
type Monitor struct {
	source   HealthSource
	interval time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	status domain.HealthStatus

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a monitor polling source every interval.
func New(source HealthSource, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		source:   source,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the polling loop.
func (m *Monitor) Start() {
	go m.loop()
}

// Stop terminates the polling loop. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether every store answered the last probe.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy()
}

// Status returns the last cached snapshot.
func (m *Monitor) Status() domain.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	status := m.source.HealthStatus(ctx)
	if !status.Healthy() {
		m.logger.Warn("store health degraded",
			zap.Bool("relational", status.Relational.Healthy),
			zap.Bool("document", status.Document.Healthy),
			zap.Bool("search", status.Search.Healthy))
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}
