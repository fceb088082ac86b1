// Package coordinator keeps the three backing stores usefully consistent
// without distributed transactions: the relational store is the source of
// truth, the search index and the document logs are best-effort fan-out.
package coordinator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/servicepulse/datalayer/domain"
	"github.com/servicepulse/datalayer/internal/config"
	"github.com/servicepulse/datalayer/internal/degraded"
	"github.com/servicepulse/datalayer/internal/doclog"
	elasticInfra "github.com/servicepulse/datalayer/internal/infrastructure/elastic"
	pgInfra "github.com/servicepulse/datalayer/internal/infrastructure/postgres"
	redisInfra "github.com/servicepulse/datalayer/internal/infrastructure/redis"
	"github.com/servicepulse/datalayer/internal/outbox"
	"github.com/servicepulse/datalayer/internal/relational"
	"github.com/servicepulse/datalayer/internal/searchidx"
	"github.com/servicepulse/datalayer/usecase"
)

type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
	stateClosed
)

// ErrClosed is returned by operations invoked after Shutdown.
var ErrClosed = domain.NewError(domain.ErrCodeUnavailable, "coordinator is shut down")

// dialFunc connects the three adapters. Separated out so tests and hosts
// can inject fakes without touching lazy-initialization mechanics.
type dialFunc func(ctx context.Context) (usecase.RelationalStore, usecase.LogStore, usecase.SearchIndex, error)

// Coordinator is the public facade of the multi-store data layer. It is
// safe for concurrent use; the only synchronization point it introduces is
// the lazy-initialization guard.
type Coordinator struct {
	mu       sync.Mutex
	state    state
	initDone chan struct{}

	dial   dialFunc
	rel    usecase.RelationalStore
	logs   usecase.LogStore
	search usecase.SearchIndex
	policy *degraded.Policy

	outbox        *outbox.Processor
	logger        *zap.Logger
	healthTimeout time.Duration

	shutdownOnce sync.Once
}

// New builds a coordinator that lazily dials the stores described by cfg
// on first use.
func New(cfg *config.Config, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Coordinator{
		logger:        logger,
		healthTimeout: cfg.Context.HealthCheckTimeout,
	}
	c.dial = func(ctx context.Context) (usecase.RelationalStore, usecase.LogStore, usecase.SearchIndex, error) {
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		rel := relational.New(pool, logger)

		redisClient, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		logs := doclog.New(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.MaxStream, logger)

		esClient, err := elasticInfra.NewClient(ctx, cfg.Elastic, logger)
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, nil, nil, err
		}
		search := searchidx.New(esClient, cfg.Elastic.IndexPrefix, logger)

		rel.SetAuditSink(&auditSink{logs: logs, logger: logger})
		return rel, logs, search, nil
	}
	return c
}

// NewWithAdapters builds a coordinator over already-connected adapters.
// Used by tests and by hosts that own adapter construction themselves.
func NewWithAdapters(rel usecase.RelationalStore, logs usecase.LogStore, search usecase.SearchIndex, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		state:         stateReady,
		rel:           rel,
		logs:          logs,
		search:        search,
		policy:        degraded.New(logs, logger),
		logger:        logger,
		healthTimeout: 3 * time.Second,
	}
}

// SetOutbox attaches an optional retry buffer for failed secondary writes.
// Without one, failed side effects are logged and dropped.
func (c *Coordinator) SetOutbox(p *outbox.Processor) {
	c.outbox = p
}

// Initialize connects all three adapters. Idempotent; callers may rely on
// lazy triggering instead. Concurrent callers observe a single attempt and
// wait for its completion.
func (c *Coordinator) Initialize(ctx context.Context) error {
	for {
		c.mu.Lock()
		switch c.state {
		case stateReady:
			c.mu.Unlock()
			return nil

		case stateClosed:
			c.mu.Unlock()
			return ErrClosed

		case stateInitializing:
			done := c.initDone
			c.mu.Unlock()
			select {
			case <-done:
				// attempt finished, re-check the outcome
			case <-ctx.Done():
				return ctx.Err()
			}

		case stateUninitialized:
			c.state = stateInitializing
			c.initDone = make(chan struct{})
			done := c.initDone
			c.mu.Unlock()

			rel, logs, search, err := c.dial(ctx)

			c.mu.Lock()
			// Shutdown may have run while the dial was in flight; the
			// closed state must win, never be overwritten by a late dial.
			closed := c.state == stateClosed
			if closed {
				// keep stateClosed
			} else if err != nil {
				c.state = stateUninitialized
			} else {
				c.rel, c.logs, c.search = rel, logs, search
				c.policy = degraded.New(logs, c.logger)
				c.state = stateReady
			}
			close(done)
			c.mu.Unlock()

			if closed {
				if err == nil {
					if cerr := c.closeAdapters(ctx, rel, logs, search); cerr != nil {
						c.logger.Error("late-dialed adapter teardown failed", zap.Error(cerr))
					}
				}
				c.logger.Info("initialization abandoned, coordinator was shut down mid-dial")
				return ErrClosed
			}
			if err != nil {
				c.logger.Error("store initialization failed", zap.Error(err))
				return domain.WrapError(domain.ErrCodeUnavailable, "store initialization failed", err)
			}
			c.logger.Info("all store adapters initialized")
			return nil
		}
	}
}

// ensureReady triggers lazy initialization when needed.
func (c *Coordinator) ensureReady(ctx context.Context) error {
	c.mu.Lock()
	ready := c.state == stateReady
	c.mu.Unlock()
	if ready {
		return nil
	}
	return c.Initialize(ctx)
}

// LogEvent appends a system log entry; error and warn events are also
// pushed to the observability index. It never fails the caller.
func (c *Coordinator) LogEvent(ctx context.Context, event domain.LogEvent) {
	if err := c.ensureReady(ctx); err != nil {
		c.logger.Error("log event dropped, stores unavailable",
			zap.String("message", event.Message), zap.Error(err))
		return
	}

	if event.Level == "" {
		event.Level = domain.LogLevelInfo
	}
	entry := domain.SystemLogEntry{
		Level:     event.Level,
		Message:   event.Message,
		Source:    event.Source,
		Details:   event.Details,
		Timestamp: time.Now().UTC(),
	}

	if err := c.logs.LogSystem(ctx, entry); err != nil {
		c.logger.Error("system log append failed", zap.Error(err))
		c.deferToOutbox(outbox.KindSystemLog, entry)
	}

	if event.Level == domain.LogLevelError || event.Level == domain.LogLevelWarn {
		if err := c.search.IndexLogEvent(ctx, entry); err != nil {
			c.logger.Error("event indexing failed", zap.Error(err))
		}
	}
}

// Shutdown disconnects all three adapters in parallel. Idempotent: the
// second and later calls are no-ops and never touch the closed clients.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	var result error
	c.shutdownOnce.Do(func() {
		c.mu.Lock()
		wasReady := c.state == stateReady
		c.state = stateClosed
		c.mu.Unlock()

		if !wasReady {
			c.logger.Info("shutdown: coordinator was never initialized")
			return
		}

		// the system log must be appendable, so record completion before
		// the document-store client goes away
		if err := c.logs.LogSystem(ctx, domain.SystemLogEntry{
			Level:   domain.LogLevelInfo,
			Message: "shutdown completed",
			Source:  "coordinator",
		}); err != nil {
			c.logger.Warn("shutdown log append failed", zap.Error(err))
		}

		if err := c.closeAdapters(ctx, c.rel, c.logs, c.search); err != nil {
			c.logger.Error("shutdown failed", zap.Error(err))
			result = err
			return
		}
		c.logger.Info("shutdown completed")
	})
	return result
}

// closeAdapters disconnects the three adapters in parallel.
func (c *Coordinator) closeAdapters(ctx context.Context, rel usecase.RelationalStore, logs usecase.LogStore, search usecase.SearchIndex) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rel.Close(gctx) })
	g.Go(func() error { return logs.Close(gctx) })
	g.Go(func() error { return search.Close(gctx) })
	return g.Wait()
}

// reportSecondaryFailure records a swallowed index/log failure on the
// system log stream (best-effort) and the service log.
func (c *Coordinator) reportSecondaryFailure(ctx context.Context, operation string, cause error, details map[string]any) {
	c.logger.Error("secondary write failed",
		zap.String("operation", operation),
		zap.Error(cause))

	if details == nil {
		details = map[string]any{}
	}
	details["operation"] = operation
	details["error"] = cause.Error()

	if err := c.logs.LogSystem(ctx, domain.SystemLogEntry{
		Level:   domain.LogLevelError,
		Message: "secondary write failed",
		Source:  "coordinator",
		Details: details,
	}); err != nil {
		c.logger.Error("system log append failed", zap.Error(err))
	}
}

// reportPrimaryFailure records a fatal relational failure before it
// propagates to the caller.
func (c *Coordinator) reportPrimaryFailure(ctx context.Context, operation, inputSummary string, cause error) {
	c.logger.Error("primary write failed",
		zap.String("operation", operation),
		zap.String("input", inputSummary),
		zap.Error(cause))

	if err := c.logs.LogSystem(ctx, domain.SystemLogEntry{
		Level:   domain.LogLevelError,
		Message: "primary write failed",
		Source:  "coordinator",
		Details: map[string]any{
			"operation": operation,
			"input":     inputSummary,
			"error":     cause.Error(),
		},
	}); err != nil {
		c.logger.Error("system log append failed", zap.Error(err))
	}
}

func (c *Coordinator) deferToOutbox(kind string, payload any) {
	if c.outbox == nil {
		return
	}
	if err := c.outbox.Defer(kind, payload); err != nil {
		c.logger.Error("outbox enqueue failed", zap.String("kind", kind), zap.Error(err))
	}
}

// NewAuditSink routes sensitive-kind payload capture from the relational
// adapter's middleware onto the audit log stream. Hosts that construct
// adapters themselves wire it via relational.Store.SetAuditSink.
func NewAuditSink(logs usecase.LogStore, logger *zap.Logger) relational.AuditSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &auditSink{logs: logs, logger: logger}
}

// auditSink routes sensitive-kind payload capture from the relational
// adapter's middleware onto the audit log stream.
type auditSink struct {
	logs   usecase.LogStore
	logger *zap.Logger
}

func (s *auditSink) Record(ctx context.Context, kind, operation string, payload any) {
	audit := domain.AuditContextFrom(ctx)
	entry := domain.AuditLogEntry{
		UserID:  audit.ActorID,
		Action:  kind + "_" + operation,
		Changes: map[string]any{"payload": payload},
		IP:      audit.RemoteAddr,
	}
	if err := s.logs.LogAudit(ctx, entry); err != nil {
		s.logger.Error("audit capture failed",
			zap.String("model", kind),
			zap.String("operation", operation),
			zap.Error(err))
	}
}
