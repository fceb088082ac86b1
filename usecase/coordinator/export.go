package coordinator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/servicepulse/datalayer/domain"
)

// HealthStatus probes all three stores concurrently and merges the
// per-store results. It never fails: an unreachable store shows up as its
// own unhealthy section, and an initialization failure marks all three.
func (c *Coordinator) HealthStatus(ctx context.Context) domain.HealthStatus {
	status := domain.HealthStatus{CheckedAt: time.Now().UTC()}

	if err := c.ensureReady(ctx); err != nil {
		unavailable := domain.StoreHealth{Error: err.Error()}
		status.Relational = unavailable
		status.Document = unavailable
		status.Search = unavailable
		return status
	}

	probe := func(check func(context.Context) domain.StoreHealth, out *domain.StoreHealth) func() error {
		return func() error {
			probeCtx := ctx
			if c.healthTimeout > 0 {
				var cancel context.CancelFunc
				probeCtx, cancel = context.WithTimeout(ctx, c.healthTimeout)
				defer cancel()
			}
			*out = check(probeCtx)
			return nil
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(probe(c.rel.HealthCheck, &status.Relational))
	g.Go(probe(c.logs.HealthCheck, &status.Document))
	g.Go(probe(c.search.HealthCheck, &status.Search))
	_ = g.Wait()

	return status
}

// Export produces a cross-store snapshot of the requested sections. Every
// section read is best-effort and concurrent: a store that is down or a
// model that is missing yields an empty section, never an aborted export.
func (c *Coordinator) Export(ctx context.Context, opts domain.ExportOptions) (*domain.ExportResult, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}

	result := &domain.ExportResult{
		ExportedAt: time.Now().UTC(),
		Metadata: domain.ExportMetadata{
			Sections: []string{},
			Counts:   map[string]int{},
		},
	}

	var tr *domain.TimeRange
	if opts.TimeRange != nil {
		tr = opts.TimeRange
	}

	var mu sync.Mutex
	markSection := func(name string, count int, err error) {
		mu.Lock()
		defer mu.Unlock()
		result.Metadata.Sections = append(result.Metadata.Sections, name)
		result.Metadata.Counts[name] = count
		if err != nil {
			result.Metadata.Partial = true
			result.Metadata.Failed = append(result.Metadata.Failed, name)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if opts.IncludeUsers {
		g.Go(func() error {
			users, err := c.rel.ListUsers(gctx, tr)
			if err != nil {
				c.reportSecondaryFailure(gctx, "exportUsers", err, nil)
				users = nil
			}
			if users == nil {
				users = []domain.User{}
			}
			result.Users = users
			markSection("users", len(users), err)
			return nil
		})
	}
	if opts.IncludeTickets {
		g.Go(func() error {
			tickets, err := c.rel.ListTickets(gctx, tr)
			if err != nil {
				c.reportSecondaryFailure(gctx, "exportTickets", err, nil)
				tickets = nil
			}
			if tickets == nil {
				tickets = []domain.Ticket{}
			}
			result.Tickets = tickets
			markSection("tickets", len(tickets), err)
			return nil
		})
	}
	if opts.IncludeArticles {
		g.Go(func() error {
			articles, err := c.rel.ListArticles(gctx, tr)
			if err != nil {
				c.reportSecondaryFailure(gctx, "exportKnowledgeBase", err, nil)
				articles = nil
			}
			if articles == nil {
				articles = []domain.Article{}
			}
			result.KnowledgeBase = articles
			markSection("knowledge_base", len(articles), err)
			return nil
		})
	}

	_ = g.Wait()

	level := domain.LogLevelInfo
	message := "export completed"
	if result.Metadata.Partial && len(result.Metadata.Failed) == len(result.Metadata.Sections) {
		level = domain.LogLevelError
		message = "export failed for every requested section"
	}
	if err := c.logs.LogSystem(ctx, domain.SystemLogEntry{
		Level:   level,
		Message: message,
		Source:  "coordinator",
		Details: map[string]any{
			"sections": result.Metadata.Sections,
			"counts":   result.Metadata.Counts,
			"partial":  result.Metadata.Partial,
		},
	}); err != nil {
		c.logger.Error("system log append failed", zap.Error(err))
	}

	return result, nil
}
