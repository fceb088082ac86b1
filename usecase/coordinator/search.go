package coordinator

import (
	"context"
	"time"

	"github.com/servicepulse/datalayer/domain"
	"github.com/servicepulse/datalayer/internal/outbox"
)

// SearchTickets queries the ticket index and records one search-query and
// one API-usage analytics entry for the call. A query failure is returned
// to the caller: search has no degraded mode.
func (c *Coordinator) SearchTickets(ctx context.Context, query string, filters domain.SearchFilters, opts domain.SearchOptions, audit *domain.AuditContext) (*domain.SearchResult, error) {
	return c.searchAndLog(ctx, "tickets", "/search/tickets", query, filters, opts, audit, func(ctx context.Context) (*domain.SearchResult, error) {
		return c.search.SearchTickets(ctx, query, filters, opts)
	})
}

// SearchArticles queries the knowledge-base index with the same analytics
// contract as SearchTickets.
func (c *Coordinator) SearchArticles(ctx context.Context, query string, filters domain.SearchFilters, opts domain.SearchOptions, audit *domain.AuditContext) (*domain.SearchResult, error) {
	return c.searchAndLog(ctx, "knowledge_base", "/search/knowledge-base", query, filters, opts, audit, func(ctx context.Context) (*domain.SearchResult, error) {
		return c.search.SearchArticles(ctx, query, filters, opts)
	})
}

func (c *Coordinator) searchAndLog(ctx context.Context, searchContext, endpoint, query string, filters domain.SearchFilters, opts domain.SearchOptions, audit *domain.AuditContext, run func(ctx context.Context) (*domain.SearchResult, error)) (*domain.SearchResult, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	ctx = withAudit(ctx, audit)
	actor := domain.AuditContextFrom(ctx)

	start := time.Now()
	result, err := run(ctx)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		c.reportSecondaryFailure(ctx, "search_"+searchContext, err, map[string]any{"query": query})
		return nil, err
	}

	queryEntry := domain.SearchQueryLogEntry{
		Query:          query,
		UserID:         actor.ActorID,
		ResultCount:    len(result.Hits),
		ResponseTimeMs: elapsed,
		Context:        searchContext,
	}
	if logErr := c.logs.LogSearch(ctx, queryEntry); logErr != nil {
		c.reportSecondaryFailure(ctx, "logSearch", logErr, map[string]any{"query": query})
		c.deferToOutbox(outbox.KindSearchQueryLog, queryEntry)
	}

	usageEntry := domain.APIUsageLogEntry{
		Endpoint:       endpoint,
		Method:         "GET",
		UserID:         actor.ActorID,
		ResponseTimeMs: elapsed,
		Details: map[string]any{
			"query":        query,
			"result_count": len(result.Hits),
			"total":        result.Total,
		},
	}
	if logErr := c.logs.LogAPIUsage(ctx, usageEntry); logErr != nil {
		c.reportSecondaryFailure(ctx, "logApiUsage", logErr, map[string]any{"endpoint": endpoint})
		c.deferToOutbox(outbox.KindAPIUsageLog, usageEntry)
	}

	return result, nil
}
