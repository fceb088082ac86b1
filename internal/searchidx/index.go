// Package searchidx adapts the Elasticsearch engine: upsert-by-id indexing
// of entity projections and request/response plumbing for queries. Ranking
// is entirely the engine's business.
package searchidx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/domain"
)

// Index is the search-index adapter.
type Index struct {
	client *elasticsearch.Client
	prefix string
	logger *zap.Logger
}

// New creates a search-index adapter. prefix namespaces the indices so
// several environments can share a cluster.
func New(client *elasticsearch.Client, prefix string, log *zap.Logger) *Index {
	if prefix == "" {
		prefix = "servicepulse"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{client: client, prefix: prefix, logger: log}
}

func (i *Index) ticketIndex() string  { return i.prefix + "-tickets" }
func (i *Index) articleIndex() string { return i.prefix + "-kb-articles" }
func (i *Index) eventIndex() string   { return i.prefix + "-events" }

// IndexTicket upserts a ticket projection keyed by its id.
func (i *Index) IndexTicket(ctx context.Context, doc domain.TicketDocument) error {
	if doc.ID == "" {
		return domain.ErrInvalidPayload
	}
	return i.upsert(ctx, i.ticketIndex(), doc.ID, doc)
}

// IndexArticle upserts an article projection keyed by its id.
func (i *Index) IndexArticle(ctx context.Context, doc domain.ArticleDocument) error {
	if doc.ID == "" {
		return domain.ErrInvalidPayload
	}
	return i.upsert(ctx, i.articleIndex(), doc.ID, doc)
}

// IndexLogEvent appends a system log entry to the observability index.
// Events have no natural id, so the engine assigns one.
func (i *Index) IndexLogEvent(ctx context.Context, entry domain.SystemLogEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "event not serializable", err)
	}

	res, err := i.client.Index(i.eventIndex(), bytes.NewReader(body),
		i.client.Index.WithContext(ctx))
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "event indexing failed", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return domain.NewError(domain.ErrCodeInternal,
			fmt.Sprintf("event indexing returned %s", res.Status()))
	}
	return nil
}

func (i *Index) upsert(ctx context.Context, index, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "document not serializable", err)
	}

	res, err := i.client.Index(index, bytes.NewReader(body),
		i.client.Index.WithDocumentID(id),
		i.client.Index.WithContext(ctx))
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable,
			fmt.Sprintf("indexing into %s failed", index), err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return domain.NewError(domain.ErrCodeInternal,
			fmt.Sprintf("indexing into %s returned %s", index, res.Status()))
	}

	i.logger.Debug("document indexed", zap.String("index", index), zap.String("id", id))
	return nil
}

// HealthCheck probes the cluster and reports its status alongside the
// boolean flag. It never returns an error; failures are captured in the
// result.
func (i *Index) HealthCheck(ctx context.Context) domain.StoreHealth {
	start := time.Now()

	res, err := i.client.Cluster.Health(i.client.Cluster.Health.WithContext(ctx))
	health := domain.StoreHealth{ResponseTimeMs: time.Since(start).Milliseconds()}
	if err != nil {
		health.Error = err.Error()
		return health
	}
	defer res.Body.Close()

	if res.IsError() {
		health.Error = fmt.Sprintf("cluster health returned %s", res.Status())
		return health
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		health.Error = err.Error()
		return health
	}

	health.Healthy = true
	health.ClusterStatus = payload.Status
	return health
}

// Close releases the adapter. The HTTP transport holds no sticky
// connections worth tearing down, so this only marks the handle unusable.
func (i *Index) Close(_ context.Context) error {
	i.client = nil
	return nil
}
