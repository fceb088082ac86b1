package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/domain"
)

type fakeIndexTarget struct {
	healthy  bool
	indexErr error
	tickets  []domain.TicketDocument
	articles []domain.ArticleDocument
}

func (f *fakeIndexTarget) IndexTicket(ctx context.Context, doc domain.TicketDocument) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.tickets = append(f.tickets, doc)
	return nil
}

func (f *fakeIndexTarget) IndexArticle(ctx context.Context, doc domain.ArticleDocument) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.articles = append(f.articles, doc)
	return nil
}

func (f *fakeIndexTarget) HealthCheck(ctx context.Context) domain.StoreHealth {
	return domain.StoreHealth{Healthy: f.healthy}
}

type fakeLogTarget struct {
	healthy   bool
	appendErr error
	activity  []domain.ActivityLogEntry
	audit     []domain.AuditLogEntry
	system    []domain.SystemLogEntry
	searches  []domain.SearchQueryLogEntry
	apiUsage  []domain.APIUsageLogEntry
}

func (f *fakeLogTarget) LogUserActivity(ctx context.Context, entry domain.ActivityLogEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.activity = append(f.activity, entry)
	return nil
}

func (f *fakeLogTarget) LogAudit(ctx context.Context, entry domain.AuditLogEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.audit = append(f.audit, entry)
	return nil
}

func (f *fakeLogTarget) LogSystem(ctx context.Context, entry domain.SystemLogEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.system = append(f.system, entry)
	return nil
}

func (f *fakeLogTarget) LogSearch(ctx context.Context, entry domain.SearchQueryLogEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.searches = append(f.searches, entry)
	return nil
}

func (f *fakeLogTarget) LogAPIUsage(ctx context.Context, entry domain.APIUsageLogEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.apiUsage = append(f.apiUsage, entry)
	return nil
}

func (f *fakeLogTarget) HealthCheck(ctx context.Context) domain.StoreHealth {
	return domain.StoreHealth{Healthy: f.healthy}
}

func newTestProcessor(t *testing.T, index *fakeIndexTarget, logs *fakeLogTarget) *Processor {
	t.Helper()
	return NewProcessor(openTestStore(t), index, logs, zap.NewNop(), ProcessorConfig{
		Interval:   time.Minute,
		BatchSize:  10,
		MaxRetries: 3,
	})
}

func TestDrainReplaysPendingWrites(t *testing.T) {
	index := &fakeIndexTarget{healthy: true}
	logs := &fakeLogTarget{healthy: true}
	p := newTestProcessor(t, index, logs)

	require.NoError(t, p.Defer(KindTicketDocument, domain.TicketDocument{ID: "t1", Title: "broken printer"}))
	require.NoError(t, p.Defer(KindActivityLog, domain.ActivityLogEntry{UserID: "u1", Action: "ticket_created"}))

	require.NoError(t, p.Drain(context.Background()))

	require.Len(t, index.tickets, 1)
	assert.Equal(t, "t1", index.tickets[0].ID)
	require.Len(t, logs.activity, 1)
	assert.Equal(t, "ticket_created", logs.activity[0].Action)
	assert.Zero(t, p.Size())
}

func TestDrainSkipsUnhealthyTarget(t *testing.T) {
	index := &fakeIndexTarget{healthy: false}
	logs := &fakeLogTarget{healthy: true}
	p := newTestProcessor(t, index, logs)

	require.NoError(t, p.Defer(KindTicketDocument, domain.TicketDocument{ID: "t1"}))
	require.NoError(t, p.Defer(KindSystemLog, domain.SystemLogEntry{Message: "hello"}))

	require.NoError(t, p.Drain(context.Background()))

	// the index item stays queued for a later drain; the log item replays
	assert.Empty(t, index.tickets)
	require.Len(t, logs.system, 1)
	assert.Equal(t, 1, p.Size())
}

func TestDrainDropsAfterMaxRetries(t *testing.T) {
	index := &fakeIndexTarget{healthy: true, indexErr: errors.New("mapping rejected")}
	logs := &fakeLogTarget{healthy: true}
	p := newTestProcessor(t, index, logs)

	require.NoError(t, p.Defer(KindArticleDocument, domain.ArticleDocument{ID: "a1"}))

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Drain(context.Background()))
	}

	assert.Zero(t, p.Size(), "item should be dropped once retries are exhausted")
}

func TestDrainRejectsUnknownKind(t *testing.T) {
	index := &fakeIndexTarget{healthy: true}
	logs := &fakeLogTarget{healthy: true}
	p := newTestProcessor(t, index, logs)

	require.NoError(t, p.store.Enqueue(Item{Kind: "bogus", Payload: json.RawMessage(`{}`)}))

	require.NoError(t, p.Drain(context.Background()))

	// unknown kinds burn retries instead of wedging the queue
	assert.Equal(t, 1, p.Size())
	items, err := p.store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Retries)
}

func TestDeferMarshalsPayload(t *testing.T) {
	p := newTestProcessor(t, &fakeIndexTarget{healthy: true}, &fakeLogTarget{healthy: true})

	require.NoError(t, p.Defer(KindAuditLog, domain.AuditLogEntry{UserID: "u2", Action: "users_update"}))

	items, err := p.store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var entry domain.AuditLogEntry
	require.NoError(t, json.Unmarshal(items[0].Payload, &entry))
	assert.Equal(t, "users_update", entry.Action)
}
