package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/domain"
)

// IndexTarget is the slice of the search-index adapter replay needs.
type IndexTarget interface {
	IndexTicket(ctx context.Context, doc domain.TicketDocument) error
	IndexArticle(ctx context.Context, doc domain.ArticleDocument) error
	HealthCheck(ctx context.Context) domain.StoreHealth
}

// LogTarget is the slice of the document-log adapter replay needs.
type LogTarget interface {
	LogUserActivity(ctx context.Context, entry domain.ActivityLogEntry) error
	LogAudit(ctx context.Context, entry domain.AuditLogEntry) error
	LogSystem(ctx context.Context, entry domain.SystemLogEntry) error
	LogSearch(ctx context.Context, entry domain.SearchQueryLogEntry) error
	LogAPIUsage(ctx context.Context, entry domain.APIUsageLogEntry) error
	HealthCheck(ctx context.Context) domain.StoreHealth
}

// ProcessorConfig controls how frequently the outbox is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// Processor replays pending items against their target store on a schedule.
type Processor struct {
	store  *Store
	index  IndexTarget
	logs   LogTarget
	logger *zap.Logger
	cron   *cron.Cron
	cfg    ProcessorConfig
}

// NewProcessor builds a processor draining store into the two targets.
func NewProcessor(store *Store, index IndexTarget, logs LogTarget, logger *zap.Logger, cfg ProcessorConfig) *Processor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Processor{
		store:  store,
		index:  index,
		logs:   logs,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = p.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := p.Drain(ctx); err != nil {
			p.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return p
}

// Start launches the drain scheduler.
func (p *Processor) Start() {
	if p == nil || p.cron == nil {
		return
	}
	p.cron.Start()
	p.logger.Info("outbox processor started")
}

// Stop gracefully stops the scheduler.
func (p *Processor) Stop(ctx context.Context) {
	if p == nil || p.cron == nil {
		return
	}
	stopCtx := p.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	p.logger.Info("outbox processor stopped")
}

// Defer persists a failed secondary write for later replay.
func (p *Processor) Defer(kind string, payload any) error {
	if p == nil || p.store == nil {
		return fmt.Errorf("outbox not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.store.Enqueue(Item{Kind: kind, Payload: body})
}

// Size returns the number of pending items.
func (p *Processor) Size() int {
	if p == nil || p.store == nil {
		return 0
	}
	size, err := p.store.Size()
	if err != nil {
		return 0
	}
	return size
}

// Drain replays pending items synchronously. Items whose target store is
// still unhealthy stay queued untouched; items failing past MaxRetries are
// dropped.
func (p *Processor) Drain(ctx context.Context) error {
	if p == nil || p.store == nil {
		return nil
	}

	items, err := p.store.GetBatch(p.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	indexOK := p.index != nil && p.index.HealthCheck(ctx).Healthy
	logsOK := p.logs != nil && p.logs.HealthCheck(ctx).Healthy

	for _, item := range items {
		if isIndexKind(item.Kind) && !indexOK {
			continue
		}
		if !isIndexKind(item.Kind) && !logsOK {
			continue
		}

		if err := p.replay(ctx, item); err != nil {
			p.logger.Error("outbox replay failed",
				zap.String("item_id", item.ID),
				zap.String("kind", item.Kind),
				zap.Error(err))

			item.Retries++
			if item.Retries >= p.cfg.MaxRetries {
				p.logger.Warn("dropping outbox item (max retries reached)", zap.String("item_id", item.ID))
				_ = p.store.Remove(item)
				continue
			}
			if err := p.store.Remove(item); err != nil {
				p.logger.Warn("failed to remove outbox item", zap.Error(err))
			}
			if err := p.store.Requeue(item); err != nil {
				p.logger.Error("failed to requeue outbox item", zap.Error(err))
			}
			continue
		}

		if err := p.store.Remove(item); err != nil {
			p.logger.Warn("failed to purge replayed outbox item", zap.Error(err))
		}
	}
	return nil
}

func isIndexKind(kind string) bool {
	return kind == KindTicketDocument || kind == KindArticleDocument
}

func (p *Processor) replay(ctx context.Context, item Item) error {
	switch item.Kind {
	case KindTicketDocument:
		var doc domain.TicketDocument
		if err := json.Unmarshal(item.Payload, &doc); err != nil {
			return err
		}
		return p.index.IndexTicket(ctx, doc)

	case KindArticleDocument:
		var doc domain.ArticleDocument
		if err := json.Unmarshal(item.Payload, &doc); err != nil {
			return err
		}
		return p.index.IndexArticle(ctx, doc)

	case KindActivityLog:
		var entry domain.ActivityLogEntry
		if err := json.Unmarshal(item.Payload, &entry); err != nil {
			return err
		}
		return p.logs.LogUserActivity(ctx, entry)

	case KindAuditLog:
		var entry domain.AuditLogEntry
		if err := json.Unmarshal(item.Payload, &entry); err != nil {
			return err
		}
		return p.logs.LogAudit(ctx, entry)

	case KindSystemLog:
		var entry domain.SystemLogEntry
		if err := json.Unmarshal(item.Payload, &entry); err != nil {
			return err
		}
		return p.logs.LogSystem(ctx, entry)

	case KindSearchQueryLog:
		var entry domain.SearchQueryLogEntry
		if err := json.Unmarshal(item.Payload, &entry); err != nil {
			return err
		}
		return p.logs.LogSearch(ctx, entry)

	case KindAPIUsageLog:
		var entry domain.APIUsageLogEntry
		if err := json.Unmarshal(item.Payload, &entry); err != nil {
			return err
		}
		return p.logs.LogAPIUsage(ctx, entry)

	default:
		return fmt.Errorf("unsupported outbox kind %s", item.Kind)
	}
}
