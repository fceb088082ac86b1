package relational

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/domain"
	"github.com/servicepulse/datalayer/pkg/logger"
)

// AuditSink receives the full argument payload of sensitive-kind mutations
// before the relational call proceeds.
type AuditSink interface {
	Record(ctx context.Context, kind, operation string, payload any)
}

// Model kinds handled by this adapter.
const (
	KindUser    = "users"
	KindTicket  = "tickets"
	KindArticle = "kb_articles"
)

// sensitiveKinds lists the models whose mutations are always audit-flagged.
var sensitiveKinds = map[string]bool{
	"users":            true,
	"roles":            true,
	"permissions":      true,
	"user_roles":       true,
	"role_permissions": true,
}

// Store is the typed CRUD facade over the relational source of truth.
// Every call runs through the observe middleware chain: timing, error
// classification with operation context, and audit capture for sensitive
// kinds.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	audit  AuditSink
}

// New creates a relational store over an established pgx pool.
func New(pool *pgxpool.Pool, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{pool: pool, logger: log}
}

// SetAuditSink wires the destination for sensitive-kind payload capture.
// A nil sink disables capture (the timing and error middleware still run).
func (s *Store) SetAuditSink(sink AuditSink) {
	s.audit = sink
}

// observe wraps one relational call: audit capture for sensitive mutations,
// elapsed-time instrumentation, and error classification carrying the model
// kind and operation. mutation payloads are recorded before the call runs.
func (s *Store) observe(ctx context.Context, kind, op string, payload any, fn func(context.Context) error) error {
	if payload != nil && sensitiveKinds[kind] && s.audit != nil {
		s.audit.Record(ctx, kind, op, payload)
	}

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	log := logger.WithRequestID(ctx, s.logger)
	if err != nil {
		classified := classify(kind, op, err)
		log.Error("relational call failed",
			zap.String("model", kind),
			zap.String("operation", op),
			zap.Duration("elapsed", elapsed),
			zap.Error(classified))
		return classified
	}

	log.Debug("relational call",
		zap.String("model", kind),
		zap.String("operation", op),
		zap.Duration("elapsed", elapsed))
	return nil
}

// HealthCheck issues a trivial round trip. It never returns an error;
// failures are captured in the result.
func (s *Store) HealthCheck(ctx context.Context) domain.StoreHealth {
	start := time.Now()

	var one int
	err := s.pool.QueryRow(ctx, "SELECT 1").Scan(&one)

	health := domain.StoreHealth{
		Healthy:        err == nil,
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		health.Error = err.Error()
	}
	return health
}

// Close releases the connection pool. Safe to call more than once.
func (s *Store) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
