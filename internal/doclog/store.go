// Package doclog is the narrow write facade over the document store.
// Entries are appended to per-kind Redis Streams and never touched again.
package doclog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/domain"
)

// Stream suffixes for the five log kinds.
const (
	streamActivity = "activity"
	streamAudit    = "audit"
	streamSystem   = "system"
	streamSearch   = "search_queries"
	streamAPIUsage = "api_usage"
)

// Store appends log entries to the document store.
type Store struct {
	client *redislib.Client
	prefix string
	maxLen int64
	logger *zap.Logger
}

// New creates a document-log store. maxLen bounds each stream with
// approximate trimming; zero means unbounded.
func New(client *redislib.Client, prefix string, maxLen int64, log *zap.Logger) *Store {
	if prefix == "" {
		prefix = "logs"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		client: client,
		prefix: prefix,
		maxLen: maxLen,
		logger: log,
	}
}

// LogUserActivity appends a user activity entry.
func (s *Store) LogUserActivity(ctx context.Context, entry domain.ActivityLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return s.append(ctx, streamActivity, entry)
}

// LogAudit appends an audit entry.
func (s *Store) LogAudit(ctx context.Context, entry domain.AuditLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return s.append(ctx, streamAudit, entry)
}

// LogSystem appends a system entry.
func (s *Store) LogSystem(ctx context.Context, entry domain.SystemLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Level == "" {
		entry.Level = domain.LogLevelInfo
	}
	return s.append(ctx, streamSystem, entry)
}

// LogSearch appends a search-query analytics entry.
func (s *Store) LogSearch(ctx context.Context, entry domain.SearchQueryLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return s.append(ctx, streamSearch, entry)
}

// LogAPIUsage appends an API usage entry.
func (s *Store) LogAPIUsage(ctx context.Context, entry domain.APIUsageLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return s.append(ctx, streamAPIUsage, entry)
}

// append persists one entry and waits for the write to complete, so the
// caller can observe logging failures even when it chooses to swallow them.
func (s *Store) append(ctx context.Context, kind string, entry any) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "log entry not serializable", err)
	}

	args := &redislib.XAddArgs{
		Stream: s.stream(kind),
		Values: map[string]any{"data": payload},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable,
			fmt.Sprintf("append to %s log failed", kind), err)
	}
	return nil
}

// HealthCheck issues a PING round trip. It never returns an error;
// failures are captured in the result.
func (s *Store) HealthCheck(ctx context.Context) domain.StoreHealth {
	start := time.Now()
	err := s.client.Ping(ctx).Err()

	health := domain.StoreHealth{
		Healthy:        err == nil,
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		health.Error = err.Error()
	}
	return health
}

// Close releases the Redis client. A second call is a no-op error-wise.
func (s *Store) Close(_ context.Context) error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	if err == redislib.ErrClosed {
		return nil
	}
	return err
}

func (s *Store) stream(kind string) string {
	return fmt.Sprintf("%s:%s", s.prefix, kind)
}
