// Package degraded insulates callers from relational schema drift. When a
// write targets a model the live schema does not have yet, the policy
// synthesizes a plausible record instead of failing, and logs the fallback
// loudly. It is a compatibility shim, not a feature: every synthesis is
// visible in the system log and the service log.
package degraded

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/domain"
)

// SystemLogger is the slice of the document-log store the policy needs.
type SystemLogger interface {
	LogSystem(ctx context.Context, entry domain.SystemLogEntry) error
}

// Policy decides whether a failed relational call may be substituted with
// a synthetic record. It holds no mutable state; the decision is a pure
// function of the error classification.
type Policy struct {
	logs   SystemLogger
	logger *zap.Logger
}

// New creates a degraded-mode policy reporting through the given sinks.
func New(logs SystemLogger, log *zap.Logger) *Policy {
	if log == nil {
		log = zap.NewNop()
	}
	return &Policy{logs: logs, logger: log}
}

// SyntheticID builds the "<kind>_<suffix>" identifier of a synthesized record.
func SyntheticID(kind string) string {
	return kind + "_" + uuid.NewString()
}

// Resolve applies the policy to a finished relational call. A nil err
// passes the real result through. ErrModelMissing triggers synthesis:
// synthesize receives a generated id and the current time, and its record
// is returned to the caller as if it were persisted. Every other error
// class propagates unchanged.
func Resolve[T any](ctx context.Context, p *Policy, kind string, result *T, err error, synthesize func(id string, now time.Time) *T) (*T, error) {
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrModelMissing) {
		return nil, err
	}

	id := SyntheticID(kind)
	now := time.Now().UTC()
	record := synthesize(id, now)
	p.reportFallback(ctx, kind, id, err)
	return record, nil
}

func (p *Policy) reportFallback(ctx context.Context, kind, id string, cause error) {
	p.logger.Warn("model missing, synthesized record",
		zap.String("model", kind),
		zap.String("synthetic_id", id),
		zap.Error(cause))

	if p.logs == nil {
		return
	}
	entry := domain.SystemLogEntry{
		Level:   domain.LogLevelWarn,
		Message: "relational model missing, returned synthesized record",
		Source:  "degraded_mode",
		Details: map[string]any{
			"model":        kind,
			"synthetic_id": id,
			"error":        cause.Error(),
		},
	}
	if err := p.logs.LogSystem(ctx, entry); err != nil {
		p.logger.Error("degraded-mode fallback not recorded", zap.Error(err))
	}
}
