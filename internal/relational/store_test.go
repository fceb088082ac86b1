package relational

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/domain"
)

type capturedMutation struct {
	kind      string
	operation string
	payload   any
}

type recordingSink struct {
	captured []capturedMutation
}

func (r *recordingSink) Record(ctx context.Context, kind, operation string, payload any) {
	r.captured = append(r.captured, capturedMutation{kind: kind, operation: operation, payload: payload})
}

func TestObserveCapturesSensitiveMutations(t *testing.T) {
	sink := &recordingSink{}
	store := New(nil, zap.NewNop())
	store.SetAuditSink(sink)

	user := &domain.User{Email: "a@example.com"}
	err := store.observe(context.Background(), KindUser, "create", user, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)

	require.Len(t, sink.captured, 1)
	assert.Equal(t, KindUser, sink.captured[0].kind)
	assert.Equal(t, "create", sink.captured[0].operation)
	assert.Same(t, user, sink.captured[0].payload)
}

func TestObserveSkipsNonSensitiveKinds(t *testing.T) {
	sink := &recordingSink{}
	store := New(nil, zap.NewNop())
	store.SetAuditSink(sink)

	err := store.observe(context.Background(), KindTicket, "create", &domain.Ticket{Title: "x"}, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, sink.captured)
}

func TestObserveCapturesBeforeFailure(t *testing.T) {
	sink := &recordingSink{}
	store := New(nil, zap.NewNop())
	store.SetAuditSink(sink)

	err := store.observe(context.Background(), KindUser, "update", &domain.UserUpdate{}, func(ctx context.Context) error {
		return &pgconn.PgError{Code: "42P01"}
	})
	require.Error(t, err)

	// the attempt is on record even though it failed
	assert.Len(t, sink.captured, 1)
	assert.True(t, errors.Is(err, domain.ErrModelMissing))
}

func TestObserveClassifiesErrors(t *testing.T) {
	store := New(nil, zap.NewNop())

	err := store.observe(context.Background(), KindTicket, "create", nil, func(ctx context.Context) error {
		return &pgconn.PgError{Code: "23505"}
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
}

func TestObserveWithoutSink(t *testing.T) {
	store := New(nil, zap.NewNop())

	err := store.observe(context.Background(), KindUser, "create", &domain.User{}, func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}
