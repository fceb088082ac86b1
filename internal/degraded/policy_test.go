package degraded

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/servicepulse/datalayer/domain"
)

type recordingLogger struct {
	entries []domain.SystemLogEntry
	err     error
}

func (r *recordingLogger) LogSystem(ctx context.Context, entry domain.SystemLogEntry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func TestResolvePassesThroughSuccess(t *testing.T) {
	logs := &recordingLogger{}
	p := New(logs, zap.NewNop())

	want := &domain.Ticket{ID: "ticket-1"}
	got, err := Resolve(context.Background(), p, "ticket", want, nil, func(id string, now time.Time) *domain.Ticket {
		t.Fatal("synthesize must not run on success")
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Empty(t, logs.entries)
}

func TestResolveSynthesizesOnModelMissing(t *testing.T) {
	logs := &recordingLogger{}
	p := New(logs, zap.NewNop())

	got, err := Resolve(context.Background(), p, "ticket", (*domain.Ticket)(nil), domain.ErrModelMissing,
		func(id string, now time.Time) *domain.Ticket {
			return &domain.Ticket{ID: id, CreatedAt: now, UpdatedAt: now}
		})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, strings.HasPrefix(got.ID, "ticket_"))
	assert.False(t, got.CreatedAt.IsZero())

	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	assert.Equal(t, domain.LogLevelWarn, entry.Level)
	assert.Equal(t, "degraded_mode", entry.Source)
	assert.Equal(t, "ticket", entry.Details["model"])
	assert.Equal(t, got.ID, entry.Details["synthetic_id"])
}

func TestResolvePropagatesOtherErrors(t *testing.T) {
	logs := &recordingLogger{}
	p := New(logs, zap.NewNop())

	cause := domain.NewError(domain.ErrCodeConflict, "duplicate")
	got, err := Resolve(context.Background(), p, "user", (*domain.User)(nil), cause,
		func(id string, now time.Time) *domain.User {
			t.Fatal("synthesize must not run for non-schema errors")
			return nil
		})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, cause))
	assert.Empty(t, logs.entries)
}

func TestResolveWrappedModelMissingStillSynthesizes(t *testing.T) {
	logs := &recordingLogger{}
	p := New(logs, zap.NewNop())

	wrapped := domain.WrapError(domain.ErrCodeModelMissing, "model tickets not present in live schema", errors.New("ERROR: relation does not exist (SQLSTATE 42P01)"))
	got, err := Resolve(context.Background(), p, "ticket", (*domain.Ticket)(nil), wrapped,
		func(id string, now time.Time) *domain.Ticket {
			return &domain.Ticket{ID: id}
		})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, logs.entries, 1)
}

func TestResolveSurvivesReportFailure(t *testing.T) {
	logs := &recordingLogger{err: errors.New("stream down")}
	p := New(logs, zap.NewNop())

	got, err := Resolve(context.Background(), p, "kb", (*domain.Article)(nil), domain.ErrModelMissing,
		func(id string, now time.Time) *domain.Article {
			return &domain.Article{ID: id}
		})
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSyntheticIDPrefix(t *testing.T) {
	id := SyntheticID("kb")
	assert.True(t, strings.HasPrefix(id, "kb_"))
	assert.Greater(t, len(id), len("kb_"))
}
