package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestParseExportOptions(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/export?users=true&kb=true&from=2026-01-01T00:00:00Z&to=2026-06-30T00:00:00Z")

	opts := parseExportOptions(&ctx)

	assert.True(t, opts.IncludeUsers)
	assert.False(t, opts.IncludeTickets)
	assert.True(t, opts.IncludeArticles)

	require.NotNil(t, opts.TimeRange)
	require.NotNil(t, opts.TimeRange.From)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), opts.TimeRange.From.UTC())
	require.NotNil(t, opts.TimeRange.To)
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), opts.TimeRange.To.UTC())
}

func TestParseExportOptionsOpenEnded(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/export?tickets=true&from=2026-01-01T00:00:00Z")

	opts := parseExportOptions(&ctx)

	assert.True(t, opts.IncludeTickets)
	require.NotNil(t, opts.TimeRange)
	require.NotNil(t, opts.TimeRange.From)
	assert.Nil(t, opts.TimeRange.To)
}

func TestParseExportOptionsWithoutRange(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/export?tickets=true&from=lastweek")

	opts := parseExportOptions(&ctx)

	// malformed bounds degrade to an unbounded export, not an error
	assert.Nil(t, opts.TimeRange)
}
