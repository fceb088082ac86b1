package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/servicepulse/datalayer/domain"
)

func TestParseSearchRequest(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/search/tickets?q=printer&status=open&priority=high&tags=vpn,network&from=2026-01-01T00:00:00Z&page=2&page_size=25&sort=created_at:desc")

	query, filters, opts := parseSearchRequest(&ctx)

	assert.Equal(t, "printer", query)
	assert.Equal(t, "open", filters.Status)
	assert.Equal(t, "high", filters.Priority)
	assert.Equal(t, []string{"vpn", "network"}, filters.Tags)
	require.NotNil(t, filters.From)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), filters.From.UTC())
	assert.Nil(t, filters.To)

	assert.Equal(t, 2, opts.Page)
	assert.Equal(t, 25, opts.PageSize)
	assert.Equal(t, "created_at:desc", opts.Sort)
}

func TestParseSearchRequestTolerant(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/search/tickets?page=abc&from=yesterday")

	query, filters, opts := parseSearchRequest(&ctx)

	assert.Empty(t, query)
	assert.Nil(t, filters.From)
	assert.Nil(t, filters.Tags)
	assert.Zero(t, opts.Page)
}

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid", domain.ErrInvalidPayload, http.StatusBadRequest},
		{"not found", domain.ErrTicketNotFound, http.StatusNotFound},
		{"conflict", domain.NewError(domain.ErrCodeConflict, "dup"), http.StatusConflict},
		{"unavailable", domain.NewError(domain.ErrCodeUnavailable, "down"), http.StatusServiceUnavailable},
		{"model missing stays internal", domain.ErrModelMissing, http.StatusInternalServerError},
		{"plain", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := mapError(tc.err)
			assert.Equal(t, tc.status, status)
		})
	}
}
