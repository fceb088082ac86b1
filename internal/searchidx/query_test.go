package searchidx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicepulse/datalayer/domain"
)

func TestBuildQueryFullText(t *testing.T) {
	body := buildQuery("printer broken", ticketFields, domain.SearchFilters{}, domain.SearchOptions{})

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	must := boolQuery["must"].(map[string]any)
	multiMatch, ok := must["multi_match"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "printer broken", multiMatch["query"])
	assert.Equal(t, "AUTO", multiMatch["fuzziness"])
	assert.Equal(t, ticketFields, multiMatch["fields"])

	_, hasFilter := boolQuery["filter"]
	assert.False(t, hasFilter)
}

func TestBuildQueryEmptyStringMatchesAll(t *testing.T) {
	body := buildQuery("   ", articleFields, domain.SearchFilters{}, domain.SearchOptions{})

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	must := boolQuery["must"].(map[string]any)
	_, ok := must["match_all"]
	assert.True(t, ok, "blank query should browse everything")
}

func TestBuildQueryFilters(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	filters := domain.SearchFilters{
		Status:   "open",
		Priority: "high",
		Tags:     []string{"vpn", "network"},
		From:     &from,
	}

	body := buildQuery("outage", ticketFields, filters, domain.SearchOptions{})

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	filter, ok := boolQuery["filter"].([]any)
	require.True(t, ok)
	require.Len(t, filter, 4)

	terms := map[string]any{}
	var tagClause, rangeClause map[string]any
	for _, clause := range filter {
		m := clause.(map[string]any)
		if term, ok := m["term"].(map[string]any); ok {
			for k, v := range term {
				terms[k] = v
			}
		}
		if c, ok := m["terms"].(map[string]any); ok {
			tagClause = c
		}
		if c, ok := m["range"].(map[string]any); ok {
			rangeClause = c
		}
	}

	assert.Equal(t, "open", terms["status"])
	assert.Equal(t, "high", terms["priority"])
	require.NotNil(t, tagClause)
	assert.Equal(t, []string{"vpn", "network"}, tagClause["tags"])
	require.NotNil(t, rangeClause)
	bounds := rangeClause["created_at"].(map[string]any)
	assert.Equal(t, &from, bounds["gte"])
	_, hasUpper := bounds["lte"]
	assert.False(t, hasUpper)
}

func TestBuildQueryPagination(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		body := buildQuery("q", ticketFields, domain.SearchFilters{}, domain.SearchOptions{})
		assert.Equal(t, 0, body["from"])
		assert.Equal(t, defaultPageSize, body["size"])
	})

	t.Run("explicit page", func(t *testing.T) {
		body := buildQuery("q", ticketFields, domain.SearchFilters{}, domain.SearchOptions{Page: 3, PageSize: 10})
		assert.Equal(t, 20, body["from"])
		assert.Equal(t, 10, body["size"])
	})

	t.Run("negative page clamps", func(t *testing.T) {
		body := buildQuery("q", ticketFields, domain.SearchFilters{}, domain.SearchOptions{Page: -2})
		assert.Equal(t, 0, body["from"])
	})
}

func TestParseSort(t *testing.T) {
	t.Run("field and order", func(t *testing.T) {
		sort := parseSort("created_at:desc")
		require.Len(t, sort, 1)
		clause := sort[0].(map[string]any)["created_at"].(map[string]any)
		assert.Equal(t, "desc", clause["order"])
	})

	t.Run("bare field defaults to asc", func(t *testing.T) {
		sort := parseSort("priority")
		require.Len(t, sort, 1)
		clause := sort[0].(map[string]any)["priority"].(map[string]any)
		assert.Equal(t, "asc", clause["order"])
	})

	t.Run("bad order falls back to asc", func(t *testing.T) {
		sort := parseSort("priority:sideways")
		require.Len(t, sort, 1)
		clause := sort[0].(map[string]any)["priority"].(map[string]any)
		assert.Equal(t, "asc", clause["order"])
	})

	t.Run("empty input keeps relevance", func(t *testing.T) {
		assert.Nil(t, parseSort(""))
		assert.Nil(t, parseSort(":desc"))
	})
}
