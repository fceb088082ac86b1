package searchidx

import (
	"strings"

	"github.com/servicepulse/datalayer/domain"
)

const defaultPageSize = 20

var (
	ticketFields  = []string{"title^2", "description", "category", "tags"}
	articleFields = []string{"title^2", "content", "summary", "category", "tags"}
)

// buildQuery translates the engine-agnostic request into an Elasticsearch
// bool query body. An empty query string degrades to match_all so pure
// filter browsing works.
func buildQuery(query string, fields []string, filters domain.SearchFilters, opts domain.SearchOptions) map[string]any {
	var must any
	if strings.TrimSpace(query) == "" {
		must = map[string]any{"match_all": map[string]any{}}
	} else {
		must = map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    fields,
				"fuzziness": "AUTO",
			},
		}
	}

	var filter []any
	addTerm := func(field, value string) {
		if value != "" {
			filter = append(filter, map[string]any{
				"term": map[string]any{field: value},
			})
		}
	}
	addTerm("status", filters.Status)
	addTerm("priority", filters.Priority)
	addTerm("category", filters.Category)
	addTerm("user_id", filters.UserID)
	addTerm("assignee_id", filters.AssigneeID)
	addTerm("author_id", filters.AuthorID)
	addTerm("visibility", filters.Visibility)

	if len(filters.Tags) > 0 {
		filter = append(filter, map[string]any{
			"terms": map[string]any{"tags": filters.Tags},
		})
	}

	if filters.From != nil || filters.To != nil {
		bounds := map[string]any{}
		if filters.From != nil {
			bounds["gte"] = filters.From
		}
		if filters.To != nil {
			bounds["lte"] = filters.To
		}
		filter = append(filter, map[string]any{
			"range": map[string]any{"created_at": bounds},
		})
	}

	boolQuery := map[string]any{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	size := opts.PageSize
	if size <= 0 {
		size = defaultPageSize
	}

	body := map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"from":  (page - 1) * size,
		"size":  size,
	}

	if sort := parseSort(opts.Sort); sort != nil {
		body["sort"] = sort
	}

	return body
}

// parseSort turns "field:desc" into the engine's sort clause. Malformed
// input falls back to relevance ordering.
func parseSort(sort string) []any {
	if sort == "" {
		return nil
	}
	field, order := sort, "asc"
	if idx := strings.IndexByte(sort, ':'); idx >= 0 {
		field, order = sort[:idx], sort[idx+1:]
	}
	if field == "" {
		return nil
	}
	if order != "asc" && order != "desc" {
		order = "asc"
	}
	return []any{
		map[string]any{field: map[string]any{"order": order}},
	}
}
