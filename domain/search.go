package domain

import (
	"encoding/json"
	"time"
)

// SearchFilters narrows a free-text query with structured criteria.
// Zero values mean "no constraint".
type SearchFilters struct {
	Status     string     `json:"status,omitempty"`
	Priority   string     `json:"priority,omitempty"`
	Category   string     `json:"category,omitempty"`
	UserID     string     `json:"user_id,omitempty"`
	AssigneeID string     `json:"assignee_id,omitempty"`
	AuthorID   string     `json:"author_id,omitempty"`
	Visibility string     `json:"visibility,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
}

// SearchOptions controls pagination and ordering.
type SearchOptions struct {
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
	Sort     string `json:"sort,omitempty"` // "field:asc" or "field:desc"
}

// SearchResult is the engine-agnostic response shape. Hits are raw
// projection documents; ranking is entirely the engine's business.
type SearchResult struct {
	Hits  []json.RawMessage `json:"hits"`
	Total int64             `json:"total"`
}
