package domain

import "time"

// TimeRange bounds an export section; nil endpoints are open.
type TimeRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// ExportOptions selects the sections included in a snapshot.
type ExportOptions struct {
	IncludeUsers    bool       `json:"include_users,omitempty"`
	IncludeTickets  bool       `json:"include_tickets,omitempty"`
	IncludeArticles bool       `json:"include_kb,omitempty"`
	TimeRange       *TimeRange `json:"time_range,omitempty"`
}

// ExportMetadata describes how an export went: requested sections and
// the ones that came back empty because their store was unavailable.
type ExportMetadata struct {
	Sections []string       `json:"sections"`
	Counts   map[string]int `json:"counts"`
	Partial  bool           `json:"partial"`
	Failed   []string       `json:"failed,omitempty"`
}

// ExportResult is a cross-store snapshot. Sections excluded by the
// options are nil; included sections are never nil, only possibly empty.
type ExportResult struct {
	Users         []User         `json:"users,omitempty"`
	Tickets       []Ticket       `json:"tickets,omitempty"`
	KnowledgeBase []Article      `json:"knowledge_base,omitempty"`
	ExportedAt    time.Time      `json:"exported_at"`
	Metadata      ExportMetadata `json:"metadata"`
}
