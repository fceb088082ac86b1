package domain

import "time"

// StoreHealth is one backing store's probe result. Computed independently
// per store; a partial outage is never collapsed into a single boolean.
type StoreHealth struct {
	Healthy        bool   `json:"healthy"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	ClusterStatus  string `json:"cluster_status,omitempty"`
	Error          string `json:"error,omitempty"`
}

// HealthStatus aggregates the three stores' probe results.
type HealthStatus struct {
	Relational StoreHealth `json:"relational"`
	Document   StoreHealth `json:"document"`
	Search     StoreHealth `json:"search"`
	CheckedAt  time.Time   `json:"checked_at"`
}

// Healthy reports whether every store answered its probe.
func (s HealthStatus) Healthy() bool {
	return s.Relational.Healthy && s.Document.Healthy && s.Search.Healthy
}
