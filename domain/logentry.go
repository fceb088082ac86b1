package domain

import "time"

// Log levels used by system log entries.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// ActivityLogEntry records a user-visible action. Append-only.
type ActivityLogEntry struct {
	UserID    string         `json:"user_id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// AuditLogEntry records a sensitive mutation with its full change set. Append-only.
type AuditLogEntry struct {
	UserID    string         `json:"user_id"`
	Action    string         `json:"action"`
	Changes   map[string]any `json:"changes,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// SystemLogEntry records an operational event from the coordination layer itself.
type SystemLogEntry struct {
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Source    string         `json:"source"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// SearchQueryLogEntry records one executed search for analytics.
type SearchQueryLogEntry struct {
	Query          string    `json:"query"`
	UserID         string    `json:"user_id,omitempty"`
	ResultCount    int       `json:"result_count"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Context        string    `json:"context,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// APIUsageLogEntry records one API-level invocation for usage analytics.
type APIUsageLogEntry struct {
	Endpoint       string         `json:"endpoint"`
	Method         string         `json:"method"`
	UserID         string         `json:"user_id,omitempty"`
	ResponseTimeMs int64          `json:"response_time_ms"`
	Details        map[string]any `json:"details,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// LogEvent is the caller-facing input of the coordinator's logEvent operation.
type LogEvent struct {
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Source  string         `json:"source"`
	Details map[string]any `json:"details,omitempty"`
}
