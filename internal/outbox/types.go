package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Replayable side-effect kinds.
const (
	KindTicketDocument  = "ticket_document"
	KindArticleDocument = "kb_article_document"
	KindActivityLog     = "activity_log"
	KindAuditLog        = "audit_log"
	KindSystemLog       = "system_log"
	KindSearchQueryLog  = "search_query_log"
	KindAPIUsageLog     = "api_usage_log"
)

// Item is one failed secondary write waiting to be replayed against the
// search index or the document-log store.
type Item struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
