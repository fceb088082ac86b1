package domain

import "time"

// Ticket is the canonical support ticket held by the relational store.
type Ticket struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category,omitempty"`
	UserID      string    `json:"user_id"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TicketUpdate carries the mutable ticket fields; nil pointers are left untouched.
type TicketUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Priority    *string   `json:"priority,omitempty"`
	Category    *string   `json:"category,omitempty"`
	AssigneeID  *string   `json:"assignee_id,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// TicketDocument is the denormalized search projection of a ticket.
// The index copy is never authoritative; the relational row wins on mismatch.
type TicketDocument struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category,omitempty"`
	UserID      string    `json:"user_id"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Document projects a ticket into its search-index shape.
func (t *Ticket) Document() TicketDocument {
	return TicketDocument{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Category:    t.Category,
		UserID:      t.UserID,
		AssigneeID:  t.AssigneeID,
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
