package relational

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/servicepulse/datalayer/domain"
)

// CreateTicket inserts a ticket and returns the stored row.
func (s *Store) CreateTicket(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	if ticket == nil || ticket.Title == "" || ticket.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}

	stored := *ticket
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = "open"
	}
	if stored.Priority == "" {
		stored.Priority = "medium"
	}

	const query = `
		INSERT INTO tickets (id, title, description, status, priority, category, user_id, assignee_id, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := s.observe(ctx, KindTicket, "create", ticket, func(ctx context.Context) error {
		return s.pool.QueryRow(ctx, query,
			stored.ID,
			stored.Title,
			stored.Description,
			stored.Status,
			stored.Priority,
			stored.Category,
			stored.UserID,
			stored.AssigneeID,
			stored.Tags,
		).Scan(&stored.CreatedAt, &stored.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// UpdateTicket applies the non-nil patch fields and returns the stored row.
func (s *Store) UpdateTicket(ctx context.Context, id string, patch domain.TicketUpdate) (*domain.Ticket, error) {
	if id == "" {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
		UPDATE tickets
		SET title = COALESCE($2, title),
			description = COALESCE($3, description),
			status = COALESCE($4, status),
			priority = COALESCE($5, priority),
			category = COALESCE($6, category),
			assignee_id = COALESCE($7, assignee_id),
			tags = COALESCE($8, tags),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, description, status, priority, COALESCE(category, ''), user_id, COALESCE(assignee_id, ''), tags, created_at, updated_at
	`

	var ticket domain.Ticket
	err := s.observe(ctx, KindTicket, "update", patch, func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx, query, id,
			patch.Title,
			patch.Description,
			patch.Status,
			patch.Priority,
			patch.Category,
			patch.AssigneeID,
			patch.Tags,
		)
		if err := scanTicket(row, &ticket); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrTicketNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListTickets returns tickets created inside the optional time range, oldest first.
func (s *Store) ListTickets(ctx context.Context, tr *domain.TimeRange) ([]domain.Ticket, error) {
	const query = `
		SELECT id, title, description, status, priority, COALESCE(category, ''), user_id, COALESCE(assignee_id, ''), tags, created_at, updated_at
		FROM tickets
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		ORDER BY created_at
	`

	from, to := rangeBounds(tr)
	var tickets []domain.Ticket
	err := s.observe(ctx, KindTicket, "list", nil, func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, query, from, to)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t domain.Ticket
			if err := scanTicket(rows, &t); err != nil {
				return err
			}
			tickets = append(tickets, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func scanTicket(row pgx.Row, t *domain.Ticket) error {
	return row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.Category,
		&t.UserID,
		&t.AssigneeID,
		&t.Tags,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}

// rangeBounds splits an optional time range into nullable query arguments.
func rangeBounds(tr *domain.TimeRange) (*time.Time, *time.Time) {
	if tr == nil {
		return nil, nil
	}
	return tr.From, tr.To
}
