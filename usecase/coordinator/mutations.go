package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/servicepulse/datalayer/domain"
	"github.com/servicepulse/datalayer/internal/degraded"
	"github.com/servicepulse/datalayer/internal/outbox"
)

// Degraded-mode id prefixes per entity kind.
const (
	kindUser    = "user"
	kindTicket  = "ticket"
	kindArticle = "kb"
)

// CreateUser writes the user to the relational store (degraded-mode
// eligible) and appends activity and audit records. The write is
// successful once the relational commit (or synthesis) completes; log
// failures never unwind it.
func (c *Coordinator) CreateUser(ctx context.Context, user *domain.User, audit *domain.AuditContext) (*domain.User, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	ctx = withAudit(ctx, audit)

	res, err := c.rel.CreateUser(ctx, user)
	created, err := degraded.Resolve(ctx, c.policy, kindUser, res, err, func(id string, now time.Time) *domain.User {
		synth := *user
		synth.ID = id
		synth.CreatedAt = now
		synth.UpdatedAt = now
		return &synth
	})
	if err != nil {
		c.reportPrimaryFailure(ctx, "createUser", summarizeUser(user), err)
		return nil, err
	}

	c.logActivity(ctx, domain.ActivityLogEntry{
		UserID: created.ID,
		Action: "user_created",
		Details: map[string]any{
			"email": created.Email,
		},
	})
	c.logAudit(ctx, auditEntry(ctx, "user_created", map[string]any{
		"user_id": created.ID,
		"email":   created.Email,
	}))

	return created, nil
}

// UpdateUser applies the patch to the relational store and appends
// activity and audit records.
func (c *Coordinator) UpdateUser(ctx context.Context, id string, patch domain.UserUpdate, audit *domain.AuditContext) (*domain.User, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	ctx = withAudit(ctx, audit)

	updated, err := c.rel.UpdateUser(ctx, id, patch)
	if err != nil {
		c.reportPrimaryFailure(ctx, "updateUser", "user "+id, err)
		return nil, err
	}

	c.logActivity(ctx, domain.ActivityLogEntry{
		UserID: updated.ID,
		Action: "user_updated",
	})
	c.logAudit(ctx, auditEntry(ctx, "user_updated", map[string]any{
		"user_id": updated.ID,
		"patch":   patch,
	}))

	return updated, nil
}

// CreateTicket writes the ticket to the relational store (degraded-mode
// eligible), then reindexes and logs activity, in that order. Index and
// log failures are swallowed after being recorded.
func (c *Coordinator) CreateTicket(ctx context.Context, ticket *domain.Ticket, audit *domain.AuditContext) (*domain.Ticket, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	ctx = withAudit(ctx, audit)

	res, err := c.rel.CreateTicket(ctx, ticket)
	created, err := degraded.Resolve(ctx, c.policy, kindTicket, res, err, func(id string, now time.Time) *domain.Ticket {
		synth := *ticket
		synth.ID = id
		synth.CreatedAt = now
		synth.UpdatedAt = now
		return &synth
	})
	if err != nil {
		c.reportPrimaryFailure(ctx, "createTicket", summarizeTicket(ticket), err)
		return nil, err
	}

	c.indexTicket(ctx, created)
	c.logActivity(ctx, domain.ActivityLogEntry{
		UserID: created.UserID,
		Action: "ticket_created",
		Details: map[string]any{
			"ticket_id": created.ID,
			"title":     created.Title,
		},
	})

	return created, nil
}

// UpdateTicket applies the patch to the relational store (degraded-mode
// eligible), then reindexes and logs activity.
func (c *Coordinator) UpdateTicket(ctx context.Context, id string, patch domain.TicketUpdate, audit *domain.AuditContext) (*domain.Ticket, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	ctx = withAudit(ctx, audit)

	res, err := c.rel.UpdateTicket(ctx, id, patch)
	updated, err := degraded.Resolve(ctx, c.policy, kindTicket, res, err, func(sid string, now time.Time) *domain.Ticket {
		return synthTicket(sid, now, patch)
	})
	if err != nil {
		c.reportPrimaryFailure(ctx, "updateTicket", "ticket "+id, err)
		return nil, err
	}

	c.indexTicket(ctx, updated)
	c.logActivity(ctx, domain.ActivityLogEntry{
		UserID: updated.UserID,
		Action: "ticket_updated",
		Details: map[string]any{
			"ticket_id": updated.ID,
		},
	})

	return updated, nil
}

// CreateArticle writes the article to the relational store (degraded-mode
// eligible), then reindexes and logs activity.
func (c *Coordinator) CreateArticle(ctx context.Context, article *domain.Article, audit *domain.AuditContext) (*domain.Article, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	ctx = withAudit(ctx, audit)

	res, err := c.rel.CreateArticle(ctx, article)
	created, err := degraded.Resolve(ctx, c.policy, kindArticle, res, err, func(id string, now time.Time) *domain.Article {
		synth := *article
		synth.ID = id
		synth.CreatedAt = now
		synth.UpdatedAt = now
		return &synth
	})
	if err != nil {
		c.reportPrimaryFailure(ctx, "createKbArticle", summarizeArticle(article), err)
		return nil, err
	}

	c.indexArticle(ctx, created)
	c.logActivity(ctx, domain.ActivityLogEntry{
		UserID: created.AuthorID,
		Action: "kb_article_created",
		Details: map[string]any{
			"article_id": created.ID,
			"title":      created.Title,
		},
	})

	return created, nil
}

// UpdateArticle applies the patch to the relational store (degraded-mode
// eligible), then reindexes and logs activity.
func (c *Coordinator) UpdateArticle(ctx context.Context, id string, patch domain.ArticleUpdate, audit *domain.AuditContext) (*domain.Article, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	ctx = withAudit(ctx, audit)

	res, err := c.rel.UpdateArticle(ctx, id, patch)
	updated, err := degraded.Resolve(ctx, c.policy, kindArticle, res, err, func(sid string, now time.Time) *domain.Article {
		return synthArticle(sid, now, patch)
	})
	if err != nil {
		c.reportPrimaryFailure(ctx, "updateKbArticle", "article "+id, err)
		return nil, err
	}

	c.indexArticle(ctx, updated)
	c.logActivity(ctx, domain.ActivityLogEntry{
		UserID: updated.AuthorID,
		Action: "kb_article_updated",
		Details: map[string]any{
			"article_id": updated.ID,
		},
	})

	return updated, nil
}

func (c *Coordinator) indexTicket(ctx context.Context, ticket *domain.Ticket) {
	doc := ticket.Document()
	if err := c.search.IndexTicket(ctx, doc); err != nil {
		c.reportSecondaryFailure(ctx, "indexTicket", err, map[string]any{"ticket_id": ticket.ID})
		c.deferToOutbox(outbox.KindTicketDocument, doc)
	}
}

func (c *Coordinator) indexArticle(ctx context.Context, article *domain.Article) {
	doc := article.Document()
	if err := c.search.IndexArticle(ctx, doc); err != nil {
		c.reportSecondaryFailure(ctx, "indexKbArticle", err, map[string]any{"article_id": article.ID})
		c.deferToOutbox(outbox.KindArticleDocument, doc)
	}
}

func (c *Coordinator) logActivity(ctx context.Context, entry domain.ActivityLogEntry) {
	if err := c.logs.LogUserActivity(ctx, entry); err != nil {
		c.reportSecondaryFailure(ctx, "logUserActivity", err, map[string]any{"action": entry.Action})
		c.deferToOutbox(outbox.KindActivityLog, entry)
	}
}

func (c *Coordinator) logAudit(ctx context.Context, entry domain.AuditLogEntry) {
	if err := c.logs.LogAudit(ctx, entry); err != nil {
		c.reportSecondaryFailure(ctx, "logAudit", err, map[string]any{"action": entry.Action})
		c.deferToOutbox(outbox.KindAuditLog, entry)
	}
}

func withAudit(ctx context.Context, audit *domain.AuditContext) context.Context {
	if audit == nil {
		return ctx
	}
	return domain.WithAuditContext(ctx, *audit)
}

func auditEntry(ctx context.Context, action string, changes map[string]any) domain.AuditLogEntry {
	audit := domain.AuditContextFrom(ctx)
	return domain.AuditLogEntry{
		UserID:  audit.ActorID,
		Action:  action,
		Changes: changes,
		IP:      audit.RemoteAddr,
	}
}

// synthTicket builds the minimal record a degraded update hands back: the
// patch fields over defaults, with generated id and fresh timestamps.
func synthTicket(id string, now time.Time, patch domain.TicketUpdate) *domain.Ticket {
	t := &domain.Ticket{
		ID:        id,
		Status:    "open",
		Priority:  "medium",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.AssigneeID != nil {
		t.AssigneeID = *patch.AssigneeID
	}
	if patch.Tags != nil {
		t.Tags = *patch.Tags
	}
	return t
}

func synthArticle(id string, now time.Time, patch domain.ArticleUpdate) *domain.Article {
	a := &domain.Article{
		ID:         id,
		Visibility: "internal",
		Status:     "draft",
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Content != nil {
		a.Content = *patch.Content
	}
	if patch.Summary != nil {
		a.Summary = *patch.Summary
	}
	if patch.Category != nil {
		a.Category = *patch.Category
	}
	if patch.Tags != nil {
		a.Tags = *patch.Tags
	}
	if patch.Visibility != nil {
		a.Visibility = *patch.Visibility
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	return a
}

func summarizeUser(u *domain.User) string {
	if u == nil {
		return "user <nil>"
	}
	return fmt.Sprintf("user %s", u.Email)
}

func summarizeTicket(t *domain.Ticket) string {
	if t == nil {
		return "ticket <nil>"
	}
	return fmt.Sprintf("ticket %q for user %s", t.Title, t.UserID)
}

func summarizeArticle(a *domain.Article) string {
	if a == nil {
		return "article <nil>"
	}
	return fmt.Sprintf("article %q by %s", a.Title, a.AuthorID)
}
