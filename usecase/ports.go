package usecase

import (
	"context"

	"github.com/servicepulse/datalayer/domain"
)

// RelationalStore is the coordinator's view of the source-of-truth store.
type RelationalStore interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserUpdate) (*domain.User, error)
	CreateTicket(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, id string, patch domain.TicketUpdate) (*domain.Ticket, error)
	CreateArticle(ctx context.Context, article *domain.Article) (*domain.Article, error)
	UpdateArticle(ctx context.Context, id string, patch domain.ArticleUpdate) (*domain.Article, error)
	ListUsers(ctx context.Context, tr *domain.TimeRange) ([]domain.User, error)
	ListTickets(ctx context.Context, tr *domain.TimeRange) ([]domain.Ticket, error)
	ListArticles(ctx context.Context, tr *domain.TimeRange) ([]domain.Article, error)
	HealthCheck(ctx context.Context) domain.StoreHealth
	Close(ctx context.Context) error
}

// LogStore is the coordinator's view of the append-only document store.
type LogStore interface {
	LogUserActivity(ctx context.Context, entry domain.ActivityLogEntry) error
	LogAudit(ctx context.Context, entry domain.AuditLogEntry) error
	LogSystem(ctx context.Context, entry domain.SystemLogEntry) error
	LogSearch(ctx context.Context, entry domain.SearchQueryLogEntry) error
	LogAPIUsage(ctx context.Context, entry domain.APIUsageLogEntry) error
	HealthCheck(ctx context.Context) domain.StoreHealth
	Close(ctx context.Context) error
}

// SearchIndex is the coordinator's view of the search engine.
type SearchIndex interface {
	IndexTicket(ctx context.Context, doc domain.TicketDocument) error
	IndexArticle(ctx context.Context, doc domain.ArticleDocument) error
	IndexLogEvent(ctx context.Context, entry domain.SystemLogEntry) error
	SearchTickets(ctx context.Context, query string, filters domain.SearchFilters, opts domain.SearchOptions) (*domain.SearchResult, error)
	SearchArticles(ctx context.Context, query string, filters domain.SearchFilters, opts domain.SearchOptions) (*domain.SearchResult, error)
	HealthCheck(ctx context.Context) domain.StoreHealth
	Close(ctx context.Context) error
}
