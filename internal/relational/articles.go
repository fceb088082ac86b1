package relational

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/servicepulse/datalayer/domain"
)

// CreateArticle inserts a knowledge-base article and returns the stored row.
func (s *Store) CreateArticle(ctx context.Context, article *domain.Article) (*domain.Article, error) {
	if article == nil || article.Title == "" || article.AuthorID == "" {
		return nil, domain.ErrInvalidPayload
	}

	stored := *article
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Visibility == "" {
		stored.Visibility = "internal"
	}
	if stored.Status == "" {
		stored.Status = "draft"
	}
	if stored.Version == 0 {
		stored.Version = 1
	}

	const query = `
		INSERT INTO kb_articles (id, title, content, summary, category, tags, author_id, visibility, status, version, view_count, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := s.observe(ctx, KindArticle, "create", article, func(ctx context.Context) error {
		return s.pool.QueryRow(ctx, query,
			stored.ID,
			stored.Title,
			stored.Content,
			stored.Summary,
			stored.Category,
			stored.Tags,
			stored.AuthorID,
			stored.Visibility,
			stored.Status,
			stored.Version,
			stored.ViewCount,
			stored.Rating,
		).Scan(&stored.CreatedAt, &stored.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// UpdateArticle applies the non-nil patch fields, bumps the version, and
// returns the stored row. The bump is a read-modify-write under a row lock
// so concurrent edits serialize onto distinct versions.
func (s *Store) UpdateArticle(ctx context.Context, id string, patch domain.ArticleUpdate) (*domain.Article, error) {
	if id == "" {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
		UPDATE kb_articles
		SET title = COALESCE($2, title),
			content = COALESCE($3, content),
			summary = COALESCE($4, summary),
			category = COALESCE($5, category),
			tags = COALESCE($6, tags),
			visibility = COALESCE($7, visibility),
			status = COALESCE($8, status),
			version = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, content, COALESCE(summary, ''), COALESCE(category, ''), tags, author_id, visibility, status, version, view_count, rating, created_at, updated_at
	`

	var article domain.Article
	err := s.observe(ctx, KindArticle, "update", patch, func(ctx context.Context) error {
		return s.WithTx(ctx, func(tx pgx.Tx) error {
			var version int
			if err := tx.QueryRow(ctx, `SELECT version FROM kb_articles WHERE id = $1 FOR UPDATE`, id).Scan(&version); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return domain.ErrArticleNotFound
				}
				return err
			}

			row := tx.QueryRow(ctx, query, id,
				patch.Title,
				patch.Content,
				patch.Summary,
				patch.Category,
				patch.Tags,
				patch.Visibility,
				patch.Status,
				version+1,
			)
			return scanArticle(row, &article)
		})
	})
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// ListArticles returns articles created inside the optional time range, oldest first.
func (s *Store) ListArticles(ctx context.Context, tr *domain.TimeRange) ([]domain.Article, error) {
	const query = `
		SELECT id, title, content, COALESCE(summary, ''), COALESCE(category, ''), tags, author_id, visibility, status, version, view_count, rating, created_at, updated_at
		FROM kb_articles
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		ORDER BY created_at
	`

	from, to := rangeBounds(tr)
	var articles []domain.Article
	err := s.observe(ctx, KindArticle, "list", nil, func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, query, from, to)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a domain.Article
			if err := scanArticle(rows, &a); err != nil {
				return err
			}
			articles = append(articles, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func scanArticle(row pgx.Row, a *domain.Article) error {
	return row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.Summary,
		&a.Category,
		&a.Tags,
		&a.AuthorID,
		&a.Visibility,
		&a.Status,
		&a.Version,
		&a.ViewCount,
		&a.Rating,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}
