package domain

import "time"

// Article is the canonical knowledge-base article held by the relational store.
type Article struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Summary    string    `json:"summary,omitempty"`
	Category   string    `json:"category,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	AuthorID   string    `json:"author_id"`
	Visibility string    `json:"visibility"`
	Status     string    `json:"status"`
	Version    int       `json:"version"`
	ViewCount  int       `json:"view_count"`
	Rating     float64   `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ArticleUpdate carries the mutable article fields; nil pointers are left untouched.
type ArticleUpdate struct {
	Title      *string   `json:"title,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Summary    *string   `json:"summary,omitempty"`
	Category   *string   `json:"category,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	Visibility *string   `json:"visibility,omitempty"`
	Status     *string   `json:"status,omitempty"`
}

// ArticleDocument is the denormalized search projection of a knowledge-base article.
type ArticleDocument struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Summary    string    `json:"summary,omitempty"`
	Category   string    `json:"category,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	AuthorID   string    `json:"author_id"`
	Visibility string    `json:"visibility"`
	Status     string    `json:"status"`
	ViewCount  int       `json:"view_count"`
	Rating     float64   `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Document projects an article into its search-index shape.
func (a *Article) Document() ArticleDocument {
	return ArticleDocument{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		Summary:    a.Summary,
		Category:   a.Category,
		Tags:       a.Tags,
		AuthorID:   a.AuthorID,
		Visibility: a.Visibility,
		Status:     a.Status,
		ViewCount:  a.ViewCount,
		Rating:     a.Rating,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
