package relational

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/servicepulse/datalayer/domain"
)

// CreateUser inserts a user and returns the stored row.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.Email == "" {
		return nil, domain.ErrInvalidPayload
	}

	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	const query = `
		INSERT INTO users (id, email, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := s.observe(ctx, KindUser, "create", user, func(ctx context.Context) error {
		return s.pool.QueryRow(ctx, query,
			stored.ID,
			stored.Email,
			stored.FirstName,
			stored.LastName,
		).Scan(&stored.CreatedAt, &stored.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// UpdateUser applies the non-nil patch fields and returns the stored row.
func (s *Store) UpdateUser(ctx context.Context, id string, patch domain.UserUpdate) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
		UPDATE users
		SET email = COALESCE($2, email),
			first_name = COALESCE($3, first_name),
			last_name = COALESCE($4, last_name),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, first_name, last_name, created_at, updated_at
	`

	var user domain.User
	err := s.observe(ctx, KindUser, "update", patch, func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx, query, id, patch.Email, patch.FirstName, patch.LastName)
		if err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.CreatedAt, &user.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrUserNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns users created inside the optional time range, oldest first.
func (s *Store) ListUsers(ctx context.Context, tr *domain.TimeRange) ([]domain.User, error) {
	const query = `
		SELECT id, email, first_name, last_name, created_at, updated_at
		FROM users
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		ORDER BY created_at
	`

	from, to := rangeBounds(tr)
	var users []domain.User
	err := s.observe(ctx, KindUser, "list", nil, func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, query, from, to)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u domain.User
			if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt); err != nil {
				return err
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
