package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ghxstship/accounts/internal/preferences/domain"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a preferences repository that uses the given pool for persistence.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get returns the stored preferences, or defaults when the user has
// never saved any. Errors mean database failure.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	var (
		p           domain.Preferences
		email, push []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, theme, language, timezone, email_notifications, push_notifications, updated_at
		 FROM user_settings WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Theme, &p.Language, &p.Timezone, &email, &push, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Defaults(userID), nil
		}
		return nil, err
	}
	if len(email) > 0 {
		if err := json.Unmarshal(email, &p.Email); err != nil {
			return nil, fmt.Errorf("preferences: decode email notifications: %w", err)
		}
	}
	if len(push) > 0 {
		if err := json.Unmarshal(push, &p.Push); err != nil {
			return nil, fmt.Errorf("preferences: decode push notifications: %w", err)
		}
	}
	return &p, nil
}

// Save replaces the user's settings row. Partial updates are not
// supported at this layer; callers always provide the full row.
func (r *PostgresRepository) Save(ctx context.Context, p *domain.Preferences) error {
	email, err := json.Marshal(p.Email)
	if err != nil {
		return fmt.Errorf("preferences: encode email notifications: %w", err)
	}
	push, err := json.Marshal(p.Push)
	if err != nil {
		return fmt.Errorf("preferences: encode push notifications: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO user_settings (user_id, theme, language, timezone, email_notifications, push_notifications, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		   theme = EXCLUDED.theme,
		   language = EXCLUDED.language,
		   timezone = EXCLUDED.timezone,
		   email_notifications = EXCLUDED.email_notifications,
		   push_notifications = EXCLUDED.push_notifications,
		   updated_at = EXCLUDED.updated_at`,
		p.UserID, p.Theme, p.Language, p.Timezone, email, push, p.UpdatedAt)
	return err
}
