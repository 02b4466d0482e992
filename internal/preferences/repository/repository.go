package repository

import (
	"context"

	"ghxstship/accounts/internal/preferences/domain"
)

// Repository defines persistence for user settings.
type Repository interface {
	// Get returns the stored preferences, or the defaults when the user
	// has never saved any.
	Get(ctx context.Context, userID string) (*domain.Preferences, error)
	// Save replaces the user's settings row.
	Save(ctx context.Context, p *domain.Preferences) error
}
