package repository

import (
	"context"

	"ghxstship/accounts/internal/profile/domain"
)

// Repository defines persistence for profiles and onboarding progress.
type Repository interface {
	Get(ctx context.Context, id string) (*domain.Profile, error)
	// Upsert writes the profile fields and records the onboarding step,
	// keeping whichever step is further along.
	Upsert(ctx context.Context, p *domain.Profile) error
	// AdvanceStep records that the user reached step, without touching
	// profile fields. The stored step never moves backward.
	AdvanceStep(ctx context.Context, id string, step int) error
	// CompleteOnboarding marks onboarding finished. Idempotent.
	CompleteOnboarding(ctx context.Context, id string) error
}
