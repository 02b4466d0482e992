package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ghxstship/accounts/internal/profile/domain"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a profile repository that uses the given pool for persistence.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get returns the profile for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*domain.Profile, error) {
	var (
		p                                                       domain.Profile
		firstName, lastName, displayName, phone, bio, avatarURL *string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, display_name, phone, bio, avatar_url, onboarding_step, onboarding_completed, updated_at
		 FROM profiles WHERE id = $1`, id).
		Scan(&p.ID, &firstName, &lastName, &displayName, &phone, &bio, &avatarURL, &p.OnboardingStep, &p.OnboardingCompleted, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if firstName != nil {
		p.FirstName = *firstName
	}
	if lastName != nil {
		p.LastName = *lastName
	}
	if displayName != nil {
		p.DisplayName = *displayName
	}
	if phone != nil {
		p.Phone = *phone
	}
	if bio != nil {
		p.Bio = *bio
	}
	if avatarURL != nil {
		p.AvatarURL = *avatarURL
	}
	return &p, nil
}

// Upsert writes the profile fields. The stored onboarding step keeps
// whichever of the old and new values is further along.
func (r *PostgresRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, first_name, last_name, display_name, phone, bio, avatar_url, onboarding_step, onboarding_completed, updated_at)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   first_name = EXCLUDED.first_name,
		   last_name = EXCLUDED.last_name,
		   display_name = EXCLUDED.display_name,
		   phone = EXCLUDED.phone,
		   bio = EXCLUDED.bio,
		   avatar_url = EXCLUDED.avatar_url,
		   onboarding_step = GREATEST(profiles.onboarding_step, EXCLUDED.onboarding_step),
		   onboarding_completed = profiles.onboarding_completed OR EXCLUDED.onboarding_completed,
		   updated_at = EXCLUDED.updated_at`,
		p.ID, p.FirstName, p.LastName, p.DisplayName, p.Phone, p.Bio, p.AvatarURL,
		p.OnboardingStep, p.OnboardingCompleted, p.UpdatedAt)
	return err
}

// AdvanceStep records the onboarding step without touching profile
// fields. The stored step never moves backward.
func (r *PostgresRepository) AdvanceStep(ctx context.Context, id string, step int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, onboarding_step, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET
		   onboarding_step = GREATEST(profiles.onboarding_step, EXCLUDED.onboarding_step),
		   updated_at = EXCLUDED.updated_at`,
		id, step, time.Now().UTC())
	return err
}

// CompleteOnboarding marks onboarding finished. Safe to repeat.
func (r *PostgresRepository) CompleteOnboarding(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, onboarding_step, onboarding_completed, updated_at) VALUES ($1, $2, true, $3)
		 ON CONFLICT (id) DO UPDATE SET
		   onboarding_step = GREATEST(profiles.onboarding_step, EXCLUDED.onboarding_step),
		   onboarding_completed = true,
		   updated_at = EXCLUDED.updated_at`,
		id, domain.StepComplete, time.Now().UTC())
	return err
}
