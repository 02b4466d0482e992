package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ghxstship/accounts/internal/invitation/domain"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns an invitation repository that uses the given pool for persistence.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByCode returns the invitation for the code, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*domain.Invitation, error) {
	var (
		i    domain.Invitation
		role *string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, invite_code, organization_id, role, expires_at, used_at, created_at
		 FROM user_invitations WHERE invite_code = $1`, code).
		Scan(&i.ID, &i.InviteCode, &i.OrganizationID, &role, &i.ExpiresAt, &i.UsedAt, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if role != nil {
		i.Role = *role
	}
	return &i, nil
}

// Create persists the invitation to the database. The invitation must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, i *domain.Invitation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_invitations (id, invite_code, organization_id, role, expires_at, used_at, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)`,
		i.ID, i.InviteCode, i.OrganizationID, i.Role, i.ExpiresAt, i.UsedAt, i.CreatedAt)
	return err
}

// Consume marks the invitation used, guarded against concurrent
// redemption by the used_at IS NULL predicate.
func (r *PostgresRepository) Consume(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_invitations SET used_at = $2 WHERE id = $1 AND used_at IS NULL`, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
