package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ghxstship/accounts/internal/platformuser/domain"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a platform-user repository that uses the given pool for persistence.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, auth_user_id, platform, email, full_name, avatar_url, organization_id, platform_roles, status, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.PlatformUser, error) {
	var (
		u         domain.PlatformUser
		fullName  *string
		avatarURL *string
		orgID     *string
	)
	err := row.Scan(&u.ID, &u.AuthUserID, &u.Platform, &u.Email, &fullName, &avatarURL, &orgID, &u.PlatformRoles, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if fullName != nil {
		u.FullName = *fullName
	}
	if avatarURL != nil {
		u.AvatarURL = *avatarURL
	}
	if orgID != nil {
		u.OrganizationID = *orgID
	}
	return &u, nil
}

// GetByID returns the platform user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.PlatformUser, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM platform_users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmailAndPlatform returns the platform user for the email on the given platform, or nil if not found.
func (r *PostgresRepository) GetByEmailAndPlatform(ctx context.Context, email, platform string) (*domain.PlatformUser, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM platform_users WHERE email = $1 AND platform = $2`, email, platform)
	return scanUser(row)
}

// GetByAuthUserAndPlatform returns the platform user provisioned for the auth user on the given platform, or nil if not found.
func (r *PostgresRepository) GetByAuthUserAndPlatform(ctx context.Context, authUserID, platform string) (*domain.PlatformUser, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM platform_users WHERE auth_user_id = $1 AND platform = $2`, authUserID, platform)
	return scanUser(row)
}

// Create persists the platform user to the database. The user must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.PlatformUser) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO platform_users (id, auth_user_id, platform, email, full_name, avatar_url, organization_id, platform_roles, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11)`,
		u.ID, u.AuthUserID, u.Platform, u.Email, u.FullName, u.AvatarURL, u.OrganizationID, u.PlatformRoles, u.Status, u.CreatedAt, u.UpdatedAt)
	return err
}

// Update rewrites the mutable fields of the platform user record. Returns an error if the update fails.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.PlatformUser) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE platform_users
		 SET email = $2, full_name = NULLIF($3, ''), avatar_url = NULLIF($4, ''),
		     organization_id = NULLIF($5, ''), platform_roles = $6, status = $7, updated_at = $8
		 WHERE id = $1`,
		u.ID, u.Email, u.FullName, u.AvatarURL, u.OrganizationID, u.PlatformRoles, u.Status, u.UpdatedAt)
	return err
}

// Delete removes the platform user row. Used to unwind a partial signup.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM platform_users WHERE id = $1`, id)
	return err
}
