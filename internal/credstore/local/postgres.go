package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ghxstship/accounts/internal/credstore"
)

// PostgresIdentityRepo persists identities with pgx.
type PostgresIdentityRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresIdentityRepo(pool *pgxpool.Pool) *PostgresIdentityRepo {
	return &PostgresIdentityRepo{pool: pool}
}

const identityColumns = `id, email, password_hash, email_confirmed, metadata, platform, created_at`

func scanIdentity(row pgx.Row) (*Identity, error) {
	var (
		i        Identity
		hash     *string
		platform *string
		meta     []byte
	)
	if err := row.Scan(&i.ID, &i.Email, &hash, &i.EmailConfirmed, &meta, &platform, &i.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if hash != nil {
		i.PasswordHash = *hash
	}
	if platform != nil {
		i.Platform = *platform
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &i.Metadata); err != nil {
			return nil, fmt.Errorf("local: decode identity metadata: %w", err)
		}
	}
	return &i, nil
}

func (r *PostgresIdentityRepo) GetByID(ctx context.Context, id string) (*Identity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, id)
	return scanIdentity(row)
}

func (r *PostgresIdentityRepo) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE email = $1`, email)
	return scanIdentity(row)
}

func (r *PostgresIdentityRepo) Create(ctx context.Context, i *Identity) error {
	meta, err := json.Marshal(i.Metadata)
	if err != nil {
		return fmt.Errorf("local: encode identity metadata: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO identities (id, email, password_hash, email_confirmed, metadata, platform, created_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7)`,
		i.ID, i.Email, i.PasswordHash, i.EmailConfirmed, meta, i.Platform, i.CreatedAt)
	return err
}

func (r *PostgresIdentityRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	return err
}

func (r *PostgresIdentityRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `UPDATE identities SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	return err
}

func (r *PostgresIdentityRepo) MarkConfirmed(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE identities SET email_confirmed = true WHERE id = $1`, id)
	return err
}

func domainIdentity(i *Identity) *credstore.Identity {
	if i == nil {
		return nil
	}
	return &credstore.Identity{
		ID:             i.ID,
		Email:          i.Email,
		EmailConfirmed: i.EmailConfirmed,
		Metadata:       i.Metadata,
		CreatedAt:      i.CreatedAt,
	}
}

// PostgresSessionRepo persists auth sessions with pgx.
type PostgresSessionRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresSessionRepo(pool *pgxpool.Pool) *PostgresSessionRepo {
	return &PostgresSessionRepo{pool: pool}
}

func (r *PostgresSessionRepo) GetByID(ctx context.Context, id string) (*AuthSession, error) {
	var s AuthSession
	err := r.pool.QueryRow(ctx,
		`SELECT id, identity_id, refresh_jti, refresh_token_hash, expires_at, revoked_at, last_seen_at, created_at
		 FROM auth_sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.IdentityID, &s.RefreshJti, &s.RefreshTokenHash, &s.ExpiresAt, &s.RevokedAt, &s.LastSeenAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresSessionRepo) Create(ctx context.Context, s *AuthSession) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO auth_sessions (id, identity_id, refresh_jti, refresh_token_hash, expires_at, revoked_at, last_seen_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.IdentityID, s.RefreshJti, s.RefreshTokenHash, s.ExpiresAt, s.RevokedAt, s.LastSeenAt, s.CreatedAt)
	return err
}

func (r *PostgresSessionRepo) Revoke(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE auth_sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`,
		id, time.Now().UTC())
	return err
}

func (r *PostgresSessionRepo) RevokeAllByIdentity(ctx context.Context, identityID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE auth_sessions SET revoked_at = $2 WHERE identity_id = $1 AND revoked_at IS NULL`,
		identityID, time.Now().UTC())
	return err
}

func (r *PostgresSessionRepo) UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE auth_sessions SET refresh_jti = $2, refresh_token_hash = $3 WHERE id = $1`,
		sessionID, jti, refreshTokenHash)
	return err
}

func (r *PostgresSessionRepo) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE auth_sessions SET last_seen_at = $2 WHERE id = $1`, id, at)
	return err
}
