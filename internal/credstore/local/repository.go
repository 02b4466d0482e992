package local

import (
	"context"
	"time"

	"ghxstship/accounts/internal/credstore"
)

// Identity is a locally stored credential record.
type Identity struct {
	ID             string
	Email          string
	PasswordHash   string
	EmailConfirmed bool
	Metadata       credstore.Metadata
	Platform       string
	CreatedAt      time.Time
}

// AuthSession tracks an issued refresh token for rotation and revocation.
type AuthSession struct {
	ID               string
	IdentityID       string
	RefreshJti       string
	RefreshTokenHash string
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	LastSeenAt       *time.Time
	CreatedAt        time.Time
}

// IdentityRepo is the identity storage needed by the local store.
// Lookups return (nil, nil) for missing rows; errors mean database failure.
type IdentityRepo interface {
	GetByID(ctx context.Context, id string) (*Identity, error)
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	Create(ctx context.Context, i *Identity) error
	Delete(ctx context.Context, id string) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	MarkConfirmed(ctx context.Context, id string) error
}

// SessionRepo is the session storage needed by the local store.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*AuthSession, error)
	Create(ctx context.Context, s *AuthSession) error
	Revoke(ctx context.Context, id string) error
	RevokeAllByIdentity(ctx context.Context, identityID string) error
	UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}
