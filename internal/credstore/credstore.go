// Package credstore defines the credential-store port: the external system
// that owns identities, password hashes, and session tokens. Two adapters
// implement it: gotrue (hosted auth provider over REST) and local
// (self-hosted, Postgres-backed).
package credstore

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors adapters return for known provider failures. The account
// service maps them to the public error-code taxonomy; anything else is a
// server error.
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotVerified   = errors.New("email not confirmed")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
	ErrSessionExpired     = errors.New("session expired")
	ErrUserNotFound       = errors.New("user not found")
)

// Metadata is the free-form identity metadata set at creation or by the
// OAuth provider.
type Metadata struct {
	FullName  string `json:"full_name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Identity is the credential store's authoritative user record.
type Identity struct {
	ID             string
	Email          string
	EmailConfirmed bool
	Metadata       Metadata
	CreatedAt      time.Time
}

// Session is a token pair issued by the credential store. ExpiresAt is the
// access token expiry as a Unix timestamp.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// CreateUserParams are the inputs for administrative user creation.
type CreateUserParams struct {
	Email    string
	Password string
	Metadata Metadata
	// Platform tags the identity with the product namespace it signed up
	// through.
	Platform string
}

// VerifyType distinguishes email-verification token kinds.
type VerifyType string

const (
	VerifySignup   VerifyType = "signup"
	VerifyEmail    VerifyType = "email"
	VerifyRecovery VerifyType = "recovery"
	VerifyMagic    VerifyType = "magiclink"
)

// Store is the credential-store port. All operations are blocking network
// or database calls and honor ctx cancellation.
type Store interface {
	// CreateUser creates an identity (admin operation). The email is not
	// confirmed yet; a verification link is sent separately.
	CreateUser(ctx context.Context, p CreateUserParams) (*Identity, error)
	// DeleteUser removes an identity (admin operation). Used as the
	// compensating action when platform-user provisioning fails.
	DeleteUser(ctx context.Context, id string) error
	// SendVerification sends the post-signup verification email with a
	// redirect back into the app. Best-effort from the caller's view.
	SendVerification(ctx context.Context, email, redirectTo string) error

	SignInWithPassword(ctx context.Context, email, password string) (*Identity, *Session, error)
	SignOut(ctx context.Context, accessToken string) error
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	// GetUser resolves the identity for a valid access token.
	GetUser(ctx context.Context, accessToken string) (*Identity, error)

	SendPasswordRecovery(ctx context.Context, email, redirectTo string) error
	// UpdatePassword sets a new password for the identity behind the
	// (recovery) session's access token.
	UpdatePassword(ctx context.Context, accessToken, newPassword string) error
	SendMagicLink(ctx context.Context, email, redirectTo string) error
	// VerifyToken consumes an emailed token (signup confirmation, email
	// change, recovery, magic link) and returns the session it opens, when
	// the token kind opens one. Signup/email confirmations return (nil, nil, nil).
	VerifyToken(ctx context.Context, tokenHash string, typ VerifyType) (*Identity, *Session, error)

	// OAuthURL returns the provider redirect URL that starts the OAuth flow.
	OAuthURL(provider, redirectTo string) (string, error)
	// ExchangeCode exchanges the OAuth callback code for a session.
	ExchangeCode(ctx context.Context, code string) (*Identity, *Session, error)
}
