// Package local implements the credential-store port on our own
// Postgres tables: bcrypt password hashes, asymmetric JWT sessions with
// refresh rotation, and in-memory one-time email tokens. It exists for
// self-hosted deployments where no hosted auth provider is available.
package local

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"ghxstship/accounts/internal/credstore"
	"ghxstship/accounts/internal/security"
)

const (
	verifyTTL   = 24 * time.Hour
	recoveryTTL = time.Hour
	magicTTL    = 15 * time.Minute

	minPasswordLen = 8
	// bcrypt truncates input beyond 72 bytes.
	maxPasswordLen = 72
)

// Mailer delivers a one-time link to an address. Deployments without an
// email provider use LogMailer.
type Mailer interface {
	Send(ctx context.Context, email, subject, link string) error
}

// LogMailer writes the link to the process log instead of sending email.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, email, subject, link string) error {
	log.Printf("mail to=%s subject=%q link=%s", email, subject, link)
	return nil
}

// Store implements credstore.Store against local Postgres state.
type Store struct {
	identities IdentityRepo
	sessions   SessionRepo
	hasher     *security.Hasher
	tokens     *security.TokenProvider
	codes      *CodeStore
	mailer     Mailer
}

func NewStore(identities IdentityRepo, sessions SessionRepo, hasher *security.Hasher, tokens *security.TokenProvider, codes *CodeStore, mailer Mailer) *Store {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Store{
		identities: identities,
		sessions:   sessions,
		hasher:     hasher,
		tokens:     tokens,
		codes:      codes,
		mailer:     mailer,
	}
}

var _ credstore.Store = (*Store)(nil)

func (s *Store) CreateUser(ctx context.Context, p credstore.CreateUserParams) (*credstore.Identity, error) {
	email := strings.TrimSpace(strings.ToLower(p.Email))
	if len(p.Password) < minPasswordLen || len(p.Password) > maxPasswordLen {
		return nil, credstore.ErrWeakPassword
	}
	existing, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, credstore.ErrEmailExists
	}
	hashed, err := s.hasher.Hash([]byte(p.Password))
	if err != nil {
		return nil, err
	}
	ident := &Identity{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		Metadata:     p.Metadata,
		Platform:     p.Platform,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.identities.Create(ctx, ident); err != nil {
		return nil, err
	}
	return domainIdentity(ident), nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.identities.Delete(ctx, id)
}

func (s *Store) SendVerification(ctx context.Context, email, redirectTo string) error {
	return s.sendLink(ctx, email, credstore.VerifySignup, verifyTTL, redirectTo, "Confirm your email")
}

func (s *Store) SendPasswordRecovery(ctx context.Context, email, redirectTo string) error {
	ident, err := s.identities.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if ident == nil {
		// No account: nothing to send, nothing to reveal.
		return nil
	}
	return s.sendLink(ctx, ident.Email, credstore.VerifyRecovery, recoveryTTL, redirectTo, "Reset your password")
}

func (s *Store) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	ident, err := s.identities.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if ident == nil {
		return nil
	}
	return s.sendLink(ctx, ident.Email, credstore.VerifyMagic, magicTTL, redirectTo, "Your sign-in link")
}

func (s *Store) sendLink(ctx context.Context, email string, typ credstore.VerifyType, ttl time.Duration, redirectTo, subject string) error {
	tokenHash, err := s.codes.Issue(email, typ, ttl)
	if err != nil {
		return err
	}
	sep := "?"
	if strings.Contains(redirectTo, "?") {
		sep = "&"
	}
	link := redirectTo + sep + "token_hash=" + url.QueryEscape(tokenHash) + "&type=" + url.QueryEscape(string(typ))
	return s.mailer.Send(ctx, email, subject, link)
}

func (s *Store) SignInWithPassword(ctx context.Context, email, password string) (*credstore.Identity, *credstore.Session, error) {
	ident, err := s.identities.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, nil, err
	}
	if ident == nil || ident.PasswordHash == "" {
		return nil, nil, credstore.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(ident.PasswordHash, []byte(password)); err != nil {
		return nil, nil, credstore.ErrInvalidCredentials
	}
	if !ident.EmailConfirmed {
		return nil, nil, credstore.ErrEmailNotVerified
	}
	sess, err := s.openSession(ctx, ident)
	if err != nil {
		return nil, nil, err
	}
	return domainIdentity(ident), sess, nil
}

// openSession issues an access/refresh pair and records the session row
// so the refresh token can be rotated and revoked.
func (s *Store) openSession(ctx context.Context, ident *Identity) (*credstore.Session, error) {
	sessionID := uuid.New().String()
	refreshToken, jti, refreshExp, err := s.tokens.IssueRefresh(sessionID, ident.ID, ident.Email)
	if err != nil {
		return nil, err
	}
	accessToken, _, accessExp, err := s.tokens.IssueAccess(sessionID, ident.ID, ident.Email)
	if err != nil {
		return nil, err
	}
	sess := &AuthSession{
		ID:               sessionID,
		IdentityID:       ident.ID,
		RefreshJti:       jti,
		RefreshTokenHash: security.HashRefreshToken(refreshToken),
		ExpiresAt:        refreshExp,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &credstore.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp.Unix(),
	}, nil
}

// SignOut revokes the session behind the access token. An invalid token
// means there is nothing to revoke, which is not an error.
func (s *Store) SignOut(ctx context.Context, accessToken string) error {
	sessionID, _, _, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		return nil
	}
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *Store) RefreshSession(ctx context.Context, refreshToken string) (*credstore.Session, error) {
	sessionID, jti, identityID, email, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, credstore.ErrSessionExpired
	}
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if sess == nil || sess.RevokedAt != nil || !sess.ExpiresAt.After(now) {
		return nil, credstore.ErrSessionExpired
	}
	if sess.RefreshJti != jti {
		// An old rotated token came back: assume theft, drop everything.
		_ = s.sessions.RevokeAllByIdentity(ctx, identityID)
		return nil, credstore.ErrSessionExpired
	}
	if !security.RefreshTokenHashEqual(refreshToken, sess.RefreshTokenHash) {
		return nil, credstore.ErrSessionExpired
	}
	_ = s.sessions.UpdateLastSeen(ctx, sessionID, now)

	newRefresh, newJti, _, err := s.tokens.IssueRefresh(sessionID, identityID, email)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateRefreshToken(ctx, sessionID, newJti, security.HashRefreshToken(newRefresh)); err != nil {
		return nil, err
	}
	accessToken, _, accessExp, err := s.tokens.IssueAccess(sessionID, identityID, email)
	if err != nil {
		return nil, err
	}
	return &credstore.Session{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    accessExp.Unix(),
	}, nil
}

func (s *Store) GetUser(ctx context.Context, accessToken string) (*credstore.Identity, error) {
	sessionID, identityID, _, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		return nil, credstore.ErrInvalidToken
	}
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.RevokedAt != nil {
		return nil, credstore.ErrSessionExpired
	}
	ident, err := s.identities.GetByID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if ident == nil {
		return nil, credstore.ErrUserNotFound
	}
	return domainIdentity(ident), nil
}

func (s *Store) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	if len(newPassword) < minPasswordLen || len(newPassword) > maxPasswordLen {
		return credstore.ErrWeakPassword
	}
	ident, err := s.GetUser(ctx, accessToken)
	if err != nil {
		return err
	}
	hashed, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	return s.identities.UpdatePasswordHash(ctx, ident.ID, hashed)
}

func (s *Store) VerifyToken(ctx context.Context, tokenHash string, typ credstore.VerifyType) (*credstore.Identity, *credstore.Session, error) {
	email, err := s.codes.Consume(tokenHash, typ)
	if err != nil {
		return nil, nil, err
	}
	ident, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if ident == nil {
		return nil, nil, credstore.ErrUserNotFound
	}
	if !ident.EmailConfirmed {
		if err := s.identities.MarkConfirmed(ctx, ident.ID); err != nil {
			return nil, nil, err
		}
		ident.EmailConfirmed = true
	}
	switch typ {
	case credstore.VerifyRecovery, credstore.VerifyMagic:
		sess, err := s.openSession(ctx, ident)
		if err != nil {
			return nil, nil, err
		}
		return domainIdentity(ident), sess, nil
	default:
		// Confirmation tokens do not open a session.
		return nil, nil, nil
	}
}

// OAuthURL is unsupported: the local backend has no upstream identity
// providers. Deployments that need OAuth run the gotrue backend.
func (s *Store) OAuthURL(provider, _ string) (string, error) {
	return "", fmt.Errorf("local: oauth provider %q not supported", provider)
}

func (s *Store) ExchangeCode(context.Context, string) (*credstore.Identity, *credstore.Session, error) {
	return nil, nil, fmt.Errorf("local: oauth code exchange not supported")
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
