// Package service orchestrates the account provisioning and
// session-lifecycle flow: validation, invite redemption, credential-store
// calls, platform-user provisioning, and onboarding progress. Every
// public operation returns either a result or an *autherr.Error.
package service

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"ghxstship/accounts/internal/autherr"
	"ghxstship/accounts/internal/credstore"
	invitationdomain "ghxstship/accounts/internal/invitation/domain"
	invitationservice "ghxstship/accounts/internal/invitation/service"
	orgdomain "ghxstship/accounts/internal/organization/domain"
	"ghxstship/accounts/internal/platform"
	userdomain "ghxstship/accounts/internal/platformuser/domain"
	prefsdomain "ghxstship/accounts/internal/preferences/domain"
	profiledomain "ghxstship/accounts/internal/profile/domain"
	"ghxstship/accounts/internal/validation"
)

// UserRepo is the minimal platform-user repository needed by the service.
type UserRepo interface {
	GetByEmailAndPlatform(ctx context.Context, email, platform string) (*userdomain.PlatformUser, error)
	GetByAuthUserAndPlatform(ctx context.Context, authUserID, platform string) (*userdomain.PlatformUser, error)
	Create(ctx context.Context, u *userdomain.PlatformUser) error
	Update(ctx context.Context, u *userdomain.PlatformUser) error
}

// ProfileRepo is the minimal profile repository needed by the service.
type ProfileRepo interface {
	Get(ctx context.Context, id string) (*profiledomain.Profile, error)
	Upsert(ctx context.Context, p *profiledomain.Profile) error
	AdvanceStep(ctx context.Context, id string, step int) error
	CompleteOnboarding(ctx context.Context, id string) error
}

// PreferencesRepo is the minimal preferences repository needed by the service.
type PreferencesRepo interface {
	Get(ctx context.Context, userID string) (*prefsdomain.Preferences, error)
	Save(ctx context.Context, p *prefsdomain.Preferences) error
}

// OrgRepo is the minimal organization repository needed by the service.
type OrgRepo interface {
	GetOrganizationByID(ctx context.Context, id string) (*orgdomain.Org, error)
}

// InviteRedeemer consumes invite codes.
type InviteRedeemer interface {
	Redeem(ctx context.Context, code string) (*invitationdomain.Invitation, error)
}

// AuditLogger records auth events. Best-effort: the service never fails
// an operation because an audit write failed.
type AuditLogger interface {
	AuthEvent(ctx context.Context, action, userID, detail string)
}

// User is the assembled user view returned by auth operations.
type User struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	EmailVerified  bool     `json:"emailVerified"`
	FullName       string   `json:"fullName,omitempty"`
	AvatarURL      string   `json:"avatarUrl,omitempty"`
	Platform       string   `json:"platform"`
	OrganizationID string   `json:"organizationId,omitempty"`
	Roles          []string `json:"roles"`
	Status         string   `json:"status"`

	OnboardingStep      int  `json:"onboardingStep"`
	OnboardingCompleted bool `json:"onboardingCompleted"`
}

// Session is the token pair returned to the caller.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
}

// AuthResult is the outcome of an operation that may open a session.
type AuthResult struct {
	User              *User    `json:"user,omitempty"`
	Session           *Session `json:"session,omitempty"`
	NeedsVerification bool     `json:"needsVerification,omitempty"`
}

// AccountService implements the account flow. All dependencies are
// injected; audit may be nil.
type AccountService struct {
	creds        credstore.Store
	users        UserRepo
	profiles     ProfileRepo
	prefs        PreferencesRepo
	orgs         OrgRepo
	invites      InviteRedeemer
	roleDefaults platform.RoleDefaults
	appBaseURL   string
	audit        AuditLogger
}

// NewAccountService returns an AccountService with the given dependencies.
func NewAccountService(
	creds credstore.Store,
	users UserRepo,
	profiles ProfileRepo,
	prefs PreferencesRepo,
	orgs OrgRepo,
	invites InviteRedeemer,
	roleDefaults platform.RoleDefaults,
	appBaseURL string,
	audit AuditLogger,
) *AccountService {
	return &AccountService{
		creds:        creds,
		users:        users,
		profiles:     profiles,
		prefs:        prefs,
		orgs:         orgs,
		invites:      invites,
		roleDefaults: roleDefaults,
		appBaseURL:   strings.TrimRight(appBaseURL, "/"),
		audit:        audit,
	}
}

// mapCredErr translates credstore sentinels to the public taxonomy.
// Anything unrecognized becomes server_error with the message preserved,
// except transport failures which become network_error.
func mapCredErr(err error) *autherr.Error {
	switch {
	case errors.Is(err, credstore.ErrEmailExists):
		return autherr.New(autherr.CodeEmailExists)
	case errors.Is(err, credstore.ErrInvalidCredentials):
		return autherr.New(autherr.CodeInvalidCredentials)
	case errors.Is(err, credstore.ErrEmailNotVerified):
		return autherr.New(autherr.CodeEmailNotVerified)
	case errors.Is(err, credstore.ErrWeakPassword):
		return autherr.New(autherr.CodeWeakPassword)
	case errors.Is(err, credstore.ErrRateLimited):
		return autherr.New(autherr.CodeRateLimited)
	case errors.Is(err, credstore.ErrInvalidToken):
		return autherr.New(autherr.CodeInvalidToken)
	case errors.Is(err, credstore.ErrExpiredToken):
		return autherr.New(autherr.CodeExpiredToken)
	case errors.Is(err, credstore.ErrSessionExpired):
		return autherr.New(autherr.CodeSessionExpired)
	case errors.Is(err, credstore.ErrUserNotFound):
		return autherr.New(autherr.CodeUserNotFound)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return autherr.New(autherr.CodeNetworkError)
	}
	return autherr.WithMessage(autherr.CodeServerError, err.Error())
}

func serverErr(err error) *autherr.Error {
	return autherr.WithMessage(autherr.CodeServerError, err.Error())
}

func (s *AccountService) auditEvent(ctx context.Context, action, userID, detail string) {
	if s.audit != nil {
		s.audit.AuthEvent(ctx, action, userID, detail)
	}
}

func newSession(cs *credstore.Session) *Session {
	if cs == nil {
		return nil
	}
	return &Session{
		AccessToken:  cs.AccessToken,
		RefreshToken: cs.RefreshToken,
		ExpiresAt:    cs.ExpiresAt,
	}
}

// assembleUser merges the platform-user row, the credential-store
// identity, and the profile into one view. Any argument may be nil.
func assembleUser(pu *userdomain.PlatformUser, ident *credstore.Identity, prof *profiledomain.Profile) *User {
	if pu == nil {
		return nil
	}
	u := &User{
		ID:             pu.AuthUserID,
		Email:          pu.Email,
		FullName:       pu.FullName,
		AvatarURL:      pu.AvatarURL,
		Platform:       pu.Platform,
		OrganizationID: pu.OrganizationID,
		Roles:          pu.PlatformRoles,
		Status:         string(pu.Status),
	}
	if ident != nil {
		u.EmailVerified = ident.EmailConfirmed
	}
	if prof != nil {
		u.OnboardingStep = prof.OnboardingStep
		u.OnboardingCompleted = prof.OnboardingCompleted
	}
	return u
}

// SignUp creates an identity and provisions the platform user. If the
// platform-user insert fails after identity creation, the identity is
// deleted so no orphaned credentials remain.
func (s *AccountService) SignUp(ctx context.Context, p platform.Platform, in validation.SignUpInput) (*AuthResult, error) {
	if fieldErrs := in.Validate(); len(fieldErrs) > 0 {
		return nil, autherr.Validation(fieldErrs)
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))

	existing, err := s.users.GetByEmailAndPlatform(ctx, email, string(p))
	if err != nil {
		return nil, serverErr(err)
	}
	if existing != nil {
		return nil, autherr.New(autherr.CodeEmailExists)
	}

	orgID := ""
	roles := s.roleDefaults.DefaultRoles(p)
	if in.InviteCode != "" {
		inv, err := s.invites.Redeem(ctx, in.InviteCode)
		if err != nil {
			switch {
			case errors.Is(err, invitationservice.ErrInviteNotFound),
				errors.Is(err, invitationservice.ErrInviteUsed):
				return nil, autherr.WithMessage(autherr.CodeInvalidToken, err.Error())
			case errors.Is(err, invitationservice.ErrInviteExpired):
				return nil, autherr.WithMessage(autherr.CodeExpiredToken, err.Error())
			}
			return nil, serverErr(err)
		}
		orgID = inv.OrganizationID
		if inv.Role != "" {
			roles = []string{inv.Role}
		}
	} else if in.OrganizationID != "" {
		org, err := s.orgs.GetOrganizationByID(ctx, in.OrganizationID)
		if err != nil {
			return nil, serverErr(err)
		}
		if org == nil {
			return nil, autherr.Validation([]autherr.FieldError{
				{Field: "organizationId", Message: "organization not found"},
			})
		}
		orgID = org.ID
	}

	fullName := strings.TrimSpace(in.FirstName + " " + in.LastName)
	ident, err := s.creds.CreateUser(ctx, credstore.CreateUserParams{
		Email:    email,
		Password: in.Password,
		Metadata: credstore.Metadata{
			FullName:  fullName,
			FirstName: in.FirstName,
			LastName:  in.LastName,
		},
		Platform: string(p),
	})
	if err != nil {
		return nil, mapCredErr(err)
	}

	now := time.Now().UTC()
	pu := &userdomain.PlatformUser{
		ID:             uuid.New().String(),
		AuthUserID:     ident.ID,
		Platform:       string(p),
		Email:          email,
		FullName:       fullName,
		OrganizationID: orgID,
		PlatformRoles:  roles,
		Status:         userdomain.UserStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := pu.Validate(); err != nil {
		return nil, serverErr(err)
	}
	if err := s.users.Create(ctx, pu); err != nil {
		// Compensating action: drop the identity we just created.
		if delErr := s.creds.DeleteUser(ctx, ident.ID); delErr != nil {
			log.Printf("signup: rollback identity %s failed: %v", ident.ID, delErr)
		}
		return nil, serverErr(err)
	}

	if err := s.profiles.Upsert(ctx, &profiledomain.Profile{
		ID:        ident.ID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		UpdatedAt: now,
	}); err != nil {
		log.Printf("signup: profile write for %s failed: %v", ident.ID, err)
	}

	if err := s.creds.SendVerification(ctx, email, s.appBaseURL+"/auth/verify"); err != nil {
		log.Printf("signup: verification email for %s failed: %v", email, err)
	}

	s.auditEvent(ctx, "signup", ident.ID, string(p))
	return &AuthResult{
		User:              assembleUser(pu, ident, nil),
		NeedsVerification: true,
	}, nil
}

// SignIn authenticates with email and password and assembles the full
// user view for the platform.
func (s *AccountService) SignIn(ctx context.Context, p platform.Platform, in validation.SignInInput) (*AuthResult, error) {
	if fieldErrs := in.Validate(); len(fieldErrs) > 0 {
		return nil, autherr.Validation(fieldErrs)
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))

	ident, sess, err := s.creds.SignInWithPassword(ctx, email, in.Password)
	if err != nil {
		s.auditEvent(ctx, "login_failure", "", email)
		return nil, mapCredErr(err)
	}

	pu, err := s.users.GetByAuthUserAndPlatform(ctx, ident.ID, string(p))
	if err != nil {
		return nil, serverErr(err)
	}
	if pu == nil {
		return nil, autherr.New(autherr.CodeUserNotFound)
	}

	prof, err := s.profiles.Get(ctx, ident.ID)
	if err != nil {
		log.Printf("signin: profile read for %s failed: %v", ident.ID, err)
		prof = nil
	}

	s.auditEvent(ctx, "login", ident.ID, string(p))
	return &AuthResult{
		User:    assembleUser(pu, ident, prof),
		Session: newSession(sess),
	}, nil
}

// SignOut invalidates the session behind the access token. Idempotent:
// a failed revocation is logged but never blocks the caller's own
// cleanup.
func (s *AccountService) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := s.creds.SignOut(ctx, accessToken); err != nil {
		log.Printf("signout: %v", err)
		return nil
	}
	s.auditEvent(ctx, "logout", "", "")
	return nil
}

// ForgotPassword sends a recovery email. It reports success whether or
// not the address has an account, so callers cannot enumerate accounts.
func (s *AccountService) ForgotPassword(ctx context.Context, in validation.ForgotPasswordInput) error {
	if fieldErrs := in.Validate(); len(fieldErrs) > 0 {
		return autherr.Validation(fieldErrs)
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if err := s.creds.SendPasswordRecovery(ctx, email, s.appBaseURL+"/auth/reset-password"); err != nil {
		log.Printf("forgot-password: recovery for %s failed: %v", email, err)
	}
	return nil
}

// ResetPassword sets a new password using a recovery session's access
// token.
func (s *AccountService) ResetPassword(ctx context.Context, accessToken string, in validation.ResetPasswordInput) error {
	if fieldErrs := in.Validate(); len(fieldErrs) > 0 {
		return autherr.Validation(fieldErrs)
	}
	if accessToken == "" {
		return autherr.New(autherr.CodeInvalidToken)
	}
	if err := s.creds.UpdatePassword(ctx, accessToken, in.Password); err != nil {
		return mapCredErr(err)
	}
	return nil
}

// MagicLink sends a passwordless sign-in email.
func (s *AccountService) MagicLink(ctx context.Context, in validation.MagicLinkInput) error {
	if fieldErrs := in.Validate(); len(fieldErrs) > 0 {
		return autherr.Validation(fieldErrs)
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if err := s.creds.SendMagicLink(ctx, email, s.appBaseURL+"/auth/callback"); err != nil {
		return mapCredErr(err)
	}
	return nil
}

// OAuthURL returns the provider redirect that starts the OAuth flow.
func (s *AccountService) OAuthURL(provider string) (string, error) {
	u, err := s.creds.OAuthURL(provider, s.appBaseURL+"/auth/callback")
	if err != nil {
		return "", autherr.WithMessage(autherr.CodeOAuthError, err.Error())
	}
	return u, nil
}

// OAuthCallback exchanges the provider code for a session and looks up
// or creates the platform user. Unlike sign-up, a failed insert here
// does not delete the identity: the external provider owns it.
func (s *AccountService) OAuthCallback(ctx context.Context, p platform.Platform, code string) (*AuthResult, error) {
	if code == "" {
		return nil, autherr.New(autherr.CodeOAuthError)
	}
	ident, sess, err := s.creds.ExchangeCode(ctx, code)
	if err != nil {
		return nil, autherr.WithMessage(autherr.CodeOAuthError, err.Error())
	}

	pu, err := s.users.GetByAuthUserAndPlatform(ctx, ident.ID, string(p))
	if err != nil {
		return nil, serverErr(err)
	}
	if pu == nil {
		now := time.Now().UTC()
		fullName := ident.Metadata.FullName
		if fullName == "" {
			fullName = strings.TrimSpace(ident.Metadata.FirstName + " " + ident.Metadata.LastName)
		}
		pu = &userdomain.PlatformUser{
			ID:            uuid.New().String(),
			AuthUserID:    ident.ID,
			Platform:      string(p),
			Email:         ident.Email,
			FullName:      fullName,
			AvatarURL:     ident.Metadata.AvatarURL,
			PlatformRoles: s.roleDefaults.DefaultRoles(p),
			Status:        userdomain.UserStatusActive,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.users.Create(ctx, pu); err != nil {
			return nil, serverErr(err)
		}
	}

	prof, err := s.profiles.Get(ctx, ident.ID)
	if err != nil {
		prof = nil
	}
	s.auditEvent(ctx, "login", ident.ID, "oauth:"+string(p))
	return &AuthResult{
		User:    assembleUser(pu, ident, prof),
		Session: newSession(sess),
	}, nil
}

// VerifyEmail consumes an emailed token. Recovery and magic-link tokens
// open a session; confirmation tokens return a bare success.
func (s *AccountService) VerifyEmail(ctx context.Context, p platform.Platform, tokenHash, typ string) (*AuthResult, error) {
	if tokenHash == "" {
		return nil, autherr.New(autherr.CodeInvalidToken)
	}
	vt := credstore.VerifyType(typ)
	switch vt {
	case credstore.VerifySignup, credstore.VerifyEmail, credstore.VerifyRecovery, credstore.VerifyMagic:
	case "":
		vt = credstore.VerifySignup
	default:
		return nil, autherr.Validation([]autherr.FieldError{
			{Field: "type", Message: "unknown verification type"},
		})
	}

	ident, sess, err := s.creds.VerifyToken(ctx, tokenHash, vt)
	if err != nil {
		return nil, mapCredErr(err)
	}
	if ident == nil {
		return &AuthResult{}, nil
	}

	pu, err := s.users.GetByAuthUserAndPlatform(ctx, ident.ID, string(p))
	if err != nil {
		return nil, serverErr(err)
	}
	return &AuthResult{
		User:    assembleUser(pu, ident, nil),
		Session: newSession(sess),
	}, nil
}

// RefreshSession exchanges a refresh token for a new pair. Every
// failure, whatever the cause, is reported as session_expired.
func (s *AccountService) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, autherr.New(autherr.CodeSessionExpired)
	}
	sess, err := s.creds.RefreshSession(ctx, refreshToken)
	if err != nil || sess == nil {
		return nil, autherr.New(autherr.CodeSessionExpired)
	}
	return newSession(sess), nil
}

// GetSession resolves the current user from an access token. It never
// fails: any error yields a nil user and session, so "no session" and
// "broken session" look the same to the caller.
func (s *AccountService) GetSession(ctx context.Context, p platform.Platform, accessToken string) *AuthResult {
	if accessToken == "" {
		return &AuthResult{}
	}
	ident, err := s.creds.GetUser(ctx, accessToken)
	if err != nil || ident == nil {
		return &AuthResult{}
	}
	pu, err := s.users.GetByAuthUserAndPlatform(ctx, ident.ID, string(p))
	if err != nil || pu == nil {
		return &AuthResult{}
	}
	prof, err := s.profiles.Get(ctx, ident.ID)
	if err != nil {
		prof = nil
	}
	return &AuthResult{
		User: assembleUser(pu, ident, prof),
		Session: &Session{
			AccessToken: accessToken,
		},
	}
}

// UpdateProfile writes the onboarding profile step: full name and avatar
// on the platform user, plus a best-effort secondary write of the
// profile record with the step advanced.
func (s *AccountService) UpdateProfile(ctx context.Context, p platform.Platform, authUserID string, in validation.ProfileSetupInput) (*User, error) {
	if fieldErrs := in.Validate(); len(fieldErrs) > 0 {
		return nil, autherr.Validation(fieldErrs)
	}
	pu, err := s.users.GetByAuthUserAndPlatform(ctx, authUserID, string(p))
	if err != nil {
		return nil, serverErr(err)
	}
	if pu == nil {
		return nil, autherr.New(autherr.CodeUserNotFound)
	}

	pu.FullName = strings.TrimSpace(in.FirstName + " " + in.LastName)
	if in.AvatarURL != "" {
		pu.AvatarURL = in.AvatarURL
	}
	pu.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, pu); err != nil {
		return nil, serverErr(err)
	}

	if err := s.profiles.Upsert(ctx, &profiledomain.Profile{
		ID:             authUserID,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		DisplayName:    in.DisplayName,
		Phone:          in.Phone,
		Bio:            in.Bio,
		AvatarURL:      in.AvatarURL,
		OnboardingStep: profiledomain.StepProfile,
		UpdatedAt:      time.Now().UTC(),
	}); err != nil {
		// Secondary write: the platform-user update already succeeded.
		log.Printf("update-profile: profile write for %s failed: %v", authUserID, err)
	}

	prof, err := s.profiles.Get(ctx, authUserID)
	if err != nil {
		prof = nil
	}
	return assembleUser(pu, nil, prof), nil
}

// UpdateOrganization records the onboarding organization step.
func (s *AccountService) UpdateOrganization(ctx context.Context, p platform.Platform, authUserID string, in validation.OrganizationSetupInput) (*User, error) {
	if fieldErrs := in.Validate(); len(fieldErrs) > 0 {
		return nil, autherr.Validation(fieldErrs)
	}
	org, err := s.orgs.GetOrganizationByID(ctx, in.OrganizationID)
	if err != nil {
		return nil, serverErr(err)
	}
	if org == nil {
		return nil, autherr.Validation([]autherr.FieldError{
			{Field: "organizationId", Message: "organization not found"},
		})
	}

	pu, err := s.users.GetByAuthUserAndPlatform(ctx, authUserID, string(p))
	if err != nil {
		return nil, serverErr(err)
	}
	if pu == nil {
		return nil, autherr.New(autherr.CodeUserNotFound)
	}

	pu.OrganizationID = org.ID
	pu.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, pu); err != nil {
		return nil, serverErr(err)
	}
	if err := s.profiles.AdvanceStep(ctx, authUserID, profiledomain.StepOrganization); err != nil {
		log.Printf("update-organization: step write for %s failed: %v", authUserID, err)
	}
	return assembleUser(pu, nil, nil), nil
}

// SelectRole records the onboarding role step.
func (s *AccountService) SelectRole(ctx context.Context, p platform.Platform, authUserID string, in validation.RoleSelectionInput) (*User, error) {
	if fieldErrs := in.Validate(); len(fieldErrs) > 0 {
		return nil, autherr.Validation(fieldErrs)
	}
	pu, err := s.users.GetByAuthUserAndPlatform(ctx, authUserID, string(p))
	if err != nil {
		return nil, serverErr(err)
	}
	if pu == nil {
		return nil, autherr.New(autherr.CodeUserNotFound)
	}

	pu.PlatformRoles = []string{in.Role}
	pu.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, pu); err != nil {
		return nil, serverErr(err)
	}
	if err := s.profiles.AdvanceStep(ctx, authUserID, profiledomain.StepRole); err != nil {
		log.Printf("select-role: step write for %s failed: %v", authUserID, err)
	}
	return assembleUser(pu, nil, nil), nil
}

// UpdatePreferences replaces the user's settings row and records the
// onboarding preferences step.
func (s *AccountService) UpdatePreferences(ctx context.Context, authUserID string, in validation.PreferencesInput) (*prefsdomain.Preferences, error) {
	if fieldErrs := in.Validate(); len(fieldErrs) > 0 {
		return nil, autherr.Validation(fieldErrs)
	}
	p := &prefsdomain.Preferences{
		UserID:   authUserID,
		Theme:    in.Theme,
		Language: in.Language,
		Timezone: in.Timezone,
		Email: prefsdomain.EmailNotifications{
			Marketing:      in.MarketingEmails,
			OrderUpdates:   in.EmailNotifications,
			EventReminders: in.EmailNotifications,
		},
		Push: prefsdomain.PushNotifications{
			Enabled:        in.PushNotifications,
			OrderUpdates:   in.PushNotifications,
			EventReminders: in.PushNotifications,
		},
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.prefs.Save(ctx, p); err != nil {
		return nil, serverErr(err)
	}
	if err := s.profiles.AdvanceStep(ctx, authUserID, profiledomain.StepPreferences); err != nil {
		log.Printf("update-preferences: step write for %s failed: %v", authUserID, err)
	}
	return p, nil
}

// CompleteOnboarding marks the flow finished. Idempotent: repeating it
// leaves the completed flag set and never errors.
func (s *AccountService) CompleteOnboarding(ctx context.Context, authUserID string) (*profiledomain.Profile, error) {
	if err := s.profiles.CompleteOnboarding(ctx, authUserID); err != nil {
		return nil, serverErr(err)
	}
	prof, err := s.profiles.Get(ctx, authUserID)
	if err != nil {
		return nil, serverErr(err)
	}
	return prof, nil
}
