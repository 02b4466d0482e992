package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ghxstship/accounts/internal/autherr"
	"ghxstship/accounts/internal/credstore"
	invitationdomain "ghxstship/accounts/internal/invitation/domain"
	invitationrepo "ghxstship/accounts/internal/invitation/service"
	orgdomain "ghxstship/accounts/internal/organization/domain"
	"ghxstship/accounts/internal/platform"
	userdomain "ghxstship/accounts/internal/platformuser/domain"
	prefsdomain "ghxstship/accounts/internal/preferences/domain"
	profiledomain "ghxstship/accounts/internal/profile/domain"
	"ghxstship/accounts/internal/validation"
)

// fakeCreds is an in-memory credstore that records calls and can be
// primed with failures.
type fakeCreds struct {
	mu       sync.Mutex
	users    map[string]*credstore.Identity // by id
	nextID   int
	deleted  []string
	created  int
	failures map[string]error // per-method override
	sessions int
}

func newFakeCreds() *fakeCreds {
	return &fakeCreds{
		users:    make(map[string]*credstore.Identity),
		failures: make(map[string]error),
	}
}

func (f *fakeCreds) fail(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[method]
}

func (f *fakeCreds) CreateUser(_ context.Context, p credstore.CreateUserParams) (*credstore.Identity, error) {
	if err := f.fail("CreateUser"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.created++
	id := &credstore.Identity{
		ID:        "auth-" + p.Email,
		Email:     p.Email,
		Metadata:  p.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	f.users[id.ID] = id
	return id, nil
}

func (f *fakeCreds) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCreds) SendVerification(context.Context, string, string) error { return nil }

func (f *fakeCreds) SignInWithPassword(_ context.Context, email, _ string) (*credstore.Identity, *credstore.Session, error) {
	if err := f.fail("SignInWithPassword"); err != nil {
		return nil, nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			f.sessions++
			return u, &credstore.Session{AccessToken: "at", RefreshToken: "rt", ExpiresAt: 1900000000}, nil
		}
	}
	return nil, nil, credstore.ErrInvalidCredentials
}

func (f *fakeCreds) SignOut(context.Context, string) error {
	return f.fail("SignOut")
}

func (f *fakeCreds) RefreshSession(_ context.Context, token string) (*credstore.Session, error) {
	if err := f.fail("RefreshSession"); err != nil {
		return nil, err
	}
	if token != "good-refresh" {
		return nil, credstore.ErrSessionExpired
	}
	return &credstore.Session{AccessToken: "at2", RefreshToken: "rt2", ExpiresAt: 1900000000}, nil
}

func (f *fakeCreds) GetUser(_ context.Context, accessToken string) (*credstore.Identity, error) {
	if err := f.fail("GetUser"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[accessToken]; ok {
		return u, nil
	}
	return nil, credstore.ErrInvalidToken
}

func (f *fakeCreds) SendPasswordRecovery(context.Context, string, string) error {
	return f.fail("SendPasswordRecovery")
}

func (f *fakeCreds) UpdatePassword(context.Context, string, string) error {
	return f.fail("UpdatePassword")
}

func (f *fakeCreds) SendMagicLink(context.Context, string, string) error {
	return f.fail("SendMagicLink")
}

func (f *fakeCreds) VerifyToken(context.Context, string, credstore.VerifyType) (*credstore.Identity, *credstore.Session, error) {
	if err := f.fail("VerifyToken"); err != nil {
		return nil, nil, err
	}
	return nil, nil, nil
}

func (f *fakeCreds) OAuthURL(provider, redirectTo string) (string, error) {
	return "https://auth.test/authorize?provider=" + provider, nil
}

func (f *fakeCreds) ExchangeCode(_ context.Context, code string) (*credstore.Identity, *credstore.Session, error) {
	if err := f.fail("ExchangeCode"); err != nil {
		return nil, nil, err
	}
	if code != "good-code" {
		return nil, nil, credstore.ErrInvalidToken
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := &credstore.Identity{
		ID: "auth-oauth", Email: "oauth@ghxstship.com", EmailConfirmed: true,
		Metadata: credstore.Metadata{FullName: "O Auth", AvatarURL: "https://cdn.test/a.png"},
	}
	f.users[id.ID] = id
	return id, &credstore.Session{AccessToken: "oat", RefreshToken: "ort", ExpiresAt: 1900000000}, nil
}

type fakeUsers struct {
	mu        sync.Mutex
	m         map[string]*userdomain.PlatformUser // by id
	createErr error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{m: make(map[string]*userdomain.PlatformUser)} }

func (r *fakeUsers) GetByEmailAndPlatform(_ context.Context, email, p string) (*userdomain.PlatformUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.m {
		if u.Email == email && u.Platform == p {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUsers) GetByAuthUserAndPlatform(_ context.Context, authUserID, p string) (*userdomain.PlatformUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.m {
		if u.AuthUserID == authUserID && u.Platform == p {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUsers) Create(_ context.Context, u *userdomain.PlatformUser) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.m[u.ID] = &cp
	return nil
}

func (r *fakeUsers) Update(_ context.Context, u *userdomain.PlatformUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.m[u.ID] = &cp
	return nil
}

type fakeProfiles struct {
	mu sync.Mutex
	m  map[string]*profiledomain.Profile
}

func newFakeProfiles() *fakeProfiles { return &fakeProfiles{m: make(map[string]*profiledomain.Profile)} }

func (r *fakeProfiles) Get(_ context.Context, id string) (*profiledomain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.m[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProfiles) Upsert(_ context.Context, p *profiledomain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	if old, ok := r.m[p.ID]; ok {
		if old.OnboardingStep > cp.OnboardingStep {
			cp.OnboardingStep = old.OnboardingStep
		}
		cp.OnboardingCompleted = old.OnboardingCompleted || cp.OnboardingCompleted
	}
	r.m[p.ID] = &cp
	return nil
}

func (r *fakeProfiles) AdvanceStep(_ context.Context, id string, step int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.m[id]
	if !ok {
		p = &profiledomain.Profile{ID: id}
		r.m[id] = p
	}
	if step > p.OnboardingStep {
		p.OnboardingStep = step
	}
	return nil
}

func (r *fakeProfiles) CompleteOnboarding(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.m[id]
	if !ok {
		p = &profiledomain.Profile{ID: id}
		r.m[id] = p
	}
	p.OnboardingStep = profiledomain.StepComplete
	p.OnboardingCompleted = true
	return nil
}

type fakePrefs struct {
	mu sync.Mutex
	m  map[string]*prefsdomain.Preferences
}

func newFakePrefs() *fakePrefs { return &fakePrefs{m: make(map[string]*prefsdomain.Preferences)} }

func (r *fakePrefs) Get(_ context.Context, userID string) (*prefsdomain.Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.m[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return prefsdomain.Defaults(userID), nil
}

func (r *fakePrefs) Save(_ context.Context, p *prefsdomain.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.m[p.UserID] = &cp
	return nil
}

type fakeOrgs struct {
	m map[string]*orgdomain.Org
}

func (r *fakeOrgs) GetOrganizationByID(_ context.Context, id string) (*orgdomain.Org, error) {
	if o, ok := r.m[id]; ok {
		return o, nil
	}
	return nil, nil
}

type fakeInvites struct {
	inv *invitationdomain.Invitation
	err error
}

func (r *fakeInvites) Redeem(context.Context, string) (*invitationdomain.Invitation, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.inv, nil
}

type deps struct {
	creds    *fakeCreds
	users    *fakeUsers
	profiles *fakeProfiles
	prefs    *fakePrefs
	orgs     *fakeOrgs
	invites  *fakeInvites
}

func newTestService() (*AccountService, *deps) {
	d := &deps{
		creds:    newFakeCreds(),
		users:    newFakeUsers(),
		profiles: newFakeProfiles(),
		prefs:    newFakePrefs(),
		orgs:     &fakeOrgs{m: map[string]*orgdomain.Org{"org1": {ID: "org1", Name: "Blackwater Fleet"}}},
		invites:  &fakeInvites{err: invitationrepo.ErrInviteNotFound},
	}
	svc := NewAccountService(d.creds, d.users, d.profiles, d.prefs, d.orgs, d.invites,
		platform.StandardRoleDefaults(), "https://app.ghxstship.com", nil)
	return svc, d
}

func validSignUp() validation.SignUpInput {
	return validation.SignUpInput{
		Email:           "a@b.com",
		Password:        "Abcdef12",
		ConfirmPassword: "Abcdef12",
		FirstName:       "A",
		LastName:        "B",
		AgreeToTerms:    true,
	}
}

func codeOf(t *testing.T, err error) autherr.Code {
	t.Helper()
	var ae *autherr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("error %v is not *autherr.Error", err)
	}
	return ae.Code
}

func TestSignUpPasswordMismatchFailsBeforeAnyCall(t *testing.T) {
	svc, d := newTestService()
	in := validSignUp()
	in.ConfirmPassword = "Different1"

	_, err := svc.SignUp(context.Background(), platform.COMPVSS, in)
	if codeOf(t, err) != autherr.CodeValidationError {
		t.Fatalf("code = %v, want validation_error", codeOf(t, err))
	}
	if d.creds.created != 0 {
		t.Fatal("credential store was called despite validation failure")
	}
}

func TestSignUpExistingEmailNoIdentityCreated(t *testing.T) {
	svc, d := newTestService()
	d.users.m["u1"] = &userdomain.PlatformUser{
		ID: "u1", AuthUserID: "auth-x", Platform: "compvss", Email: "a@b.com",
	}

	_, err := svc.SignUp(context.Background(), platform.COMPVSS, validSignUp())
	if codeOf(t, err) != autherr.CodeEmailExists {
		t.Fatalf("code = %v, want email_exists", codeOf(t, err))
	}
	if d.creds.created != 0 {
		t.Fatal("identity created despite duplicate email")
	}
}

func TestSignUpDefaultRoles(t *testing.T) {
	svc, d := newTestService()
	res, err := svc.SignUp(context.Background(), platform.COMPVSS, validSignUp())
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if !res.NeedsVerification {
		t.Error("NeedsVerification not set")
	}
	u := res.User
	if u == nil {
		t.Fatal("no user in result")
	}
	if len(u.Roles) != 1 || u.Roles[0] != "COMPVSS_VIEWER" {
		t.Errorf("roles = %v, want [COMPVSS_VIEWER]", u.Roles)
	}
	if u.Status != "active" {
		t.Errorf("status = %q, want active", u.Status)
	}
	if len(d.users.m) != 1 {
		t.Fatalf("platform users = %d, want 1", len(d.users.m))
	}
}

func TestSignUpInviteRoleOverridesDefault(t *testing.T) {
	svc, d := newTestService()
	d.invites = &fakeInvites{inv: &invitationdomain.Invitation{
		ID: "i1", InviteCode: "CODE", OrganizationID: "org1", Role: "COMPVSS_CREW",
	}}
	svc.invites = d.invites

	in := validSignUp()
	in.InviteCode = "CODE"
	res, err := svc.SignUp(context.Background(), platform.COMPVSS, in)
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if res.User.OrganizationID != "org1" {
		t.Errorf("org = %q, want org1", res.User.OrganizationID)
	}
	if len(res.User.Roles) != 1 || res.User.Roles[0] != "COMPVSS_CREW" {
		t.Errorf("roles = %v, want [COMPVSS_CREW]", res.User.Roles)
	}
}

func TestSignUpInviteErrors(t *testing.T) {
	cases := []struct {
		redeemErr error
		wantCode  autherr.Code
	}{
		{invitationrepo.ErrInviteNotFound, autherr.CodeInvalidToken},
		{invitationrepo.ErrInviteUsed, autherr.CodeInvalidToken},
		{invitationrepo.ErrInviteExpired, autherr.CodeExpiredToken},
	}
	for _, tc := range cases {
		svc, d := newTestService()
		d.invites.err = tc.redeemErr
		in := validSignUp()
		in.InviteCode = "CODE"
		_, err := svc.SignUp(context.Background(), platform.COMPVSS, in)
		if codeOf(t, err) != tc.wantCode {
			t.Errorf("redeem err %v: code = %v, want %v", tc.redeemErr, codeOf(t, err), tc.wantCode)
		}
		if d.creds.created != 0 {
			t.Errorf("redeem err %v: identity was created", tc.redeemErr)
		}
	}
}

func TestSignUpRollsBackIdentityOnProvisionFailure(t *testing.T) {
	svc, d := newTestService()
	d.users.createErr = errors.New("insert failed")

	_, err := svc.SignUp(context.Background(), platform.COMPVSS, validSignUp())
	if codeOf(t, err) != autherr.CodeServerError {
		t.Fatalf("code = %v, want server_error", codeOf(t, err))
	}
	if len(d.creds.deleted) != 1 {
		t.Fatalf("deleted identities = %v, want exactly one", d.creds.deleted)
	}
	if len(d.creds.users) != 0 {
		t.Fatal("orphaned identity left in credential store")
	}
}

func TestSignUpUnknownOrganization(t *testing.T) {
	svc, _ := newTestService()
	in := validSignUp()
	in.OrganizationID = "nope"
	_, err := svc.SignUp(context.Background(), platform.COMPVSS, in)
	if codeOf(t, err) != autherr.CodeValidationError {
		t.Fatalf("code = %v, want validation_error", codeOf(t, err))
	}
}

func TestSignInMapsCredentialErrors(t *testing.T) {
	svc, d := newTestService()
	d.creds.failures["SignInWithPassword"] = credstore.ErrEmailNotVerified

	_, err := svc.SignIn(context.Background(), platform.COMPVSS, validation.SignInInput{
		Email: "a@b.com", Password: "Abcdef12",
	})
	if codeOf(t, err) != autherr.CodeEmailNotVerified {
		t.Fatalf("code = %v, want email_not_verified", codeOf(t, err))
	}
}

func TestSignInAssemblesUserAndSession(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, platform.COMPVSS, validSignUp()); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	res, err := svc.SignIn(ctx, platform.COMPVSS, validation.SignInInput{
		Email: "a@b.com", Password: "Abcdef12",
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if res.Session == nil || res.Session.AccessToken == "" {
		t.Fatal("no session in result")
	}
	if res.User == nil || res.User.Email != "a@b.com" || res.User.Platform != "compvss" {
		t.Fatalf("user = %+v", res.User)
	}
}

func TestSignInUnknownPlatformUser(t *testing.T) {
	svc, d := newTestService()
	d.creds.users["auth-a@b.com"] = &credstore.Identity{ID: "auth-a@b.com", Email: "a@b.com"}

	_, err := svc.SignIn(context.Background(), platform.ATLVS, validation.SignInInput{
		Email: "a@b.com", Password: "Abcdef12",
	})
	if codeOf(t, err) != autherr.CodeUserNotFound {
		t.Fatalf("code = %v, want user_not_found", codeOf(t, err))
	}
}

func TestSignOutIdempotent(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()
	if err := svc.SignOut(ctx, ""); err != nil {
		t.Fatalf("SignOut empty token: %v", err)
	}
	d.creds.failures["SignOut"] = errors.New("provider down")
	if err := svc.SignOut(ctx, "at"); err != nil {
		t.Fatalf("SignOut with provider failure: %v", err)
	}
}

func TestForgotPasswordAlwaysSucceeds(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	if err := svc.ForgotPassword(ctx, validation.ForgotPasswordInput{Email: "exists@b.com"}); err != nil {
		t.Fatalf("existing email: %v", err)
	}
	d.creds.failures["SendPasswordRecovery"] = credstore.ErrUserNotFound
	if err := svc.ForgotPassword(ctx, validation.ForgotPasswordInput{Email: "ghost@b.com"}); err != nil {
		t.Fatalf("unknown email: %v", err)
	}
}

func TestResetPasswordWeak(t *testing.T) {
	svc, d := newTestService()
	d.creds.failures["UpdatePassword"] = credstore.ErrWeakPassword
	err := svc.ResetPassword(context.Background(), "at", validation.ResetPasswordInput{
		Password: "Abcdef12", ConfirmPassword: "Abcdef12",
	})
	if codeOf(t, err) != autherr.CodeWeakPassword {
		t.Fatalf("code = %v, want weak_password", codeOf(t, err))
	}
}

func TestRefreshSessionUniformlyExpired(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	if _, err := svc.RefreshSession(ctx, ""); codeOf(t, err) != autherr.CodeSessionExpired {
		t.Fatalf("empty token: code = %v, want session_expired", codeOf(t, err))
	}
	if _, err := svc.RefreshSession(ctx, "stale"); codeOf(t, err) != autherr.CodeSessionExpired {
		t.Fatalf("stale token: code = %v, want session_expired", codeOf(t, err))
	}
	d.creds.failures["RefreshSession"] = errors.New("provider down")
	if _, err := svc.RefreshSession(ctx, "good-refresh"); codeOf(t, err) != autherr.CodeSessionExpired {
		t.Fatalf("provider failure: code = %v, want session_expired", codeOf(t, err))
	}
	delete(d.creds.failures, "RefreshSession")

	sess, err := svc.RefreshSession(ctx, "good-refresh")
	if err != nil {
		t.Fatalf("RefreshSession: %v", err)
	}
	if sess.AccessToken != "at2" || sess.RefreshToken != "rt2" {
		t.Fatalf("session = %+v", sess)
	}
}

func TestGetSessionNullOnAnyError(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	res := svc.GetSession(ctx, platform.COMPVSS, "")
	if res.User != nil || res.Session != nil {
		t.Fatalf("empty token: result = %+v", res)
	}
	res = svc.GetSession(ctx, platform.COMPVSS, "bogus")
	if res.User != nil || res.Session != nil {
		t.Fatalf("invalid token: result = %+v", res)
	}
	d.creds.failures["GetUser"] = errors.New("provider down")
	res = svc.GetSession(ctx, platform.COMPVSS, "anything")
	if res.User != nil || res.Session != nil {
		t.Fatalf("provider failure: result = %+v", res)
	}
}

func TestOAuthCallbackCreatesPlatformUser(t *testing.T) {
	svc, d := newTestService()
	res, err := svc.OAuthCallback(context.Background(), platform.GVTEWAY, "good-code")
	if err != nil {
		t.Fatalf("OAuthCallback: %v", err)
	}
	if res.User == nil || res.User.FullName != "O Auth" || res.User.AvatarURL == "" {
		t.Fatalf("user = %+v", res.User)
	}
	if len(res.User.Roles) != 1 || res.User.Roles[0] != "GVTEWAY_MEMBER" {
		t.Errorf("roles = %v, want [GVTEWAY_MEMBER]", res.User.Roles)
	}
	if len(d.users.m) != 1 {
		t.Fatalf("platform users = %d, want 1", len(d.users.m))
	}

	// Second callback reuses the row.
	if _, err := svc.OAuthCallback(context.Background(), platform.GVTEWAY, "good-code"); err != nil {
		t.Fatalf("second OAuthCallback: %v", err)
	}
	if len(d.users.m) != 1 {
		t.Fatalf("platform users after second callback = %d, want 1", len(d.users.m))
	}
}

func TestOAuthCallbackNoRollbackOnProvisionFailure(t *testing.T) {
	// Deliberate asymmetry with sign-up: the external provider owns the
	// identity, so a failed insert leaves it in place.
	svc, d := newTestService()
	d.users.createErr = errors.New("insert failed")

	_, err := svc.OAuthCallback(context.Background(), platform.GVTEWAY, "good-code")
	if codeOf(t, err) != autherr.CodeServerError {
		t.Fatalf("code = %v, want server_error", codeOf(t, err))
	}
	if len(d.creds.deleted) != 0 {
		t.Fatalf("identity deleted on oauth provisioning failure: %v", d.creds.deleted)
	}
}

func TestOAuthCallbackBadCode(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.OAuthCallback(context.Background(), platform.GVTEWAY, "bad")
	if codeOf(t, err) != autherr.CodeOAuthError {
		t.Fatalf("code = %v, want oauth_error", codeOf(t, err))
	}
}

func TestUpdateProfileAdvancesStepAndSurvivesProfileFailure(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, platform.COMPVSS, validSignUp()); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	u, err := svc.UpdateProfile(ctx, platform.COMPVSS, "auth-a@b.com", validation.ProfileSetupInput{
		FirstName: "Ada", LastName: "Byron", DisplayName: "ada",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if u.FullName != "Ada Byron" {
		t.Errorf("full name = %q", u.FullName)
	}
	prof, _ := d.profiles.Get(ctx, "auth-a@b.com")
	if prof == nil || prof.OnboardingStep != profiledomain.StepProfile {
		t.Fatalf("profile = %+v, want step %d", prof, profiledomain.StepProfile)
	}
}

func TestOnboardingStepsMonotonic(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, platform.COMPVSS, validSignUp()); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	const uid = "auth-a@b.com"

	if _, err := svc.UpdateOrganization(ctx, platform.COMPVSS, uid, validation.OrganizationSetupInput{OrganizationID: "org1"}); err != nil {
		t.Fatalf("UpdateOrganization: %v", err)
	}
	if _, err := svc.SelectRole(ctx, platform.COMPVSS, uid, validation.RoleSelectionInput{Role: "COMPVSS_CREW"}); err != nil {
		t.Fatalf("SelectRole: %v", err)
	}
	// Repeating an earlier step must not lower the recorded progress.
	if _, err := svc.UpdateProfile(ctx, platform.COMPVSS, uid, validation.ProfileSetupInput{FirstName: "A", LastName: "B"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	prof, _ := d.profiles.Get(ctx, uid)
	if prof.OnboardingStep != profiledomain.StepRole {
		t.Fatalf("step = %d, want %d", prof.OnboardingStep, profiledomain.StepRole)
	}
}

func TestUpdatePreferencesWholeRow(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()
	prefs, err := svc.UpdatePreferences(ctx, "auth-1", validation.PreferencesInput{
		Theme: "dark", Language: "en", Timezone: "America/New_York",
		EmailNotifications: true, PushNotifications: false, MarketingEmails: false,
	})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if prefs.Theme != "dark" || prefs.Push.Enabled {
		t.Fatalf("prefs = %+v", prefs)
	}
	if !prefs.Email.OrderUpdates || prefs.Email.Marketing {
		t.Fatalf("email groups = %+v", prefs.Email)
	}

	// A second save replaces the row entirely.
	if _, err := svc.UpdatePreferences(ctx, "auth-1", validation.PreferencesInput{
		Theme: "light", Language: "de", Timezone: "Europe/Berlin",
	}); err != nil {
		t.Fatalf("second UpdatePreferences: %v", err)
	}
	stored, _ := d.prefs.Get(ctx, "auth-1")
	if stored.Theme != "light" || stored.Language != "de" || stored.Email.OrderUpdates {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestUpdatePreferencesBadTheme(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.UpdatePreferences(context.Background(), "auth-1", validation.PreferencesInput{
		Theme: "sepia", Language: "en", Timezone: "UTC",
	})
	if codeOf(t, err) != autherr.CodeValidationError {
		t.Fatalf("code = %v, want validation_error", codeOf(t, err))
	}
}

func TestCompleteOnboardingIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CompleteOnboarding(ctx, "auth-1")
	if err != nil {
		t.Fatalf("CompleteOnboarding: %v", err)
	}
	second, err := svc.CompleteOnboarding(ctx, "auth-1")
	if err != nil {
		t.Fatalf("second CompleteOnboarding: %v", err)
	}
	for _, p := range []*profiledomain.Profile{first, second} {
		if !p.OnboardingCompleted || p.OnboardingStep != profiledomain.StepComplete {
			t.Fatalf("profile = %+v", p)
		}
	}
}

func TestVerifyEmailUnknownType(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.VerifyEmail(context.Background(), platform.COMPVSS, "hash", "teleport")
	if codeOf(t, err) != autherr.CodeValidationError {
		t.Fatalf("code = %v, want validation_error", codeOf(t, err))
	}
}

func TestVerifyEmailExpired(t *testing.T) {
	svc, d := newTestService()
	d.creds.failures["VerifyToken"] = credstore.ErrExpiredToken
	_, err := svc.VerifyEmail(context.Background(), platform.COMPVSS, "hash", "signup")
	if codeOf(t, err) != autherr.CodeExpiredToken {
		t.Fatalf("code = %v, want expired_token", codeOf(t, err))
	}
}
