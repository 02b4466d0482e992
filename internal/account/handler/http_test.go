package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"ghxstship/accounts/internal/account/service"
	"ghxstship/accounts/internal/autherr"
	"ghxstship/accounts/internal/platform"
	prefsdomain "ghxstship/accounts/internal/preferences/domain"
	profiledomain "ghxstship/accounts/internal/profile/domain"
	"ghxstship/accounts/internal/validation"
)

// fakeAccounts returns canned results and records the arguments it saw.
type fakeAccounts struct {
	err error

	lastPlatform platform.Platform
	lastToken    string
	lastUserID   string

	authResult *service.AuthResult
	user       *service.User
}

func (f *fakeAccounts) result() *service.AuthResult {
	if f.authResult != nil {
		return f.authResult
	}
	return &service.AuthResult{User: &service.User{ID: "auth-1", Email: "a@b.com"}}
}

func (f *fakeAccounts) SignUp(_ context.Context, p platform.Platform, _ validation.SignUpInput) (*service.AuthResult, error) {
	f.lastPlatform = p
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeAccounts) SignIn(_ context.Context, p platform.Platform, _ validation.SignInInput) (*service.AuthResult, error) {
	f.lastPlatform = p
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeAccounts) SignOut(_ context.Context, accessToken string) error {
	f.lastToken = accessToken
	return nil
}

func (f *fakeAccounts) ForgotPassword(context.Context, validation.ForgotPasswordInput) error {
	return f.err
}

func (f *fakeAccounts) ResetPassword(_ context.Context, accessToken string, _ validation.ResetPasswordInput) error {
	f.lastToken = accessToken
	return f.err
}

func (f *fakeAccounts) MagicLink(context.Context, validation.MagicLinkInput) error {
	return f.err
}

func (f *fakeAccounts) OAuthURL(provider string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://provider.example/authorize?provider=" + provider, nil
}

func (f *fakeAccounts) OAuthCallback(_ context.Context, p platform.Platform, code string) (*service.AuthResult, error) {
	f.lastPlatform = p
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeAccounts) VerifyEmail(_ context.Context, p platform.Platform, tokenHash, typ string) (*service.AuthResult, error) {
	f.lastPlatform = p
	f.lastToken = tokenHash
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeAccounts) RefreshSession(_ context.Context, refreshToken string) (*service.Session, error) {
	f.lastToken = refreshToken
	if f.err != nil {
		return nil, f.err
	}
	return &service.Session{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
}

func (f *fakeAccounts) GetSession(_ context.Context, p platform.Platform, accessToken string) *service.AuthResult {
	f.lastPlatform = p
	f.lastToken = accessToken
	if accessToken == "" {
		return &service.AuthResult{}
	}
	return f.result()
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, p platform.Platform, authUserID string, _ validation.ProfileSetupInput) (*service.User, error) {
	f.lastPlatform = p
	f.lastUserID = authUserID
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil {
		return f.user, nil
	}
	return &service.User{ID: authUserID}, nil
}

func (f *fakeAccounts) UpdateOrganization(_ context.Context, p platform.Platform, authUserID string, _ validation.OrganizationSetupInput) (*service.User, error) {
	f.lastUserID = authUserID
	if f.err != nil {
		return nil, f.err
	}
	return &service.User{ID: authUserID}, nil
}

func (f *fakeAccounts) SelectRole(_ context.Context, p platform.Platform, authUserID string, in validation.RoleSelectionInput) (*service.User, error) {
	f.lastUserID = authUserID
	if f.err != nil {
		return nil, f.err
	}
	return &service.User{ID: authUserID, Roles: []string{in.Role}}, nil
}

func (f *fakeAccounts) UpdatePreferences(_ context.Context, authUserID string, _ validation.PreferencesInput) (*prefsdomain.Preferences, error) {
	f.lastUserID = authUserID
	if f.err != nil {
		return nil, f.err
	}
	return prefsdomain.Defaults(authUserID), nil
}

func (f *fakeAccounts) CompleteOnboarding(_ context.Context, authUserID string) (*profiledomain.Profile, error) {
	f.lastUserID = authUserID
	if f.err != nil {
		return nil, f.err
	}
	return &profiledomain.Profile{ID: authUserID, OnboardingCompleted: true}, nil
}

// testAuth stands in for the auth middleware: a fixed bearer token maps to
// a fixed user, anything else is rejected.
func testAuth(c *gin.Context) {
	if bearerToken(c) != "valid-token" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": autherr.New(autherr.CodeInvalidToken)})
		return
	}
	c.Set(UserIDKey, "auth-1")
	c.Next()
}

func newTestRouter(f *fakeAccounts) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(f).RegisterRoutes(r, testAuth)
	return r
}

func doJSON(r *gin.Engine, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const signUpBody = `{"email":"a@b.com","password":"Abcdef12","confirmPassword":"Abcdef12","firstName":"A","lastName":"B","agreeToTerms":true}`

func TestSignUp_Created(t *testing.T) {
	f := &fakeAccounts{}
	w := doJSON(newTestRouter(f), http.MethodPost, "/v1/auth/signup", signUpBody, map[string]string{"X-Platform": "compvss"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if f.lastPlatform != platform.COMPVSS {
		t.Errorf("platform = %q, want compvss", f.lastPlatform)
	}
}

func TestPlatformHeader_DefaultsToGvteway(t *testing.T) {
	f := &fakeAccounts{}
	w := doJSON(newTestRouter(f), http.MethodPost, "/v1/auth/signin", `{"email":"a@b.com","password":"x"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if f.lastPlatform != platform.GVTEWAY {
		t.Errorf("platform = %q, want gvteway", f.lastPlatform)
	}
}

func TestPlatformHeader_UnknownRejected(t *testing.T) {
	f := &fakeAccounts{}
	w := doJSON(newTestRouter(f), http.MethodPost, "/v1/auth/signin", `{"email":"a@b.com","password":"x"}`, map[string]string{"X-Platform": "mystery"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		code autherr.Code
		want int
	}{
		{autherr.CodeValidationError, http.StatusUnprocessableEntity},
		{autherr.CodeInvalidCredentials, http.StatusUnauthorized},
		{autherr.CodeSessionExpired, http.StatusUnauthorized},
		{autherr.CodeInvalidToken, http.StatusUnauthorized},
		{autherr.CodeExpiredToken, http.StatusUnauthorized},
		{autherr.CodePermissionDenied, http.StatusForbidden},
		{autherr.CodeUserNotFound, http.StatusNotFound},
		{autherr.CodeEmailExists, http.StatusConflict},
		{autherr.CodeRateLimited, http.StatusTooManyRequests},
		{autherr.CodeWeakPassword, http.StatusBadRequest},
		{autherr.CodeEmailNotVerified, http.StatusBadRequest},
		{autherr.CodeOAuthError, http.StatusBadGateway},
		{autherr.CodeNetworkError, http.StatusInternalServerError},
		{autherr.CodeServerError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			f := &fakeAccounts{err: autherr.New(tc.code)}
			w := doJSON(newTestRouter(f), http.MethodPost, "/v1/auth/signin", `{"email":"a@b.com","password":"x"}`, nil)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
			var body struct {
				Error autherr.Error `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error.Code != tc.code {
				t.Errorf("error code = %q, want %q", body.Error.Code, tc.code)
			}
		})
	}
}

func TestSignOut_ForwardsBearerAndReturns204(t *testing.T) {
	f := &fakeAccounts{}
	w := doJSON(newTestRouter(f), http.MethodPost, "/v1/auth/signout", "", map[string]string{"Authorization": "Bearer tok-1"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if f.lastToken != "tok-1" {
		t.Errorf("token = %q, want tok-1", f.lastToken)
	}
}

func TestSignOut_NoBearerStill204(t *testing.T) {
	f := &fakeAccounts{}
	w := doJSON(newTestRouter(f), http.MethodPost, "/v1/auth/signout", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
}

func TestOAuthURL(t *testing.T) {
	f := &fakeAccounts{}
	w := doJSON(newTestRouter(f), http.MethodGet, "/v1/auth/oauth/google", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !strings.Contains(body.URL, "provider=google") {
		t.Errorf("url = %q, want provider=google", body.URL)
	}
}

func TestRefresh_ForwardsToken(t *testing.T) {
	f := &fakeAccounts{}
	w := doJSON(newTestRouter(f), http.MethodPost, "/v1/auth/refresh", `{"refreshToken":"r-1"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if f.lastToken != "r-1" {
		t.Errorf("token = %q, want r-1", f.lastToken)
	}
}

func TestSession_Always200(t *testing.T) {
	f := &fakeAccounts{}
	w := doJSON(newTestRouter(f), http.MethodGet, "/v1/auth/session", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var res service.AuthResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if res.User != nil || res.Session != nil {
		t.Errorf("anonymous session should be empty, got %+v", res)
	}
}

func TestVerify_ForwardsToken(t *testing.T) {
	f := &fakeAccounts{}
	w := doJSON(newTestRouter(f), http.MethodPost, "/v1/auth/verify", `{"token":"hash-1","type":"signup"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if f.lastToken != "hash-1" {
		t.Errorf("token = %q, want hash-1", f.lastToken)
	}
}

func TestMeRoutes_RequireAuth(t *testing.T) {
	f := &fakeAccounts{}
	r := newTestRouter(f)

	w := doJSON(r, http.MethodPut, "/v1/users/me/profile", `{"firstName":"A","lastName":"B"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", w.Code)
	}

	w = doJSON(r, http.MethodPut, "/v1/users/me/profile", `{"firstName":"A","lastName":"B"}`,
		map[string]string{"Authorization": "Bearer valid-token"})
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d: %s", w.Code, w.Body.String())
	}
	if f.lastUserID != "auth-1" {
		t.Errorf("user id = %q, want auth-1", f.lastUserID)
	}
}

func TestCompleteOnboarding(t *testing.T) {
	f := &fakeAccounts{}
	w := doJSON(newTestRouter(f), http.MethodPost, "/v1/users/me/onboarding/complete", "",
		map[string]string{"Authorization": "Bearer valid-token"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Profile profiledomain.Profile `json:"profile"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Profile.OnboardingCompleted {
		t.Error("profile should be completed")
	}
}

func TestBadJSONBody(t *testing.T) {
	f := &fakeAccounts{}
	w := doJSON(newTestRouter(f), http.MethodPost, "/v1/auth/signin", `{not json`, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}
