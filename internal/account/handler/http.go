// Package handler exposes the account flow over HTTP. Handlers do no
// business logic: they bind JSON, resolve the platform header and bearer
// token, call the service, and map the error taxonomy to status codes.
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ghxstship/accounts/internal/account/service"
	"ghxstship/accounts/internal/autherr"
	"ghxstship/accounts/internal/platform"
	prefsdomain "ghxstship/accounts/internal/preferences/domain"
	profiledomain "ghxstship/accounts/internal/profile/domain"
	"ghxstship/accounts/internal/validation"
)

// Accounts is the service surface the handlers depend on.
type Accounts interface {
	SignUp(ctx context.Context, p platform.Platform, in validation.SignUpInput) (*service.AuthResult, error)
	SignIn(ctx context.Context, p platform.Platform, in validation.SignInInput) (*service.AuthResult, error)
	SignOut(ctx context.Context, accessToken string) error
	ForgotPassword(ctx context.Context, in validation.ForgotPasswordInput) error
	ResetPassword(ctx context.Context, accessToken string, in validation.ResetPasswordInput) error
	MagicLink(ctx context.Context, in validation.MagicLinkInput) error
	OAuthURL(provider string) (string, error)
	OAuthCallback(ctx context.Context, p platform.Platform, code string) (*service.AuthResult, error)
	VerifyEmail(ctx context.Context, p platform.Platform, tokenHash, typ string) (*service.AuthResult, error)
	RefreshSession(ctx context.Context, refreshToken string) (*service.Session, error)
	GetSession(ctx context.Context, p platform.Platform, accessToken string) *service.AuthResult
	UpdateProfile(ctx context.Context, p platform.Platform, authUserID string, in validation.ProfileSetupInput) (*service.User, error)
	UpdateOrganization(ctx context.Context, p platform.Platform, authUserID string, in validation.OrganizationSetupInput) (*service.User, error)
	SelectRole(ctx context.Context, p platform.Platform, authUserID string, in validation.RoleSelectionInput) (*service.User, error)
	UpdatePreferences(ctx context.Context, authUserID string, in validation.PreferencesInput) (*prefsdomain.Preferences, error)
	CompleteOnboarding(ctx context.Context, authUserID string) (*profiledomain.Profile, error)
}

// UserIDKey is the gin context key the auth middleware sets to the
// authenticated identity ID.
const UserIDKey = "user_id"

// Handler holds the HTTP handlers for the account routes.
type Handler struct {
	accounts Accounts
}

// New returns a Handler over the given service.
func New(accounts Accounts) *Handler {
	return &Handler{accounts: accounts}
}

// RegisterRoutes mounts the auth and user routes. requireAuth guards the
// /v1/users/me subtree; the auth routes are public (bearer tokens on them
// are read directly by the handlers).
func (h *Handler) RegisterRoutes(r gin.IRouter, requireAuth gin.HandlerFunc) {
	auth := r.Group("/v1/auth")
	{
		auth.POST("/signup", h.signUp)
		auth.POST("/signin", h.signIn)
		auth.POST("/signout", h.signOut)
		auth.POST("/password/forgot", h.forgotPassword)
		auth.POST("/password/reset", h.resetPassword)
		auth.POST("/magiclink", h.magicLink)
		auth.GET("/oauth/:provider", h.oauthURL)
		auth.GET("/callback", h.oauthCallback)
		auth.POST("/verify", h.verify)
		auth.POST("/refresh", h.refresh)
		auth.GET("/session", h.session)
	}
	me := r.Group("/v1/users/me", requireAuth)
	{
		me.PUT("/profile", h.updateProfile)
		me.PUT("/organization", h.updateOrganization)
		me.PUT("/role", h.selectRole)
		me.PUT("/preferences", h.updatePreferences)
		me.POST("/onboarding/complete", h.completeOnboarding)
	}
}

// statusOf maps the error taxonomy to HTTP status codes.
func statusOf(code autherr.Code) int {
	switch code {
	case autherr.CodeValidationError:
		return http.StatusUnprocessableEntity
	case autherr.CodeInvalidCredentials, autherr.CodeSessionExpired,
		autherr.CodeInvalidToken, autherr.CodeExpiredToken:
		return http.StatusUnauthorized
	case autherr.CodePermissionDenied:
		return http.StatusForbidden
	case autherr.CodeUserNotFound:
		return http.StatusNotFound
	case autherr.CodeEmailExists:
		return http.StatusConflict
	case autherr.CodeRateLimited:
		return http.StatusTooManyRequests
	case autherr.CodeWeakPassword, autherr.CodeEmailNotVerified:
		return http.StatusBadRequest
	case autherr.CodeOAuthError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeErr renders err as {"error": {code, message, fields}} with the
// mapped status. Non-taxonomy errors become server_error.
func writeErr(c *gin.Context, err error) {
	aerr, ok := err.(*autherr.Error)
	if !ok {
		aerr = autherr.New(autherr.CodeServerError)
	}
	c.JSON(statusOf(aerr.Code), gin.H{"error": aerr})
}

func bindErr(c *gin.Context) {
	writeErr(c, autherr.Validation([]autherr.FieldError{
		{Field: "body", Message: "invalid request body"},
	}))
}

// platformOf resolves the X-Platform header. A missing header falls back
// to the gvteway namespace; an unknown value is a validation error.
func platformOf(c *gin.Context) (platform.Platform, bool) {
	raw := c.GetHeader("X-Platform")
	if raw == "" {
		return platform.GVTEWAY, true
	}
	p, err := platform.Parse(raw)
	if err != nil {
		writeErr(c, autherr.Validation([]autherr.FieldError{
			{Field: "X-Platform", Message: err.Error()},
		}))
		return "", false
	}
	return p, true
}

// bearerToken returns the Authorization bearer token, or "".
func bearerToken(c *gin.Context) string {
	v := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(v) < 7 || !strings.EqualFold(v[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(v[7:])
}

func (h *Handler) signUp(c *gin.Context) {
	p, ok := platformOf(c)
	if !ok {
		return
	}
	var in validation.SignUpInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindErr(c)
		return
	}
	res, err := h.accounts.SignUp(c.Request.Context(), p, in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) signIn(c *gin.Context) {
	p, ok := platformOf(c)
	if !ok {
		return
	}
	var in validation.SignInInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindErr(c)
		return
	}
	res, err := h.accounts.SignIn(c.Request.Context(), p, in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) signOut(c *gin.Context) {
	_ = h.accounts.SignOut(c.Request.Context(), bearerToken(c))
	c.Status(http.StatusNoContent)
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var in validation.ForgotPasswordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindErr(c)
		return
	}
	if err := h.accounts.ForgotPassword(c.Request.Context(), in); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var in validation.ResetPasswordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindErr(c)
		return
	}
	if err := h.accounts.ResetPassword(c.Request.Context(), bearerToken(c), in); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) magicLink(c *gin.Context) {
	var in validation.MagicLinkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindErr(c)
		return
	}
	if err := h.accounts.MagicLink(c.Request.Context(), in); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) oauthURL(c *gin.Context) {
	u, err := h.accounts.OAuthURL(c.Param("provider"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}

func (h *Handler) oauthCallback(c *gin.Context) {
	p, ok := platformOf(c)
	if !ok {
		return
	}
	res, err := h.accounts.OAuthCallback(c.Request.Context(), p, c.Query("code"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type verifyRequest struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

func (h *Handler) verify(c *gin.Context) {
	p, ok := platformOf(c)
	if !ok {
		return
	}
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c)
		return
	}
	res, err := h.accounts.VerifyEmail(c.Request.Context(), p, req.Token, req.Type)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c)
		return
	}
	sess, err := h.accounts.RefreshSession(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

func (h *Handler) session(c *gin.Context) {
	p, ok := platformOf(c)
	if !ok {
		return
	}
	res := h.accounts.GetSession(c.Request.Context(), p, bearerToken(c))
	c.JSON(http.StatusOK, res)
}

func (h *Handler) updateProfile(c *gin.Context) {
	p, ok := platformOf(c)
	if !ok {
		return
	}
	var in validation.ProfileSetupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindErr(c)
		return
	}
	u, err := h.accounts.UpdateProfile(c.Request.Context(), p, c.GetString(UserIDKey), in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *Handler) updateOrganization(c *gin.Context) {
	p, ok := platformOf(c)
	if !ok {
		return
	}
	var in validation.OrganizationSetupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindErr(c)
		return
	}
	u, err := h.accounts.UpdateOrganization(c.Request.Context(), p, c.GetString(UserIDKey), in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *Handler) selectRole(c *gin.Context) {
	p, ok := platformOf(c)
	if !ok {
		return
	}
	var in validation.RoleSelectionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindErr(c)
		return
	}
	u, err := h.accounts.SelectRole(c.Request.Context(), p, c.GetString(UserIDKey), in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *Handler) updatePreferences(c *gin.Context) {
	var in validation.PreferencesInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindErr(c)
		return
	}
	prefs, err := h.accounts.UpdatePreferences(c.Request.Context(), c.GetString(UserIDKey), in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

func (h *Handler) completeOnboarding(c *gin.Context) {
	prof, err := h.accounts.CompleteOnboarding(c.Request.Context(), c.GetString(UserIDKey))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": prof})
}
