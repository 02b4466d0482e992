// Package gotrue implements the credential-store port against a hosted
// GoTrue-compatible auth provider over REST. Provider error messages are
// free text; translate.go is the only place they are interpreted.
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ghxstship/accounts/internal/credstore"
)

const requestTimeout = 10 * time.Second

// Client talks to the provider's REST API. The anon key authenticates
// user-facing endpoints; the service key unlocks /admin.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	http       *http.Client
}

func New(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: requestTimeout},
	}
}

var _ credstore.Store = (*Client)(nil)

type userPayload struct {
	ID               string             `json:"id"`
	Email            string             `json:"email"`
	EmailConfirmedAt *time.Time         `json:"email_confirmed_at"`
	CreatedAt        time.Time          `json:"created_at"`
	UserMetadata     credstore.Metadata `json:"user_metadata"`
}

func (u *userPayload) identity() *credstore.Identity {
	if u == nil || u.ID == "" {
		return nil
	}
	return &credstore.Identity{
		ID:             u.ID,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != nil,
		Metadata:       u.UserMetadata,
		CreatedAt:      u.CreatedAt,
	}
}

type sessionPayload struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	User         *userPayload `json:"user"`
}

func (s *sessionPayload) session() *credstore.Session {
	if s == nil || s.AccessToken == "" {
		return nil
	}
	expiresAt := s.ExpiresAt
	if expiresAt == 0 && s.ExpiresIn > 0 {
		expiresAt = time.Now().Unix() + s.ExpiresIn
	}
	return &credstore.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    expiresAt,
	}
}

// providerError covers the message fields GoTrue uses across versions.
type providerError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e providerError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// do performs one API call. bearer selects the Authorization token; the
// anon key is always sent as the apikey header. Unclassified error
// messages resolve to fallback when it is non-nil.
func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any, fallback error) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gotrue: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("gotrue: build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gotrue: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("gotrue: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusTooManyRequests {
			return credstore.ErrRateLimited
		}
		var pe providerError
		_ = json.Unmarshal(raw, &pe)
		msg := pe.text()
		if msg == "" {
			return fmt.Errorf("gotrue: %s %s: status %d", method, path, resp.StatusCode)
		}
		if fallback == nil {
			fallback = fmt.Errorf("gotrue: %s", msg)
		}
		return translate(msg, fallback)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("gotrue: decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) CreateUser(ctx context.Context, p credstore.CreateUserParams) (*credstore.Identity, error) {
	body := map[string]any{
		"email":         p.Email,
		"password":      p.Password,
		"email_confirm": false,
		"user_metadata": p.Metadata,
		"app_metadata":  map[string]string{"platform": p.Platform},
	}
	var out userPayload
	if err := c.do(ctx, http.MethodPost, "/admin/users", c.serviceKey, body, &out, nil); err != nil {
		return nil, err
	}
	return out.identity(), nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), c.serviceKey, nil, nil, nil)
}

func (c *Client) SendVerification(ctx context.Context, email, redirectTo string) error {
	path := "/resend?redirect_to=" + url.QueryEscape(redirectTo)
	body := map[string]string{"type": "signup", "email": email}
	return c.do(ctx, http.MethodPost, path, "", body, nil, nil)
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*credstore.Identity, *credstore.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var out sessionPayload
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", body, &out, credstore.ErrInvalidCredentials); err != nil {
		return nil, nil, err
	}
	return out.User.identity(), out.session(), nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil, nil)
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*credstore.Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var out sessionPayload
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", body, &out, credstore.ErrSessionExpired); err != nil {
		return nil, err
	}
	return out.session(), nil
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*credstore.Identity, error) {
	var out userPayload
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &out, credstore.ErrInvalidToken); err != nil {
		return nil, err
	}
	return out.identity(), nil
}

func (c *Client) SendPasswordRecovery(ctx context.Context, email, redirectTo string) error {
	path := "/recover?redirect_to=" + url.QueryEscape(redirectTo)
	return c.do(ctx, http.MethodPost, path, "", map[string]string{"email": email}, nil, nil)
}

func (c *Client) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	body := map[string]string{"password": newPassword}
	return c.do(ctx, http.MethodPut, "/user", accessToken, body, nil, credstore.ErrInvalidToken)
}

func (c *Client) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	path := "/otp?redirect_to=" + url.QueryEscape(redirectTo)
	body := map[string]any{"email": email, "create_user": false}
	return c.do(ctx, http.MethodPost, path, "", body, nil, nil)
}

func (c *Client) VerifyToken(ctx context.Context, tokenHash string, typ credstore.VerifyType) (*credstore.Identity, *credstore.Session, error) {
	body := map[string]string{"type": string(typ), "token_hash": tokenHash}
	var out sessionPayload
	if err := c.do(ctx, http.MethodPost, "/verify", "", body, &out, credstore.ErrInvalidToken); err != nil {
		return nil, nil, err
	}
	return out.User.identity(), out.session(), nil
}

func (c *Client) OAuthURL(provider, redirectTo string) (string, error) {
	if provider == "" {
		return "", fmt.Errorf("gotrue: empty oauth provider")
	}
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/authorize?" + q.Encode(), nil
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*credstore.Identity, *credstore.Session, error) {
	body := map[string]string{"auth_code": code}
	var out sessionPayload
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=pkce", "", body, &out, credstore.ErrInvalidToken); err != nil {
		return nil, nil, err
	}
	return out.User.identity(), out.session(), nil
}
