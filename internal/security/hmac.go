package security

import (
	"github.com/golang-jwt/jwt/v5"
)

// HSValidator validates HS256 access tokens issued by the hosted auth
// provider (which signs with a shared JWT secret rather than a key pair).
type HSValidator struct {
	secret   []byte
	audience string
}

// NewHSValidator returns a validator for provider-issued HS256 tokens.
// audience is checked when non-empty (the provider sets aud to
// "authenticated" for signed-in users).
func NewHSValidator(secret, audience string) *HSValidator {
	return &HSValidator{secret: []byte(secret), audience: audience}
}

// providerClaims mirrors the claim names the hosted provider emits.
type providerClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
}

// ValidateAccess parses and validates an HS256 access token (signature,
// exp, aud). Returns sessionID, identityID (sub), email, or ErrInvalidToken.
func (v *HSValidator) ValidateAccess(tokenString string) (sessionID, identityID, email string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &providerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		return "", "", "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*providerClaims)
	if !ok || !token.Valid {
		return "", "", "", ErrInvalidToken
	}
	if v.audience != "" {
		audOK := false
		for _, a := range claims.Audience {
			if a == v.audience {
				audOK = true
				break
			}
		}
		if !audOK {
			return "", "", "", ErrInvalidToken
		}
	}
	return claims.SessionID, claims.Subject, claims.Email, nil
}
