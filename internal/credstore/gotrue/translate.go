package gotrue

import (
	"strings"

	"ghxstship/accounts/internal/credstore"
)

// translation maps a substring of a provider error message to the
// sentinel it stands for. The provider reports most failures as free
// text, so every known message lives here and nowhere else.
type translation struct {
	substring string
	sentinel  error
}

// Order matters: more specific substrings come before generic ones.
var translations = []translation{
	{"already registered", credstore.ErrEmailExists},
	{"already been registered", credstore.ErrEmailExists},
	{"invalid login credentials", credstore.ErrInvalidCredentials},
	{"email not confirmed", credstore.ErrEmailNotVerified},
	{"password should be at least", credstore.ErrWeakPassword},
	{"weak password", credstore.ErrWeakPassword},
	{"rate limit", credstore.ErrRateLimited},
	{"too many requests", credstore.ErrRateLimited},
	{"token has expired", credstore.ErrExpiredToken},
	{"otp expired", credstore.ErrExpiredToken},
	{"refresh token not found", credstore.ErrSessionExpired},
	{"invalid refresh token", credstore.ErrSessionExpired},
	{"user not found", credstore.ErrUserNotFound},
	{"invalid token", credstore.ErrInvalidToken},
}

// translate resolves a provider error message to a credstore sentinel.
// Unknown messages fall back to the given default so callers decide
// what an unclassified failure means in their flow.
func translate(message string, fallback error) error {
	lower := strings.ToLower(message)
	for _, tr := range translations {
		if strings.Contains(lower, tr.substring) {
			return tr.sentinel
		}
	}
	return fallback
}
