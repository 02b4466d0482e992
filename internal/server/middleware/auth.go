package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ghxstship/accounts/internal/account/handler"
	"ghxstship/accounts/internal/autherr"
)

const bearerPrefix = "bearer "

// TokenValidator checks an access token and returns its claims. Both the
// RS256 token provider (local backend) and the HS256 validator (hosted
// backend secret) satisfy it.
type TokenValidator interface {
	ValidateAccess(token string) (sessionID, identityID, email string, err error)
}

// RequireAuth returns middleware that rejects requests without a valid
// Bearer access token and threads the identity through both the gin
// context (for handlers) and the request context (for audit and
// telemetry).
func RequireAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractBearer(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": autherr.New(autherr.CodeInvalidToken)})
			return
		}
		sessionID, identityID, email, err := tokens.ValidateAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": autherr.New(autherr.CodeSessionExpired)})
			return
		}
		c.Set(handler.UserIDKey, identityID)
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identityID, email, sessionID))
		c.Next()
	}
}

// CaptureClientIP returns middleware that copies gin's resolved client IP
// into the request context so code below the HTTP layer can read it.
func CaptureClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithClientIP(c.Request.Context(), c.ClientIP()))
		c.Next()
	}
}

// ExtractBearer returns the Bearer token from the Authorization header,
// or "" if missing or malformed.
func ExtractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
