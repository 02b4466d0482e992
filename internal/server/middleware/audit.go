package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ghxstship/accounts/internal/audit"
	"ghxstship/accounts/internal/audit/domain"
	auditrepo "ghxstship/accounts/internal/audit/repository"
)

// Audit returns middleware that records an audit row after each
// authenticated mutating request. Reads (GET) and anonymous requests are
// not audited; the auth flow writes its own events from the service.
// Create is best-effort: failures are logged and never fail the request.
func Audit(repo auditrepo.Repository, skipRoutes map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if repo == nil || c.Request.Method == http.MethodGet {
			return
		}
		route := c.FullPath()
		if route == "" || skipRoutes[route] {
			return
		}
		ctx := c.Request.Context()
		userID, _ := GetUserID(ctx)
		if userID == "" {
			return
		}
		ar := audit.ParseRoute(c.Request.Method, route)
		entry := &domain.AuditLog{
			ID:        uuid.New().String(),
			OrgID:     audit.SentinelOrgID,
			UserID:    userID,
			Action:    ar.Action,
			Resource:  ar.Resource,
			IP:        ClientIP(ctx),
			Metadata:  "",
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.Create(ctx, entry); err != nil {
			log.Printf("audit: failed to create audit log: %v", err)
		}
	}
}
