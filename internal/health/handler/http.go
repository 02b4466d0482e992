// Package handler serves the liveness/readiness probe.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports database reachability (e.g. *pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler answers /healthz. A nil pinger skips the database check so the
// probe stays useful in unit tests and partial deployments.
type Handler struct {
	db Pinger
}

// NewHandler returns a health Handler over db. db may be nil.
func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

// Healthz returns 200 when the service is up and the database (if
// configured) answers a ping within 2 seconds; 503 otherwise.
func (h *Handler) Healthz(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
