package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ghxstship/accounts/internal/telemetry"
	"ghxstship/accounts/internal/telemetry/domain"
)

// Telemetry returns middleware that emits an http_request event after
// each request. Best-effort and fire-and-forget: the emitter runs in a
// goroutine and never blocks or fails the request. If emitter is nil,
// the middleware no-ops.
func Telemetry(emitter telemetry.EventEmitter, skipRoutes map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if emitter == nil {
			return
		}
		route := c.FullPath()
		if route == "" || skipRoutes[route] {
			return
		}
		ctx := c.Request.Context()
		userID, _ := GetUserID(ctx)
		event := &domain.Event{
			EventType: "http_request",
			Source:    "http_middleware",
			Platform:  c.GetHeader("X-Platform"),
			UserID:    userID,
			Attributes: map[string]string{
				"method":      c.Request.Method,
				"route":       route,
				"status":      strconv.Itoa(c.Writer.Status()),
				"duration_ms": strconv.FormatInt(time.Since(start).Milliseconds(), 10),
				"client_ip":   ClientIP(ctx),
			},
			OccurredAt: time.Now().UTC(),
		}
		telemetry.EmitAsync(emitter, ctx, event)
	}
}
