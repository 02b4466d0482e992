// Package server assembles the gin engine: middleware chain, account
// routes, and the health probe.
package server

import (
	"github.com/gin-gonic/gin"

	accounthandler "ghxstship/accounts/internal/account/handler"
	auditrepo "ghxstship/accounts/internal/audit/repository"
	healthhandler "ghxstship/accounts/internal/health/handler"
	"ghxstship/accounts/internal/server/middleware"
	"ghxstship/accounts/internal/telemetry"
)

// Deps holds the dependencies the HTTP surface needs. AuditRepo, Emitter,
// and DB may be nil; the corresponding middleware and checks then no-op.
type Deps struct {
	// Accounts is the account service behind every /v1 route.
	Accounts accounthandler.Accounts
	// Tokens validates Bearer access tokens for the /v1/users/me subtree.
	Tokens middleware.TokenValidator
	// AuditRepo persists audit rows for authenticated mutating requests.
	AuditRepo auditrepo.Repository
	// Emitter receives http_request telemetry events.
	Emitter telemetry.EventEmitter
	// DB answers the readiness ping on /healthz.
	DB healthhandler.Pinger
}

// NewRouter builds the engine with the full middleware chain and routes.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CaptureClientIP())
	r.Use(middleware.Telemetry(deps.Emitter, map[string]bool{"/healthz": true}))
	r.Use(middleware.Audit(deps.AuditRepo, nil))

	r.GET("/healthz", healthhandler.NewHandler(deps.DB).Healthz)
	accounthandler.New(deps.Accounts).RegisterRoutes(r, middleware.RequireAuth(deps.Tokens))
	return r
}
