package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	accountservice "ghxstship/accounts/internal/account/service"
	auditlog "ghxstship/accounts/internal/audit"
	auditrepo "ghxstship/accounts/internal/audit/repository"
	"ghxstship/accounts/internal/config"
	"ghxstship/accounts/internal/credstore"
	"ghxstship/accounts/internal/credstore/gotrue"
	"ghxstship/accounts/internal/credstore/local"
	"ghxstship/accounts/internal/db"
	"ghxstship/accounts/internal/db/migrate"
	invitationrepo "ghxstship/accounts/internal/invitation/repository"
	invitationservice "ghxstship/accounts/internal/invitation/service"
	orgrepo "ghxstship/accounts/internal/organization/repository"
	platformuserrepo "ghxstship/accounts/internal/platformuser/repository"
	prefsrepo "ghxstship/accounts/internal/preferences/repository"
	profilerepo "ghxstship/accounts/internal/profile/repository"
	"ghxstship/accounts/internal/security"
	"ghxstship/accounts/internal/server"
	"ghxstship/accounts/internal/server/middleware"
	"ghxstship/accounts/internal/telemetry"
	otelsetup "ghxstship/accounts/internal/telemetry/otel"
	"ghxstship/accounts/internal/telemetry/producer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "ghxstship-accounts", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate: %v", err)
	}

	userRepo := platformuserrepo.NewPostgresRepository(pool)
	profileRepo := profilerepo.NewPostgresRepository(pool)
	prefsRepo := prefsrepo.NewPostgresRepository(pool)
	organizationRepo := orgrepo.NewPostgresRepository(pool)
	auditRepo := auditrepo.NewPostgresRepository(pool)
	invites := invitationservice.NewService(invitationrepo.NewPostgresRepository(pool))

	creds, tokens, err := buildCredStore(cfg, pool)
	if err != nil {
		log.Fatalf("credstore: %v", err)
	}

	auditLogger := auditlog.NewLogger(auditRepo, middleware.ClientIP)

	var emitters telemetry.Fanout
	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	if kafkaProducer != nil {
		defer kafkaProducer.Close()
		emitters = append(emitters, kafkaProducer)
	}
	if cfg.OTLPEndpoint != "" {
		emitters = append(emitters, otelsetup.NewEventEmitter(providers.LoggerProvider))
	}
	var emitter telemetry.EventEmitter
	if len(emitters) > 0 {
		emitter = emitters
	}

	svc := accountservice.NewAccountService(
		creds,
		userRepo,
		profileRepo,
		prefsRepo,
		organizationRepo,
		invites,
		cfg.RoleDefaults(),
		cfg.AppBaseURL,
		auditLogger,
	)

	router := server.NewRouter(server.Deps{
		Accounts:  svc,
		Tokens:    tokens,
		AuditRepo: auditRepo,
		Emitter:   emitter,
		DB:        pool,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("http server listening on %s (backend=%s)", cfg.HTTPAddr, cfg.AuthBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down http server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async telemetry emits finish before the exporters go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("http server stopped")
}

// buildCredStore selects the credential-store backend and the matching
// access-token validator from config.
func buildCredStore(cfg *config.Config, pool *pgxpool.Pool) (credstore.Store, middleware.TokenValidator, error) {
	switch cfg.AuthBackend {
	case config.BackendGoTrue:
		if cfg.GoTrueJWTSecret == "" {
			return nil, nil, errors.New("GOTRUE_JWT_SECRET must be set when AUTH_BACKEND=gotrue")
		}
		client := gotrue.New(cfg.GoTrueURL, cfg.GoTrueAnonKey, cfg.GoTrueServiceKey)
		return client, security.NewHSValidator(cfg.GoTrueJWTSecret, cfg.JWTAudience), nil

	case config.BackendLocal:
		priv, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
		if err != nil {
			return nil, nil, fmt.Errorf("JWT_PRIVATE_KEY: %w", err)
		}
		pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
		if err != nil {
			return nil, nil, fmt.Errorf("JWT_PUBLIC_KEY: %w", err)
		}
		tokens := security.NewTokenProvider(priv, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
		store := local.NewStore(
			local.NewPostgresIdentityRepo(pool),
			local.NewPostgresSessionRepo(pool),
			security.NewHasher(cfg.BcryptCost),
			tokens,
			local.NewCodeStore(),
			nil, // LogMailer
		)
		return store, tokens, nil
	}
	return nil, nil, fmt.Errorf("unknown auth backend %q", cfg.AuthBackend)
}
