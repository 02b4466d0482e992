// seed inserts development sample data for local testing. Run via ./scripts/seed.sh.
// Idempotent: each insert is skipped when the row already exists.
// With AUTH_BACKEND=local it also creates a confirmed dev identity so
// sign-in works immediately (dev@ghxstship.com / Password123).
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ghxstship/accounts/internal/config"
	"ghxstship/accounts/internal/credstore"
	"ghxstship/accounts/internal/credstore/local"
	"ghxstship/accounts/internal/db"
	"ghxstship/accounts/internal/db/migrate"
	invitationdomain "ghxstship/accounts/internal/invitation/domain"
	invitationrepo "ghxstship/accounts/internal/invitation/repository"
	orgdomain "ghxstship/accounts/internal/organization/domain"
	orgrepo "ghxstship/accounts/internal/organization/repository"
	"ghxstship/accounts/internal/platform"
	userdomain "ghxstship/accounts/internal/platformuser/domain"
	platformuserrepo "ghxstship/accounts/internal/platformuser/repository"
	"ghxstship/accounts/internal/security"
)

const (
	devOrgID      = "dev-org-001"
	devOrgName    = "GHXSTSHIP Dev"
	devInviteCode = "DEV-INVITE"
	devInviteRole = "COMPVSS_MANAGER"

	devEmail      = "dev@ghxstship.com"
	devPassword   = "Password123"
	devIdentityID = "dev-identity-001"
	devUserID     = "dev-user-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate: %v", err)
	}

	now := time.Now().UTC()

	orgs := orgrepo.NewPostgresRepository(pool)
	org, err := orgs.GetOrganizationByID(ctx, devOrgID)
	if err != nil {
		log.Fatalf("seed: org lookup: %v", err)
	}
	if org == nil {
		if err := orgs.CreateOrganization(ctx, &orgdomain.Org{
			ID:        devOrgID,
			Name:      devOrgName,
			Status:    orgdomain.OrgStatusActive,
			CreatedAt: now,
		}); err != nil {
			log.Fatalf("seed: create org: %v", err)
		}
		log.Printf("seed: created organization %s", devOrgID)
	}

	invites := invitationrepo.NewPostgresRepository(pool)
	inv, err := invites.GetByCode(ctx, devInviteCode)
	if err != nil {
		log.Fatalf("seed: invite lookup: %v", err)
	}
	if inv == nil {
		expires := now.Add(30 * 24 * time.Hour)
		if err := invites.Create(ctx, &invitationdomain.Invitation{
			ID:             "dev-invite-001",
			InviteCode:     devInviteCode,
			OrganizationID: devOrgID,
			Role:           devInviteRole,
			ExpiresAt:      &expires,
			CreatedAt:      now,
		}); err != nil {
			log.Fatalf("seed: create invite: %v", err)
		}
		log.Printf("seed: created invitation %s (role %s)", devInviteCode, devInviteRole)
	}

	users := platformuserrepo.NewPostgresRepository(pool)
	pu, err := users.GetByEmailAndPlatform(ctx, devEmail, string(platform.COMPVSS))
	if err != nil {
		log.Fatalf("seed: user lookup: %v", err)
	}
	if pu == nil {
		if err := users.Create(ctx, &userdomain.PlatformUser{
			ID:             devUserID,
			AuthUserID:     devIdentityID,
			Platform:       string(platform.COMPVSS),
			Email:          devEmail,
			FullName:       "Dev User",
			OrganizationID: devOrgID,
			PlatformRoles:  []string{devInviteRole},
			Status:         userdomain.UserStatusActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		}); err != nil {
			log.Fatalf("seed: create platform user: %v", err)
		}
		log.Printf("seed: created platform user %s", devEmail)
	}

	if cfg.AuthBackend == config.BackendLocal {
		seedIdentity(ctx, cfg, pool, now)
	}

	log.Println("seed: done")
}

// seedIdentity creates the confirmed dev identity for the local backend.
func seedIdentity(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, now time.Time) {
	identities := local.NewPostgresIdentityRepo(pool)
	existing, err := identities.GetByEmail(ctx, devEmail)
	if err != nil {
		log.Fatalf("seed: identity lookup: %v", err)
	}
	if existing != nil {
		return
	}
	hash, err := security.NewHasher(cfg.BcryptCost).Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("seed: hash password: %v", err)
	}
	if err := identities.Create(ctx, &local.Identity{
		ID:             devIdentityID,
		Email:          devEmail,
		PasswordHash:   hash,
		EmailConfirmed: true,
		Metadata: credstore.Metadata{
			FullName:  "Dev User",
			FirstName: "Dev",
			LastName:  "User",
		},
		Platform:  string(platform.COMPVSS),
		CreatedAt: now,
	}); err != nil {
		log.Fatalf("seed: create identity: %v", err)
	}
	log.Printf("seed: created identity %s (password %s)", devEmail, devPassword)
}
