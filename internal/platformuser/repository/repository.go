package repository

import (
	"context"

	"ghxstship/accounts/internal/platformuser/domain"
)

// Repository defines persistence for platform users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.PlatformUser, error)
	GetByEmailAndPlatform(ctx context.Context, email, platform string) (*domain.PlatformUser, error)
	GetByAuthUserAndPlatform(ctx context.Context, authUserID, platform string) (*domain.PlatformUser, error)
	Create(ctx context.Context, u *domain.PlatformUser) error
	Update(ctx context.Context, u *domain.PlatformUser) error
	Delete(ctx context.Context, id string) error
}
