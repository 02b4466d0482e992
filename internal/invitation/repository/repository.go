package repository

import (
	"context"
	"time"

	"ghxstship/accounts/internal/invitation/domain"
)

// Repository defines persistence for invitations.
type Repository interface {
	GetByCode(ctx context.Context, code string) (*domain.Invitation, error)
	Create(ctx context.Context, i *domain.Invitation) error
	// Consume marks the invitation used at the given time, but only if it
	// is still unused. Returns false when another redemption got there
	// first.
	Consume(ctx context.Context, id string, at time.Time) (bool, error)
}
