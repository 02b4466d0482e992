package service

import (
	"context"
	"errors"
	"time"

	"ghxstship/accounts/internal/invitation/domain"
)

// Sentinel errors for invite redemption. Callers report them in this
// order of specificity: missing beats used beats expired.
var (
	ErrInviteNotFound = errors.New("invalid invitation code")
	ErrInviteUsed     = errors.New("invitation code already used")
	ErrInviteExpired  = errors.New("invitation code expired")
)

// Repo is the minimal invitation repository needed by the service.
type Repo interface {
	GetByCode(ctx context.Context, code string) (*domain.Invitation, error)
	Consume(ctx context.Context, id string, at time.Time) (bool, error)
}

// Service redeems invitation codes.
type Service struct {
	repo Repo
	nowF func() time.Time
}

// NewService returns a Service with the given repository.
func NewService(repo Repo) *Service {
	return &Service{repo: repo, nowF: func() time.Time { return time.Now().UTC() }}
}

// Redeem validates and consumes the code, returning the invitation so
// the caller can apply its organization and role. Consumption is
// atomic: of two concurrent redemptions of the same code, exactly one
// succeeds and the other gets ErrInviteUsed.
func (s *Service) Redeem(ctx context.Context, code string) (*domain.Invitation, error) {
	inv, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInviteNotFound
	}
	if inv.UsedAt != nil {
		return nil, ErrInviteUsed
	}
	now := s.nowF()
	if inv.Expired(now) {
		return nil, ErrInviteExpired
	}
	ok, err := s.repo.Consume(ctx, inv.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInviteUsed
	}
	inv.UsedAt = &now
	return inv, nil
}
