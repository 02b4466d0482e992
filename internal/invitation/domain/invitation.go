package domain

import (
	"errors"
	"time"
)

// Invitation grants a prospective user a role in an organization. The
// code travels in the signup form; a row is consumed at most once.
type Invitation struct {
	ID             string
	InviteCode     string
	OrganizationID string
	Role           string     // role granted on redemption; empty means platform default
	ExpiresAt      *time.Time // nil means no expiry
	UsedAt         *time.Time // nil while unredeemed
	CreatedAt      time.Time
}

// Validate validates the invitation for persistence. Returns an error describing the first validation failure.
func (i *Invitation) Validate() error {
	if i.InviteCode == "" {
		return errors.New("invite_code is required")
	}
	if i.OrganizationID == "" {
		return errors.New("organization_id is required")
	}
	return nil
}

// Expired reports whether the invitation's expiry has passed at the given time.
func (i *Invitation) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(now)
}
