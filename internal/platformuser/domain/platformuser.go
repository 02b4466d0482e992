package domain

import (
	"errors"
	"time"
)

// PlatformUser is the per-platform provisioning record for an identity.
// The same auth user gets one row per platform they sign in through.
type PlatformUser struct {
	ID             string
	AuthUserID     string
	Platform       string
	Email          string
	FullName       string
	AvatarURL      string
	OrganizationID string // empty when the user belongs to no tenant yet
	PlatformRoles  []string
	Status         UserStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// Validate validates the platform user for persistence. Returns an error describing the first validation failure.
func (u *PlatformUser) Validate() error {
	if u.AuthUserID == "" {
		return errors.New("auth_user_id is required")
	}
	if u.Platform == "" {
		return errors.New("platform is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}
