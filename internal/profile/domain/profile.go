package domain

import "time"

// Onboarding steps in order. The recorded step only moves forward;
// repeating an earlier step never regresses it.
const (
	StepNew          = 0
	StepProfile      = 1
	StepOrganization = 2
	StepRole         = 3
	StepPreferences  = 4
	StepComplete     = 5
)

// Profile is the per-user display profile and onboarding progress.
// ID is the auth user id.
type Profile struct {
	ID                  string
	FirstName           string
	LastName            string
	DisplayName         string
	Phone               string
	Bio                 string
	AvatarURL           string
	OnboardingStep      int
	OnboardingCompleted bool
	UpdatedAt           time.Time
}
