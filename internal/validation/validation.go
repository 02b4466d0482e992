// Package validation holds the per-operation input schemas and their
// validators. Validation is the first gate before any side effect: each
// Validate returns a per-field error list and never panics.
package validation

import (
	"regexp"
	"unicode/utf8"

	"ghxstship/accounts/internal/autherr"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// checkPassword appends field errors for the platform password policy:
// minimum 8 characters with at least one uppercase letter, one lowercase
// letter, and one digit.
func checkPassword(field, password string, errs []autherr.FieldError) []autherr.FieldError {
	if len(password) < 8 {
		return append(errs, autherr.FieldError{Field: field, Message: "password must be at least 8 characters"})
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper {
		errs = append(errs, autherr.FieldError{Field: field, Message: "password must contain at least one uppercase letter"})
	}
	if !hasLower {
		errs = append(errs, autherr.FieldError{Field: field, Message: "password must contain at least one lowercase letter"})
	}
	if !hasDigit {
		errs = append(errs, autherr.FieldError{Field: field, Message: "password must contain at least one number"})
	}
	return errs
}

func checkEmail(field, email string, errs []autherr.FieldError) []autherr.FieldError {
	if email == "" {
		return append(errs, autherr.FieldError{Field: field, Message: "email is required"})
	}
	if !ValidEmail(email) {
		return append(errs, autherr.FieldError{Field: field, Message: "invalid email format"})
	}
	return errs
}

func checkName(field, name string, errs []autherr.FieldError) []autherr.FieldError {
	n := utf8.RuneCountInString(name)
	if n < 1 {
		return append(errs, autherr.FieldError{Field: field, Message: field + " is required"})
	}
	if n > 50 {
		return append(errs, autherr.FieldError{Field: field, Message: field + " must be at most 50 characters"})
	}
	return errs
}

// SignUpInput is the sign-up request body.
type SignUpInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	AgreeToTerms    bool   `json:"agreeToTerms"`
	InviteCode      string `json:"inviteCode,omitempty"`
	OrganizationID  string `json:"organizationId,omitempty"`
}

// Validate returns the per-field errors for the sign-up schema.
func (in *SignUpInput) Validate() []autherr.FieldError {
	var errs []autherr.FieldError
	errs = checkEmail("email", in.Email, errs)
	errs = checkPassword("password", in.Password, errs)
	if in.Password != in.ConfirmPassword {
		errs = append(errs, autherr.FieldError{Field: "confirmPassword", Message: "passwords do not match"})
	}
	errs = checkName("firstName", in.FirstName, errs)
	errs = checkName("lastName", in.LastName, errs)
	if !in.AgreeToTerms {
		errs = append(errs, autherr.FieldError{Field: "agreeToTerms", Message: "you must agree to the terms of service"})
	}
	return errs
}

// SignInInput is the sign-in request body.
type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *SignInInput) Validate() []autherr.FieldError {
	var errs []autherr.FieldError
	errs = checkEmail("email", in.Email, errs)
	if in.Password == "" {
		errs = append(errs, autherr.FieldError{Field: "password", Message: "password is required"})
	}
	return errs
}

// ForgotPasswordInput requests a password-reset email.
type ForgotPasswordInput struct {
	Email string `json:"email"`
}

func (in *ForgotPasswordInput) Validate() []autherr.FieldError {
	return checkEmail("email", in.Email, nil)
}

// ResetPasswordInput sets a new password from a recovery session.
type ResetPasswordInput struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (in *ResetPasswordInput) Validate() []autherr.FieldError {
	errs := checkPassword("password", in.Password, nil)
	if in.Password != in.ConfirmPassword {
		errs = append(errs, autherr.FieldError{Field: "confirmPassword", Message: "passwords do not match"})
	}
	return errs
}

// MagicLinkInput requests a passwordless sign-in email.
type MagicLinkInput struct {
	Email string `json:"email"`
}

func (in *MagicLinkInput) Validate() []autherr.FieldError {
	return checkEmail("email", in.Email, nil)
}

// ProfileSetupInput is the onboarding profile step.
type ProfileSetupInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

func (in *ProfileSetupInput) Validate() []autherr.FieldError {
	var errs []autherr.FieldError
	errs = checkName("firstName", in.FirstName, errs)
	errs = checkName("lastName", in.LastName, errs)
	if utf8.RuneCountInString(in.DisplayName) > 50 {
		errs = append(errs, autherr.FieldError{Field: "displayName", Message: "displayName must be at most 50 characters"})
	}
	if utf8.RuneCountInString(in.Bio) > 500 {
		errs = append(errs, autherr.FieldError{Field: "bio", Message: "bio must be at most 500 characters"})
	}
	return errs
}

// OrganizationSetupInput is the onboarding organization step.
type OrganizationSetupInput struct {
	OrganizationID string `json:"organizationId"`
}

func (in *OrganizationSetupInput) Validate() []autherr.FieldError {
	if in.OrganizationID == "" {
		return []autherr.FieldError{{Field: "organizationId", Message: "organizationId is required"}}
	}
	return nil
}

// RoleSelectionInput is the onboarding role step.
type RoleSelectionInput struct {
	Role string `json:"role"`
}

func (in *RoleSelectionInput) Validate() []autherr.FieldError {
	if in.Role == "" {
		return []autherr.FieldError{{Field: "role", Message: "role is required"}}
	}
	return nil
}

// PreferencesInput is the whole-row preferences update.
type PreferencesInput struct {
	Theme              string `json:"theme"`
	Language           string `json:"language"`
	Timezone           string `json:"timezone"`
	EmailNotifications bool   `json:"emailNotifications"`
	PushNotifications  bool   `json:"pushNotifications"`
	MarketingEmails    bool   `json:"marketingEmails"`
}

func (in *PreferencesInput) Validate() []autherr.FieldError {
	var errs []autherr.FieldError
	switch in.Theme {
	case "light", "dark", "system":
	default:
		errs = append(errs, autherr.FieldError{Field: "theme", Message: "theme must be light, dark, or system"})
	}
	if in.Language == "" {
		errs = append(errs, autherr.FieldError{Field: "language", Message: "language is required"})
	}
	if in.Timezone == "" {
		errs = append(errs, autherr.FieldError{Field: "timezone", Message: "timezone is required"})
	}
	return errs
}
