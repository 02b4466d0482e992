// Package autherr defines the closed error-code taxonomy for account
// operations. Every public operation returns either a success value or an
// *Error with one of these codes; internal failures are mapped to
// CodeServerError at the operation boundary.
package autherr

import "fmt"

// Code identifies a category of account-operation failure.
type Code string

const (
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeEmailExists        Code = "email_exists"
	CodeInvalidToken       Code = "invalid_token"
	CodeExpiredToken       Code = "expired_token"
	CodeRateLimited        Code = "rate_limited"
	CodeNetworkError       Code = "network_error"
	CodeServerError        Code = "server_error"
	CodeOAuthError         Code = "oauth_error"
	CodeSessionExpired     Code = "session_expired"
	CodeValidationError    Code = "validation_error"
	CodePermissionDenied   Code = "permission_denied"
	CodeUserNotFound       Code = "user_not_found"
	CodeWeakPassword       Code = "weak_password"
	CodeEmailNotVerified   Code = "email_not_verified"
)

// defaultMessages are the user-visible messages per code when no more
// specific message is supplied.
var defaultMessages = map[Code]string{
	CodeInvalidCredentials: "Invalid email or password",
	CodeEmailExists:        "An account with this email already exists",
	CodeInvalidToken:       "Invalid or malformed token",
	CodeExpiredToken:       "Your session has expired",
	CodeRateLimited:        "Too many attempts. Please try again later.",
	CodeNetworkError:       "Network error. Please check your connection.",
	CodeServerError:        "An unexpected error occurred",
	CodeOAuthError:         "OAuth authentication failed",
	CodeSessionExpired:     "Your session has expired",
	CodeValidationError:    "Please check your input",
	CodePermissionDenied:   "Permission denied",
	CodeUserNotFound:       "No account found with this email",
	CodeWeakPassword:       "Password does not meet requirements",
	CodeEmailNotVerified:   "Please verify your email address",
}

// FieldError is a single per-field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a tagged account-operation failure. Fields holds per-field
// details for CodeValidationError; it is nil for all other codes.
type Error struct {
	Code    Code         `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New returns an *Error with the given code and the default message for it.
func New(code Code) *Error {
	return &Error{Code: code, Message: defaultMessages[code]}
}

// WithMessage returns an *Error with the given code and message. An empty
// message falls back to the default for the code.
func WithMessage(code Code, message string) *Error {
	if message == "" {
		return New(code)
	}
	return &Error{Code: code, Message: message}
}

// Validation returns a CodeValidationError carrying per-field details.
func Validation(fields []FieldError) *Error {
	e := New(CodeValidationError)
	e.Fields = fields
	return e
}

// CodeOf returns the code of err if it is an *Error, or CodeServerError
// otherwise. Used at handler boundaries to map arbitrary failures.
func CodeOf(err error) Code {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return CodeServerError
}
