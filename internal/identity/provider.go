// Package identity wraps the delegated identity provider: credential
// flows, the session state machine, and the fixed mapping from provider
// error codes to user-facing messages.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// OAuthKind selects one of the configured OAuth popup providers.
type OAuthKind string

const (
	OAuthGoogle OAuthKind = "google.com"
	OAuthGitHub OAuthKind = "github.com"
)

// User is the provider's view of an account.
type User struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Credentials is the result of a successful sign-in flow.
type Credentials struct {
	User         User
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// StateEvent is one emission of the provider's auth-state stream. A nil
// Credentials means no restorable session.
type StateEvent struct {
	Credentials *Credentials
}

// Provider is the identity provider surface the session consumes. Every
// method is a remote call and honors ctx.
type Provider interface {
	// StateChanges is the auth-state stream. The first event reports
	// whether a previous session could be restored.
	StateChanges() <-chan StateEvent

	SignInWithPassword(ctx context.Context, email, password string) (Credentials, error)
	SignUp(ctx context.Context, email, password, displayName string) (Credentials, error)
	// SignInWithOAuth exchanges a provider credential obtained by the
	// client's popup flow.
	SignInWithOAuth(ctx context.Context, kind OAuthKind, providerToken string) (Credentials, error)
	SendPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, oobCode, newPassword string) error
	RefreshIDToken(ctx context.Context, refreshToken string) (Credentials, error)
}

// Code is the closed enumeration of known provider error codes. Unknown
// provider responses map to CodeUnknown rather than leaking raw strings.
type Code string

const (
	CodeEmailAlreadyInUse     Code = "auth/email-already-in-use"
	CodeInvalidEmail          Code = "auth/invalid-email"
	CodeOperationNotAllowed   Code = "auth/operation-not-allowed"
	CodeWeakPassword          Code = "auth/weak-password"
	CodeUserDisabled          Code = "auth/user-disabled"
	CodeUserNotFound          Code = "auth/user-not-found"
	CodeWrongPassword         Code = "auth/wrong-password"
	CodePopupClosedByUser     Code = "auth/popup-closed-by-user"
	CodeCancelledPopupRequest Code = "auth/cancelled-popup-request"
	CodePopupBlocked          Code = "auth/popup-blocked"
	CodeInvalidCredential     Code = "auth/invalid-credential"
	CodeTooManyRequests       Code = "auth/too-many-requests"
	CodeExpiredActionCode     Code = "auth/expired-action-code"
	CodeInvalidActionCode     Code = "auth/invalid-action-code"
	CodeNetworkRequestFailed  Code = "auth/network-request-failed"
	CodeUnknown               Code = "auth/unknown"
)

// AuthError tags a provider failure with its code.
type AuthError struct {
	Code Code
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// messages is the fixed code to user-facing message table. One message
// per code; nothing else ever reaches the UI.
var messages = map[Code]string{
	CodeEmailAlreadyInUse:     "This email is already registered. Please sign in or use a different email.",
	CodeInvalidEmail:          "Invalid email address. Please check and try again.",
	CodeOperationNotAllowed:   "This sign-in method is not enabled. Please contact support.",
	CodeWeakPassword:          "Password is too weak. Please use a stronger password.",
	CodeUserDisabled:          "This account has been disabled. Please contact support.",
	CodeUserNotFound:          "No account found with this email. Please sign up.",
	CodeWrongPassword:         "Incorrect password. Please try again.",
	CodePopupClosedByUser:     "Sign-in popup was closed before completion. Please try again.",
	CodeCancelledPopupRequest: "The sign-in process was cancelled. Please try again.",
	CodePopupBlocked:          "Sign-in popup was blocked by your browser. Please allow popups and try again.",
	CodeInvalidCredential:     "Invalid credentials. Please try again.",
	CodeTooManyRequests:       "Too many attempts. Please try again later.",
	CodeExpiredActionCode:     "This link has expired. Please request a new one.",
	CodeInvalidActionCode:     "This link is invalid or has already been used.",
	CodeNetworkRequestFailed:  "Network error. Please check your connection and try again.",
}

const defaultMessage = "An unexpected error occurred"

// Message returns the user-facing message for err. Non-auth errors and
// unknown codes both yield the generic fallback.
func Message(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		if msg, ok := messages[ae.Code]; ok {
			return msg
		}
	}
	return defaultMessage
}

// MessageForCode looks up the table directly.
func MessageForCode(code Code) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return defaultMessage
}
