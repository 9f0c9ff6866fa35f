package auth

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("not logged in")
	ErrForbidden       = errors.New("admin only")
)

// Flow names the user action an identity-provider error came from.
type Flow string

const (
	FlowSignup  Flow = "signup"
	FlowLogin   Flow = "login"
	FlowGoogle  Flow = "google"
	FlowSession Flow = "session"
)

// Provider and token error codes.
const (
	CodeEmailInUse        = "email-already-in-use"
	CodeWeakPassword      = "weak-password"
	CodeInvalidEmail      = "invalid-email"
	CodeUserNotFound      = "user-not-found"
	CodeWrongPassword     = "wrong-password"
	CodeInvalidCredential = "invalid-credential"
	CodePopupClosed       = "popup-closed-by-user"
	CodeTokenExpired      = "id-token-expired"
	CodeInvalidToken      = "invalid-token"
)

// Error is a categorised authentication failure.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "auth: " + e.Code + ": " + e.Err.Error()
	}
	return "auth: " + e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every token failure match ErrUnauthenticated.
func (e *Error) Is(target error) bool { return target == ErrUnauthenticated }

var messages = map[Flow]map[string]string{
	FlowSignup: {
		CodeEmailInUse:   "Email already in use. Please login instead.",
		CodeWeakPassword: "Password should be at least 6 characters.",
		CodeInvalidEmail: "Invalid email address.",
	},
	FlowLogin: {
		CodeUserNotFound:      "No account found with this email.",
		CodeWrongPassword:     "Incorrect password.",
		CodeInvalidEmail:      "Invalid email address.",
		CodeInvalidCredential: "Invalid email or password.",
	},
	FlowGoogle: {
		CodePopupClosed: "Login cancelled.",
	},
	FlowSession: {
		CodeTokenExpired: "Your session has expired. Please login again.",
		CodeInvalidToken: "Invalid session. Please login again.",
	},
}

var fallback = map[Flow]string{
	FlowSignup:  "Signup failed. Please try again.",
	FlowLogin:   "Login failed. Please try again.",
	FlowGoogle:  "Google login failed. Please try again.",
	FlowSession: "Please login to continue.",
}

// Message maps a provider error code to the text shown to the user. Codes may
// carry the provider's "auth/" prefix.
func Message(flow Flow, code string) string {
	code = strings.TrimPrefix(strings.TrimSpace(code), "auth/")
	if m, ok := messages[flow][code]; ok {
		return m
	}
	if m, ok := fallback[flow]; ok {
		return m
	}
	return "Something went wrong. Please try again."
}

func KnownFlow(f Flow) bool {
	_, ok := fallback[f]
	return ok
}
