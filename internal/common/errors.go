// Package common defines shared constants and sentinel errors used across
// the storage, service and transport layers of hicomm. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("already exists")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrorValidation       = errors.New("validation error")

	// ErrInvalidToken is the umbrella for every token verification failure.
	// The specific failures below wrap it.
	ErrInvalidToken = errors.New("invalid token")

	ErrTokenMalformed = tokenError("malformed")
	ErrTokenSignature = tokenError("signature mismatch")
	ErrTokenExpired   = tokenError("expired")
)

// TokenError is a categorised token verification failure. Its message never
// contains the token or any key material.
type TokenError struct {
	Reason string
}

func tokenError(reason string) *TokenError {
	return &TokenError{Reason: reason}
}

func (e *TokenError) Error() string {
	return "invalid token: " + e.Reason
}

// Unwrap lets errors.Is(err, ErrInvalidToken) match every category.
func (e *TokenError) Unwrap() error {
	return ErrInvalidToken
}
