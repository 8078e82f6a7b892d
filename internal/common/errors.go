// Package common defines shared constants and sentinel errors used across
// the server and client layers of RecipeBook. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Registration: the email is already taken.
	ErrDuplicateIdentity = errors.New("identity already exists")

	// Login: unknown email or wrong password. Both collapse into this one
	// value so callers cannot tell which part failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token validation errors. All of them surface as "unauthorized" to
	// HTTP clients; the distinct values only feed logging.
	ErrInvalidToken    = errors.New("invalid token")
	ErrStaleToken      = errors.New("stale token")
	ErrUnknownIdentity = errors.New("unknown identity")

	// The credential store could not be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Object storage is not configured.
	ErrStorageDisabled = errors.New("object storage disabled")
)
