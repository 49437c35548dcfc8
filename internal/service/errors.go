package service

import "errors"

var (
	// ErrInvalidInput is returned when required signup or login fields are empty.
	ErrInvalidInput = errors.New("name, email and password are required")
	// ErrInvalidCredentials is returned when no user matches the submitted email and password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken is returned when a request carries no session token.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken is returned for tokens that are forged, expired or revoked.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserExists is returned when signing up with an email that is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when the subject of a valid token has no record.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreFailure wraps every credential or revocation store error.
	ErrStoreFailure = errors.New("store failure")
)
