package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrPrincipalNotFound indicates the login identifier matched no account.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrInvalidCredentials indicates the secret did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a request without a valid principal.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates a principal acting outside its allowed scope.
	ErrForbidden = errors.New("forbidden")
	// ErrTokenRevoked indicates a capability token no longer in the store.
	ErrTokenRevoked = errors.New("token expired or revoked")
)
