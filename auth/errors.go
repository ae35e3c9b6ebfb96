package auth

import (
	"errors"
	"net/http"
)

// Authentication failures. All of them surface as 401.
var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrCredentialExpired = errors.New("credential expired")
	ErrPrincipalNotFound = errors.New("user not found")
)

var (
	// ErrAccessDenied is returned when an authenticated principal lacks the
	// capability a route requires.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidPermissionSet is returned when a role mutation references
	// permissions that do not exist. The mutation is rolled back.
	ErrInvalidPermissionSet = errors.New("unacceptable permissions")
	// ErrPasswordMismatch is returned when a password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// IsAuthenticationError reports whether err belongs to the 401 class.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrInvalidCredential) ||
		errors.Is(err, ErrCredentialExpired) ||
		errors.Is(err, ErrPrincipalNotFound)
}

// HTTPStatus maps an error of this package to a response status.
// It returns 0 for errors it does not know.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsAuthenticationError(err):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidPermissionSet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPasswordMismatch):
		return http.StatusBadRequest
	}
	return 0
}
