// internal/auth/errors.go

package auth

import "errors"

var (
	// ErrInvalidTokenType is returned when a refresh token is presented
	// where an access token is required.
	ErrInvalidTokenType = errors.New("invalid token type")
)
