package session

import "errors"

var (
	// ErrInvalidToken is returned when no verification strategy accepts a token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrSigning is returned when a token cannot be signed and the degraded mode is off.
	ErrSigning = errors.New("token signing failed")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
