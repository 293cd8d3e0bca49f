package session

import "errors"

var (
	// ErrInvalidToken is returned when a token fails verification, carries
	// the wrong "typ" claim, or is missing required claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
