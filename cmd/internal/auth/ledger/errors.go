package ledger

import "errors"

var (
	// ErrInvalidToken is returned when a presented token matches no live row.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a presented token exists but is past
	// its expiry. The row is removed as a side effect of the lookup.
	ErrExpiredToken = errors.New("expired token")

	// ErrConfig is returned for invalid ledger configuration.
	ErrConfig = errors.New("invalid ledger config")
)
