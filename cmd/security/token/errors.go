package token

import "errors"

// Stable sentinels so callers can distinguish a missing key from a weak one.
var (
	ErrHMACKeyMissing  = errors.New("token HMAC key missing")
	ErrHMACKeyTooShort = errors.New("token HMAC key too short")
)
