package password

import "errors"

// Public, stable errors for callers.
var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrPasswordTooWeak  = errors.New("password does not meet complexity policy")
	ErrInvalidHash      = errors.New("invalid argon2id hash")
)
