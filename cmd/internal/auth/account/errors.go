package account

import "errors"

var (
	// ErrInvalidCredentials is returned when login fails, regardless of
	// whether the email was unknown, the account has no password, or the
	// password did not match. Callers must not distinguish the cases.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned when a known user may not perform the
	// operation yet, e.g. logging in before verifying the email.
	ErrUnauthorized = errors.New("unauthorized")
)
