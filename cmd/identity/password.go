package identity

import (
	"errors"

	"bastion/cmd/security/password"
)

// HashPassword returns a PHC-style Argon2id hash of passwordPlain, enforcing
// the configured password policy (env overrides via cmd/security/password).
func HashPassword(passwordPlain string) (string, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		// Invalid env is an operational error, not a weak fallback.
		return "", err
	}
	return cfg.Hash(passwordPlain)
}

// VerifyPassword checks a password against a PHC Argon2id hash.
// Hash strings are treated as untrusted input: strict parsing with anti-DoS
// parameter bounds.
func VerifyPassword(passwordPlain, encodedPHC string) (bool, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		return false, err
	}

	ok, err := cfg.Verify(encodedPHC, passwordPlain)
	if err != nil {
		if errors.Is(err, password.ErrInvalidHash) {
			return false, errors.New("invalid argon2id hash format")
		}
		return false, err
	}
	return ok, nil
}

// IsPolicyViolation reports whether err came from password policy validation.
func IsPolicyViolation(err error) bool {
	return errors.Is(err, password.ErrPasswordTooShort) ||
		errors.Is(err, password.ErrPasswordTooLong) ||
		errors.Is(err, password.ErrPasswordTooWeak)
}
