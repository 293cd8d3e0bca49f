// Package identity implements bastion's credential store.
//
// It owns user records (email, optional password hash, verification flag)
// and the security primitives around them (ULID ids, Argon2id password
// hashing via cmd/security/password).
//
// This package is intentionally dependency-light and security-first.
package identity
