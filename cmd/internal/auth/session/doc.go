// Package session issues and verifies the two signed token shapes used by
// the auth flows.
//
// Access tokens are PASETO v4.public, short-lived, and carry the user id and
// email. Refresh tokens are also PASETO v4.public, long-lived, carry only the
// user id, and are additionally persisted (hashed) by the token ledger so
// they can be rotated and revoked server-side.
//
// Both shapes are signed with the same Ed25519 keypair; a "typ" claim keeps
// them from being interchangeable.
package session
