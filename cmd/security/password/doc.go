// Package password provides password hashing and verification for bastion.
//
// It implements Argon2id hashing with a PHC-style encoded string format and
// includes:
// - Configurable Argon2id parameters (via environment variables)
// - Password policy validation (length + character-class rule)
// - Strict hash decoding and verification with anti-DoS bounds
//
// Security notes:
// - Hash strings are treated as untrusted input during Verify.
// - Verification refuses hashes whose parameters exceed reasonable bounds.
package password
