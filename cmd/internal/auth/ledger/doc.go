// Package ledger implements bastion's token ledger: one generic persistence
// capability with three bound instances (email-verification codes,
// password-reset codes, refresh tokens).
//
// Each instance owns creation, single-use consumption, lazy expiry-based
// invalidation, and bulk revocation for its token family. Consumption is an
// atomic find-and-delete, so concurrent replay of the same code cannot
// succeed twice.
//
// Storage rule: refresh tokens are high-entropy signed tokens and are stored
// hashed (via cmd/security/token); verification and reset codes are short
// human-typed codes whose live value must be re-sendable, so they are stored
// as given. Expired rows persist until the next read that touches them; there
// is no background sweeper.
package ledger
