// Package account orchestrates the authentication flows: registration,
// email verification, login, refresh rotation, logout, and password reset.
//
// The package owns no storage of its own. It composes the identity store,
// the three token-ledger families, the PASETO token manager, and the mail
// sender, and it owns the transaction boundaries where a flow touches more
// than one of them.
//
// Email delivery is best-effort: a failed send is logged and the state
// change stands.
package account
