package account

import (
	"context"
	"time"

	"bastion/cmd/identity"
)

// ForgotPassword mints a password-reset code and emails it. The result is
// identical whether or not the email is registered, so the endpoint cannot
// be used to probe for accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string, now time.Time) (err error) {
	defer func() { observe("forgot_password", err) }()

	u, ok, err := s.users.GetByEmail(ctx, trimEmail(email))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	tok, err := s.resets.Issue(ctx, u.ID, now)
	if err != nil {
		return err
	}

	s.sendPasswordResetEmail(ctx, u, tok.Value)
	return nil
}

// ResetPassword consumes a reset code and installs a new password. Every
// reset code and every refresh token of the account is revoked in the same
// transaction, so stolen sessions do not survive a password change.
func (s *Service) ResetPassword(ctx context.Context, code, newPassword string, now time.Time) (err error) {
	defer func() { observe("reset_password", err) }()

	// Hash outside the transaction; argon2id is deliberately slow.
	hash, err := identity.HashPassword(newPassword)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tok, err := s.resets.ConsumeTx(ctx, tx, code, now)
	if err != nil {
		s.keepExpiredConsume(ctx, tx, err)
		return err
	}

	if err := identity.UpdatePasswordTx(ctx, tx, tok.UserID, hash, now); err != nil {
		return err
	}
	if err := s.resets.RevokeAllTx(ctx, tx, tok.UserID); err != nil {
		return err
	}
	if err := s.refresh.RevokeAllTx(ctx, tx, tok.UserID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
