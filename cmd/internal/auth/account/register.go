package account

import (
	"context"
	"time"

	"bastion/cmd/identity"
)

// RegisterInput carries the registration fields. Email and Password are
// required; the name fields are optional.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// Register creates an unverified account, mints a verification code, and
// emails it. A duplicate email fails with a conflict error; every failure
// propagates to the caller.
func (s *Service) Register(ctx context.Context, in RegisterInput, now time.Time) (u identity.PublicUser, err error) {
	defer func() { observe("register", err) }()

	hash, err := identity.HashPassword(in.Password)
	if err != nil {
		return identity.PublicUser{}, err
	}

	created, err := s.users.Create(ctx, identity.CreateUserInput{
		Email:        trimEmail(in.Email),
		PasswordHash: &hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Now:          now,
	})
	if err != nil {
		return identity.PublicUser{}, err
	}

	tok, err := s.verifications.Issue(ctx, created.ID, now)
	if err != nil {
		return identity.PublicUser{}, err
	}

	s.sendVerificationEmail(ctx, created, tok.Value)
	return created.Public(), nil
}

// VerifyEmail consumes a verification code and marks the owning account as
// verified. The consume and the flag update commit atomically.
func (s *Service) VerifyEmail(ctx context.Context, code string, now time.Time) (err error) {
	defer func() { observe("verify_email", err) }()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tok, err := s.verifications.ConsumeTx(ctx, tx, code, now)
	if err != nil {
		s.keepExpiredConsume(ctx, tx, err)
		return err
	}

	if err := identity.MarkEmailVerifiedTx(ctx, tx, tok.UserID, now); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ResendVerification re-sends the live verification code for the account,
// minting a fresh one only when none is active. An already verified account
// is a no-op success.
func (s *Service) ResendVerification(ctx context.Context, email string, now time.Time) (err error) {
	defer func() { observe("resend_verification", err) }()

	u, ok, err := s.users.GetByEmail(ctx, trimEmail(email))
	if err != nil {
		return err
	}
	if !ok {
		return identity.NotFoundError{Op: "account.resend_verification", Resource: "user"}
	}
	if u.EmailVerified {
		return nil
	}

	tok, ok, err := s.verifications.FindActive(ctx, u.ID, now)
	if err != nil {
		return err
	}
	if !ok {
		tok, err = s.verifications.Issue(ctx, u.ID, now)
		if err != nil {
			return err
		}
	}

	s.sendVerificationEmail(ctx, u, tok.Value)
	return nil
}
