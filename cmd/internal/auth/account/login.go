package account

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"bastion/cmd/identity"
	"bastion/cmd/internal/auth/ledger"
)

// Login checks the credentials and issues a fresh token pair. Unknown
// emails, password-less accounts, and mismatches all fail identically with
// ErrInvalidCredentials; an unverified email fails ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string, now time.Time) (u identity.PublicUser, pair TokenPair, err error) {
	defer func() { observe("login", err) }()

	user, ok, err := s.users.GetByEmail(ctx, trimEmail(email))
	if err != nil {
		return identity.PublicUser{}, TokenPair{}, err
	}
	if !ok || user.PasswordHash == nil {
		return identity.PublicUser{}, TokenPair{}, ErrInvalidCredentials
	}

	match, err := identity.VerifyPassword(password, *user.PasswordHash)
	if err != nil {
		return identity.PublicUser{}, TokenPair{}, err
	}
	if !match {
		return identity.PublicUser{}, TokenPair{}, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return identity.PublicUser{}, TokenPair{}, ErrUnauthorized
	}

	pair, err = s.issueTokens(ctx, nil, user, now)
	if err != nil {
		return identity.PublicUser{}, TokenPair{}, err
	}
	return user.Public(), pair, nil
}

// Refresh rotates a refresh token: the presented token is consumed and a
// fresh pair issued, all in one transaction. Replaying the old token after
// rotation fails ErrInvalidToken.
func (s *Service) Refresh(ctx context.Context, refreshToken string, now time.Time) (pair TokenPair, err error) {
	defer func() { observe("refresh", err) }()

	claims, err := s.tokens.VerifyRefresh(refreshToken, now)
	if err != nil {
		return TokenPair{}, ledger.ErrInvalidToken
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return TokenPair{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row, err := s.refresh.ConsumeTx(ctx, tx, refreshToken, now)
	if err != nil {
		s.keepExpiredConsume(ctx, tx, err)
		return TokenPair{}, err
	}
	// The ledger row and the signed claims must agree on the owner.
	if row.UserID != claims.UserID {
		return TokenPair{}, ledger.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		// The owner is gone; the cascade normally removes the row first,
		// but a vanished account is a credential failure either way.
		if identity.IsNotFound(err) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}

	pair, err = s.issueTokens(ctx, tx, user, now)
	if err != nil {
		return TokenPair{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Logout revokes every refresh token of the presented token's owner. The
// token must exist in the ledger but may be expired; an unknown token fails
// ErrInvalidToken.
func (s *Service) Logout(ctx context.Context, refreshToken string, now time.Time) (err error) {
	defer func() { observe("logout", err) }()

	row, ok, err := s.refresh.Find(ctx, refreshToken)
	if err != nil {
		return err
	}
	if !ok {
		return ledger.ErrInvalidToken
	}
	return s.refresh.RevokeAll(ctx, row.UserID)
}

// issueTokens signs a fresh access + refresh pair and persists the refresh
// token. With a nil tx the ledger owns its own transaction; otherwise the
// row joins the caller's.
func (s *Service) issueTokens(ctx context.Context, tx pgx.Tx, user identity.User, now time.Time) (TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccess(user.ID, user.Email, now)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, refreshExp, err := s.tokens.IssueRefresh(user.ID, now)
	if err != nil {
		return TokenPair{}, err
	}

	if tx == nil {
		_, err = s.refresh.IssueValue(ctx, user.ID, refresh, now)
	} else {
		_, err = s.refresh.IssueValueTx(ctx, tx, user.ID, refresh, now)
	}
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
