package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bastion/cmd/identity"
	sectoken "bastion/cmd/security/token"
)

// dbtx is satisfied by both the pool-level DB and pgx.Tx, so every operation
// has a plain and a transactional form without duplicated SQL.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// issueRetries bounds regeneration when a generated code collides with a
// live row of the same family (rows are unique on (kind, token)).
const issueRetries = 3

// storedForm maps a plain token value to its at-rest form.
func (l *Ledger) storedForm(value string) string {
	if l.cfg.Hashed {
		return sectoken.HashTokenHex(value)
	}
	return value
}

// Issue mints a fresh code for a code-based family, replacing every prior
// token of this kind for the user. The delete and insert commit atomically,
// so no concurrent reader observes the user with zero live codes.
//
// No history of superseded codes is kept.
func (l *Ledger) Issue(ctx context.Context, userID string, now time.Time) (Token, error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return Token{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	t, err := l.IssueTx(ctx, tx, userID, now)
	if err != nil {
		return Token{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Token{}, err
	}
	return t, nil
}

// IssueTx is the transactional form of Issue for orchestrator-owned
// transactions.
func (l *Ledger) IssueTx(ctx context.Context, tx pgx.Tx, userID string, now time.Time) (Token, error) {
	if l.cfg.Generate == nil {
		return Token{}, ErrConfig
	}

	if err := revokeAll(ctx, tx, l.cfg.Kind, userID); err != nil {
		return Token{}, err
	}

	var lastErr error
	for i := 0; i < issueRetries; i++ {
		code, err := l.cfg.Generate()
		if err != nil {
			return Token{}, err
		}

		t, err := l.insert(ctx, tx, userID, code, code, now)
		if err == nil {
			return t, nil
		}
		if !isUniqueViolation(err) {
			return Token{}, err
		}
		lastErr = err
	}
	return Token{}, lastErr
}

// IssueValue persists a caller-supplied token value (refresh family),
// opportunistically pruning rows that are long past their own expiry.
func (l *Ledger) IssueValue(ctx context.Context, userID, value string, now time.Time) (Token, error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return Token{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	t, err := l.IssueValueTx(ctx, tx, userID, value, now)
	if err != nil {
		return Token{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Token{}, err
	}
	return t, nil
}

// IssueValueTx is the transactional form of IssueValue.
func (l *Ledger) IssueValueTx(ctx context.Context, tx pgx.Tx, userID, value string, now time.Time) (Token, error) {
	if l.cfg.StalePruneAge > 0 {
		if err := pruneStale(ctx, tx, l.cfg.Kind, userID, now.Add(-l.cfg.StalePruneAge)); err != nil {
			return Token{}, err
		}
	}

	stored := l.storedForm(value)
	echo := value
	if l.cfg.Hashed {
		echo = ""
	}
	return l.insert(ctx, tx, userID, stored, echo, now)
}

// Consume performs the single-use lookup: an atomic find-and-delete by exact
// stored value. A missing row fails ErrInvalidToken; a row past its expiry is
// removed and fails ErrExpiredToken; otherwise the row is removed and its
// metadata returned.
func (l *Ledger) Consume(ctx context.Context, value string, now time.Time) (Token, error) {
	return l.consume(ctx, l.db, value, now)
}

// ConsumeTx is the transactional form of Consume.
func (l *Ledger) ConsumeTx(ctx context.Context, tx pgx.Tx, value string, now time.Time) (Token, error) {
	return l.consume(ctx, tx, value, now)
}

func (l *Ledger) consume(ctx context.Context, db dbtx, value string, now time.Time) (Token, error) {
	var t Token
	err := db.QueryRow(ctx, `
		DELETE FROM bastion.auth_tokens
		WHERE kind = $1 AND token = $2
		RETURNING id, user_id, expires_at, created_at
	`, string(l.cfg.Kind), l.storedForm(value)).Scan(&t.ID, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Token{}, ErrInvalidToken
	}
	if err != nil {
		return Token{}, err
	}

	t.Kind = l.cfg.Kind
	if now.After(t.ExpiresAt) {
		return Token{}, ErrExpiredToken
	}
	return t, nil
}

// Find looks a token up by exact value without consuming it and without an
// expiry check. Used by logout, which revokes regardless of expiry.
func (l *Ledger) Find(ctx context.Context, value string) (Token, bool, error) {
	var t Token
	err := l.db.QueryRow(ctx, `
		SELECT id, user_id, expires_at, created_at
		FROM bastion.auth_tokens
		WHERE kind = $1 AND token = $2
	`, string(l.cfg.Kind), l.storedForm(value)).Scan(&t.ID, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, err
	}
	t.Kind = l.cfg.Kind
	return t, true, nil
}

// FindActive returns the newest unexpired token of this family for the user,
// if any. Used by verification-resend to avoid minting duplicate live codes.
func (l *Ledger) FindActive(ctx context.Context, userID string, now time.Time) (Token, bool, error) {
	var t Token
	err := l.db.QueryRow(ctx, `
		SELECT id, user_id, token, expires_at, created_at
		FROM bastion.auth_tokens
		WHERE kind = $1 AND user_id = $2 AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`, string(l.cfg.Kind), userID, now).Scan(&t.ID, &t.UserID, &t.Value, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, err
	}
	t.Kind = l.cfg.Kind
	if l.cfg.Hashed {
		t.Value = ""
	}
	return t, true, nil
}

// RevokeAll deletes every token of this family for the user.
func (l *Ledger) RevokeAll(ctx context.Context, userID string) error {
	return revokeAll(ctx, l.db, l.cfg.Kind, userID)
}

// RevokeAllTx is the transactional form of RevokeAll.
func (l *Ledger) RevokeAllTx(ctx context.Context, tx pgx.Tx, userID string) error {
	return revokeAll(ctx, tx, l.cfg.Kind, userID)
}

func (l *Ledger) insert(ctx context.Context, tx pgx.Tx, userID, stored, echo string, now time.Time) (Token, error) {
	id, err := identity.NewULID(now)
	if err != nil {
		return Token{}, err
	}

	expires := now.Add(l.cfg.TTL)
	_, err = tx.Exec(ctx, `
		INSERT INTO bastion.auth_tokens (id, kind, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, string(l.cfg.Kind), userID, stored, expires, now)
	if err != nil {
		return Token{}, err
	}

	return Token{
		ID:        id,
		Kind:      l.cfg.Kind,
		UserID:    userID,
		Value:     echo,
		ExpiresAt: expires,
		CreatedAt: now,
	}, nil
}

func revokeAll(ctx context.Context, db dbtx, kind Kind, userID string) error {
	_, err := db.Exec(ctx, `
		DELETE FROM bastion.auth_tokens
		WHERE kind = $1 AND user_id = $2
	`, string(kind), userID)
	return err
}

func pruneStale(ctx context.Context, db dbtx, kind Kind, userID string, cutoff time.Time) error {
	_, err := db.Exec(ctx, `
		DELETE FROM bastion.auth_tokens
		WHERE kind = $1 AND user_id = $2 AND expires_at < $3
	`, string(kind), userID, cutoff)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" // unique_violation
}
