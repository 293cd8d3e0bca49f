package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind identifies a token family.
type Kind string

const (
	// KindVerification is the email-verification code family.
	KindVerification Kind = "verification"
	// KindReset is the password-reset code family.
	KindReset Kind = "reset"
	// KindRefresh is the refresh-token family.
	KindRefresh Kind = "refresh"
)

// Token mirrors a bastion.auth_tokens row. Value carries the stored form:
// the plain code for verification/reset rows, empty for refresh rows (only
// the hash is at rest and it is never echoed back).
type Token struct {
	ID        string
	Kind      Kind
	UserID    string
	Value     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Generator produces a fresh token value for code-based families.
type Generator func() (string, error)

// Config binds a ledger instance to one token family.
type Config struct {
	Kind Kind
	TTL  time.Duration

	// Generate is required for code families (verification, reset).
	// The refresh family has no generator: its values are signed tokens
	// supplied by the session issuer via IssueValue.
	Generate Generator

	// Hashed selects hash-at-rest storage (refresh family).
	Hashed bool

	// StalePruneAge is how far past its own expiry a row must be before
	// IssueValue opportunistically deletes it (refresh family only).
	StalePruneAge time.Duration
}

// DB is the subset of *pgxpool.Pool the ledger needs. It is satisfied by
// pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Ledger is one bound token-family instance over the shared auth_tokens table.
type Ledger struct {
	db  DB
	cfg Config
}

// New constructs a Ledger for the given family.
func New(db DB, cfg Config) (*Ledger, error) {
	if db == nil {
		return nil, ErrConfig
	}
	if cfg.Kind == "" || cfg.TTL <= 0 {
		return nil, ErrConfig
	}
	if cfg.Generate == nil && !cfg.Hashed {
		return nil, ErrConfig
	}
	return &Ledger{db: db, cfg: cfg}, nil
}

// Kind returns the bound token family.
func (l *Ledger) Kind() Kind { return l.cfg.Kind }

// TTL returns the configured token lifetime.
func (l *Ledger) TTL() time.Duration { return l.cfg.TTL }

// VerificationConfig binds the email-verification family: 4-digit codes,
// single active token per user, caller-supplied expiry.
func VerificationConfig(ttl time.Duration) Config {
	return Config{Kind: KindVerification, TTL: ttl, Generate: NewVerificationCode}
}

// ResetConfig binds the password-reset family: 6-char codes, 15-minute fixed
// expiry unless overridden, single active token per user.
func ResetConfig(ttl time.Duration) Config {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return Config{Kind: KindReset, TTL: ttl, Generate: NewResetCode}
}

// RefreshConfig binds the refresh family: issuer-supplied signed values,
// hashed at rest, stale rows pruned once a week past their own expiry.
func RefreshConfig(ttl time.Duration) Config {
	return Config{
		Kind:          KindRefresh,
		TTL:           ttl,
		Hashed:        true,
		StalePruneAge: 7 * 24 * time.Hour,
	}
}
