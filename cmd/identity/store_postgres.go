package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the store needs. It is satisfied by
// pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implements Store over PostgreSQL (bastion.users).
//
// The pool is owned by the caller; this store must NOT close it.
// Uniqueness of email is enforced by the schema constraint, so a racing
// duplicate registration surfaces as a ConflictError, never a second row.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a Postgres-backed credential store.
func NewPostgresStore(db DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("identity: nil db")
	}
	return &PostgresStore{db: db}, nil
}

const userColumns = `id, email, password_hash, first_name, last_name, email_verified, created_at, updated_at`

// Create inserts a new user row.
func (s *PostgresStore) Create(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.Create"

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := NewULID(now)
	if err != nil {
		return User{}, err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO bastion.users (
			id, email, password_hash, first_name, last_name,
			email_verified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, FALSE, $6, $6)
	`, id, email, in.PasswordHash, trimPtr(in.FirstName), trimPtr(in.LastName), now)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ConflictError{Op: op, Field: "email"}
		}
		return User{}, err
	}

	return User{
		ID:           id,
		Email:        email,
		PasswordHash: in.PasswordHash,
		FirstName:    trimPtr(in.FirstName),
		LastName:     trimPtr(in.LastName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetByEmail loads a full user row by exact email. Absence is not an error.
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (User, bool, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM bastion.users
		WHERE email = $1
	`, strings.TrimSpace(email)).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.EmailVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

// GetByID loads a full user row by id.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetByID"

	var u User
	err := s.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM bastion.users
		WHERE id = $1
	`, id).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.EmailVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// GetPublicByID loads the non-sensitive projection of a user. The password
// hash column is never selected on this path.
func (s *PostgresStore) GetPublicByID(ctx context.Context, id string) (PublicUser, error) {
	const op = "identity.GetPublicByID"

	var p PublicUser
	err := s.db.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, email_verified
		FROM bastion.users
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.EmailVerified)
	if errors.Is(err, pgx.ErrNoRows) {
		return PublicUser{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return PublicUser{}, err
	}
	return p, nil
}

// MarkEmailVerified flips the verification flag (idempotent).
func (s *PostgresStore) MarkEmailVerified(ctx context.Context, userID string, now time.Time) error {
	return markEmailVerified(ctx, s.db, userID, now)
}

// UpdatePassword replaces the stored credential hash.
func (s *PostgresStore) UpdatePassword(ctx context.Context, userID, newHash string, now time.Time) error {
	return updatePassword(ctx, s.db, userID, newHash, now)
}

// MarkEmailVerifiedTx is the transactional variant used by the orchestrator
// when verification must commit atomically with token consumption.
func MarkEmailVerifiedTx(ctx context.Context, tx pgx.Tx, userID string, now time.Time) error {
	return markEmailVerified(ctx, tx, userID, now)
}

// UpdatePasswordTx is the transactional variant used by the password-reset flow.
func UpdatePasswordTx(ctx context.Context, tx pgx.Tx, userID, newHash string, now time.Time) error {
	return updatePassword(ctx, tx, userID, newHash, now)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func markEmailVerified(ctx context.Context, db execer, userID string, now time.Time) error {
	const op = "identity.MarkEmailVerified"

	tag, err := db.Exec(ctx, `
		UPDATE bastion.users
		SET email_verified = TRUE, updated_at = $2
		WHERE id = $1
	`, userID, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "user"}
	}
	return nil
}

func updatePassword(ctx context.Context, db execer, userID, newHash string, now time.Time) error {
	const op = "identity.UpdatePassword"

	if strings.TrimSpace(newHash) == "" {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "empty password hash"}
	}

	tag, err := db.Exec(ctx, `
		UPDATE bastion.users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`, userID, newHash, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "user"}
	}
	return nil
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" // unique_violation
}
