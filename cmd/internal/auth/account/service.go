package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"bastion/cmd/identity"
	"bastion/cmd/internal/auth/ledger"
	"bastion/cmd/internal/auth/session"
	"bastion/cmd/internal/mail"
)

// DB supplies the explicit transactions multi-step flows run in. Satisfied
// by *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service implements the high-level auth operations.
type Service struct {
	db            DB
	users         identity.Store
	verifications *ledger.Ledger
	resets        *ledger.Ledger
	refresh       *ledger.Ledger
	tokens        session.TokenManager
	mailer        mail.Sender
	log           *slog.Logger
}

// TokenPair is the result of login and refresh rotation.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// NewService constructs a Service with explicit dependencies. All are
// required except logger, which falls back to slog.Default.
func NewService(
	db DB,
	users identity.Store,
	verifications, resets, refresh *ledger.Ledger,
	tokens session.TokenManager,
	mailer mail.Sender,
	logger *slog.Logger,
) (*Service, error) {
	if db == nil || users == nil || verifications == nil || resets == nil || refresh == nil || tokens == nil || mailer == nil {
		return nil, errors.New("account: missing dependency")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:            db,
		users:         users,
		verifications: verifications,
		resets:        resets,
		refresh:       refresh,
		tokens:        tokens,
		mailer:        mailer,
		log:           logger,
	}, nil
}

// Profile resolves a bearer access token to the public user projection.
func (s *Service) Profile(ctx context.Context, accessToken string, now time.Time) (identity.PublicUser, error) {
	claims, err := s.tokens.VerifyAccess(accessToken, now)
	if err != nil {
		return identity.PublicUser{}, session.ErrInvalidToken
	}
	return s.users.GetPublicByID(ctx, claims.UserID)
}

// keepExpiredConsume commits tx when a consume failed ErrExpiredToken, so
// the expired row's removal survives the rollback the error would otherwise
// trigger. The consume is the first statement in every transaction that
// calls this, so nothing else is committed along with it.
func (s *Service) keepExpiredConsume(ctx context.Context, tx pgx.Tx, err error) {
	if !errors.Is(err, ledger.ErrExpiredToken) {
		return
	}
	if cerr := tx.Commit(ctx); cerr != nil {
		s.log.WarnContext(ctx, "expired token cleanup failed",
			slog.String("error", cerr.Error()),
		)
	}
}

func trimEmail(email string) string {
	return strings.TrimSpace(email)
}

func firstName(u identity.User) string {
	if u.FirstName == nil {
		return ""
	}
	return *u.FirstName
}

// sendVerificationEmail delivers best-effort; failures are logged, counted,
// and swallowed.
func (s *Service) sendVerificationEmail(ctx context.Context, u identity.User, code string) {
	if err := s.mailer.SendVerificationEmail(ctx, u.Email, firstName(u), code); err != nil {
		mailFailures.WithLabelValues("verification").Inc()
		s.log.WarnContext(ctx, "verification email failed",
			slog.String("user_id", u.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) sendPasswordResetEmail(ctx context.Context, u identity.User, code string) {
	if err := s.mailer.SendPasswordResetEmail(ctx, u.Email, firstName(u), code); err != nil {
		mailFailures.WithLabelValues("password_reset").Inc()
		s.log.WarnContext(ctx, "password reset email failed",
			slog.String("user_id", u.ID),
			slog.String("error", err.Error()),
		)
	}
}
