package account

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"bastion/cmd/internal/auth/ledger"
)

func TestForgotPassword(t *testing.T) {
	fx := newFixture(t)
	now := time.Now().UTC()
	fx.addUser(t, "ada@example.com", "Sup3rsecret", true)

	fx.expectCodeIssue("reset")

	require.NoError(t, fx.svc.ForgotPassword(context.Background(), "ada@example.com", now))

	m := fx.mailer.last(t)
	require.Equal(t, "reset", m.kind)
	require.Len(t, m.code, 6)
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	fx := newFixture(t)

	// Same success result as the known-email case, and no mail.
	require.NoError(t, fx.svc.ForgotPassword(context.Background(), "ghost@example.com", time.Now().UTC()))
	require.Empty(t, fx.mailer.sent)
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestResetPassword(t *testing.T) {
	fx := newFixture(t)
	now := time.Now().UTC()
	u := fx.addUser(t, "ada@example.com", "Sup3rsecret", true)

	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery("DELETE FROM bastion.auth_tokens").
		WithArgs("reset", "AB12CD").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}).
			AddRow("t1", u.ID, now.Add(10*time.Minute), now))
	fx.mock.ExpectExec("UPDATE bastion.users").
		WithArgs(u.ID, pgxmock.AnyArg(), now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	fx.mock.ExpectExec("DELETE FROM bastion.auth_tokens").
		WithArgs("reset", u.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	fx.mock.ExpectExec("DELETE FROM bastion.auth_tokens").
		WithArgs("refresh", u.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	fx.mock.ExpectCommit()

	require.NoError(t, fx.svc.ResetPassword(context.Background(), "AB12CD", "N3wsecret", now))
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestResetPassword_InvalidCode(t *testing.T) {
	fx := newFixture(t)
	now := time.Now().UTC()

	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery("DELETE FROM bastion.auth_tokens").
		WithArgs("reset", "NOPE12").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}))

	err := fx.svc.ResetPassword(context.Background(), "NOPE12", "N3wsecret", now)
	require.ErrorIs(t, err, ledger.ErrInvalidToken)
}

func TestResetPassword_ExpiredCode(t *testing.T) {
	fx := newFixture(t)
	now := time.Now().UTC()
	u := fx.addUser(t, "ada@example.com", "Sup3rsecret", true)

	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery("DELETE FROM bastion.auth_tokens").
		WithArgs("reset", "AB12CD").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}).
			AddRow("t1", u.ID, now.Add(-time.Minute), now.Add(-time.Hour)))
	// The expired row stays deleted even though the reset fails.
	fx.mock.ExpectCommit()

	err := fx.svc.ResetPassword(context.Background(), "AB12CD", "N3wsecret", now)
	require.ErrorIs(t, err, ledger.ErrExpiredToken)
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestResetPassword_WeakNewPassword(t *testing.T) {
	fx := newFixture(t)

	err := fx.svc.ResetPassword(context.Background(), "AB12CD", "short", time.Now().UTC())
	require.Error(t, err)
	// Nothing was consumed; no DB activity expected at all.
	require.NoError(t, fx.mock.ExpectationsWereMet())
}
