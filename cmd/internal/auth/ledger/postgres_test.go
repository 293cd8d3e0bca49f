package ledger

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sectoken "bastion/cmd/security/token"
)

func newVerificationLedger(t *testing.T) (pgxmock.PgxPoolIface, *Ledger) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	l, err := New(mock, VerificationConfig(10*time.Minute))
	require.NoError(t, err)
	return mock, l
}

func newRefreshLedger(t *testing.T) (pgxmock.PgxPoolIface, *Ledger) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	l, err := New(mock, RefreshConfig(7*24*time.Hour))
	require.NoError(t, err)
	return mock, l
}

func TestNew_Validation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = New(nil, VerificationConfig(time.Minute))
	assert.ErrorIs(t, err, ErrConfig)

	_, err = New(mock, Config{Kind: KindReset, TTL: 0, Generate: NewResetCode})
	assert.ErrorIs(t, err, ErrConfig)

	// A non-hashed family without a generator has no way to mint values.
	_, err = New(mock, Config{Kind: KindVerification, TTL: time.Minute})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestIssue_ReplacesPriorTokens(t *testing.T) {
	mock, l := newVerificationLedger(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM bastion.auth_tokens").
		WithArgs("verification", "u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("INSERT INTO bastion.auth_tokens").
		WithArgs(pgxmock.AnyArg(), "verification", "u1", pgxmock.AnyArg(), now.Add(10*time.Minute), now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	tok, err := l.Issue(context.Background(), "u1", now)
	require.NoError(t, err)

	n, convErr := strconv.Atoi(tok.Value)
	require.NoError(t, convErr, "verification code must be numeric")
	assert.GreaterOrEqual(t, n, 1000)
	assert.LessOrEqual(t, n, 9999)
	assert.Equal(t, now.Add(10*time.Minute), tok.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_SingleUse(t *testing.T) {
	mock, l := newVerificationLedger(t)
	now := time.Now().UTC()

	mock.ExpectQuery("DELETE FROM bastion.auth_tokens").
		WithArgs("verification", "1234").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}).
			AddRow("t1", "u1", now.Add(5*time.Minute), now.Add(-time.Minute)))

	tok, err := l.Consume(context.Background(), "1234", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID)

	// Second consumption: the row is gone, so the same code is now invalid.
	mock.ExpectQuery("DELETE FROM bastion.auth_tokens").
		WithArgs("verification", "1234").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}))

	_, err = l.Consume(context.Background(), "1234", now)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_ExpiredRowIsRemoved(t *testing.T) {
	mock, l := newVerificationLedger(t)
	now := time.Now().UTC()

	// The DELETE..RETURNING removes the expired row in the same statement
	// that discovers it, so expiry rejection needs no second round trip.
	mock.ExpectQuery("DELETE FROM bastion.auth_tokens").
		WithArgs("verification", "9999").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}).
			AddRow("t2", "u1", now.Add(-time.Minute), now.Add(-time.Hour)))

	_, err := l.Consume(context.Background(), "9999", now)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueValue_HashesRefreshTokensAtRest(t *testing.T) {
	t.Setenv(sectoken.HMACEnvKey, "")

	mock, l := newRefreshLedger(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	const signed = "v4.public.some-signed-refresh-token"

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM bastion.auth_tokens").
		WithArgs("refresh", "u1", now.Add(-7*24*time.Hour)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO bastion.auth_tokens").
		WithArgs(pgxmock.AnyArg(), "refresh", "u1", sectoken.HashTokenHex(signed), now.Add(7*24*time.Hour), now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	tok, err := l.IssueValue(context.Background(), "u1", signed, now)
	require.NoError(t, err)
	assert.Empty(t, tok.Value, "hashed families must not echo the stored value")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActive(t *testing.T) {
	mock, l := newVerificationLedger(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, user_id, token, expires_at, created_at").
		WithArgs("verification", "u1", now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at"}).
			AddRow("t1", "u1", "4321", now.Add(3*time.Minute), now.Add(-time.Minute)))

	tok, ok, err := l.FindActive(context.Background(), "u1", now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "4321", tok.Value, "live code must be re-sendable")

	mock.ExpectQuery("SELECT id, user_id, token, expires_at, created_at").
		WithArgs("verification", "u2", now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at"}))

	_, ok, err = l.FindActive(context.Background(), "u2", now)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeAll(t *testing.T) {
	mock, l := newRefreshLedger(t)

	mock.ExpectExec("DELETE FROM bastion.auth_tokens").
		WithArgs("refresh", "u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, l.RevokeAll(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
