package authapi

import (
	"errors"
	"log/slog"
	"net/http"

	"bastion/cmd/identity"
	"bastion/cmd/internal/auth/account"
	"bastion/cmd/internal/auth/ledger"
)

// writeServiceError maps orchestrator errors to HTTP statuses and stable
// error codes. Anything unmapped is a 500 and gets logged; mapped failures
// are expected traffic and are not.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, ledger.ErrExpiredToken):
		writeError(w, http.StatusBadRequest, "expired_token", "token has expired")
	case errors.Is(err, ledger.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, "invalid_token", "invalid token")
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	case errors.Is(err, account.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "email_not_verified", "email verification required")
	case identity.IsConflict(err):
		writeError(w, http.StatusConflict, "conflict", "email already registered")
	case identity.IsPolicyViolation(err):
		writeError(w, http.StatusBadRequest, "weak_password", "password does not meet the policy")
	case identity.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
	case identity.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	default:
		log.Error(op+".fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}
