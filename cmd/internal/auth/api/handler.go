package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"bastion/cmd/identity"
	"bastion/cmd/internal/auth/account"
	"bastion/cmd/internal/auth/session"
)

// Service is the orchestrator surface the HTTP layer drives. Implemented by
// *account.Service; tests substitute a stub.
type Service interface {
	Register(ctx context.Context, in account.RegisterInput, now time.Time) (identity.PublicUser, error)
	VerifyEmail(ctx context.Context, code string, now time.Time) error
	ResendVerification(ctx context.Context, email string, now time.Time) error
	Login(ctx context.Context, email, password string, now time.Time) (identity.PublicUser, account.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, now time.Time) (account.TokenPair, error)
	Logout(ctx context.Context, refreshToken string, now time.Time) error
	ForgotPassword(ctx context.Context, email string, now time.Time) error
	ResetPassword(ctx context.Context, code, newPassword string, now time.Time) error
	Profile(ctx context.Context, accessToken string, now time.Time) (identity.PublicUser, error)
}

// Handler wires the HTTP auth endpoints to the orchestrator.
type Handler struct {
	log *slog.Logger
	cfg Config
	svc Service

	// db is used for audit inserts only; nil disables auditing.
	db auditDB
}

// NewHandler constructs an auth Handler. db may be nil to disable audit
// logging.
func NewHandler(log *slog.Logger, cfg Config, svc Service, db auditDB) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("authapi: nil service")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, cfg: cfg, svc: svc, db: db}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/register", h.handleRegister)
	mux.HandleFunc("/auth/verify-email", h.handleVerifyEmail)
	mux.HandleFunc("/auth/resend-verification", h.handleResendVerification)
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/refresh-token", h.handleRefreshToken)
	mux.HandleFunc("/auth/logout", h.handleLogout)
	mux.HandleFunc("/auth/forgot-password", h.handleForgotPassword)
	mux.HandleFunc("/auth/reset-password", h.handleResetPassword)
	mux.HandleFunc("/auth/profile", h.handleProfile)
}

type httpRequestMeta struct {
	ip net.IP
	ua string
}

func (h *Handler) requestMeta(r *http.Request) *httpRequestMeta {
	return &httpRequestMeta{
		ip: clientIP(r, h.cfg.TrustProxy),
		ua: strings.TrimSpace(r.UserAgent()),
	}
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid_request", "a valid email is required")
		return
	}
	if !validPassword(req.Password) {
		writeError(w, http.StatusBadRequest, "weak_password", "password does not meet the policy")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	meta := h.requestMeta(r)

	user, err := h.svc.Register(ctx, account.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, now)
	if err != nil {
		h.auditEvent(ctx, meta, "auth.register.failed", nil, map[string]any{
			"email": strings.TrimSpace(req.Email),
		})
		writeServiceError(w, h.log, "auth.register", err)
		return
	}

	h.auditEvent(ctx, meta, "auth.register", &user.ID, nil)
	writeJSON(w, http.StatusCreated, registerResponse{
		User:    toUserResponse(user),
		Message: "registration successful, check your email for the verification code",
	})
}

func (h *Handler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req verifyEmailRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	if err := h.svc.VerifyEmail(ctx, strings.TrimSpace(req.Code), now); err != nil {
		writeServiceError(w, h.log, "auth.verify_email", err)
		return
	}

	h.auditEvent(ctx, h.requestMeta(r), "auth.email_verified", nil, nil)
	writeMessage(w, "email verified")
}

func (h *Handler) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req resendVerificationRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid_request", "a valid email is required")
		return
	}

	if err := h.svc.ResendVerification(r.Context(), req.Email, time.Now().UTC()); err != nil {
		writeServiceError(w, h.log, "auth.resend_verification", err)
		return
	}
	writeMessage(w, "verification code sent")
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	meta := h.requestMeta(r)

	user, pair, err := h.svc.Login(ctx, req.Email, req.Password, now)
	if err != nil {
		h.auditEvent(ctx, meta, "auth.login.failed", nil, map[string]any{
			"email": strings.TrimSpace(req.Email),
		})
		writeServiceError(w, h.log, "auth.login", err)
		return
	}

	h.auditEvent(ctx, meta, "auth.login", &user.ID, nil)
	writeJSON(w, http.StatusOK, loginResponse{
		User:   toUserResponse(user),
		Tokens: toTokensResponse(pair),
	})
}

func (h *Handler) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req refreshRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	pair, err := h.svc.Refresh(r.Context(), strings.TrimSpace(req.RefreshToken), time.Now().UTC())
	if err != nil {
		writeServiceError(w, h.log, "auth.refresh", err)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{Tokens: toTokensResponse(pair)})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req logoutRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	ctx := r.Context()
	if err := h.svc.Logout(ctx, strings.TrimSpace(req.RefreshToken), time.Now().UTC()); err != nil {
		writeServiceError(w, h.log, "auth.logout", err)
		return
	}

	h.auditEvent(ctx, h.requestMeta(r), "auth.logout", nil, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req forgotPasswordRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid_request", "a valid email is required")
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email, time.Now().UTC()); err != nil {
		writeServiceError(w, h.log, "auth.forgot_password", err)
		return
	}

	// Same body whether or not the account exists.
	writeMessage(w, "if the email is registered, a reset code has been sent")
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}
	if !validPassword(req.NewPassword) {
		writeError(w, http.StatusBadRequest, "weak_password", "password does not meet the policy")
		return
	}

	ctx := r.Context()
	if err := h.svc.ResetPassword(ctx, strings.TrimSpace(req.Code), req.NewPassword, time.Now().UTC()); err != nil {
		writeServiceError(w, h.log, "auth.reset_password", err)
		return
	}

	h.auditEvent(ctx, h.requestMeta(r), "auth.password_reset", nil, nil)
	writeMessage(w, "password updated")
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	user, err := h.svc.Profile(r.Context(), token, time.Now().UTC())
	if err != nil {
		// A bad token is 401; a token for a vanished account is 404 via
		// the shared mapping.
		if errors.Is(err, session.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		writeServiceError(w, h.log, "auth.profile", err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{User: toUserResponse(user)})
}
