// Package app wires the Bastion server runtime: config, logging, database,
// migrations, and the HTTP auth surface.
//
// It is intentionally small and deterministic to keep CI gates strict and behavior predictable.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bastion/cmd/identity"
	"bastion/cmd/internal/auth/account"
	authapi "bastion/cmd/internal/auth/api"
	"bastion/cmd/internal/auth/ledger"
	"bastion/cmd/internal/auth/session"
	"bastion/cmd/internal/mail"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App is the Bastion server runtime: it owns the connection pool and the
// wired HTTP handler.
type App struct {
	cfg Config
	log Logger

	pool *pgxpool.Pool
	auth *authapi.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("BASTION_DATABASE_URL is required")
	}

	if cfg.DBAutoMigrate {
		if err := Migrate(cfg.DatabaseURL, log); err != nil {
			return nil, err
		}
	}

	pool, err := NewDBPool(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	auth, err := newAuthHandler(cfg, log, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &App{
		cfg:  cfg,
		log:  log,
		pool: pool,
		auth: auth,
	}, nil
}

// newAuthHandler assembles the auth stack: identity store, token ledgers,
// session issuer, mail sender, orchestrator, and the HTTP handler on top.
func newAuthHandler(cfg Config, log Logger, pool *pgxpool.Pool) (*authapi.Handler, error) {
	users, err := identity.NewPostgresStore(pool)
	if err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	tokens, err := session.NewPasetoV4PublicManager(sessCfg)
	if err != nil {
		return nil, err
	}

	verifications, err := ledger.New(pool, ledger.VerificationConfig(cfg.VerificationCodeTTL))
	if err != nil {
		return nil, err
	}
	resets, err := ledger.New(pool, ledger.ResetConfig(0))
	if err != nil {
		return nil, err
	}
	refresh, err := ledger.New(pool, ledger.RefreshConfig(sessCfg.RefreshTokenTTL))
	if err != nil {
		return nil, err
	}

	mailCfg, err := mail.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	mailer, err := mail.NewSender(mailCfg, log)
	if err != nil {
		return nil, err
	}

	svc, err := account.NewService(pool, users, verifications, resets, refresh, tokens, mailer, log)
	if err != nil {
		return nil, err
	}

	return authapi.NewHandler(log, authapi.LoadConfigFromEnv(), svc, pool)
}

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.pool, a.auth)

	var handler http.Handler = mux
	handler = WithSecurityHeaders(handler)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.pool.Close()

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
