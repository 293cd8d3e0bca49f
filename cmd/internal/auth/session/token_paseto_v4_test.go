package session

import (
	"testing"
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

func newTestManager(t *testing.T) TokenManager {
	t.Helper()
	secret := paseto.NewV4AsymmetricSecretKey()
	cfg := DefaultConfig()
	cfg.PasetoV4SecretKeyHex = secret.ExportHex()

	mgr, err := NewPasetoV4PublicManager(cfg)
	if err != nil {
		t.Fatalf("NewPasetoV4PublicManager: %v", err)
	}
	return mgr
}

func TestPasetoV4_IssueAndVerifyAccess(t *testing.T) {
	mgr := newTestManager(t)

	now := time.Now().UTC()
	tok, exp, err := mgr.IssueAccess("01HZZZZZZZZZZZZZZZZZZZZZZZ", "a@example.com", now)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if !exp.After(now) {
		t.Fatalf("expected exp after now")
	}

	claims, err := mgr.VerifyAccess(tok, now.Add(1*time.Second))
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.UserID != "01HZZZZZZZZZZZZZZZZZZZZZZZ" || claims.Email != "a@example.com" {
		t.Fatalf("wrong claims: %+v", claims)
	}
}

func TestPasetoV4_IssueAndVerifyRefresh(t *testing.T) {
	mgr := newTestManager(t)

	now := time.Now().UTC()
	tok, exp, err := mgr.IssueRefresh("01HZZZZZZZZZZZZZZZZZZZZZZZ", now)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if !exp.After(now.Add(24 * time.Hour)) {
		t.Fatalf("refresh exp too close: %v", exp)
	}

	claims, err := mgr.VerifyRefresh(tok, now.Add(1*time.Second))
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if claims.UserID != "01HZZZZZZZZZZZZZZZZZZZZZZZ" {
		t.Fatalf("wrong claims: %+v", claims)
	}
}

func TestPasetoV4_TokenTypesNotInterchangeable(t *testing.T) {
	mgr := newTestManager(t)
	now := time.Now().UTC()

	access, _, err := mgr.IssueAccess("u1", "a@example.com", now)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, _, err := mgr.IssueRefresh("u1", now)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	if _, err := mgr.VerifyRefresh(access, now); err != ErrInvalidToken {
		t.Fatalf("access token accepted as refresh: %v", err)
	}
	if _, err := mgr.VerifyAccess(refresh, now); err != ErrInvalidToken {
		t.Fatalf("refresh token accepted as access: %v", err)
	}
}

func TestPasetoV4_ExpiredAccessToken(t *testing.T) {
	mgr := newTestManager(t)
	now := time.Now().UTC()

	tok, _, err := mgr.IssueAccess("u1", "a@example.com", now)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	if _, err := mgr.VerifyAccess(tok, now.Add(16*time.Minute)); err != ErrInvalidToken {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestPasetoV4_WrongKeyRejected(t *testing.T) {
	mgr := newTestManager(t)
	other := newTestManager(t)
	now := time.Now().UTC()

	tok, _, err := mgr.IssueAccess("u1", "a@example.com", now)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	if _, err := other.VerifyAccess(tok, now); err != ErrInvalidToken {
		t.Fatalf("foreign signature accepted: %v", err)
	}
}

func TestNewPasetoV4PublicManager_BadKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PasetoV4SecretKeyHex = "not-hex"
	if _, err := NewPasetoV4PublicManager(cfg); err != ErrConfig {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
