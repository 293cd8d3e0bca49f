package session

import (
	"testing"
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

func TestLoadConfigFromEnv_MissingSecretKey(t *testing.T) {
	t.Setenv("BASTION_PASETO_V4_SECRET_KEY_HEX", "")
	_, err := LoadConfigFromEnv()
	if err != ErrConfig {
		t.Fatalf("expected ErrConfig on missing secret, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidDurations(t *testing.T) {
	secret := paseto.NewV4AsymmetricSecretKey()
	t.Setenv("BASTION_PASETO_V4_SECRET_KEY_HEX", secret.ExportHex())
	t.Setenv("BASTION_AUTH_ACCESS_TTL", "-5m")
	_, err := LoadConfigFromEnv()
	if err != ErrConfig {
		t.Fatalf("expected ErrConfig for negative duration, got %v", err)
	}
}

func TestLoadConfigFromEnv_RefreshMustOutliveAccess(t *testing.T) {
	secret := paseto.NewV4AsymmetricSecretKey()
	t.Setenv("BASTION_PASETO_V4_SECRET_KEY_HEX", secret.ExportHex())
	t.Setenv("BASTION_AUTH_ACCESS_TTL", "24h")
	t.Setenv("BASTION_AUTH_REFRESH_TTL", "1h")
	_, err := LoadConfigFromEnv()
	if err != ErrConfig {
		t.Fatalf("expected ErrConfig when refresh ttl <= access ttl, got %v", err)
	}
}

func TestLoadConfigFromEnv_Valid(t *testing.T) {
	secret := paseto.NewV4AsymmetricSecretKey()
	t.Setenv("BASTION_PASETO_V4_SECRET_KEY_HEX", secret.ExportHex())
	t.Setenv("BASTION_AUTH_ISSUER", "bastion-test")
	t.Setenv("BASTION_AUTH_ACCESS_TTL", "10m")
	t.Setenv("BASTION_AUTH_REFRESH_TTL", "48h")
	t.Setenv("BASTION_AUTH_CLOCK_SKEW", "20s")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Issuer != "bastion-test" {
		t.Fatalf("issuer: got %q", cfg.Issuer)
	}
	if cfg.AccessTokenTTL != 10*time.Minute {
		t.Fatalf("access ttl: got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 48*time.Hour {
		t.Fatalf("refresh ttl: got %v", cfg.RefreshTokenTTL)
	}
	if cfg.ClockSkew != 20*time.Second {
		t.Fatalf("clock skew: got %v", cfg.ClockSkew)
	}
}
