package token

import (
	"errors"
	"testing"
)

func TestHashSHA256Hex_Stable(t *testing.T) {
	a := HashSHA256Hex("abc")
	b := HashSHA256Hex("abc")
	if a != b {
		t.Fatalf("digest not deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestHashTokenHex_DevFallback(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	if got := HashTokenHex("abc"); got != HashSHA256Hex("abc") {
		t.Fatalf("expected SHA-256 fallback without HMAC key")
	}
}

func TestHashTokenHex_HMACMode(t *testing.T) {
	t.Setenv(HMACEnvKey, "0123456789abcdef0123456789abcdef")

	got := HashTokenHex("abc")
	want := HashHMACSHA256Hex("abc", []byte("0123456789abcdef0123456789abcdef"))
	if got != want {
		t.Fatalf("expected HMAC digest when key is set")
	}
	if got == HashSHA256Hex("abc") {
		t.Fatalf("HMAC digest must differ from plain SHA-256")
	}
}

func TestHMACKeyFromEnv_Policy(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	if _, err := HMACKeyFromEnv(32); !errors.Is(err, ErrHMACKeyMissing) {
		t.Fatalf("expected ErrHMACKeyMissing, got %v", err)
	}

	t.Setenv(HMACEnvKey, "short")
	if _, err := HMACKeyFromEnv(32); !errors.Is(err, ErrHMACKeyTooShort) {
		t.Fatalf("expected ErrHMACKeyTooShort, got %v", err)
	}

	t.Setenv(HMACEnvKey, "0123456789abcdef0123456789abcdef")
	if _, err := HMACKeyFromEnv(32); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestNewOpaqueToken(t *testing.T) {
	a, err := NewOpaqueToken(32)
	if err != nil {
		t.Fatalf("NewOpaqueToken: %v", err)
	}
	b, err := NewOpaqueToken(32)
	if err != nil {
		t.Fatalf("NewOpaqueToken: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
	if len(a) < 40 {
		t.Fatalf("token shorter than expected: %d", len(a))
	}
}
