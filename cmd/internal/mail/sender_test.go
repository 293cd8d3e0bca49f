package mail

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLogSender_IncludesCode(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := NewLogSender("Bastion", logger)
	if err := s.SendVerificationEmail(context.Background(), "a@example.com", "Ada", "1234"); err != nil {
		t.Fatalf("SendVerificationEmail: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "1234") || !strings.Contains(out, "a@example.com") {
		t.Fatalf("log output missing code or recipient: %s", out)
	}

	buf.Reset()
	if err := s.SendPasswordResetEmail(context.Background(), "a@example.com", "", "AB12CD"); err != nil {
		t.Fatalf("SendPasswordResetEmail: %v", err)
	}
	if !strings.Contains(buf.String(), "AB12CD") {
		t.Fatalf("log output missing reset code: %s", buf.String())
	}
}

func TestGreeting(t *testing.T) {
	if got := greeting(""); got != "Hello," {
		t.Fatalf("empty name: got %q", got)
	}
	if got := greeting("Ada"); got != "Hello Ada," {
		t.Fatalf("named: got %q", got)
	}
}

func TestLoadConfigFromEnv_SMTPRequiresHostAndPort(t *testing.T) {
	t.Setenv("BASTION_MAIL_MODE", "smtp")
	t.Setenv("BASTION_SMTP_HOST", "")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig without host, got %v", err)
	}

	t.Setenv("BASTION_SMTP_HOST", "mail.example.com")
	t.Setenv("BASTION_SMTP_PORT", "not-a-port")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for bad port, got %v", err)
	}

	t.Setenv("BASTION_SMTP_PORT", "587")
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Mode != ModeSMTP || cfg.SMTPPort != 587 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigFromEnv_DefaultsToLogMode(t *testing.T) {
	t.Setenv("BASTION_MAIL_MODE", "")
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Mode != ModeLog {
		t.Fatalf("expected log mode, got %q", cfg.Mode)
	}

	s, err := NewSender(cfg, nil)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	if _, ok := s.(*LogSender); !ok {
		t.Fatalf("expected *LogSender, got %T", s)
	}
}
