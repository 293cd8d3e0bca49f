package mail

import (
	"context"
	"fmt"
	"log/slog"
)

// Sender delivers the auth flows' transactional messages.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to, name, code string) error
	SendPasswordResetEmail(ctx context.Context, to, name, code string) error
}

// Message is a fully rendered outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

func greeting(name string) string {
	if name == "" {
		return "Hello,"
	}
	return fmt.Sprintf("Hello %s,", name)
}

func verificationMessage(appName, to, name, code string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s: verify your email", appName),
		Body: fmt.Sprintf(
			"%s\n\nYour %s verification code is: %s\n\nIf you did not create this account, you can ignore this message.\n",
			greeting(name), appName, code,
		),
	}
}

func passwordResetMessage(appName, to, name, code string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s: password reset", appName),
		Body: fmt.Sprintf(
			"%s\n\nYour %s password reset code is: %s\n\nThe code expires shortly. If you did not request a reset, you can ignore this message.\n",
			greeting(name), appName, code,
		),
	}
}

// LogSender writes messages to the structured log instead of delivering
// them. Development deployments read their codes from the log output.
type LogSender struct {
	AppName string
	Logger  *slog.Logger
}

// NewLogSender builds a LogSender. A nil logger falls back to slog.Default.
func NewLogSender(appName string, logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{AppName: appName, Logger: logger}
}

func (s *LogSender) SendVerificationEmail(ctx context.Context, to, name, code string) error {
	m := verificationMessage(s.AppName, to, name, code)
	s.Logger.InfoContext(ctx, "mail.verification",
		slog.String("to", m.To),
		slog.String("subject", m.Subject),
		slog.String("code", code),
	)
	return nil
}

func (s *LogSender) SendPasswordResetEmail(ctx context.Context, to, name, code string) error {
	m := passwordResetMessage(s.AppName, to, name, code)
	s.Logger.InfoContext(ctx, "mail.password_reset",
		slog.String("to", m.To),
		slog.String("subject", m.Subject),
		slog.String("code", code),
	)
	return nil
}

// NewSender builds the Sender selected by cfg.Mode.
func NewSender(cfg Config, logger *slog.Logger) (Sender, error) {
	switch cfg.Mode {
	case ModeLog:
		return NewLogSender(cfg.AppName, logger), nil
	case ModeSMTP:
		return NewSMTPSender(cfg)
	default:
		return nil, ErrConfig
	}
}
