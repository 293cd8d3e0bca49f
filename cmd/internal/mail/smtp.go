package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// SMTPSender delivers messages over plain SMTP with optional AUTH PLAIN.
type SMTPSender struct {
	cfg  Config
	addr string
	auth smtp.Auth
}

// NewSMTPSender builds an SMTPSender from cfg. AUTH is enabled only when a
// username is configured.
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if cfg.SMTPHost == "" || cfg.SMTPPort == 0 {
		return nil, ErrConfig
	}

	s := &SMTPSender{
		cfg:  cfg,
		addr: net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
	}
	if cfg.SMTPUsername != "" {
		s.auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return s, nil
}

func (s *SMTPSender) SendVerificationEmail(ctx context.Context, to, name, code string) error {
	return s.send(ctx, verificationMessage(s.cfg.AppName, to, name, code))
}

func (s *SMTPSender) SendPasswordResetEmail(ctx context.Context, to, name, code string) error {
	return s.send(ctx, passwordResetMessage(s.cfg.AppName, to, name, code))
}

func (s *SMTPSender) send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.Body)

	if err := smtp.SendMail(s.addr, s.auth, s.cfg.From, []string{m.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
