package mail

import (
	"errors"
	"os"
	"strconv"
)

// ErrConfig is returned for invalid mail configuration.
var ErrConfig = errors.New("invalid mail config")

// Mode selects the delivery backend.
type Mode string

const (
	// ModeLog writes messages to the structured log instead of sending.
	ModeLog Mode = "log"
	// ModeSMTP delivers over SMTP.
	ModeSMTP Mode = "smtp"
)

// Config defines mail delivery configuration.
type Config struct {
	Mode Mode

	// AppName appears in subjects and message bodies.
	AppName string

	// From is the envelope and header sender address.
	From string

	// SMTP settings, required when Mode is ModeSMTP.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

// DefaultConfig returns a log-only configuration suitable for development.
func DefaultConfig() Config {
	return Config{
		Mode:    ModeLog,
		AppName: "Bastion",
		From:    "no-reply@localhost",
	}
}

// LoadConfigFromEnv loads mail configuration from environment variables.
//
// Optional:
//   - BASTION_MAIL_MODE ("log" or "smtp", default "log")
//   - BASTION_MAIL_APP_NAME
//   - BASTION_MAIL_FROM
//
// Required when BASTION_MAIL_MODE=smtp:
//   - BASTION_SMTP_HOST
//   - BASTION_SMTP_PORT
//
// Optional SMTP AUTH:
//   - BASTION_SMTP_USERNAME
//   - BASTION_SMTP_PASSWORD
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	switch v := os.Getenv("BASTION_MAIL_MODE"); v {
	case "", string(ModeLog):
		cfg.Mode = ModeLog
	case string(ModeSMTP):
		cfg.Mode = ModeSMTP
	default:
		return Config{}, ErrConfig
	}

	if v := os.Getenv("BASTION_MAIL_APP_NAME"); v != "" {
		cfg.AppName = v
	}
	if v := os.Getenv("BASTION_MAIL_FROM"); v != "" {
		cfg.From = v
	}

	if cfg.Mode == ModeSMTP {
		cfg.SMTPHost = os.Getenv("BASTION_SMTP_HOST")
		if cfg.SMTPHost == "" {
			return Config{}, ErrConfig
		}

		port, err := strconv.Atoi(os.Getenv("BASTION_SMTP_PORT"))
		if err != nil || port < 1 || port > 65535 {
			return Config{}, ErrConfig
		}
		cfg.SMTPPort = port

		cfg.SMTPUsername = os.Getenv("BASTION_SMTP_USERNAME")
		cfg.SMTPPassword = os.Getenv("BASTION_SMTP_PASSWORD")
	}

	return cfg, nil
}
