package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL   string
	DBMaxConns    int32
	DBMinConns    int32
	DBAutoMigrate bool

	// Lifetime of email-verification codes. Password-reset codes carry
	// their own fixed 15-minute lifetime.
	VerificationCodeTTL time.Duration

	// Security policy:
	// If true, BASTION_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and refresh-token hashing must be HMAC-based.
	RequireTokenHMAC bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("BASTION_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("BASTION_LOG_LEVEL", "info"),
		LogFormat: EnvString("BASTION_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("BASTION_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("BASTION_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("BASTION_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("BASTION_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("BASTION_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL:   EnvString("BASTION_DATABASE_URL", ""),
		DBMaxConns:    EnvInt32("BASTION_DB_MAX_CONNS", 10),
		DBMinConns:    EnvInt32("BASTION_DB_MIN_CONNS", 0),
		DBAutoMigrate: EnvBool("BASTION_DB_AUTO_MIGRATE", true),

		VerificationCodeTTL: EnvDuration("BASTION_VERIFICATION_CODE_TTL", 15*time.Minute),

		RequireTokenHMAC: EnvBool("BASTION_REQUIRE_TOKEN_HMAC", false),
	}
}
