package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read from ATTIC_-prefixed
// environment variables.
type Config struct {
	Env       string `env:"ATTIC_ENV" envDefault:"dev"`
	Port      int    `env:"ATTIC_PORT" envDefault:"8080"`
	LogLevel  string `env:"ATTIC_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"ATTIC_LOG_FORMAT" envDefault:"json"`

	DatabaseFile string `env:"ATTIC_DATABASE_FILE" envDefault:"attic-auth.db"`

	// JWTSecret signs every session and action token. There is no default;
	// startup fails without it.
	JWTSecret string `env:"ATTIC_JWT_SECRET,required"`
	Issuer    string `env:"ATTIC_ISSUER" envDefault:"attic-auth"`

	SMTPHost     string `env:"ATTIC_SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int    `env:"ATTIC_SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"ATTIC_SMTP_USERNAME"`
	SMTPPassword string `env:"ATTIC_SMTP_PASSWORD"`
	MailFrom     string `env:"ATTIC_MAIL_FROM" envDefault:"no-reply@attic.dev"`

	// ResetURL is the front-end password form; tokens are appended as a
	// query parameter in outgoing mail.
	ResetURL string `env:"ATTIC_RESET_URL" envDefault:"http://localhost:3000/reset-password"`

	ShutdownGracePeriod time.Duration `env:"ATTIC_SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
