package email

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUsername = "SMTP_USERNAME"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvSMTPSSL      = "SMTP_SSL"
	EnvSMTPTimeout  = "SMTP_TIMEOUT"
	EnvEmailFrom    = "EMAIL_FROM"
	EnvAdminEmail   = "ADMIN_EMAIL"
	EnvCompanyName  = "COMPANY_NAME"
	EnvLogoURL      = "LOGO_URL"
)

type Config struct {
	// Enabled is false when no SMTP host is configured; Send then returns ErrDisabled.
	Enabled bool
	From    string
	Admin   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	// SMTPSSL selects implicit TLS (port 465). STARTTLS is negotiated automatically otherwise.
	SMTPSSL     bool
	SMTPTimeout time.Duration

	CompanyName string
	LogoURL     string
}

func DefaultConfig() Config {
	return Config{
		SMTPPort:    587,
		SMTPTimeout: 30 * time.Second,
		From:        "Lilo Express Bookings <bookings@liloexpress.com>",
		CompanyName: "Lilo Express",
	}
}

func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	cfg.SMTPHost = strings.TrimSpace(os.Getenv(EnvSMTPHost))
	cfg.Enabled = cfg.SMTPHost != ""
	cfg.SMTPUsername = os.Getenv(EnvSMTPUsername)
	cfg.SMTPPassword = os.Getenv(EnvSMTPPassword)
	cfg.Admin = strings.TrimSpace(os.Getenv(EnvAdminEmail))

	if v := os.Getenv(EnvEmailFrom); v != "" {
		cfg.From = v
	}
	if v := os.Getenv(EnvCompanyName); v != "" {
		cfg.CompanyName = v
	}
	cfg.LogoURL = os.Getenv(EnvLogoURL)

	if v := os.Getenv(EnvSMTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return cfg, fmt.Errorf("%s must be a valid port, got: %s", EnvSMTPPort, v)
		}
		cfg.SMTPPort = port
	}
	if v := os.Getenv(EnvSMTPSSL); v != "" {
		ssl, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s must be a boolean, got: %s", EnvSMTPSSL, v)
		}
		cfg.SMTPSSL = ssl
	}
	if v := os.Getenv(EnvSMTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("%s must be a positive duration, got: %s", EnvSMTPTimeout, v)
		}
		cfg.SMTPTimeout = d
	}

	if cfg.Enabled && cfg.Admin == "" {
		return cfg, fmt.Errorf("%s is required when %s is set", EnvAdminEmail, EnvSMTPHost)
	}
	return cfg, nil
}
