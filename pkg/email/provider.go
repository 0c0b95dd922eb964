package email

import (
	"fmt"
	"log/slog"

	"portfolio-backend/config"
)

// NewProvider builds the provider selected by EMAIL_PROVIDER.
func NewProvider(cfg *config.Config, log *slog.Logger) (Provider, error) {
	switch cfg.EmailProvider {
	case "", "resend":
		return NewResendProvider(ResendConfig{
			APIKey:  cfg.ResendAPIKey,
			BaseURL: cfg.ResendBaseURL,
			Timeout: cfg.EmailSendTimeout,
		}), nil
	case "smtp":
		return NewSMTPProvider(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}), nil
	case "log":
		return NewLogProvider(log), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
	}
}

// IsConfigured reports whether the selected provider has the credentials
// it needs to deliver mail.
func IsConfigured(cfg *config.Config) bool {
	if cfg.ContactEmailTo == "" || cfg.ContactFromEmail == "" {
		return false
	}
	switch cfg.EmailProvider {
	case "", "resend":
		return cfg.ResendAPIKey != ""
	case "smtp":
		return cfg.SMTPHost != ""
	case "log":
		return true
	}
	return false
}
