package email

import (
	"time"

	"github.com/Alijeyrad/oilcall_backend/config"
)

const (
	defaultAppName     = "Oilcall"
	defaultSMTPTimeout = 30 * time.Second
)

// Config is the mailer configuration. OfficeBCC addresses receive a blind
// copy of every customer e-mail so dispatch sees what customers were told.
type Config struct {
	Enabled   bool
	From      string
	ReplyTo   string
	OfficeBCC []string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
	SMTPTimeout  time.Duration

	AppName string
	BaseURL string // public site root, used for cancel links
}

func FromCentralConfig(c config.EmailConfig) Config {
	cfg := Config{
		Enabled:      c.Enabled,
		From:         c.From,
		ReplyTo:      c.ReplyTo,
		OfficeBCC:    c.OfficeBCC,
		SMTPHost:     c.SMTP.Host,
		SMTPPort:     c.SMTP.Port,
		SMTPUsername: c.SMTP.Username,
		SMTPPassword: c.SMTP.Password,
		SMTPUseTLS:   c.SMTP.UseTLS,
		AppName:      c.AppName,
		BaseURL:      c.BaseURL,
	}
	if c.SMTP.TimeoutSeconds > 0 {
		cfg.SMTPTimeout = time.Duration(c.SMTP.TimeoutSeconds) * time.Second
	}
	return cfg
}

func (c Config) withDefaults() Config {
	if c.AppName == "" {
		c.AppName = defaultAppName
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.SMTPTimeout <= 0 {
		c.SMTPTimeout = defaultSMTPTimeout
	}
	return c
}
