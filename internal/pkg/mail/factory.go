package mail

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DriverSMTP    = "smtp"
	DriverResend  = "resend"
	DriverMailgun = "mailgun"
	DriverLog     = "log"
)

// ErrUnknownDriver is returned by NewFromDriver for unsupported drivers.
var ErrUnknownDriver = errors.New("mail: unknown driver")

// Config carries the settings of every provider; only the selected one is read.
type Config struct {
	Driver  string
	From    string
	SMTP    SMTPConfig
	Resend  ResendConfig
	Mailgun MailgunConfig
}

// ResendConfig configures the Resend implementation.
type ResendConfig struct {
	APIKey string
}

// NewFromDriver builds the Mail implementation named by cfg.Driver.
func NewFromDriver(cfg Config) (Mail, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverSMTP:
		sc := cfg.SMTP
		if sc.From == "" {
			sc.From = cfg.From
		}
		return NewSMTP(sc)
	case DriverResend:
		return NewResend(cfg.Resend.APIKey, cfg.From)
	case DriverMailgun:
		mc := cfg.Mailgun
		if mc.From == "" {
			mc.From = cfg.From
		}
		return NewMailgun(mc)
	case DriverLog, "":
		return NewLog(cfg.From), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}
