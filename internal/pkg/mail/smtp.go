package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// ErrSMTPHostPortRequired is returned when Host/Port are missing.
var ErrSMTPHostPortRequired = errors.New("mail: smtp host and port are required")

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the default sender when Message.From is empty.
	From string
	// MessageIDDomain is the right-hand side of generated Message-Id headers.
	MessageIDDomain string
	// InsecureSkipVerify disables certificate checks, for local relays such as mailpit.
	InsecureSkipVerify bool
}

type smtpSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTP is a Mail implementation backed by gomail.
type SMTP struct {
	dialer      smtpSender
	defaultFrom string
	idDomain    string
}

// NewSMTP constructs an SMTP mail sender.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for local relays
	}

	idDomain := cfg.MessageIDDomain
	if idDomain == "" {
		idDomain = cfg.Host
	}

	return &SMTP{
		dialer:      dialer,
		defaultFrom: cfg.From,
		idDomain:    idDomain,
	}, nil
}

// Send delivers a message over SMTP. The dial runs in its own goroutine so
// ctx can abandon it; gomail has no context support.
func (s *SMTP) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	msg, err := prepare(msg, s.defaultFrom)
	if err != nil {
		return Receipt{}, err
	}

	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.idDomain)

	m := gomail.NewMessage(
		gomail.SetCharset("UTF-8"),
		gomail.SetEncoding(gomail.Base64),
	)
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-Id", id)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	case err := <-done:
		if err != nil {
			return Receipt{}, fmt.Errorf("failed to send email: %w", err)
		}
	}

	return Receipt{ID: strings.Trim(id, "<>"), Provider: DriverSMTP}, nil
}

// Close implements io.Closer; gomail dials per message.
func (s *SMTP) Close() error {
	return nil
}
