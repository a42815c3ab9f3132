package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mailgun/mailgun-go/v4"
)

// ErrMailgunConfigRequired is returned when the domain or API key is missing.
var ErrMailgunConfigRequired = errors.New("mail: mailgun domain and api key are required")

type mailgunClient interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// MailgunConfig configures the Mailgun implementation.
type MailgunConfig struct {
	Domain string
	APIKey string
	From   string
	// EU routes calls to the EU region API.
	EU bool
}

// Mailgun is a Mail implementation backed by the Mailgun API.
type Mailgun struct {
	client      mailgunClient
	defaultFrom string
}

// NewMailgun constructs a Mailgun sender.
func NewMailgun(cfg MailgunConfig) (*Mailgun, error) {
	if cfg.Domain == "" || cfg.APIKey == "" {
		return nil, ErrMailgunConfigRequired
	}

	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.EU {
		mg.SetAPIBase(mailgun.APIBaseEU)
	}

	return &Mailgun{client: mg, defaultFrom: cfg.From}, nil
}

func (m *Mailgun) Send(ctx context.Context, msg Message) (Receipt, error) {
	msg, err := prepare(msg, m.defaultFrom)
	if err != nil {
		return Receipt{}, err
	}

	message := m.client.NewMessage(msg.From, msg.Subject, msg.TextBody, msg.To...)
	if msg.HTMLBody != "" {
		message.SetHtml(msg.HTMLBody)
	}

	_, id, err := m.client.Send(ctx, message)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to send email: %w", err)
	}

	id = strings.Trim(id, "<>")
	if id == "" {
		return Receipt{}, ErrNoMessageID
	}

	return Receipt{ID: id, Provider: DriverMailgun}, nil
}

func (m *Mailgun) Close() error {
	return nil
}
