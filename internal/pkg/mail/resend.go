package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ErrResendAPIKeyRequired is returned when the API key is missing.
var ErrResendAPIKeyRequired = errors.New("mail: resend api key is required")

type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Resend is a Mail implementation backed by the Resend API.
type Resend struct {
	emails      resendEmails
	defaultFrom string
}

// NewResend constructs a Resend sender.
func NewResend(apiKey, from string) (*Resend, error) {
	if apiKey == "" {
		return nil, ErrResendAPIKeyRequired
	}

	client := resend.NewClient(apiKey)

	return &Resend{emails: client.Emails, defaultFrom: from}, nil
}

func (r *Resend) Send(ctx context.Context, msg Message) (Receipt, error) {
	msg, err := prepare(msg, r.defaultFrom)
	if err != nil {
		return Receipt{}, err
	}

	sent, err := r.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.TextBody,
		Html:    msg.HTMLBody,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to send email: %w", err)
	}
	if sent == nil || sent.Id == "" {
		return Receipt{}, ErrNoMessageID
	}

	return Receipt{ID: sent.Id, Provider: DriverResend}, nil
}

func (r *Resend) Close() error {
	return nil
}
