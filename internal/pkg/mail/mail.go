package mail

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrNoRecipients is returned when To is empty.
	ErrNoRecipients = errors.New("mail: no recipients provided")
	// ErrNoSender is returned when both Message.From and the configured default are empty.
	ErrNoSender = errors.New("mail: no sender provided")
	// ErrNoMessageID is returned when a provider accepted the call but reported no message id.
	ErrNoMessageID = errors.New("mail: provider returned no message id")
)

// Message represents an email payload.
type Message struct {
	// From is an optional explicit sender; the provider default is used when empty.
	From string
	// To lists required recipients.
	To []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody is the optional HTML body.
	HTMLBody string
}

// Receipt acknowledges an accepted message.
type Receipt struct {
	ID       string
	Provider string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	// Send dispatches msg and returns the provider acknowledgment.
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// prepare resolves the sender and cleans the recipient list.
func prepare(msg Message, defaultFrom string) (Message, error) {
	msg.To = lo.Uniq(lo.FilterMap(msg.To, func(to string, _ int) (string, bool) {
		to = strings.TrimSpace(to)
		return to, to != ""
	}))
	if len(msg.To) == 0 {
		return msg, ErrNoRecipients
	}

	if strings.TrimSpace(msg.From) == "" {
		msg.From = defaultFrom
	}
	if strings.TrimSpace(msg.From) == "" {
		return msg, ErrNoSender
	}

	return msg, nil
}
