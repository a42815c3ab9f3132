package email

import (
	"bytes"
	"context"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/shandysiswandi/otpbite/internal/otp/entity"
	"github.com/shandysiswandi/otpbite/internal/pkg/instrument"
	"github.com/shandysiswandi/otpbite/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	textTemplate = texttemplate.Must(texttemplate.New("otp.txt.tmpl").Option("missingkey=zero").ParseFS(templateFS, "templates/otp.txt.tmpl"))
	htmlTemplate = htmltemplate.Must(htmltemplate.New("otp.html.tmpl").Option("missingkey=zero").ParseFS(templateFS, "templates/otp.html.tmpl"))
)

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

// SendOTP renders the code email and returns the provider message id.
// An accepted send without a message id counts as a failure.
func (m *Mail) SendOTP(ctx context.Context, in entity.OTPEmail) (string, error) {
	ctx, span := m.ins.Tracer("otp.outbound.email").Start(ctx, "SendOTP")
	defer span.End()

	text, html, err := render(in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	receipt, err := m.client.Send(ctx, mail.Message{
		To:       []string{in.To},
		Subject:  in.Subject,
		TextBody: text,
		HTMLBody: html,
	})
	if err == nil && receipt.ID == "" {
		err = mail.ErrNoMessageID
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.String("mail.provider", receipt.Provider))

	return receipt.ID, nil
}

func render(in entity.OTPEmail) (string, string, error) {
	var text, html bytes.Buffer

	if err := textTemplate.Execute(&text, in); err != nil {
		return "", "", err
	}
	if err := htmlTemplate.Execute(&html, in); err != nil {
		return "", "", err
	}

	return text.String(), html.String(), nil
}
