package email

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/otpbite/internal/otp/entity"
	"github.com/shandysiswandi/otpbite/internal/pkg/instrument"
	"github.com/shandysiswandi/otpbite/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMail struct {
	got     mail.Message
	receipt mail.Receipt
	err     error
}

func (s *stubMail) Send(_ context.Context, msg mail.Message) (mail.Receipt, error) {
	s.got = msg
	return s.receipt, s.err
}

func (s *stubMail) Close() error { return nil }

var sample = entity.OTPEmail{
	To:         "a@x.com",
	Code:       "482913",
	AppName:    "otpbite",
	Subject:    "Your OTP Code",
	TTLMinutes: 5,
}

func TestMail_SendOTP(t *testing.T) {
	client := &stubMail{receipt: mail.Receipt{ID: "<20250101.abc@mg.example>", Provider: mail.DriverMailgun}}
	m := New(client, instrument.NewNoop())

	id, err := m.SendOTP(context.Background(), sample)
	require.NoError(t, err)
	assert.Equal(t, "<20250101.abc@mg.example>", id)

	assert.Equal(t, []string{"a@x.com"}, client.got.To)
	assert.Equal(t, "Your OTP Code", client.got.Subject)
	assert.Contains(t, client.got.TextBody, "482913")
	assert.Contains(t, client.got.TextBody, "5 minutes")
	assert.Contains(t, client.got.HTMLBody, "482913")
	assert.Contains(t, client.got.HTMLBody, "otpbite")
}

func TestMail_SendOTP_ProviderError(t *testing.T) {
	m := New(&stubMail{err: errors.New("401 unauthorized")}, instrument.NewNoop())

	_, err := m.SendOTP(context.Background(), sample)
	assert.EqualError(t, err, "401 unauthorized")
}

func TestMail_SendOTP_MissingMessageID(t *testing.T) {
	m := New(&stubMail{receipt: mail.Receipt{Provider: mail.DriverResend}}, instrument.NewNoop())

	_, err := m.SendOTP(context.Background(), sample)
	assert.ErrorIs(t, err, mail.ErrNoMessageID)
}

func TestRender_SingularMinute(t *testing.T) {
	in := sample
	in.TTLMinutes = 1

	text, html, err := render(in)
	require.NoError(t, err)
	assert.Contains(t, text, "1 minute.")
	assert.Contains(t, html, "1 minute.")
}
