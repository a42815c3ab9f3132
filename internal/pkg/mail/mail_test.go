package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestPrepare(t *testing.T) {
	msg, err := prepare(Message{To: []string{" a@x.com ", "a@x.com", "", "b@x.com"}}, "noreply@x.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, msg.To)
	assert.Equal(t, "noreply@x.com", msg.From)

	_, err = prepare(Message{To: []string{" "}}, "noreply@x.com")
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = prepare(Message{To: []string{"a@x.com"}}, "")
	assert.ErrorIs(t, err, ErrNoSender)
}

type mockResendEmails struct {
	mock.Mock
}

func (m *mockResendEmails) SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	args := m.Called(ctx, params)
	resp, _ := args.Get(0).(*resend.SendEmailResponse)
	return resp, args.Error(1)
}

func TestResend_Send(t *testing.T) {
	ctx := context.Background()
	msg := Message{To: []string{"a@x.com"}, Subject: "Hi", TextBody: "text", HTMLBody: "<b>html</b>"}

	t.Run("success", func(t *testing.T) {
		emails := new(mockResendEmails)
		emails.On("SendWithContext", ctx, &resend.SendEmailRequest{
			From: "noreply@x.com", To: []string{"a@x.com"}, Subject: "Hi", Text: "text", Html: "<b>html</b>",
		}).Return(&resend.SendEmailResponse{Id: "re_123"}, nil)

		r := &Resend{emails: emails, defaultFrom: "noreply@x.com"}
		got, err := r.Send(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, Receipt{ID: "re_123", Provider: DriverResend}, got)
		emails.AssertExpectations(t)
	})

	t.Run("empty id", func(t *testing.T) {
		emails := new(mockResendEmails)
		emails.On("SendWithContext", ctx, mock.Anything).Return(&resend.SendEmailResponse{}, nil)

		r := &Resend{emails: emails, defaultFrom: "noreply@x.com"}
		_, err := r.Send(ctx, msg)
		assert.ErrorIs(t, err, ErrNoMessageID)
	})

	t.Run("api error", func(t *testing.T) {
		emails := new(mockResendEmails)
		emails.On("SendWithContext", ctx, mock.Anything).Return(nil, errors.New("401"))

		r := &Resend{emails: emails, defaultFrom: "noreply@x.com"}
		_, err := r.Send(ctx, msg)
		assert.ErrorContains(t, err, "failed to send email")
	})
}

type mockMailgunClient struct {
	mock.Mock
	sent *mailgun.Message
}

func (m *mockMailgunClient) NewMessage(from, subject, text string, to ...string) *mailgun.Message {
	return mailgun.NewMailgun("mg.x.com", "key").NewMessage(from, subject, text, to...)
}

func (m *mockMailgunClient) Send(ctx context.Context, msg *mailgun.Message) (string, string, error) {
	m.sent = msg
	args := m.Called(ctx)
	return args.String(0), args.String(1), args.Error(2)
}

func TestMailgun_Send(t *testing.T) {
	ctx := context.Background()
	msg := Message{To: []string{"a@x.com"}, Subject: "Hi", TextBody: "text", HTMLBody: "<b>html</b>"}

	t.Run("success", func(t *testing.T) {
		client := new(mockMailgunClient)
		client.On("Send", ctx).Return("Queued. Thank you.", "<20250101.1@mg.x.com>", nil)

		m := &Mailgun{client: client, defaultFrom: "noreply@x.com"}
		got, err := m.Send(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, Receipt{ID: "20250101.1@mg.x.com", Provider: DriverMailgun}, got)
		assert.NotNil(t, client.sent)
	})

	t.Run("empty id", func(t *testing.T) {
		client := new(mockMailgunClient)
		client.On("Send", ctx).Return("", "", nil)

		m := &Mailgun{client: client, defaultFrom: "noreply@x.com"}
		_, err := m.Send(ctx, msg)
		assert.ErrorIs(t, err, ErrNoMessageID)
	})

	t.Run("api error", func(t *testing.T) {
		client := new(mockMailgunClient)
		client.On("Send", ctx).Return("", "", errors.New("forbidden"))

		m := &Mailgun{client: client, defaultFrom: "noreply@x.com"}
		_, err := m.Send(ctx, msg)
		assert.ErrorContains(t, err, "forbidden")
	})
}

type fakeDialer struct {
	delay time.Duration
	err   error
	got   []*gomail.Message
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	time.Sleep(f.delay)
	f.got = append(f.got, m...)
	return f.err
}

func TestSMTP_Send(t *testing.T) {
	msg := Message{To: []string{"a@x.com"}, Subject: "Hi", TextBody: "text", HTMLBody: "<b>html</b>"}

	t.Run("success", func(t *testing.T) {
		d := &fakeDialer{}
		s := &SMTP{dialer: d, defaultFrom: "noreply@x.com", idDomain: "x.com"}

		got, err := s.Send(context.Background(), msg)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(got.ID, "@x.com"))
		assert.Equal(t, DriverSMTP, got.Provider)
		require.Len(t, d.got, 1)
		assert.Equal(t, []string{"<" + got.ID + ">"}, d.got[0].GetHeader("Message-Id"))
	})

	t.Run("dial error", func(t *testing.T) {
		s := &SMTP{dialer: &fakeDialer{err: errors.New("connection refused")}, defaultFrom: "noreply@x.com", idDomain: "x.com"}
		_, err := s.Send(context.Background(), msg)
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("timeout", func(t *testing.T) {
		s := &SMTP{dialer: &fakeDialer{delay: 200 * time.Millisecond}, defaultFrom: "noreply@x.com", idDomain: "x.com"}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := s.Send(ctx, msg)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("no recipients", func(t *testing.T) {
		s := &SMTP{dialer: &fakeDialer{}, defaultFrom: "noreply@x.com"}
		_, err := s.Send(context.Background(), Message{})
		assert.ErrorIs(t, err, ErrNoRecipients)
	})
}

func TestNewFromDriver(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr error
	}{
		{name: "log default", cfg: Config{From: "a@x.com"}, want: &Log{}},
		{name: "smtp", cfg: Config{Driver: "smtp", SMTP: SMTPConfig{Host: "localhost", Port: 1025}}, want: &SMTP{}},
		{name: "smtp missing host", cfg: Config{Driver: "smtp"}, wantErr: ErrSMTPHostPortRequired},
		{name: "resend", cfg: Config{Driver: "resend", Resend: ResendConfig{APIKey: "re_key"}}, want: &Resend{}},
		{name: "resend missing key", cfg: Config{Driver: "resend"}, wantErr: ErrResendAPIKeyRequired},
		{name: "mailgun", cfg: Config{Driver: "MAILGUN", Mailgun: MailgunConfig{Domain: "mg.x.com", APIKey: "key", EU: true}}, want: &Mailgun{}},
		{name: "mailgun missing", cfg: Config{Driver: "mailgun"}, wantErr: ErrMailgunConfigRequired},
		{name: "unknown", cfg: Config{Driver: "pigeon"}, wantErr: ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFromDriver(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
			assert.NoError(t, got.Close())
		})
	}
}

func TestLog_Send(t *testing.T) {
	l := NewLog("noreply@x.com")
	got, err := l.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: "s", TextBody: "b"})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, DriverLog, got.Provider)
}
