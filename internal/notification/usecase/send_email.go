package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/otpbite/internal/notification/entity"
	"github.com/shandysiswandi/otpbite/internal/pkg/goerror"
	"github.com/shandysiswandi/otpbite/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpbite/internal/pkg/mail"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	defaultSendTimeout    = 10 * time.Second
	idempotencyKeyPrefix  = "send-email:"
)

type SendEmailInput struct {
	To             string `validate:"required,email"`
	Subject        string `validate:"trimmed_required,max=998"`
	Text           string `validate:"trimmed_required"`
	IdempotencyKey string `validate:"max=255"`
}

type SendEmailOutput struct {
	MessageID string
}

// SendEmail passes a plain text message straight to the mail provider. It is
// never retried; a repeated Idempotency-Key is rejected instead of re-sent.
func (s *Usecase) SendEmail(ctx context.Context, in SendEmailInput) (*SendEmailOutput, error) {
	ctx, span := s.startSpan(ctx, "SendEmail")
	defer span.End()

	in.To = strings.TrimSpace(in.To)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.IdempotencyKey == "" || s.idemp == nil {
		return s.send(ctx, in)
	}

	var (
		out     *SendEmailOutput
		sendErr error
	)
	err := s.idemp.Exec(ctx, idempotencyKeyPrefix+in.IdempotencyKey, func(ctx context.Context) error {
		out, sendErr = s.send(ctx, in)
		return sendErr
	}, idempotency.WithStateTTL(s.idempotencyTTL()))

	switch {
	case idempotency.IsDuplicate(err):
		slog.WarnContext(ctx, "duplicate send email request", "idempotency_key", in.IdempotencyKey, "error", err)
		return nil, goerror.NewBusiness("Request with this Idempotency-Key was already processed", goerror.CodeConflict)
	case sendErr != nil:
		return nil, sendErr
	case err != nil && out != nil:
		// delivered, only the bookkeeping failed
		slog.ErrorContext(ctx, "failed to mark idempotency key completed", "idempotency_key", in.IdempotencyKey, "error", err)
		return out, nil
	case err != nil:
		slog.ErrorContext(ctx, "failed to acquire idempotency key", "idempotency_key", in.IdempotencyKey, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}

func (s *Usecase) send(ctx context.Context, in SendEmailInput) (*SendEmailOutput, error) {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout())
	defer cancel()

	receipt, err := s.repoMail.Send(sendCtx, mail.Message{
		To:       []string{in.To},
		Subject:  in.Subject,
		TextBody: in.Text,
	})
	if err == nil && receipt.ID == "" {
		err = mail.ErrNoMessageID
	}

	log := entity.DeliveryLog{
		ID:                s.uid.Generate(),
		Recipient:         in.To,
		Subject:           in.Subject,
		Provider:          receipt.Provider,
		ProviderMessageID: receipt.ID,
		Status:            entity.DeliveryStatusSent,
		IdempotencyKey:    in.IdempotencyKey,
		CreatedAt:         s.clock.Now(),
	}
	if err != nil {
		log.Status = entity.DeliveryStatusFailed
		log.Error = err.Error()
	}
	s.recordDelivery(ctx, log)

	if err != nil {
		slog.ErrorContext(ctx, "failed to send email", "to", in.To, "error", err)
		return nil, goerror.NewDelivery(err, "Failed to send email")
	}

	return &SendEmailOutput{MessageID: receipt.ID}, nil
}

// recordDelivery writes the delivery log in the background. The response
// never depends on it.
func (s *Usecase) recordDelivery(ctx context.Context, log entity.DeliveryLog) {
	if s.repoDB == nil {
		return
	}

	s.goroutine.Go(ctx, "notification.delivery_log", func(ctx context.Context) error {
		return s.repoDB.CreateDeliveryLog(ctx, log)
	})
}

func (s *Usecase) idempotencyTTL() time.Duration {
	if v := s.cfg.GetSecond("modules.notification.idempotency_ttl_seconds"); v > 0 {
		return v
	}
	return defaultIdempotencyTTL
}

func (s *Usecase) sendTimeout() time.Duration {
	if v := s.cfg.GetSecond("modules.notification.send_timeout_seconds"); v > 0 {
		return v
	}
	return defaultSendTimeout
}
