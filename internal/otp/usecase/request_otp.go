package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpbite/internal/otp/entity"
	"github.com/shandysiswandi/otpbite/internal/pkg/goerror"
	"github.com/shandysiswandi/otpbite/internal/shared/event"
)

type RequestOTPInput struct {
	Email string `validate:"required,email"`
}

type RequestOTPOutput struct {
	MessageID string
}

// RequestOTP issues a fresh code to the recipient, replacing any live one.
// The code itself is only ever sent by email.
func (s *Usecase) RequestOTP(ctx context.Context, in RequestOTPInput) (*RequestOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "RequestOTP")
	defer span.End()

	in.Email = normalizeEmail(in.Email)

	if err := s.validator.Validate(in); err != nil {
		s.count(ctx, s.requests, entity.OutcomeInvalidInput)
		return nil, goerror.NewInvalidInput(err)
	}

	count, err := s.repoCache.IncrRequestCount(ctx, in.Email, s.rateLimitWindow())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo incr request count", "email", in.Email, "error", err)
		s.count(ctx, s.requests, entity.OutcomeError)
		return nil, goerror.NewServer(err)
	}

	if count > s.rateLimitMax() {
		slog.WarnContext(ctx, "otp request rate limited", "email", in.Email, "count", count)
		s.count(ctx, s.requests, entity.OutcomeRateLimited)
		s.publish(ctx, LifecycleEvent{Type: event.OTPRateLimited, Email: in.Email, Attempts: count})
		return nil, goerror.NewBusiness(entity.MsgRateLimited, goerror.CodeTooManyRequest)
	}

	code, err := s.generator.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "email", in.Email, "error", err)
		s.count(ctx, s.requests, entity.OutcomeError)
		return nil, goerror.NewServer(err)
	}

	ttl := s.ttl()
	rec := entity.Record{Code: code, CreatedAt: s.clock.Now(), Attempts: 0}
	if err := s.repoCache.SaveOTP(ctx, in.Email, rec, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to repo save otp", "email", in.Email, "error", err)
		s.count(ctx, s.requests, entity.OutcomeError)
		return nil, goerror.NewServer(err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout())
	defer cancel()

	messageID, err := s.repoEmail.SendOTP(sendCtx, entity.OTPEmail{
		To:         in.Email,
		Code:       code,
		AppName:    s.stringOr("modules.otp.app_name", defaultAppName),
		Subject:    s.stringOr("modules.otp.subject", defaultSubject),
		TTLMinutes: max(int(ttl.Minutes()), 1),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to send otp email", "email", in.Email, "error", err)

		// the request quota stays consumed
		if _, delErr := s.repoCache.DeleteOTP(context.WithoutCancel(ctx), in.Email); delErr != nil {
			slog.ErrorContext(ctx, "failed to repo delete otp after delivery failure", "email", in.Email, "error", delErr)
		}

		s.count(ctx, s.requests, entity.OutcomeDeliveryFailed)
		s.publish(ctx, LifecycleEvent{Type: event.OTPDeliveryFailed, Email: in.Email})
		return nil, goerror.NewDelivery(err, entity.MsgSendFailed)
	}

	s.count(ctx, s.requests, entity.OutcomeSent)
	s.publish(ctx, LifecycleEvent{Type: event.OTPRequested, Email: in.Email, MessageID: messageID})

	return &RequestOTPOutput{MessageID: messageID}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
