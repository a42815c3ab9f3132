package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpbite/internal/otp/entity"
	"github.com/shandysiswandi/otpbite/internal/pkg/goerror"
	"github.com/shandysiswandi/otpbite/internal/pkg/otp"
	"github.com/shandysiswandi/otpbite/internal/shared/event"
)

type VerifyOTPInput struct {
	Email string `validate:"required,email"`
	OTP   string `validate:"required,otp"`
}

// VerifyOTP consumes the recipient's live code when submitted matches it.
// Every failure path leaves the store in a state where a retry is meaningful:
// the record is either still live with a counted attempt, or gone.
func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) error {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	in.Email = normalizeEmail(in.Email)

	if err := s.validator.Validate(in); err != nil {
		s.count(ctx, s.verifications, entity.OutcomeInvalidInput)
		return goerror.NewInvalidInput(err)
	}

	rec, err := s.repoCache.GetOTP(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		s.count(ctx, s.verifications, entity.OutcomeNotFound)
		return goerror.NewBusiness(entity.MsgNotFound, goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp", "email", in.Email, "error", err)
		s.count(ctx, s.verifications, entity.OutcomeError)
		return goerror.NewServer(err)
	}

	if rec.Expired(s.clock.Now(), s.ttl()) {
		s.discard(ctx, in.Email)
		s.count(ctx, s.verifications, entity.OutcomeExpired)
		s.publish(ctx, LifecycleEvent{Type: event.OTPExpired, Email: in.Email, Attempts: rec.Attempts})
		return goerror.NewBusiness(entity.MsgExpired, goerror.CodeExpired)
	}

	maxAttempts := s.maxAttempts()
	if rec.Exhausted(maxAttempts) {
		return s.exhausted(ctx, in.Email, rec.Attempts)
	}

	if !otp.Equal(in.OTP, rec.Code) {
		attempts, err := s.repoCache.IncrAttempts(ctx, in.Email)
		if errors.Is(err, goerror.ErrNotFound) {
			// consumed or expired by a concurrent call
			s.count(ctx, s.verifications, entity.OutcomeNotFound)
			return goerror.NewBusiness(entity.MsgNotFound, goerror.CodeNotFound)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo incr otp attempts", "email", in.Email, "error", err)
			s.count(ctx, s.verifications, entity.OutcomeError)
			return goerror.NewServer(err)
		}

		if attempts >= maxAttempts {
			return s.exhausted(ctx, in.Email, attempts)
		}

		s.count(ctx, s.verifications, entity.OutcomeInvalidCode)
		return goerror.NewBusiness(entity.MsgInvalidCode, goerror.CodeInvalidCode)
	}

	deleted, err := s.repoCache.DeleteOTP(ctx, in.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete otp", "email", in.Email, "error", err)
		s.count(ctx, s.verifications, entity.OutcomeError)
		return goerror.NewServer(err)
	}
	if !deleted {
		slog.WarnContext(ctx, "otp consumed by a concurrent verification", "email", in.Email)
		s.count(ctx, s.verifications, entity.OutcomeNotFound)
		return goerror.NewBusiness(entity.MsgNotFound, goerror.CodeNotFound)
	}

	if err := s.repoCache.ResetRequestCount(ctx, in.Email); err != nil {
		slog.WarnContext(ctx, "failed to repo reset otp request count", "email", in.Email, "error", err)
	}

	s.count(ctx, s.verifications, entity.OutcomeVerified)
	s.publish(ctx, LifecycleEvent{Type: event.OTPVerified, Email: in.Email, Attempts: rec.Attempts})

	return nil
}

func (s *Usecase) exhausted(ctx context.Context, email string, attempts int64) error {
	s.discard(ctx, email)
	s.count(ctx, s.verifications, entity.OutcomeTooManyAttempts)
	s.publish(ctx, LifecycleEvent{Type: event.OTPExhausted, Email: email, Attempts: attempts})
	return goerror.NewBusiness(entity.MsgTooManyAttempts, goerror.CodeTooManyAttempts)
}

// discard drops a record that can no longer be verified. A failure only
// delays the cleanup until the key's TTL fires.
func (s *Usecase) discard(ctx context.Context, email string) {
	if _, err := s.repoCache.DeleteOTP(ctx, email); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete otp", "email", email, "error", err)
	}
}
