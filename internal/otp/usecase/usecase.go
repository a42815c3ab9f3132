package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpbite/internal/otp/entity"
	"github.com/shandysiswandi/otpbite/internal/pkg/clock"
	"github.com/shandysiswandi/otpbite/internal/pkg/config"
	"github.com/shandysiswandi/otpbite/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpbite/internal/pkg/instrument"
	"github.com/shandysiswandi/otpbite/internal/pkg/otp"
	"github.com/shandysiswandi/otpbite/internal/pkg/validator"
	"github.com/shandysiswandi/otpbite/internal/shared/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTTL             = 300 * time.Second
	defaultMaxAttempts     = 3
	defaultRateLimitMax    = 5
	defaultRateLimitWindow = 300 * time.Second
	defaultSendTimeout     = 10 * time.Second
	defaultSubject         = "Your OTP Code"
	defaultAppName         = "otpbite"
)

// LifecycleEvent is handed to the messaging repository after a state change.
type LifecycleEvent struct {
	Type      event.OTPLifecycleType
	Email     string
	MessageID string
	Attempts  int64
	At        time.Time
}

type repoCache interface {
	// IncrRequestCount bumps the per-recipient counter, opening a window on first hit.
	IncrRequestCount(ctx context.Context, email string, window time.Duration) (int64, error)
	ResetRequestCount(ctx context.Context, email string) error

	SaveOTP(ctx context.Context, email string, rec entity.Record, ttl time.Duration) error
	// GetOTP returns goerror.ErrNotFound when no live record exists.
	GetOTP(ctx context.Context, email string) (*entity.Record, error)
	// IncrAttempts returns goerror.ErrNotFound when the record vanished.
	IncrAttempts(ctx context.Context, email string) (int64, error)
	// DeleteOTP reports whether this call removed the record.
	DeleteOTP(ctx context.Context, email string) (bool, error)
}

type repoEmail interface {
	// SendOTP returns the provider message id.
	SendOTP(ctx context.Context, in entity.OTPEmail) (string, error)
}

type repoMessaging interface {
	PublishLifecycle(ctx context.Context, ev LifecycleEvent) error
}

type Usecase struct {
	repoCache     repoCache
	repoEmail     repoEmail
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	generator     otp.Generator
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	requests      metric.Int64Counter
	verifications metric.Int64Counter
}

type Dependency struct {
	RepoCache     repoCache
	RepoEmail     repoEmail
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Generator     otp.Generator
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoCache:     dep.RepoCache,
		repoEmail:     dep.RepoEmail,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		generator:     dep.Generator,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}

	meter := s.ins.Meter("otp.usecase")

	requests, err := meter.Int64Counter("otp.requests", metric.WithDescription("Number of OTP requests by outcome"))
	if err != nil {
		slog.Error("failed to create otp.requests counter", "error", err)
	}
	s.requests = requests

	verifications, err := meter.Int64Counter("otp.verifications", metric.WithDescription("Number of OTP verifications by outcome"))
	if err != nil {
		slog.Error("failed to create otp.verifications counter", "error", err)
	}
	s.verifications = verifications

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

func (s *Usecase) count(ctx context.Context, c metric.Int64Counter, outcome entity.Outcome) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome.String())))
}

// publish sends a lifecycle event off the request path. Failures are logged
// by the goroutine manager and never reach the caller.
func (s *Usecase) publish(ctx context.Context, ev LifecycleEvent) {
	if s.repoMessaging == nil {
		return
	}

	ev.At = s.clock.Now()
	s.goroutine.Go(ctx, "otp.publish."+string(ev.Type), func(ctx context.Context) error {
		return s.repoMessaging.PublishLifecycle(ctx, ev)
	})
}

func (s *Usecase) ttl() time.Duration {
	return s.secondsOr("modules.otp.ttl_seconds", defaultTTL)
}

func (s *Usecase) maxAttempts() int64 {
	if v := s.cfg.GetInt64("modules.otp.max_attempts"); v > 0 {
		return v
	}
	return defaultMaxAttempts
}

func (s *Usecase) rateLimitMax() int64 {
	if v := s.cfg.GetInt64("modules.otp.rate_limit_max"); v > 0 {
		return v
	}
	return defaultRateLimitMax
}

func (s *Usecase) rateLimitWindow() time.Duration {
	return s.secondsOr("modules.otp.rate_limit_window_seconds", defaultRateLimitWindow)
}

func (s *Usecase) sendTimeout() time.Duration {
	return s.secondsOr("modules.otp.send_timeout_seconds", defaultSendTimeout)
}

func (s *Usecase) stringOr(key, def string) string {
	if v := s.cfg.GetString(key); v != "" {
		return v
	}
	return def
}

func (s *Usecase) secondsOr(key string, def time.Duration) time.Duration {
	if v := s.cfg.GetSecond(key); v > 0 {
		return v
	}
	return def
}
