package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpbite/internal/otp/entity"
	"github.com/shandysiswandi/otpbite/internal/otp/outbound/cache"
	"github.com/shandysiswandi/otpbite/internal/otp/usecase"
	"github.com/shandysiswandi/otpbite/internal/pkg/clock"
	"github.com/shandysiswandi/otpbite/internal/pkg/config"
	"github.com/shandysiswandi/otpbite/internal/pkg/goerror"
	"github.com/shandysiswandi/otpbite/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpbite/internal/pkg/instrument"
	"github.com/shandysiswandi/otpbite/internal/pkg/kvstore"
	"github.com/shandysiswandi/otpbite/internal/pkg/otp"
	"github.com/shandysiswandi/otpbite/internal/pkg/validator"
	"github.com/shandysiswandi/otpbite/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
modules:
  otp:
    ttl_seconds: 300
    max_attempts: 3
    rate_limit_max: 5
    rate_limit_window_seconds: 300
    send_timeout_seconds: 2
    subject: "Your OTP Code"
    app_name: "otpbite"
`

type fakeEmail struct {
	mu   sync.Mutex
	sent []entity.OTPEmail
	err  error
}

func (f *fakeEmail) SendOTP(ctx context.Context, in entity.OTPEmail) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, in)
	return fmt.Sprintf("<msg-%d@otpbite>", len(f.sent)), nil
}

func (f *fakeEmail) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no email sent")
	return f.sent[len(f.sent)-1].Code
}

func (f *fakeEmail) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []usecase.LifecycleEvent
}

func (f *fakeMessaging) PublishLifecycle(_ context.Context, ev usecase.LifecycleEvent) error {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
	return nil
}

func (f *fakeMessaging) types() []event.OTPLifecycleType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]event.OTPLifecycleType, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

type harness struct {
	uc    *usecase.Usecase
	store kvstore.Store
	email *fakeEmail
	mq    *fakeMessaging
	gr    *goroutine.Manager
	// clock is the engine clock only.
	clock *clock.Manual
	// advance moves both the engine clock and the store's expiry clock.
	advance func(d time.Duration)
}

func newHarnesses(t *testing.T) map[string]*harness {
	t.Helper()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := map[string]*harness{}

	mr := miniredis.RunT(t)
	rs := kvstore.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rs.Close() })
	rc := clock.NewManual(start)
	out["redis"] = newHarness(t, rs, rc, func(d time.Duration) {
		rc.Advance(d)
		mr.FastForward(d)
	})

	// separate clocks so tests can age a record without expiring its key
	storeClock := clock.NewManual(start)
	ms := kvstore.NewMemory(kvstore.WithMemoryClock(storeClock), kvstore.WithJanitorInterval(0))
	t.Cleanup(func() { _ = ms.Close() })
	mc := clock.NewManual(start)
	out["memory"] = newHarness(t, ms, mc, func(d time.Duration) {
		mc.Advance(d)
		storeClock.Advance(d)
	})

	return out
}

func newHarness(t *testing.T, store kvstore.Store, clk *clock.Manual, advance func(time.Duration)) *harness {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	ins := instrument.NewNoop()
	gr := goroutine.NewManager(16, time.Second)
	email := &fakeEmail{}
	mq := &fakeMessaging{}

	uc := usecase.New(usecase.Dependency{
		RepoCache:     cache.New(store, ins),
		RepoEmail:     email,
		RepoMessaging: mq,
		Validator:     v,
		Config:        cfg,
		Generator:     otp.NewNumeric(),
		Clock:         clk,
		Instrument:    ins,
		Goroutine:     gr,
	})

	return &harness{uc: uc, store: store, email: email, mq: mq, gr: gr, clock: clk, advance: advance}
}

func requireCode(t *testing.T, err error, code goerror.Code) *goerror.Error {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, code.String(), gerr.Code().String())
	return gerr
}

func forEachStore(t *testing.T, fn func(t *testing.T, h *harness)) {
	t.Helper()
	for name, h := range newHarnesses(t) {
		t.Run(name, func(t *testing.T) {
			fn(t, h)
		})
	}
}

func (h *harness) request(t *testing.T, email string) *usecase.RequestOTPOutput {
	t.Helper()
	out, err := h.uc.RequestOTP(context.Background(), usecase.RequestOTPInput{Email: email})
	require.NoError(t, err)
	return out
}

func (h *harness) verify(email, code string) error {
	return h.uc.VerifyOTP(context.Background(), usecase.VerifyOTPInput{Email: email, OTP: code})
}

func (h *harness) record(t *testing.T, email string) map[string]string {
	t.Helper()
	fields, err := h.store.HGetAll(context.Background(), "otp:"+email)
	require.NoError(t, err)
	return fields
}

func (h *harness) requestCount(t *testing.T, email string) string {
	t.Helper()
	v, err := h.store.Get(context.Background(), "otp:rl:"+email)
	if errors.Is(err, kvstore.ErrNotFound) {
		return ""
	}
	require.NoError(t, err)
	return v
}
