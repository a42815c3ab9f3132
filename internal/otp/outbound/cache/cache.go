package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shandysiswandi/otpbite/internal/otp/entity"
	"github.com/shandysiswandi/otpbite/internal/pkg/goerror"
	"github.com/shandysiswandi/otpbite/internal/pkg/instrument"
	"github.com/shandysiswandi/otpbite/internal/pkg/kvstore"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyPrefixOTP       = "otp:"
	keyPrefixRateLimit = "otp:rl:"

	fieldCode      = "otp"
	fieldTimestamp = "timestamp"
	fieldAttempts  = "attempts"
)

var errMalformedRecord = errors.New("malformed otp record")

// Cache stores OTP records as hashes and rate-limit counters as integers.
// Counters live under otp:rl: so they never collide with a record key.
type Cache struct {
	store kvstore.Store
	ins   instrument.Instrumentation
}

func New(store kvstore.Store, ins instrument.Instrumentation) *Cache {
	return &Cache{store: store, ins: ins}
}

func otpKey(email string) string {
	return keyPrefixOTP + email
}

func rateLimitKey(email string) string {
	return keyPrefixRateLimit + email
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("otp.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *Cache) IncrRequestCount(ctx context.Context, email string, window time.Duration) (_ int64, err error) {
	ctx, span := c.startSpan(ctx, "IncrRequestCount")
	defer func() { c.endSpan(span, err) }()

	return c.store.IncrWithExpire(ctx, rateLimitKey(email), window)
}

func (c *Cache) ResetRequestCount(ctx context.Context, email string) (err error) {
	ctx, span := c.startSpan(ctx, "ResetRequestCount")
	defer func() { c.endSpan(span, err) }()

	_, err = c.store.Del(ctx, rateLimitKey(email))
	return err
}

func (c *Cache) SaveOTP(ctx context.Context, email string, rec entity.Record, ttl time.Duration) (err error) {
	ctx, span := c.startSpan(ctx, "SaveOTP")
	defer func() { c.endSpan(span, err) }()

	return c.store.HSet(ctx, otpKey(email), map[string]string{
		fieldCode:      rec.Code,
		fieldTimestamp: strconv.FormatInt(rec.CreatedAt.UnixMilli(), 10),
		fieldAttempts:  strconv.FormatInt(rec.Attempts, 10),
	}, ttl)
}

func (c *Cache) GetOTP(ctx context.Context, email string) (_ *entity.Record, err error) {
	ctx, span := c.startSpan(ctx, "GetOTP")
	defer func() { c.endSpan(span, err) }()

	fields, err := c.store.HGetAll(ctx, otpKey(email))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, goerror.ErrNotFound
	}

	return parseRecord(fields)
}

func (c *Cache) IncrAttempts(ctx context.Context, email string) (_ int64, err error) {
	ctx, span := c.startSpan(ctx, "IncrAttempts")
	defer func() { c.endSpan(span, err) }()

	n, err := c.store.HIncrBy(ctx, otpKey(email), fieldAttempts, 1)
	if errors.Is(err, kvstore.ErrNotFound) {
		return 0, goerror.ErrNotFound
	}
	return n, err
}

func (c *Cache) DeleteOTP(ctx context.Context, email string) (_ bool, err error) {
	ctx, span := c.startSpan(ctx, "DeleteOTP")
	defer func() { c.endSpan(span, err) }()

	n, err := c.store.Del(ctx, otpKey(email))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func parseRecord(fields map[string]string) (*entity.Record, error) {
	code, ok := fields[fieldCode]
	if !ok || code == "" {
		return nil, errMalformedRecord
	}

	ts, err := strconv.ParseInt(fields[fieldTimestamp], 10, 64)
	if err != nil {
		return nil, errors.Join(errMalformedRecord, err)
	}

	var attempts int64
	if v, ok := fields[fieldAttempts]; ok {
		attempts, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Join(errMalformedRecord, err)
		}
	}

	return &entity.Record{
		Code:      code,
		CreatedAt: time.UnixMilli(ts),
		Attempts:  attempts,
	}, nil
}
