package kvstore

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the set of primitives the application needs from a key-value store.
// Every method is atomic with respect to other calls on the same key.
type Store interface {
	io.Closer

	Ping(ctx context.Context) error

	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	Incr(ctx context.Context, key string) (int64, error)
	// IncrWithExpire increments key and sets ttl only when the increment
	// created it, so the window is anchored to the first hit.
	IncrWithExpire(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// HSet replaces the whole hash at key with fields and applies ttl.
	HSet(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// HIncrBy increments a hash field of an existing key. It never creates the
	// key, ErrNotFound is returned instead.
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)

	// Del removes keys and reports how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)
}
