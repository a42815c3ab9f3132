package kvstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errWrongType  = errors.New("kvstore: operation against a key holding the wrong kind of value")
	errNotInteger = errors.New("kvstore: value is not an integer")

	// ErrUnknownDriver is returned by NewFromDriver for unsupported drivers.
	ErrUnknownDriver = errors.New("kvstore: unknown driver")
)

// NewFromDriver builds a Store for "redis" or "memory".
func NewFromDriver(driver, redisURL string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "redis":
		if redisURL == "" {
			return nil, errors.New("kvstore: redis url is required")
		}
		return NewRedis(redisURL)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
