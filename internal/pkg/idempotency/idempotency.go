// Package idempotency runs an operation at most once per client key, keeping
// the key state in a kvstore.Store.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/otpbite/internal/pkg/kvstore"
)

var (
	ErrAlreadyInProgress = errors.New("operation already in progress")
	ErrAlreadyCompleted  = errors.New("operation already completed")
	ErrAlreadyFailed     = errors.New("operation already failed")
	ErrInvalidState      = errors.New("invalid state")
)

type State string

const (
	StateNone       State = "none"        // caller owns the key
	StateInProgress State = "in_progress" // another caller holds the key
	StateCompleted  State = "completed"   // a previous call succeeded
	StateFailed     State = "failed"      // a previous call failed
	StateError      State = "error"       // the store could not answer
)

func (s State) String() string {
	return string(s)
}

var duplicateCause = map[State]error{
	StateInProgress: ErrAlreadyInProgress,
	StateCompleted:  ErrAlreadyCompleted,
	StateFailed:     ErrAlreadyFailed,
}

// DuplicateError reports a key that was already used and what became of it.
type DuplicateError struct {
	Key   string
	State State
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("idempotency key %q: %s", e.Key, duplicateCause[e.State])
}

func (e *DuplicateError) Unwrap() error {
	return duplicateCause[e.State]
}

// IsDuplicate reports whether err means the key was already used.
func IsDuplicate(err error) bool {
	var dup *DuplicateError
	return errors.As(err, &dup)
}

// Idempotency is what usecases depend on.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

const (
	defaultPrefix       = "idempotency:"
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour
)

// StateTracker implements Idempotency on a kvstore.Store.
type StateTracker struct {
	store  kvstore.Store
	prefix string
}

// New prefixes every key with prefix, "idempotency:" when empty.
func New(store kvstore.Store, prefix string) *StateTracker {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &StateTracker{store: store, prefix: prefix}
}

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long an in-flight call holds the key.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) {
		if d > 0 {
			o.lockDuration = d
		}
	}
}

// WithStateTTL sets how long the outcome of a finished call is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) {
		if d > 0 {
			o.stateTTL = d
		}
	}
}

// Acquire claims key for lockDuration. StateNone means the caller owns it.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	fk := s.prefix + key

	for range 2 {
		acquired, err := s.store.SetNX(ctx, fk, StateInProgress.String(), lockDuration)
		if err != nil {
			return StateError, err
		}
		if acquired {
			return StateNone, nil
		}

		current, err := s.store.Get(ctx, fk)
		if errors.Is(err, kvstore.ErrNotFound) {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return StateError, err
		}

		state := State(current)
		if _, known := duplicateCause[state]; !known {
			return StateError, ErrInvalidState
		}
		return state, nil
	}

	return StateError, ErrInvalidState
}

func (s *StateTracker) mark(ctx context.Context, key string, state State, ttl time.Duration) error {
	return s.store.Set(ctx, s.prefix+key, state.String(), ttl)
}

// Exec runs fn at most once per key within the state TTL. A repeated key
// returns a *DuplicateError without calling fn. The outcome is recorded even
// if ctx is canceled while fn runs.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := &execOptions{lockDuration: defaultLockDuration, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(o)
	}

	state, err := s.Acquire(ctx, key, o.lockDuration)
	if err != nil {
		return err
	}
	if state != StateNone {
		return &DuplicateError{Key: key, State: state}
	}

	markCtx := context.WithoutCancel(ctx)
	if err := fn(ctx); err != nil {
		return errors.Join(err, s.mark(markCtx, key, StateFailed, o.stateTTL))
	}

	return s.mark(markCtx, key, StateCompleted, o.stateTTL)
}
