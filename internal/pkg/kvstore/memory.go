package kvstore

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shandysiswandi/otpbite/internal/pkg/clock"
)

const defaultJanitorInterval = time.Minute

type memoryEntry struct {
	str       string
	hash      map[string]string
	isHash    bool
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is an in-process Store. It is only suitable for a single instance.
type Memory struct {
	mu      sync.Mutex
	data    map[string]*memoryEntry
	clock   clock.Clocker
	done    chan struct{}
	closeMu sync.Once
}

// MemoryOption customises a Memory store.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	clock           clock.Clocker
	janitorInterval time.Duration
}

// WithMemoryClock replaces the clock used for expiry.
func WithMemoryClock(c clock.Clocker) MemoryOption {
	return func(o *memoryOptions) {
		o.clock = c
	}
}

// WithJanitorInterval sets how often expired keys are swept. Zero or negative
// disables the sweep.
func WithJanitorInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.janitorInterval = d
	}
}

// NewMemory builds a Memory store and starts its janitor.
func NewMemory(opts ...MemoryOption) *Memory {
	o := &memoryOptions{clock: clock.New(), janitorInterval: defaultJanitorInterval}
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory{
		data:  make(map[string]*memoryEntry),
		clock: o.clock,
		done:  make(chan struct{}),
	}

	if o.janitorInterval > 0 {
		go m.janitor(o.janitorInterval)
	}

	return m
}

func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.mu.Lock()
			now := m.clock.Now()
			for k, e := range m.data {
				if e.expired(now) {
					delete(m.data, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

func (m *Memory) Close() error {
	m.closeMu.Do(func() { close(m.done) })
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// lookup must be called with mu held.
func (m *Memory) lookup(key string) (*memoryEntry, bool) {
	e, ok := m.data[key]
	if !ok {
		return nil, false
	}
	if e.expired(m.clock.Now()) {
		delete(m.data, key)
		return nil, false
	}
	return e, true
}

func (m *Memory) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.clock.Now().Add(ttl)
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok || e.isHash {
		return "", ErrNotFound
	}
	return e.str, nil
}

func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = &memoryEntry{str: value, expiresAt: m.deadline(ttl)}
	return nil
}

func (m *Memory) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(key); ok {
		return false, nil
	}
	m.data[key] = &memoryEntry{str: value, expiresAt: m.deadline(ttl)}
	return true, nil
}

func (m *Memory) Incr(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n, _, err := m.incr(key)
	return n, err
}

func (m *Memory) IncrWithExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n, e, err := m.incr(key)
	if err != nil {
		return 0, err
	}
	if n == 1 {
		e.expiresAt = m.deadline(ttl)
	}
	return n, nil
}

// incr must be called with mu held.
func (m *Memory) incr(key string) (int64, *memoryEntry, error) {
	e, ok := m.lookup(key)
	if !ok {
		e = &memoryEntry{str: "0"}
		m.data[key] = e
	}
	if e.isHash {
		return 0, nil, errWrongType
	}

	n, err := strconv.ParseInt(e.str, 10, 64)
	if err != nil {
		return 0, nil, errNotInteger
	}
	n++
	e.str = strconv.FormatInt(n, 10)
	return n, e, nil
}

func (m *Memory) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return false, nil
	}
	e.expiresAt = m.deadline(ttl)
	return true, nil
}

func (m *Memory) HSet(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	hash := make(map[string]string, len(fields))
	for k, v := range fields {
		hash[k] = v
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = &memoryEntry{hash: hash, isHash: true, expiresAt: m.deadline(ttl)}
	return nil
}

func (m *Memory) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return map[string]string{}, nil
	}
	if !e.isHash {
		return nil, errWrongType
	}

	out := make(map[string]string, len(e.hash))
	for k, v := range e.hash {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return 0, ErrNotFound
	}
	if !e.isHash {
		return 0, errWrongType
	}

	var n int64
	if raw, exists := e.hash[field]; exists {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, errNotInteger
		}
		n = parsed
	}
	n += delta
	e.hash[field] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *Memory) Del(ctx context.Context, keys ...string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, k := range keys {
		if _, ok := m.lookup(k); ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}
