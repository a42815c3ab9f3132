package goroutine

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/shandysiswandi/otpbite/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// DefaultTaskTimeout bounds a background task when no timeout is configured.
const DefaultTaskTimeout = 10 * time.Second

// Stats is a snapshot of the manager counters.
type Stats struct {
	Started int64
	Dropped int64
	Failed  int64
	Running int64
}

// Manager runs fire-and-forget tasks with a concurrency limit.
//
// Tasks outlive the request that scheduled them: the context they receive
// keeps the caller's values (trace, correlation id) but not its cancellation,
// and is bounded by the task timeout instead.
type Manager struct {
	wg      sync.WaitGroup
	sema    chan struct{}
	timeout time.Duration
	stateMu sync.RWMutex
	closed  bool

	started atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64
	running atomic.Int64
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int, timeout time.Duration) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}

	return &Manager{
		sema:    make(chan struct{}, maxGoroutine),
		timeout: timeout,
	}
}

// Go schedules f if capacity is available, otherwise the task is dropped and
// a warning is logged. name only appears in logs.
func (g *Manager) Go(pCtx context.Context, name string, f func(ctx context.Context) error) {
	if g == nil {
		return
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		g.dropped.Inc()
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping task", "task", name)
		return
	}

	select {
	case g.sema <- struct{}{}:
	default:
		g.dropped.Inc()
		slog.WarnContext(pCtx, "maximum goroutine limit reached, task dropped", "task", name)
		return
	}

	g.started.Inc()
	g.running.Inc()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(pCtx), g.timeout)

	g.wg.Go(func() {
		defer func() {
			cancel()
			g.running.Dec()
			<-g.sema

			if rvr := recover(); rvr != nil {
				g.failed.Inc()
				stack := debug.Stack()
				paths := stacktrace.InternalPaths(stack)
				if len(paths) == 0 {
					slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", string(stack))
				} else {
					slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", paths)
				}
			}
		}()

		if err := f(ctx); err != nil {
			g.failed.Inc()
			slog.ErrorContext(ctx, "background task failed", "task", name, "error", err)
		}
	})
}

// Stats returns the current counters.
func (g *Manager) Stats() Stats {
	return Stats{
		Started: g.started.Load(),
		Dropped: g.dropped.Load(),
		Failed:  g.failed.Load(),
		Running: g.running.Load(),
	}
}

// Wait stops accepting tasks and blocks until running ones finish or ctx is done.
func (g *Manager) Wait(ctx context.Context) error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
