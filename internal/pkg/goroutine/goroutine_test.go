package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Go(t *testing.T) {
	m := NewManager(4, time.Second)

	var ran atomic.Int32
	for range 3 {
		m.Go(context.Background(), "count", func(context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	m.Go(context.Background(), "fail", func(context.Context) error { return errors.New("boom") })
	m.Go(context.Background(), "panic", func(context.Context) error { panic("oops") })

	require.NoError(t, m.Wait(context.Background()))
	assert.Equal(t, int32(3), ran.Load())

	stats := m.Stats()
	assert.Equal(t, int64(5), stats.Started)
	assert.Equal(t, int64(2), stats.Failed)
	assert.Equal(t, int64(0), stats.Running)
}

func TestManager_OutlivesCanceledParent(t *testing.T) {
	m := NewManager(1, time.Second)

	parent, cancel := context.WithCancel(context.Background())
	cancel()

	var gotErr error
	m.Go(parent, "detached", func(ctx context.Context) error {
		gotErr = ctx.Err()
		return nil
	})

	require.NoError(t, m.Wait(context.Background()))
	assert.NoError(t, gotErr)
}

func TestManager_DropsWhenFull(t *testing.T) {
	m := NewManager(1, time.Second)
	release := make(chan struct{})

	m.Go(context.Background(), "block", func(context.Context) error {
		<-release
		return nil
	})
	m.Go(context.Background(), "dropped", func(context.Context) error { return nil })

	close(release)
	require.NoError(t, m.Wait(context.Background()))

	assert.Equal(t, int64(1), m.Stats().Dropped)

	m.Go(context.Background(), "after close", func(context.Context) error { return nil })
	assert.Equal(t, int64(2), m.Stats().Dropped)
}

func TestManager_WaitTimeout(t *testing.T) {
	m := NewManager(1, time.Minute)
	release := make(chan struct{})
	defer close(release)

	m.Go(context.Background(), "slow", func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Wait(ctx), context.DeadlineExceeded)
}

func TestManager_Nil(t *testing.T) {
	var m *Manager
	m.Go(context.Background(), "noop", func(context.Context) error { return nil })
	assert.NoError(t, m.Wait(context.Background()))
}
