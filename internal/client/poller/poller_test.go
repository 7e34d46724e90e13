package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadside-rescue/pkg/logger"
)

func TestRunsImmediatelyAndOnInterval(t *testing.T) {
	var n atomic.Int32
	p := New("test", 10*time.Millisecond, func(context.Context) error {
		n.Add(1)
		return nil
	}, logger.NewNop())

	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, p.Running())
}

func TestStopHaltsTicks(t *testing.T) {
	var n atomic.Int32
	p := New("test", 5*time.Millisecond, func(context.Context) error {
		n.Add(1)
		return nil
	}, logger.NewNop())

	p.Start(context.Background())
	require.Eventually(t, func() bool { return n.Load() >= 1 }, time.Second, time.Millisecond)
	p.Stop()
	assert.False(t, p.Running())

	after := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, n.Load())

	// stop twice is harmless
	p.Stop()
}

func TestContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := New("test", time.Hour, func(context.Context) error { return nil }, logger.NewNop())
	p.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool { return !p.Running() }, time.Second, time.Millisecond)
}

func TestTrigger(t *testing.T) {
	var n atomic.Int32
	p := New("test", time.Hour, func(context.Context) error {
		n.Add(1)
		return nil
	}, logger.NewNop())

	p.Start(context.Background())
	defer p.Stop()
	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)

	p.Trigger()
	assert.Eventually(t, func() bool { return n.Load() == 2 }, time.Second, time.Millisecond)
}

func TestPanicIsRecoveredAndReported(t *testing.T) {
	var calls atomic.Int32
	reported := make(chan error, 4)
	p := New("test", 5*time.Millisecond, func(context.Context) error {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		return errors.New("plain failure")
	}, logger.NewNop(), OnError(func(err error) {
		select {
		case reported <- err:
		default:
		}
	}))

	p.Start(context.Background())
	defer p.Stop()

	first := <-reported
	assert.Contains(t, first.Error(), "panicked: boom")
	second := <-reported
	assert.EqualError(t, second, "plain failure")
	assert.True(t, p.Running())
}

func TestStartIsIdempotent(t *testing.T) {
	var n atomic.Int32
	p := New("test", time.Hour, func(context.Context) error {
		n.Add(1)
		return nil
	}, logger.NewNop())

	p.Start(context.Background())
	p.Start(context.Background())
	defer p.Stop()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
}
