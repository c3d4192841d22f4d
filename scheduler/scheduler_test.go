package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStart_RunsSweepsPeriodically(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int32
	s.Register("requests", func(ctx context.Context) (int64, error) {
		atomic.AddInt32(&count, 1)
		return 0, nil
	})
	s.Start(20 * time.Millisecond)

	time.Sleep(120 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&count), int32(3))
}

func TestStart_DisabledOnZeroInterval(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int32
	s.Register("requests", func(ctx context.Context) (int64, error) {
		atomic.AddInt32(&count, 1)
		return 0, nil
	})
	s.Start(0)

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&count))
}

func TestRunOnce_RunsInRegistrationOrder(t *testing.T) {
	s := New(zap.NewNop())

	var order []string
	s.Register("b", func(ctx context.Context) (int64, error) {
		order = append(order, "b")
		return 1, nil
	})
	s.Register("a", func(ctx context.Context) (int64, error) {
		order = append(order, "a")
		return 0, nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"b", "a"}, order)
	assert.Equal(t, []string{"b", "a"}, s.Names())
}

func TestRegister_ReplacesByName(t *testing.T) {
	s := New(zap.NewNop())

	var c1, c2 int32
	s.Register("x", func(ctx context.Context) (int64, error) { atomic.AddInt32(&c1, 1); return 0, nil })
	s.Register("x", func(ctx context.Context) (int64, error) { atomic.AddInt32(&c2, 1); return 0, nil })

	s.RunOnce(context.Background())
	assert.Zero(t, atomic.LoadInt32(&c1), "replaced sweep must not run")
	assert.Equal(t, int32(1), atomic.LoadInt32(&c2))
	require.Len(t, s.Names(), 1)
}

func TestRunOnce_FailureDoesNotStopOthers(t *testing.T) {
	s := New(zap.NewNop())

	var ran int32
	s.Register("bad", func(ctx context.Context) (int64, error) {
		return 0, errors.New("boom")
	})
	s.Register("panics", func(ctx context.Context) (int64, error) {
		panic("oops")
	})
	s.Register("good", func(ctx context.Context) (int64, error) {
		atomic.AddInt32(&ran, 1)
		return 2, nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestStop_HaltsLoop(t *testing.T) {
	s := New(zap.NewNop())

	var count int32
	s.Register("requests", func(ctx context.Context) (int64, error) {
		atomic.AddInt32(&count, 1)
		return 0, nil
	})
	s.Start(20 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	snap := atomic.LoadInt32(&count)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, snap, atomic.LoadInt32(&count), "loop must stop after Stop")
}

func TestStop_Idempotent(t *testing.T) {
	s := New(zap.NewNop())
	s.Stop()
	s.Stop() // must not panic on double-stop
}
