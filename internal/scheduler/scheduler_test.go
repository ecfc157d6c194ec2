package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KotFed0t/sim_trading_dashboard/utils"
	"github.com/stretchr/testify/assert"
)

func TestTaskWithRecoverSetsRequestID(t *testing.T) {
	s := &Scheduler{}

	var got string
	task := s.taskWithRecover(func(ctx context.Context) error {
		got = utils.GetRequestIDFromCtx(ctx)
		return nil
	}, "test")
	task(context.Background())

	assert.NotEmpty(t, got)
}

func TestTaskWithRecoverSwallowsPanicAndError(t *testing.T) {
	s := &Scheduler{}

	assert.NotPanics(t, func() {
		s.taskWithRecover(func(ctx context.Context) error { panic("boom") }, "panics")(context.Background())
		s.taskWithRecover(func(ctx context.Context) error { return errors.New("failed") }, "fails")(context.Background())
	})
}

func TestRegisteredJobsRun(t *testing.T) {
	s := New()
	defer s.Stop()

	var fast, slow atomic.Int32
	var mu sync.Mutex
	ids := map[string]struct{}{}

	s.Register(
		Job{Name: "fast", Interval: 20 * time.Millisecond, Fn: func(ctx context.Context) error {
			mu.Lock()
			ids[utils.GetRequestIDFromCtx(ctx)] = struct{}{}
			mu.Unlock()
			fast.Add(1)
			return nil
		}},
		Job{Name: "slow", Interval: time.Hour, Fn: func(ctx context.Context) error {
			slow.Add(1)
			return nil
		}},
	)
	s.Start()

	assert.Eventually(t, func() bool { return fast.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return slow.Load() == 1 }, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, len(ids), 3)
}

func TestBusyJobSkipsOverlappingTicks(t *testing.T) {
	s := New()
	defer s.Stop()

	var running, maxRunning, runs atomic.Int32
	release := make(chan struct{})

	s.Register(Job{Name: "busy", Interval: 10 * time.Millisecond, Fn: func(ctx context.Context) error {
		n := running.Add(1)
		defer running.Add(-1)
		if n > maxRunning.Load() {
			maxRunning.Store(n)
		}
		if runs.Add(1) == 1 {
			<-release
		}
		return nil
	}})
	s.Start()

	assert.Eventually(t, func() bool { return running.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	close(release)
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), maxRunning.Load())
}
