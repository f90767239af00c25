//go:build unit

package scheduler_test

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"concert-reservation/internal/infra/lock"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunNowIsSingleFlight(t *testing.T) {
	var (
		running atomic.Int32
		runs    atomic.Int32
		release = make(chan struct{})
	)
	job := scheduler.Job{
		Name: "slow",
		Run: func(ctx context.Context) (any, error) {
			running.Add(1)
			runs.Add(1)
			<-release
			running.Add(-1)
			return "done", nil
		},
	}
	s := scheduler.New(lock.NewMemoryLocker(), slog.New(slog.DiscardHandler), job)

	first := make(chan scheduler.RunResult, 1)
	go func() {
		res, err := s.RunNow(context.Background(), "slow")
		assert.NoError(t, err)
		first <- res
	}()
	require.Eventually(t, func() bool { return running.Load() == 1 }, time.Second, time.Millisecond)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.RunNow(context.Background(), "slow")
			assert.NoError(t, err)
			assert.False(t, res.Ran)
		}()
	}
	wg.Wait()
	close(release)

	res := <-first
	assert.True(t, res.Ran)
	assert.Equal(t, "done", res.Result)
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_RunNowUnknownJob(t *testing.T) {
	s := scheduler.New(lock.NewMemoryLocker(), slog.New(slog.DiscardHandler))

	_, err := s.RunNow(context.Background(), "missing")
	assert.True(t, errs.Is(err, errs.ErrNotFound))
	assert.True(t, errs.Is(err, scheduler.ErrUnknownJob))
}

func TestScheduler_StartStop(t *testing.T) {
	var runs atomic.Int32
	job := scheduler.Job{
		Name:     "tick",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) (any, error) {
			runs.Add(1)
			return nil, errs.New("failures do not stop the loop")
		},
	}
	s := scheduler.New(lock.NewMemoryLocker(), slog.New(slog.DiscardHandler), job)

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}
