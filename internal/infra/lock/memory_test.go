//go:build unit

package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"concert-reservation/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		holders atomic.Int32
		maxSeen atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := locker.TryAcquire(ctx, "reservation:schedule:1", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			n := holders.Add(1)
			for {
				m := maxSeen.Load()
				if n <= m || maxSeen.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			holders.Add(-1)
			assert.NoError(t, h.Release(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestMemoryLocker_Timeout(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	h, err := locker.TryAcquire(ctx, "k", 0)
	require.NoError(t, err)

	_, err = locker.TryAcquire(ctx, "k", 20*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrLockTimeout))

	_, err = locker.TryAcquire(ctx, "k", 0)
	assert.True(t, errs.Is(err, errs.ErrLockTimeout))

	// other keys are independent
	other, err := locker.TryAcquire(ctx, "other", 0)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, h.Release(ctx))
	assert.ErrorIs(t, h.Release(ctx), ErrLockLost)

	h2, err := locker.TryAcquire(ctx, "k", 0)
	require.NoError(t, err)
	require.NoError(t, h2.Release(ctx))
}

func TestMemoryLocker_ContextCancelled(t *testing.T) {
	locker := NewMemoryLocker()
	h, err := locker.TryAcquire(context.Background(), "k", 0)
	require.NoError(t, err)
	defer func() { _ = h.Release(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locker.TryAcquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
