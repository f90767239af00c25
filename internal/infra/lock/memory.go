package lock

import (
	"context"
	"sync"
	"time"

	"concert-reservation/internal/usecase/commands"
)

// MemoryLocker serializes holders of the same key within one process.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]chan struct{})}
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *MemoryLocker) TryAcquire(ctx context.Context, key string, wait time.Duration) (commands.LockHandle, error) {
	ch := l.slot(key)

	select {
	case ch <- struct{}{}:
		return &memoryHandle{slot: ch}, nil
	default:
	}
	if wait <= 0 {
		return nil, lockTimeout(key, wait)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return &memoryHandle{slot: ch}, nil
	case <-timer.C:
		return nil, lockTimeout(key, wait)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type memoryHandle struct {
	once sync.Once
	slot chan struct{}
}

func (h *memoryHandle) Release(context.Context) error {
	released := false
	h.once.Do(func() {
		<-h.slot
		released = true
	})
	if !released {
		return ErrLockLost
	}
	return nil
}
