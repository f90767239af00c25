//go:build unit

package queuestore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"concert-reservation/internal/domain/queue"
	"concert-reservation/internal/infra"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestMemoryStore_AddRejectsSecondLiveToken(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	accountID := uuid.New()

	var (
		wg      sync.WaitGroup
		success atomic.Int32
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Add(ctx, queue.NewToken(accountID, t0)); err == nil {
				success.Add(1)
			} else {
				assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), success.Load())
	n, err := store.Count(ctx, queue.StatusWait)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_MembersOldestFirst(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()

	var ids []string
	for range 5 {
		// identical timestamps: admission order still decides
		tok := queue.NewToken(uuid.New(), t0)
		require.NoError(t, store.Add(ctx, tok))
		ids = append(ids, tok.ID())
	}

	got, err := store.Members(ctx, queue.StatusWait, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, tok := range got {
		assert.Equal(t, ids[i], tok.ID())
	}

	all, err := store.Members(ctx, queue.StatusWait, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestMemoryStore_CompareAndSet(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	accountID := uuid.New()
	tok := queue.NewToken(accountID, t0)
	require.NoError(t, store.Add(ctx, tok))

	promote, err := tok.Promote(t0, 5*time.Minute)
	require.NoError(t, err)

	ok, err := store.CompareAndSet(ctx, promote)
	require.NoError(t, err)
	assert.True(t, ok)

	// the same transition a second time finds the token already ACTIVE
	ok, err = store.CompareAndSet(ctx, promote)
	require.NoError(t, err)
	assert.False(t, ok)

	active, err := store.Get(ctx, tok.ID())
	require.NoError(t, err)
	assert.Equal(t, queue.StatusActive, active.Status())
	assert.Equal(t, t0.Add(5*time.Minute), active.Deadline())

	expire, err := active.Expire()
	require.NoError(t, err)
	ok, err = store.CompareAndSet(ctx, expire)
	require.NoError(t, err)
	assert.True(t, ok)

	// expired but not purged: still reported for the account
	latest, err := store.FindByAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, tok.ID(), latest.ID())
	assert.Equal(t, queue.StatusExpired, latest.Status())

	// an expired token frees the account for a new one
	next := queue.NewToken(accountID, t0.Add(time.Minute))
	require.NoError(t, store.Add(ctx, next))
	latest, err = store.FindByAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, next.ID(), latest.ID())

	// purging the older token leaves the newer one indexed
	require.NoError(t, store.Remove(ctx, tok.ID()))
	latest, err = store.FindByAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, next.ID(), latest.ID())
}

func TestMemoryStore_Remove(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	tok := queue.NewToken(uuid.New(), t0)
	require.NoError(t, store.Add(ctx, tok))

	require.NoError(t, store.Remove(ctx, tok.ID()))
	require.NoError(t, store.Remove(ctx, tok.ID()))

	_, err := store.Get(ctx, tok.ID())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
	_, err = store.FindByAccount(ctx, tok.AccountID())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}
