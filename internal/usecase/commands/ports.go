package commands

import (
	"context"
	"time"

	"concert-reservation/internal/domain/account"
	"concert-reservation/internal/domain/event"
	"concert-reservation/internal/domain/queue"

	"github.com/google/uuid"
)

// TokenStore is the partitioned set of admission tokens.
// Implementations report a second live token for one account as a DUPLICATE_KEY
// repository error and a missing token as NOT_FOUND.
type TokenStore interface {
	Add(ctx context.Context, token *queue.Token) error
	Get(ctx context.Context, id string) (*queue.Token, error)
	// FindByAccount returns the account's newest token, including an EXPIRED one
	// that has not been purged yet.
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*queue.Token, error)
	// Members lists tokens in status, oldest first. limit <= 0 means no limit.
	Members(ctx context.Context, status queue.Status, limit int) ([]*queue.Token, error)
	Count(ctx context.Context, status queue.Status) (int, error)
	// CompareAndSet applies tr only while the token is still in tr.From.
	CompareAndSet(ctx context.Context, tr queue.Transition) (bool, error)
	Remove(ctx context.Context, id string) error
}

// Locker hands out named mutual-exclusion locks shared by every instance.
// TryAcquire waits at most wait and fails with errs.ErrLockTimeout after that.
type Locker interface {
	TryAcquire(ctx context.Context, key string, wait time.Duration) (LockHandle, error)
}

type LockHandle interface {
	Release(ctx context.Context) error
}

type AccountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

// ReservationCommittedHandler runs once the allocation transaction has committed.
type ReservationCommittedHandler interface {
	OnReservationCommitted(ctx context.Context, evt event.ReservationCommitted) error
}

// PointLedger moves points in and out of account wallets. A Debit replayed with the
// same reference is applied at most once.
type PointLedger interface {
	Debit(ctx context.Context, accountID uuid.UUID, reference string, amount int64) error
	Charge(ctx context.Context, accountID uuid.UUID, reference string, amount int64) (int64, error)
	Balance(ctx context.Context, accountID uuid.UUID) (int64, error)
}
