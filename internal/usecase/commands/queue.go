package commands

import (
	"context"
	"log/slog"
	"time"

	"concert-reservation/internal/domain/queue"
	"concert-reservation/internal/infra"
	"concert-reservation/internal/pkg/clock"
	"concert-reservation/internal/pkg/config"
	"concert-reservation/internal/pkg/errs"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const releaseAttempts = 3

//go:generate mockgen -source=queue.go -destination=../../../tests/mock/commands/queue.go -package=commandsmock

type AdmissionQueue interface {
	Admit(ctx context.Context, accountID uuid.UUID) (*queue.Token, error)
	Status(ctx context.Context, accountID uuid.UUID) (*queue.Token, error)
	VerifyActive(ctx context.Context, tokenID string) (*queue.Token, error)
	RenewDeadline(ctx context.Context, tokenID string) (*queue.Token, error)
	Release(ctx context.Context, tokenID string) error
	Sweep(ctx context.Context) (SweepResult, error)
}

type SweepResult struct {
	Expired  int `json:"expired"`
	Promoted int `json:"promoted"`
	Purged   int `json:"purged"`
	Failed   int `json:"failed"`
}

type admissionQueueImpl struct {
	store    TokenStore
	accounts AccountFinder
	cfg      config.QueueConfig
	clock    clock.Clock
	logger   *slog.Logger
	flight   singleflight.Group
}

func NewAdmissionQueue(
	store TokenStore,
	accounts AccountFinder,
	cfg config.QueueConfig,
	clock clock.Clock,
	logger *slog.Logger,
) AdmissionQueue {
	return &admissionQueueImpl{
		store:    store,
		accounts: accounts,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
	}
}

func (q *admissionQueueImpl) Admit(ctx context.Context, accountID uuid.UUID) (*queue.Token, error) {
	if _, err := q.accounts.FindByID(ctx, accountID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, fail(err, ErrAccountNotFound, errs.ErrNotFound)
		}
		return nil, infra.Categorize(err)
	}

	token := queue.NewToken(accountID, q.clock.Now())
	if err := q.store.Add(ctx, token); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, fail(err, ErrAlreadyQueued, errs.ErrConflict)
		}
		return nil, infra.Categorize(err)
	}

	q.logger.Debug("token admitted", "token_id", token.ID(), "account_id", accountID.String())
	return token, nil
}

func (q *admissionQueueImpl) Status(ctx context.Context, accountID uuid.UUID) (*queue.Token, error) {
	token, err := q.store.FindByAccount(ctx, accountID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, fail(err, ErrTokenNotFound, errs.ErrNotFound)
		}
		return nil, infra.Categorize(err)
	}
	return token, nil
}

func (q *admissionQueueImpl) VerifyActive(ctx context.Context, tokenID string) (*queue.Token, error) {
	if err := queue.ValidateTokenID(tokenID); err != nil {
		return nil, fail(err, ErrTokenNotUsable, errs.ErrUnauthorized)
	}
	token, err := q.store.Get(ctx, tokenID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, fail(err, ErrTokenNotUsable, errs.ErrUnauthorized)
		}
		return nil, infra.Categorize(err)
	}
	if !token.IsUsableAt(q.clock.Now()) {
		return nil, fail(nil, ErrTokenNotUsable, errs.ErrUnauthorized)
	}
	return token, nil
}

func (q *admissionQueueImpl) RenewDeadline(ctx context.Context, tokenID string) (*queue.Token, error) {
	token, err := q.store.Get(ctx, tokenID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, fail(err, ErrTokenNotFound, errs.ErrNotFound)
		}
		return nil, infra.Categorize(err)
	}

	tr, err := token.Renew(q.clock.Now(), q.cfg.ActiveWindow)
	if err != nil {
		return nil, fail(err, ErrRenewRejected, errs.ErrConflict)
	}
	ok, err := q.store.CompareAndSet(ctx, tr)
	if err != nil {
		return nil, infra.Categorize(err)
	}
	if !ok {
		// expired or renewed by someone else between Get and CAS
		return nil, fail(nil, ErrRenewRejected, errs.ErrConflict)
	}
	return token.Apply(tr)
}

// Release forces the token to EXPIRED. Releasing an expired token is a no-op.
func (q *admissionQueueImpl) Release(ctx context.Context, tokenID string) error {
	for range releaseAttempts {
		token, err := q.store.Get(ctx, tokenID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return fail(err, ErrTokenNotFound, errs.ErrNotFound)
			}
			return infra.Categorize(err)
		}
		if token.Status() == queue.StatusExpired {
			return nil
		}

		tr, err := token.Expire()
		if err != nil {
			return errs.Mark(err, errs.ErrConflict)
		}
		ok, err := q.store.CompareAndSet(ctx, tr)
		if err != nil {
			return infra.Categorize(err)
		}
		if ok {
			return nil
		}
	}
	return fail(nil, ErrReleaseContended, errs.ErrConflict)
}

// Sweep rebalances the queue: overdue ACTIVE tokens expire, then WAIT tokens are
// promoted oldest first until the ACTIVE count reaches the cap. Concurrent calls in
// one process share a single run.
func (q *admissionQueueImpl) Sweep(ctx context.Context) (SweepResult, error) {
	v, err, _ := q.flight.Do("queue-sweep", func() (any, error) {
		return q.sweep(ctx)
	})
	if err != nil {
		return SweepResult{}, err
	}
	return v.(SweepResult), nil
}

func (q *admissionQueueImpl) sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := q.clock.Now()

	actives, err := q.store.Members(ctx, queue.StatusActive, 0)
	if err != nil {
		return res, errs.Mark(errs.Wrap(err, "list active tokens"), errs.ErrTransientFailure)
	}
	for _, token := range actives {
		if !token.IsOverdueAt(now, q.cfg.ExpiryGrace) {
			continue
		}
		tr, trErr := token.Expire()
		if trErr != nil {
			continue
		}
		switch ok, casErr := q.store.CompareAndSet(ctx, tr); {
		case casErr != nil:
			res.Failed++
			q.logger.Warn("failed to expire token", "token_id", token.ID(), "error", casErr.Error())
		case ok:
			res.Expired++
		}
	}

	// fresh count: the expiry pass and concurrent releases changed it
	active, err := q.store.Count(ctx, queue.StatusActive)
	if err != nil {
		return res, errs.Mark(errs.Wrap(err, "count active tokens"), errs.ErrTransientFailure)
	}
	if free := q.cfg.ActiveCap - active; free > 0 {
		waiting, listErr := q.store.Members(ctx, queue.StatusWait, free)
		if listErr != nil {
			return res, errs.Mark(errs.Wrap(listErr, "list waiting tokens"), errs.ErrTransientFailure)
		}
		for _, token := range waiting {
			tr, trErr := token.Promote(now, q.cfg.ActiveWindow)
			if trErr != nil {
				continue
			}
			switch ok, casErr := q.store.CompareAndSet(ctx, tr); {
			case casErr != nil:
				res.Failed++
				q.logger.Warn("failed to promote token", "token_id", token.ID(), "error", casErr.Error())
			case ok:
				res.Promoted++
			}
		}
	}

	res.Purged, res.Failed = q.purgeExpired(ctx, now, res.Failed)
	return res, nil
}

func (q *admissionQueueImpl) purgeExpired(ctx context.Context, now time.Time, failed int) (int, int) {
	if q.cfg.ExpiredRetention <= 0 {
		return 0, failed
	}
	expired, err := q.store.Members(ctx, queue.StatusExpired, 0)
	if err != nil {
		q.logger.Warn("failed to list expired tokens", "error", err.Error())
		return 0, failed + 1
	}

	purged := 0
	for _, token := range expired {
		if !token.CreatedAt().Add(q.cfg.ExpiredRetention).Before(now) {
			continue
		}
		if err := q.store.Remove(ctx, token.ID()); err != nil {
			failed++
			q.logger.Warn("failed to purge token", "token_id", token.ID(), "error", err.Error())
			continue
		}
		purged++
	}
	return purged, failed
}
