package commands

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"concert-reservation/internal/domain/event"
	"concert-reservation/internal/domain/reservation"
	"concert-reservation/internal/infra"
	"concert-reservation/internal/pkg/clock"
	"concert-reservation/internal/pkg/config"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/shared"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type ReserveCommand struct {
	AccountID uuid.UUID
	Selection reservation.SeatSelection
	Price     reservation.Points
	Strategy  reservation.LockStrategy
}

type ReservationCommands interface {
	// Reserve allocates every selected seat or none of them. When the post-commit
	// point debit fails the reservation stays committed and the debit error is returned.
	Reserve(ctx context.Context, cmd ReserveCommand) (*reservation.Reservation, error)
	// ExpireUnpaid cancels stale NOT_PAID reservations among the oldest ACTIVE batch
	// and returns the ids it cancelled.
	ExpireUnpaid(ctx context.Context) ([]int64, error)
}

type reservationCommandsImpl struct {
	uow       shared.UnitOfWork
	locker    Locker
	committed ReservationCommittedHandler
	cfg       config.ReservationConfig
	clock     clock.Clock
	logger    *slog.Logger
	flight    singleflight.Group
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	locker Locker,
	committed ReservationCommittedHandler,
	cfg config.ReservationConfig,
	clock clock.Clock,
	logger *slog.Logger,
) ReservationCommands {
	return &reservationCommandsImpl{
		uow:       uow,
		locker:    locker,
		committed: committed,
		cfg:       cfg,
		clock:     clock,
		logger:    logger,
	}
}

func (r *reservationCommandsImpl) Reserve(ctx context.Context, cmd ReserveCommand) (*reservation.Reservation, error) {
	if !cmd.Strategy.IsValid() {
		return nil, fail(reservation.ErrUnknownLockStrategy, ErrInvalidReservation, errs.ErrInvalidArgument)
	}
	if cmd.Selection.Len() == 0 {
		return nil, fail(reservation.ErrEmptySelection, ErrInvalidReservation, errs.ErrInvalidArgument)
	}

	release := func(context.Context) error { return nil }
	if cmd.Strategy == reservation.LockDistributed {
		handle, err := r.locker.TryAcquire(ctx, cmd.Selection.LockKey(), r.cfg.LockWait)
		if err != nil {
			if errs.Category(err) == nil {
				err = errs.Mark(err, errs.ErrTransientFailure)
			}
			return nil, err
		}
		release = r.releaseOnce(handle, cmd.Selection.LockKey())
		defer func() { _ = release(context.WithoutCancel(ctx)) }()
	}

	var created *reservation.Reservation
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// before the committed handler, so the lock is never held across compensation
		tx.AfterCommit(release)

		res, paymentID, err := r.allocate(ctx, tx, cmd)
		if err != nil {
			return err
		}
		created = res

		evt := event.ReservationCommitted{
			ReservationID: res.ID(),
			PaymentID:     paymentID,
			AccountID:     res.AccountID(),
			Price:         res.Price().Int64(),
		}
		tx.AfterCommit(func(ctx context.Context) error {
			if r.committed == nil {
				return nil
			}
			return r.committed.OnReservationCommitted(ctx, evt)
		})
		return nil
	})
	if err != nil {
		return nil, infra.Categorize(err)
	}

	r.logger.Info("reservation committed",
		"reservation_id", created.ID(),
		"account_id", created.AccountID().String(),
		"strategy", cmd.Strategy.String(),
		"seats", created.Selection().Len())
	return created, nil
}

func (r *reservationCommandsImpl) allocate(ctx context.Context, tx shared.Tx, cmd ReserveCommand) (*reservation.Reservation, int64, error) {
	if _, err := tx.Accounts().FindByID(ctx, cmd.AccountID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, 0, fail(err, ErrAccountNotFound, errs.ErrNotFound)
		}
		return nil, 0, err
	}

	if cmd.Strategy == reservation.LockReadExclusive {
		if err := tx.Seats().LockForUpdate(ctx, cmd.Selection, r.cfg.RowLockTimeout); err != nil {
			return nil, 0, err
		}
	}

	free, err := tx.Seats().FindUnallocated(ctx, cmd.Selection)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, 0, fail(err, ErrSeatsNotFound, errs.ErrNotFound)
		}
		return nil, 0, err
	}
	if len(free) != cmd.Selection.Len() {
		return nil, 0, fail(nil, ErrSeatsUnavailable, errs.ErrConflict)
	}

	res, err := tx.Reservations().Create(ctx, reservation.NewReservation(cmd.AccountID, cmd.Selection, cmd.Price, r.clock.Now()))
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Seats().Allocate(ctx, res.ID(), cmd.Selection); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, 0, fail(err, ErrSeatsUnavailable, errs.ErrConflict)
		}
		return nil, 0, err
	}

	paymentID, err := tx.Payments().CreatePending(ctx, res.ID(), res.AccountID(), res.Price().Int64())
	if err != nil {
		return nil, 0, err
	}
	return res, paymentID, nil
}

// releaseOnce lets the commit hook and the deferred cleanup both call release.
// Release failures are logged; the lock TTL reclaims the key eventually.
func (r *reservationCommandsImpl) releaseOnce(handle LockHandle, key string) shared.CommitHook {
	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			if err := handle.Release(ctx); err != nil {
				r.logger.Warn("failed to release lock", "key", key, "error", err.Error())
			}
		})
		return nil
	}
}

func (r *reservationCommandsImpl) ExpireUnpaid(ctx context.Context) ([]int64, error) {
	v, err, _ := r.flight.Do("reservation-expiry", func() (any, error) {
		return r.expireUnpaid(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]int64), nil
}

func (r *reservationCommandsImpl) expireUnpaid(ctx context.Context) ([]int64, error) {
	var batch []*reservation.Reservation
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		batch, err = tx.Reservations().ListOldestUnpaid(ctx, r.cfg.ExpireBatchSize)
		return err
	})
	if err != nil {
		return nil, infra.Categorize(err)
	}

	now := r.clock.Now()
	cancelled := []int64{}
	for _, res := range batch {
		if !res.ShouldAutoCancel(now, r.cfg.UnpaidWindow) {
			continue
		}
		ok, err := r.cancelAndRelease(ctx, res.ID(), now)
		if err != nil {
			r.logger.Warn("failed to cancel unpaid reservation", "reservation_id", res.ID(), "error", err.Error())
			continue
		}
		if ok {
			cancelled = append(cancelled, res.ID())
		}
	}
	return cancelled, nil
}

func (r *reservationCommandsImpl) cancelAndRelease(ctx context.Context, id int64, now time.Time) (bool, error) {
	var cancelled bool
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		cancelled, err = tx.Reservations().Cancel(ctx, id)
		if err != nil || !cancelled {
			return err
		}
		_, err = tx.Seats().Release(ctx, id, now)
		return err
	})
	return cancelled, err
}
