package compensation

import (
	"context"
	"log/slog"

	"concert-reservation/internal/domain/event"
	"concert-reservation/internal/infra"
	"concert-reservation/internal/pkg/clock"
	"concert-reservation/internal/usecase/shared"
)

// Recovery undoes a reservation whose point debit failed. Replays are harmless:
// every step is a compare-and-set on the current state.
type Recovery struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	logger *slog.Logger
}

func NewRecovery(uow shared.UnitOfWork, clock clock.Clock, logger *slog.Logger) *Recovery {
	return &Recovery{uow: uow, clock: clock, logger: logger}
}

func (r *Recovery) HandlePaymentRecover(ctx context.Context, evt event.PaymentRecover) error {
	var (
		cancelled bool
		released  int64
		failed    bool
	)
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		cancelled, err = tx.Reservations().Cancel(ctx, evt.ReservationID)
		if err != nil {
			return err
		}
		if cancelled {
			released, err = tx.Seats().Release(ctx, evt.ReservationID, r.clock.Now())
			if err != nil {
				return err
			}
		}
		failed, err = tx.Payments().MarkFailed(ctx, evt.PaymentID, evt.Reason)
		return err
	})
	if err != nil {
		return infra.Categorize(err)
	}

	r.logger.Info("reservation recovered",
		"reservation_id", evt.ReservationID,
		"payment_id", evt.PaymentID,
		"cancelled", cancelled,
		"seats_released", released,
		"payment_failed", failed)
	return nil
}
