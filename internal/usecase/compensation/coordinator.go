package compensation

import (
	"context"
	"fmt"
	"log/slog"

	"concert-reservation/internal/domain/account"
	"concert-reservation/internal/domain/event"
	"concert-reservation/internal/pkg/clock"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/commands"
)

const (
	ReasonInsufficientPoints = "insufficient points"
	ReasonDebitFailed        = "point debit failed"
)

type RecoverPublisher interface {
	PublishRecover(ctx context.Context, evt event.PaymentRecover) error
}

// Coordinator debits the reservation price once the allocation has committed.
// A failed debit publishes exactly one PaymentRecover and the error goes back to
// the caller; the committed reservation is left for the recovery consumer.
type Coordinator struct {
	ledger    commands.PointLedger
	publisher RecoverPublisher
	clock     clock.Clock
	logger    *slog.Logger
}

func NewCoordinator(ledger commands.PointLedger, publisher RecoverPublisher, clock clock.Clock, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		ledger:    ledger,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

func DebitReference(reservationID int64) string {
	return fmt.Sprintf("reservation:%d", reservationID)
}

func (c *Coordinator) OnReservationCommitted(ctx context.Context, evt event.ReservationCommitted) error {
	err := c.ledger.Debit(ctx, evt.AccountID, DebitReference(evt.ReservationID), evt.Price)
	if err == nil {
		c.logger.Info("points debited",
			"reservation_id", evt.ReservationID,
			"account_id", evt.AccountID.String(),
			"amount", evt.Price)
		return nil
	}

	reason := ReasonDebitFailed
	if errs.Is(err, account.ErrInsufficientPoints) {
		reason = ReasonInsufficientPoints
	}
	recoverEvt := event.RecoverFrom(evt, reason, c.clock.Now())

	// the request context may already be cancelled; the event must still go out
	if pubErr := c.publisher.PublishRecover(context.WithoutCancel(ctx), recoverEvt); pubErr != nil {
		c.logger.Error("failed to publish PaymentRecover",
			"reservation_id", evt.ReservationID,
			"payment_id", evt.PaymentID,
			"error", pubErr.Error())
	} else {
		c.logger.Warn("point debit failed, recovery requested",
			"reservation_id", evt.ReservationID,
			"payment_id", evt.PaymentID,
			"reason", reason)
	}

	wrapped := errs.Wrapf(err, "debit points for reservation %d", evt.ReservationID)
	if errs.Category(err) == nil {
		wrapped = errs.Mark(wrapped, errs.ErrTransientFailure)
	}
	return wrapped
}
