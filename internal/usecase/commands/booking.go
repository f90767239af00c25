package commands

import (
	"context"
	"log/slog"

	"concert-reservation/internal/domain/reservation"
	"concert-reservation/internal/pkg/errs"
)

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/commands/booking.go -package=commandsmock

// BookingCommands is the caller-facing reservation flow: the queue token admits
// the call, the allocator reserves, and the token deadline is pushed out.
type BookingCommands interface {
	MakeReservation(ctx context.Context, tokenID string, cmd ReserveCommand) (*reservation.Reservation, error)
}

type bookingCommandsImpl struct {
	queue        AdmissionQueue
	reservations ReservationCommands
	logger       *slog.Logger
}

func NewBookingCommands(queue AdmissionQueue, reservations ReservationCommands, logger *slog.Logger) BookingCommands {
	return &bookingCommandsImpl{
		queue:        queue,
		reservations: reservations,
		logger:       logger,
	}
}

func (b *bookingCommandsImpl) MakeReservation(ctx context.Context, tokenID string, cmd ReserveCommand) (*reservation.Reservation, error) {
	token, err := b.queue.VerifyActive(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token.AccountID() != cmd.AccountID {
		return nil, fail(nil, ErrTokenNotOwned, errs.ErrUnauthorized)
	}

	res, err := b.reservations.Reserve(ctx, cmd)
	if err != nil {
		return nil, err
	}

	// The reservation is committed at this point; a lost renewal only shortens the
	// token's remaining window.
	if _, err := b.queue.RenewDeadline(ctx, tokenID); err != nil {
		b.logger.Warn("failed to renew token deadline",
			"token_id", tokenID,
			"reservation_id", res.ID(),
			"error", err.Error())
	}
	return res, nil
}
