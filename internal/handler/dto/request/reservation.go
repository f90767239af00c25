package request

import (
	"concert-reservation/internal/domain/reservation"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	ScheduleID int64   `json:"scheduleId" binding:"required,gt=0"`
	SeatIDs    []int64 `json:"seatIds" binding:"required,min=1,dive,gt=0"`
	Price      int64   `json:"price" binding:"gte=0"`
}

// ToCommand validates the selection the same way the domain does and attaches the strategy.
func (r CreateReservationRequest) ToCommand(accountID uuid.UUID, strategy reservation.LockStrategy) (commands.ReserveCommand, error) {
	selection, err := reservation.NewSeatSelection(r.ScheduleID, r.SeatIDs)
	if err != nil {
		return commands.ReserveCommand{}, errs.Mark(err, errs.ErrInvalidArgument)
	}
	price, err := reservation.NewPoints(r.Price)
	if err != nil {
		return commands.ReserveCommand{}, errs.Mark(err, errs.ErrInvalidArgument)
	}
	return commands.ReserveCommand{
		AccountID: accountID,
		Selection: selection,
		Price:     price,
		Strategy:  strategy,
	}, nil
}

type ListReservationsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}
