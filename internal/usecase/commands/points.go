package commands

import (
	"context"

	"concert-reservation/internal/domain/account"
	"concert-reservation/internal/pkg/errs"

	"github.com/google/uuid"
)

//go:generate mockgen -source=points.go -destination=../../../tests/mock/commands/points.go -package=commandsmock

type PointCommands interface {
	Charge(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error)
	Balance(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type pointCommandsImpl struct {
	ledger PointLedger
}

func NewPointCommands(ledger PointLedger) PointCommands {
	return &pointCommandsImpl{ledger: ledger}
}

func (p *pointCommandsImpl) Charge(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error) {
	if err := account.ValidateAmount(amount); err != nil {
		return 0, errs.Mark(err, errs.ErrInvalidArgument)
	}
	return p.ledger.Charge(ctx, accountID, "charge:"+uuid.NewString(), amount)
}

func (p *pointCommandsImpl) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return p.ledger.Balance(ctx, accountID)
}
