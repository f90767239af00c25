package ledger

import (
	"context"
	"log/slog"

	"concert-reservation/internal/domain/account"
	"concert-reservation/internal/infra"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/shared"

	"github.com/google/uuid"
)

// PostgresLedger keeps balances on the accounts table and the history in
// point_transactions, whose unique reference makes replays no-ops.
type PostgresLedger struct {
	uow    shared.UnitOfWork
	logger *slog.Logger
}

func NewPostgresLedger(uow shared.UnitOfWork, logger *slog.Logger) *PostgresLedger {
	return &PostgresLedger{uow: uow, logger: logger}
}

func (l *PostgresLedger) Debit(ctx context.Context, accountID uuid.UUID, reference string, amount int64) error {
	if err := account.ValidateAmount(amount); err != nil {
		return errs.Mark(err, errs.ErrInvalidArgument)
	}

	err := l.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		acct, err := tx.Accounts().FindByID(ctx, accountID)
		if err != nil {
			return err
		}
		if !acct.CanAfford(amount) {
			return insufficient(accountID, amount)
		}

		recorded, err := tx.Accounts().RecordTransaction(ctx, accountID, reference, -amount)
		if err != nil {
			return err
		}
		if !recorded {
			l.logger.Info("debit already applied", "reference", reference)
			return nil
		}

		_, err = tx.Accounts().DebitPoints(ctx, accountID, amount)
		if infra.IsKind(err, infra.KindCheckViolated) {
			return insufficient(accountID, amount)
		}
		return err
	})
	return infra.Categorize(err)
}

func (l *PostgresLedger) Charge(ctx context.Context, accountID uuid.UUID, reference string, amount int64) (int64, error) {
	if err := account.ValidateAmount(amount); err != nil {
		return 0, errs.Mark(err, errs.ErrInvalidArgument)
	}

	var balance int64
	err := l.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		recorded, err := tx.Accounts().RecordTransaction(ctx, accountID, reference, amount)
		if err != nil {
			return err
		}
		if !recorded {
			acct, findErr := tx.Accounts().FindByID(ctx, accountID)
			if findErr != nil {
				return findErr
			}
			balance = acct.PointBalance()
			return nil
		}
		balance, err = tx.Accounts().CreditPoints(ctx, accountID, amount)
		return err
	})
	if err != nil {
		return 0, infra.Categorize(err)
	}
	return balance, nil
}

func (l *PostgresLedger) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var balance int64
	err := l.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		acct, err := tx.Accounts().FindByID(ctx, accountID)
		if err != nil {
			return err
		}
		balance = acct.PointBalance()
		return nil
	})
	if err != nil {
		return 0, infra.Categorize(err)
	}
	return balance, nil
}

func insufficient(accountID uuid.UUID, amount int64) error {
	return errs.Mark(
		errs.Wrapf(account.ErrInsufficientPoints, "debit %d from %s", amount, accountID),
		errs.ErrConflict,
	)
}
