package repository

import (
	"context"
	"log/slog"
	"time"

	"concert-reservation/internal/domain/account"
	"concert-reservation/internal/infra"
	"concert-reservation/internal/infra/db"
	"concert-reservation/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type AccountRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewAccountRepository(dbtx db.DBTX, logger *slog.Logger) *AccountRepository {
	return &AccountRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var (
		name      string
		balance   int64
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT name, point_balance, created_at
		FROM accounts
		WHERE id = $1`, id,
	).Scan(&name, &balance, &createdAt)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to find account", err)
	}
	return account.ReconstructAccount(id, name, balance, createdAt), nil
}

// DebitPoints fails with CHECK_VIOLATED when the balance does not cover amount.
func (r *AccountRepository) DebitPoints(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `
		UPDATE accounts
		SET point_balance = point_balance - $2, updated_at = now()
		WHERE id = $1 AND point_balance >= $2
		RETURNING point_balance`,
		id, amount,
	).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !pgconv.IsNoRows(err) {
		return 0, infra.WrapPgErr(r.logger, "failed to debit points", err)
	}

	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return 0, findErr
	}
	return 0, infra.WrapRepoErr(r.logger, infra.KindCheckViolated, "insufficient point balance", account.ErrInsufficientPoints)
}

func (r *AccountRepository) CreditPoints(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `
		UPDATE accounts
		SET point_balance = point_balance + $2, updated_at = now()
		WHERE id = $1
		RETURNING point_balance`,
		id, amount,
	).Scan(&balance)
	if err != nil {
		return 0, infra.WrapPgErr(r.logger, "failed to credit points", err)
	}
	return balance, nil
}

func (r *AccountRepository) RecordTransaction(ctx context.Context, id uuid.UUID, reference string, delta int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO point_transactions (account_id, reference, delta, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (reference) DO NOTHING`,
		id, reference, delta,
	)
	if err != nil {
		return false, infra.WrapPgErr(r.logger, "failed to record point transaction", err)
	}
	return tag.RowsAffected() == 1, nil
}
