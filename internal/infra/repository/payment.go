package repository

import (
	"context"
	"log/slog"

	"concert-reservation/internal/infra"
	"concert-reservation/internal/infra/db"

	"github.com/google/uuid"
)

const (
	paymentStatusPending = "PENDING"
	paymentStatusFailed  = "FAILED"
)

type PaymentRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewPaymentRepository(dbtx db.DBTX, logger *slog.Logger) *PaymentRepository {
	return &PaymentRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *PaymentRepository) CreatePending(ctx context.Context, reservationID int64, accountID uuid.UUID, amount int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO payments (reservation_id, account_id, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id`,
		reservationID, accountID, amount, paymentStatusPending,
	).Scan(&id)
	if err != nil {
		return 0, infra.WrapPgErr(r.logger, "failed to create payment", err)
	}
	return id, nil
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, paymentID int64, reason string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments
		SET status = $2, failure_reason = $3, updated_at = now()
		WHERE id = $1 AND status = $4`,
		paymentID, paymentStatusFailed, reason, paymentStatusPending,
	)
	if err != nil {
		return false, infra.WrapPgErr(r.logger, "failed to mark payment failed", err)
	}
	return tag.RowsAffected() == 1, nil
}
