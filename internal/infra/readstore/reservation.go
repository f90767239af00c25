package readstore

import (
	"context"
	"log/slog"
	"time"

	"concert-reservation/internal/infra"
	"concert-reservation/internal/infra/db"
	"concert-reservation/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewReservationReadStore(dbtx db.DBTX, logger *slog.Logger) *ReservationReadStore {
	return &ReservationReadStore{
		db:     dbtx,
		logger: logger,
	}
}

func (r *ReservationReadStore) FindByID(ctx context.Context, id int64) (*queries.ReservationView, error) {
	var (
		view          queries.ReservationView
		paymentID     *int64
		paymentAmount *int64
		paymentStatus *string
		failureReason *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT r.id, r.account_id, r.schedule_id, r.price, r.payment_status, r.status, r.created_at,
		       COALESCE(
		           (SELECT array_agg(a.seat_id ORDER BY a.seat_id) FROM seat_allocations a WHERE a.reservation_id = r.id),
		           '{}'::bigint[]
		       ),
		       p.id, p.amount, p.status, p.failure_reason
		FROM reservations r
		LEFT JOIN payments p ON p.reservation_id = r.id
		WHERE r.id = $1`, id,
	).Scan(
		&view.ID, &view.AccountID, &view.ScheduleID, &view.Price, &view.PaymentStatus, &view.Status, &view.CreatedAt,
		&view.SeatIDs,
		&paymentID, &paymentAmount, &paymentStatus, &failureReason,
	)
	if err != nil {
		return nil, infra.Categorize(infra.WrapPgErr(r.logger, "failed to find reservation view", err))
	}

	if paymentID != nil {
		view.Payment = &queries.PaymentView{
			ID:            *paymentID,
			Amount:        deref(paymentAmount),
			Status:        deref(paymentStatus),
			FailureReason: failureReason,
		}
	}
	return &view, nil
}

func (r *ReservationReadStore) FindByAccountID(ctx context.Context, accountID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, r.schedule_id, r.price, r.status, r.created_at,
		       (SELECT count(*) FROM seat_allocations a WHERE a.reservation_id = r.id)
		FROM reservations r
		WHERE r.account_id = $1
		ORDER BY r.id DESC
		LIMIT $2`, accountID, limit,
	)
	if err != nil {
		return nil, infra.Categorize(infra.WrapPgErr(r.logger, "failed to list reservations", err))
	}
	defer rows.Close()

	var items []*queries.ReservationListItem
	for rows.Next() {
		var (
			item      queries.ReservationListItem
			createdAt time.Time
		)
		if err := rows.Scan(&item.ID, &item.ScheduleID, &item.Price, &item.Status, &createdAt, &item.SeatCount); err != nil {
			return nil, infra.Categorize(infra.WrapPgErr(r.logger, "failed to scan reservation", err))
		}
		item.CreatedAt = createdAt
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.Categorize(infra.WrapPgErr(r.logger, "failed to iterate reservations", err))
	}
	return items, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
