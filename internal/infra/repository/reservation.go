package repository

import (
	"context"
	"log/slog"
	"time"

	"concert-reservation/internal/domain/reservation"
	"concert-reservation/internal/infra"
	"concert-reservation/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reservationColumns = `
	r.id, r.account_id, r.schedule_id, r.price, r.payment_status, r.status, r.created_at,
	COALESCE(
		(SELECT array_agg(a.seat_id ORDER BY a.seat_id) FROM seat_allocations a WHERE a.reservation_id = r.id),
		'{}'::bigint[]
	) AS seat_ids`

type ReservationRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewReservationRepository(dbtx db.DBTX, logger *slog.Logger) *ReservationRepository {
	return &ReservationRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) (*reservation.Reservation, error) {
	var (
		id        int64
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, `
		INSERT INTO reservations (account_id, schedule_id, price, payment_status, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at`,
		res.AccountID(),
		res.Selection().ScheduleID(),
		res.Price().Int64(),
		res.PaymentStatus().String(),
		res.Status().String(),
		res.CreatedAt(),
	).Scan(&id, &createdAt)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to create reservation", err)
	}

	return res.Persisted(id, createdAt), nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id int64) (*reservation.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations r WHERE r.id = $1`, id)
	res, err := scanReservation(row)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to find reservation", err)
	}
	return res, nil
}

// ListOldestUnpaid skips PAID rows so they cannot fill the batch and starve older unpaid ones.
func (r *ReservationRepository) ListOldestUnpaid(ctx context.Context, limit int) ([]*reservation.Reservation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		WHERE r.status = $1 AND r.payment_status = $2
		ORDER BY r.id ASC
		LIMIT $3`,
		reservation.StatusActive.String(), reservation.PaymentNotPaid.String(), limit,
	)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to list unpaid reservations", err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res, scanErr := scanReservation(rows)
		if scanErr != nil {
			return nil, infra.WrapPgErr(r.logger, "failed to scan reservation", scanErr)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to iterate reservations", err)
	}
	return out, nil
}

func (r *ReservationRepository) Cancel(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE reservations
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`,
		id, reservation.StatusCancelled.String(), reservation.StatusActive.String(),
	)
	if err != nil {
		return false, infra.WrapPgErr(r.logger, "failed to cancel reservation", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		id            int64
		accountID     uuid.UUID
		scheduleID    int64
		price         int64
		paymentStatus string
		status        string
		createdAt     time.Time
		seatIDs       []int64
	)
	if err := row.Scan(&id, &accountID, &scheduleID, &price, &paymentStatus, &status, &createdAt, &seatIDs); err != nil {
		return nil, err
	}

	sel, err := reservation.NewSeatSelection(scheduleID, seatIDs)
	if err != nil {
		return nil, err
	}
	points, err := reservation.NewPoints(price)
	if err != nil {
		return nil, err
	}

	return reservation.ReconstructReservation(
		id,
		accountID,
		sel,
		points,
		reservation.PaymentStatus(paymentStatus),
		reservation.Status(status),
		createdAt,
	), nil
}
