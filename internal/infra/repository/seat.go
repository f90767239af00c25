package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"concert-reservation/internal/domain/reservation"
	"concert-reservation/internal/infra"
	"concert-reservation/internal/infra/db"
)

type SeatRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewSeatRepository(dbtx db.DBTX, logger *slog.Logger) *SeatRepository {
	return &SeatRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *SeatRepository) FindUnallocated(ctx context.Context, sel reservation.SeatSelection) ([]int64, error) {
	ids := sel.SeatIDs()

	rows, err := r.db.Query(ctx, `
		SELECT s.id,
		       EXISTS (
		           SELECT 1 FROM seat_allocations a
		           WHERE a.seat_id = s.id AND a.released_at IS NULL
		       ) AS allocated
		FROM seats s
		WHERE s.schedule_id = $1 AND s.id = ANY($2)
		ORDER BY s.id`,
		sel.ScheduleID(), ids,
	)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to query seats", err)
	}
	defer rows.Close()

	found := 0
	var free []int64
	for rows.Next() {
		var (
			id        int64
			allocated bool
		)
		if err := rows.Scan(&id, &allocated); err != nil {
			return nil, infra.WrapPgErr(r.logger, "failed to scan seat", err)
		}
		found++
		if !allocated {
			free = append(free, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to iterate seats", err)
	}

	if found != len(ids) {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound,
			fmt.Sprintf("seats not found in schedule %d", sel.ScheduleID()), nil)
	}
	return free, nil
}

// LockForUpdate locks the seat rows in id order. The lock_timeout is local to the
// current transaction.
func (r *SeatRepository) LockForUpdate(ctx context.Context, sel reservation.SeatSelection, timeout time.Duration) error {
	if timeout > 0 {
		// SET does not accept bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return infra.WrapPgErr(r.logger, "failed to set lock timeout", err)
		}
	}

	rows, err := r.db.Query(ctx, `
		SELECT id FROM seats
		WHERE schedule_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE`,
		sel.ScheduleID(), sel.SeatIDs(),
	)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to lock seats", err)
	}
	defer rows.Close()
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return infra.WrapPgErr(r.logger, "failed to lock seats", err)
	}
	return nil
}

func (r *SeatRepository) Allocate(ctx context.Context, reservationID int64, sel reservation.SeatSelection) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO seat_allocations (seat_id, reservation_id, allocated_at)
		SELECT s.id, $1, now()
		FROM seats s
		WHERE s.schedule_id = $2 AND s.id = ANY($3)`,
		reservationID, sel.ScheduleID(), sel.SeatIDs(),
	)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to allocate seats", err)
	}
	if tag.RowsAffected() != int64(sel.Len()) {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "seats vanished during allocation", nil)
	}
	return nil
}

func (r *SeatRepository) Release(ctx context.Context, reservationID int64, at time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE seat_allocations
		SET released_at = $2
		WHERE reservation_id = $1 AND released_at IS NULL`,
		reservationID, at,
	)
	if err != nil {
		return 0, infra.WrapPgErr(r.logger, "failed to release seats", err)
	}
	return tag.RowsAffected(), nil
}
