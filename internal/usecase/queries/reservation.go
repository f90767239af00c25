package queries

import (
	"context"
	"time"

	"concert-reservation/internal/pkg/errs"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
//go:generate mockgen -source=reservation.go -destination=../../../tests/mock/queries/reservation.go -package=queriesmock

type ReservationView struct {
	ID            int64        `json:"id"`
	AccountID     uuid.UUID    `json:"account_id"`
	ScheduleID    int64        `json:"schedule_id"`
	SeatIDs       []int64      `json:"seat_ids"`
	Price         int64        `json:"price"`
	PaymentStatus string       `json:"payment_status"`
	Status        string       `json:"status"`
	Payment       *PaymentView `json:"payment,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

type PaymentView struct {
	ID            int64   `json:"id"`
	Amount        int64   `json:"amount"`
	Status        string  `json:"status"`
	FailureReason *string `json:"failure_reason,omitempty"`
}

type ReservationListItem struct {
	ID         int64     `json:"id"`
	ScheduleID int64     `json:"schedule_id"`
	SeatCount  int       `json:"seat_count"`
	Price      int64     `json:"price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReservationQueries interface {
	// GetByID hides reservations owned by another account behind NotFound.
	GetByID(ctx context.Context, actor uuid.UUID, id int64) (*ReservationView, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*ReservationListItem, error)
}

type ReservationViewRepo interface {
	FindByID(ctx context.Context, id int64) (*ReservationView, error)
	FindByAccountID(ctx context.Context, accountID uuid.UUID, limit int32) ([]*ReservationListItem, error)
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type reservationQueriesImpl struct {
	repo ReservationViewRepo
}

func NewReservationQueries(repo ReservationViewRepo) ReservationQueries {
	return &reservationQueriesImpl{repo: repo}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, actor uuid.UUID, id int64) (*ReservationView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.AccountID != actor {
		return nil, errs.Mark(errs.Newf("reservation %d not found", id), errs.ErrNotFound)
	}
	return view, nil
}

func (q *reservationQueriesImpl) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*ReservationListItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	// #nosec G115 -- bounded by maxListLimit
	return q.repo.FindByAccountID(ctx, accountID, int32(limit))
}
