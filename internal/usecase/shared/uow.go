package shared

import (
	"context"
	"time"

	"concert-reservation/internal/domain/account"
	"concert-reservation/internal/domain/reservation"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic.
	// Hooks registered through Tx.AfterCommit run only after a successful commit.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// CommitHook runs after the enclosing transaction has committed.
type CommitHook func(ctx context.Context) error

type Tx interface {
	Reservations() ReservationRepository
	Seats() SeatRepository
	Accounts() AccountRepository
	Payments() PaymentRepository
	// AfterCommit queues hook to run after commit, in registration order.
	// The first hook error becomes the error returned by Within.
	AfterCommit(hook CommitHook)
}

type ReservationRepository interface {
	Create(ctx context.Context, res *reservation.Reservation) (*reservation.Reservation, error)
	FindByID(ctx context.Context, id int64) (*reservation.Reservation, error)
	// ListOldestUnpaid returns up to limit ACTIVE, NOT_PAID reservations in ascending id order.
	ListOldestUnpaid(ctx context.Context, limit int) ([]*reservation.Reservation, error)
	// Cancel moves ACTIVE to CANCELLED and reports whether this call did it.
	Cancel(ctx context.Context, id int64) (bool, error)
}

type SeatRepository interface {
	// FindUnallocated returns the selected seats that are not held by an active allocation.
	// A seat missing from the schedule is a NOT_FOUND repository error.
	FindUnallocated(ctx context.Context, sel reservation.SeatSelection) ([]int64, error)
	// LockForUpdate takes row locks on the selected seats, waiting at most timeout.
	LockForUpdate(ctx context.Context, sel reservation.SeatSelection, timeout time.Duration) error
	// Allocate records the seats against the reservation. A concurrent allocation of
	// the same seat fails with a DUPLICATE_KEY repository error.
	Allocate(ctx context.Context, reservationID int64, sel reservation.SeatSelection) error
	Release(ctx context.Context, reservationID int64, at time.Time) (int64, error)
}

type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	// DebitPoints subtracts amount only when the balance covers it and returns the new balance.
	DebitPoints(ctx context.Context, id uuid.UUID, amount int64) (int64, error)
	CreditPoints(ctx context.Context, id uuid.UUID, amount int64) (int64, error)
	// RecordTransaction appends to the point history keyed by reference. It reports
	// false when the reference was already recorded.
	RecordTransaction(ctx context.Context, id uuid.UUID, reference string, delta int64) (bool, error)
}

type PaymentRepository interface {
	CreatePending(ctx context.Context, reservationID int64, accountID uuid.UUID, amount int64) (int64, error)
	// MarkFailed moves a PENDING payment to FAILED and reports whether this call did it.
	MarkFailed(ctx context.Context, paymentID int64, reason string) (bool, error)
}
