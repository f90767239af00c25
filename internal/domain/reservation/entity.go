package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAlreadyCancelled = errors.New("reservation is already cancelled")

type Reservation struct {
	id            int64
	accountID     uuid.UUID
	selection     SeatSelection
	price         Points
	paymentStatus PaymentStatus
	status        Status
	createdAt     time.Time
}

// NewReservation builds an unsaved reservation: NOT_PAID, ACTIVE, without an id.
func NewReservation(accountID uuid.UUID, selection SeatSelection, price Points, now time.Time) *Reservation {
	return &Reservation{
		accountID:     accountID,
		selection:     selection,
		price:         price,
		paymentStatus: PaymentNotPaid,
		status:        StatusActive,
		createdAt:     now,
	}
}

func ReconstructReservation(
	id int64,
	accountID uuid.UUID,
	selection SeatSelection,
	price Points,
	paymentStatus PaymentStatus,
	status Status,
	createdAt time.Time,
) *Reservation {
	return &Reservation{
		id:            id,
		accountID:     accountID,
		selection:     selection,
		price:         price,
		paymentStatus: paymentStatus,
		status:        status,
		createdAt:     createdAt,
	}
}

// Persisted returns a copy carrying the id and timestamp assigned by storage.
func (r *Reservation) Persisted(id int64, createdAt time.Time) *Reservation {
	next := *r
	next.id = id
	next.createdAt = createdAt
	return &next
}

// ShouldAutoCancel: ACTIVE, NOT_PAID and created more than window before now.
func (r *Reservation) ShouldAutoCancel(now time.Time, window time.Duration) bool {
	return r.status == StatusActive &&
		r.paymentStatus == PaymentNotPaid &&
		r.createdAt.Add(window).Before(now)
}

// Cancelled returns the CANCELLED copy of r. r itself is left untouched.
func (r *Reservation) Cancelled() (*Reservation, error) {
	if r.status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	next := *r
	next.status = StatusCancelled
	return &next, nil
}

func (r *Reservation) ID() int64                    { return r.id }
func (r *Reservation) AccountID() uuid.UUID         { return r.accountID }
func (r *Reservation) Selection() SeatSelection     { return r.selection }
func (r *Reservation) Price() Points                { return r.price }
func (r *Reservation) PaymentStatus() PaymentStatus { return r.paymentStatus }
func (r *Reservation) Status() Status               { return r.status }
func (r *Reservation) CreatedAt() time.Time         { return r.createdAt }
