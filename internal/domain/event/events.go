package event

import (
	"time"

	"github.com/google/uuid"
)

// ReservationCommitted is raised once the allocation transaction has committed.
type ReservationCommitted struct {
	ReservationID int64     `json:"reservationId"`
	PaymentID     int64     `json:"paymentId"`
	AccountID     uuid.UUID `json:"accountId"`
	Price         int64     `json:"price"`
}

// PaymentRecover asks the recovery side to undo a reservation whose point debit failed.
type PaymentRecover struct {
	ReservationID int64     `json:"reservationId"`
	PaymentID     int64     `json:"paymentId"`
	AccountID     uuid.UUID `json:"accountId"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func RecoverFrom(c ReservationCommitted, reason string, at time.Time) PaymentRecover {
	return PaymentRecover{
		ReservationID: c.ReservationID,
		PaymentID:     c.PaymentID,
		AccountID:     c.AccountID,
		Reason:        reason,
		OccurredAt:    at,
	}
}
