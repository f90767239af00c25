package response

import (
	"time"

	"concert-reservation/internal/domain/reservation"
	"concert-reservation/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ReservationResponse struct {
	ID            int64            `json:"id"`
	AccountID     uuid.UUID        `json:"accountId"`
	ScheduleID    int64            `json:"scheduleId"`
	SeatIDs       []int64          `json:"seatIds"`
	Price         int64            `json:"price"`
	PaymentStatus string           `json:"paymentStatus"`
	Status        string           `json:"status"`
	Payment       *PaymentResponse `json:"payment,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

type PaymentResponse struct {
	ID            int64   `json:"id"`
	Amount        int64   `json:"amount"`
	Status        string  `json:"status"`
	FailureReason *string `json:"failureReason,omitempty"`
}

type ReservationListResponse struct {
	ID         int64     `json:"id"`
	ScheduleID int64     `json:"scheduleId"`
	SeatCount  int       `json:"seatCount"`
	Price      int64     `json:"price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FromReservation maps a freshly committed reservation. The payment row is not
// loaded on this path, so Payment stays empty.
func FromReservation(r *reservation.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:            r.ID(),
		AccountID:     r.AccountID(),
		ScheduleID:    r.Selection().ScheduleID(),
		SeatIDs:       r.Selection().SeatIDs(),
		Price:         r.Price().Int64(),
		PaymentStatus: r.PaymentStatus().String(),
		Status:        r.Status().String(),
		CreatedAt:     r.CreatedAt(),
	}
}

func FromReservationView(v *queries.ReservationView) (*ReservationResponse, error) {
	var resp ReservationResponse
	if err := copier.CopyWithOption(&resp, v, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return &resp, nil
}

func FromReservationListItems(items []*queries.ReservationListItem) ([]*ReservationListResponse, error) {
	resp := make([]*ReservationListResponse, 0, len(items))
	if len(items) == 0 {
		return resp, nil
	}
	if err := copier.Copy(&resp, &items); err != nil {
		return nil, err
	}
	return resp, nil
}
