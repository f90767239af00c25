//go:build unit || e2e

package builder

import (
	reqdto "concert-reservation/internal/handler/dto/request"
)

type ReservationBuilder struct {
	scheduleID int64
	seatIDs    []int64
	price      int64
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{
		scheduleID: 1,
		seatIDs:    []int64{1, 2},
		price:      4000,
	}
}

func (b *ReservationBuilder) WithSchedule(id int64) *ReservationBuilder {
	b.scheduleID = id
	return b
}

func (b *ReservationBuilder) WithSeats(ids ...int64) *ReservationBuilder {
	b.seatIDs = ids
	return b
}

func (b *ReservationBuilder) WithPrice(price int64) *ReservationBuilder {
	b.price = price
	return b
}

func (b *ReservationBuilder) BuildCreateRequestDTO() reqdto.CreateReservationRequest {
	return reqdto.CreateReservationRequest{
		ScheduleID: b.scheduleID,
		SeatIDs:    append([]int64(nil), b.seatIDs...),
		Price:      b.price,
	}
}
