package reservation

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEmptySelection    = errors.New("seat selection is empty")
	ErrDuplicateSeat     = errors.New("seat selected more than once")
	ErrInvalidSeatID     = errors.New("invalid seat id")
	ErrInvalidScheduleID = errors.New("invalid concert schedule id")
	ErrNegativePrice     = errors.New("price cannot be negative")
)

// SeatSelection is a set of seats within one concert schedule.
type SeatSelection struct {
	scheduleID int64
	seatIDs    []int64
}

// NewSeatSelection validates and sorts the seat ids. Sorted order keeps row locks
// acquired in a stable order across transactions.
func NewSeatSelection(scheduleID int64, seatIDs []int64) (SeatSelection, error) {
	if scheduleID <= 0 {
		return SeatSelection{}, ErrInvalidScheduleID
	}
	if len(seatIDs) == 0 {
		return SeatSelection{}, ErrEmptySelection
	}
	sorted := slices.Clone(seatIDs)
	slices.Sort(sorted)
	for i, id := range sorted {
		if id <= 0 {
			return SeatSelection{}, ErrInvalidSeatID
		}
		if i > 0 && sorted[i-1] == id {
			return SeatSelection{}, ErrDuplicateSeat
		}
	}
	return SeatSelection{scheduleID: scheduleID, seatIDs: sorted}, nil
}

func (s SeatSelection) ScheduleID() int64 { return s.scheduleID }
func (s SeatSelection) SeatIDs() []int64  { return slices.Clone(s.seatIDs) }
func (s SeatSelection) Len() int          { return len(s.seatIDs) }

// LockKey names the external lock guarding every seat of the schedule.
func (s SeatSelection) LockKey() string {
	return fmt.Sprintf("reservation:schedule:%d", s.scheduleID)
}

// Points is an amount in the service's point currency.
type Points struct {
	amount int64
}

func NewPoints(amount int64) (Points, error) {
	if amount < 0 {
		return Points{}, ErrNegativePrice
	}
	return Points{amount: amount}, nil
}

func (p Points) Int64() int64 {
	return p.amount
}
