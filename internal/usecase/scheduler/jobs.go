package scheduler

import (
	"context"
	"time"

	"concert-reservation/internal/usecase/commands"
)

const (
	JobQueueSweep        = "queue-sweep"
	JobReservationExpiry = "reservation-expiry"
)

func QueueSweepJob(queue commands.AdmissionQueue, interval time.Duration) Job {
	return Job{
		Name:     JobQueueSweep,
		Interval: interval,
		Run: func(ctx context.Context) (any, error) {
			return queue.Sweep(ctx)
		},
	}
}

type expiryResult struct {
	Cancelled []int64 `json:"cancelled"`
}

func ReservationExpiryJob(reservations commands.ReservationCommands, interval time.Duration) Job {
	return Job{
		Name:     JobReservationExpiry,
		Interval: interval,
		Run: func(ctx context.Context) (any, error) {
			ids, err := reservations.ExpireUnpaid(ctx)
			if err != nil {
				return nil, err
			}
			return expiryResult{Cancelled: ids}, nil
		},
	}
}
