//go:build unit

package commands_test

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"concert-reservation/internal/domain/event"
	"concert-reservation/internal/domain/reservation"
	"concert-reservation/internal/infra"
	"concert-reservation/internal/infra/lock"
	"concert-reservation/internal/pkg/clock"
	"concert-reservation/internal/pkg/config"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/commands"
	"concert-reservation/tests/common/fakes"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const scheduleID int64 = 1

type MockCommittedHandler struct {
	mock.Mock
}

func (m *MockCommittedHandler) OnReservationCommitted(ctx context.Context, evt event.ReservationCommitted) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

type ReservationCommandsTestSuite struct {
	suite.Suite
	ctx       context.Context
	clock     *clock.MockClock
	db        *fakes.Store
	locker    *lock.MemoryLocker
	committed *MockCommittedHandler
	cfg       config.ReservationConfig
	cmds      commands.ReservationCommands
	accountID uuid.UUID
}

func (s *ReservationCommandsTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewMockClock(baseTime)
	s.db = fakes.NewStore()
	s.db.AddSeats(scheduleID, 1, 2, 3, 4, 5, 6, 7, 8)
	s.accountID = uuid.New()
	s.db.AddAccount(s.accountID, "booker", 10_000)
	s.locker = lock.NewMemoryLocker()
	s.committed = new(MockCommittedHandler)
	s.cfg = config.NewTestConfig().Reservation
	s.rebuild()
}

func (s *ReservationCommandsTestSuite) rebuild() {
	s.cmds = commands.NewReservationCommands(s.db, s.locker, s.committed, s.cfg, s.clock, slog.New(slog.DiscardHandler))
}

func TestReservationCommandsSuite(t *testing.T) {
	suite.Run(t, new(ReservationCommandsTestSuite))
}

func (s *ReservationCommandsTestSuite) command(strategy reservation.LockStrategy, price int64, seats ...int64) commands.ReserveCommand {
	sel, err := reservation.NewSeatSelection(scheduleID, seats)
	s.Require().NoError(err)
	p, err := reservation.NewPoints(price)
	s.Require().NoError(err)
	return commands.ReserveCommand{AccountID: s.accountID, Selection: sel, Price: p, Strategy: strategy}
}

func (s *ReservationCommandsTestSuite) TestReserve_Success() {
	s.committed.On("OnReservationCommitted", mock.Anything, mock.MatchedBy(func(e event.ReservationCommitted) bool {
		return e.AccountID == s.accountID && e.Price == 4000 && e.PaymentID != 0
	})).Return(nil).Once()

	res, err := s.cmds.Reserve(s.ctx, s.command(reservation.LockReadExclusive, 4000, 2, 1))

	s.Require().NoError(err)
	s.Equal(reservation.StatusActive, res.Status())
	s.Equal(reservation.PaymentNotPaid, res.PaymentStatus())
	s.Equal([]int64{1, 2}, res.Selection().SeatIDs())
	s.Equal(baseTime, res.CreatedAt())
	s.Equal(1, s.db.HeldSeats(1))
	s.Equal(1, s.db.HeldSeats(2))
	s.Equal(int32(1), s.db.LockForUpdateCalls.Load())
	s.committed.AssertExpectations(s.T())
}

func (s *ReservationCommandsTestSuite) TestReserve_ExactlyOneWinnerPerStrategy() {
	strategies := []reservation.LockStrategy{
		reservation.LockNone,
		reservation.LockReadExclusive,
		reservation.LockDistributed,
	}
	for _, strategy := range strategies {
		s.Run(strategy.String(), func() {
			s.SetupTest()
			s.committed.On("OnReservationCommitted", mock.Anything, mock.Anything).Return(nil)

			var (
				wg        sync.WaitGroup
				successes atomic.Int32
				conflicts atomic.Int32
			)
			for range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.cmds.Reserve(s.ctx, s.command(strategy, 1000, 5, 8))
					switch {
					case err == nil:
						successes.Add(1)
					case errs.Is(err, errs.ErrConflict):
						conflicts.Add(1)
					}
				}()
			}
			wg.Wait()

			s.Equal(int32(1), successes.Load())
			s.Equal(int32(19), conflicts.Load())
			s.Equal(1, s.db.HeldSeats(5))
			s.Equal(1, s.db.ReservationCount())
		})
	}
}

func (s *ReservationCommandsTestSuite) TestReserve_Errors() {
	tests := []struct {
		name     string
		cmd      func() commands.ReserveCommand
		category error
		sentinel error
	}{
		{
			name: "unknown account",
			cmd: func() commands.ReserveCommand {
				c := s.command(reservation.LockNone, 100, 1)
				c.AccountID = uuid.New()
				return c
			},
			category: errs.ErrNotFound,
			sentinel: commands.ErrAccountNotFound,
		},
		{
			name:     "seat outside schedule",
			cmd:      func() commands.ReserveCommand { return s.command(reservation.LockNone, 100, 1, 99) },
			category: errs.ErrNotFound,
			sentinel: commands.ErrSeatsNotFound,
		},
		{
			name: "unknown strategy",
			cmd: func() commands.ReserveCommand {
				c := s.command(reservation.LockNone, 100, 1)
				c.Strategy = reservation.LockStrategy(42)
				return c
			},
			category: errs.ErrInvalidArgument,
			sentinel: commands.ErrInvalidReservation,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.cmds.Reserve(s.ctx, tt.cmd())
			s.True(errs.Is(err, tt.category), "got %v", err)
			s.True(errs.Is(err, tt.sentinel), "got %v", err)
		})
	}
	s.committed.AssertNotCalled(s.T(), "OnReservationCommitted", mock.Anything, mock.Anything)
}

func (s *ReservationCommandsTestSuite) TestReserve_PartialOverlapCommitsNothing() {
	s.committed.On("OnReservationCommitted", mock.Anything, mock.Anything).Return(nil)
	_, err := s.cmds.Reserve(s.ctx, s.command(reservation.LockNone, 100, 2))
	s.Require().NoError(err)

	_, err = s.cmds.Reserve(s.ctx, s.command(reservation.LockNone, 100, 1, 2, 3))
	s.True(errs.Is(err, commands.ErrSeatsUnavailable))
	s.Zero(s.db.HeldSeats(1))
	s.Zero(s.db.HeldSeats(3))
}

func (s *ReservationCommandsTestSuite) TestReserve_DistributedLockReleasedAfterFailure() {
	s.db.AllocateErr = infra.WrapRepoErr(nil, infra.KindDBFailure, "boom", nil)
	cmd := s.command(reservation.LockDistributed, 100, 1)

	_, err := s.cmds.Reserve(s.ctx, cmd)
	s.True(errs.Is(err, errs.ErrTransientFailure), "got %v", err)

	h, err := s.locker.TryAcquire(s.ctx, cmd.Selection.LockKey(), 0)
	s.Require().NoError(err, "lock must be free after a failed allocation")
	s.Require().NoError(h.Release(s.ctx))
}

func (s *ReservationCommandsTestSuite) TestReserve_DistributedLockTimeout() {
	s.cfg.LockWait = 20 * time.Millisecond
	s.rebuild()
	cmd := s.command(reservation.LockDistributed, 100, 1)

	held, err := s.locker.TryAcquire(s.ctx, cmd.Selection.LockKey(), 0)
	s.Require().NoError(err)
	defer func() { _ = held.Release(s.ctx) }()

	_, err = s.cmds.Reserve(s.ctx, cmd)
	s.True(errs.Is(err, errs.ErrLockTimeout), "got %v", err)
	s.Zero(s.db.ReservationCount())
}

func (s *ReservationCommandsTestSuite) TestReserve_LockNotHeldDuringCompensation() {
	cmd := s.command(reservation.LockDistributed, 100, 1)
	var lockFree bool
	s.committed.On("OnReservationCommitted", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			h, err := s.locker.TryAcquire(s.ctx, cmd.Selection.LockKey(), 0)
			if err == nil {
				lockFree = true
				_ = h.Release(s.ctx)
			}
		}).
		Return(nil).Once()

	_, err := s.cmds.Reserve(s.ctx, cmd)
	s.Require().NoError(err)
	s.True(lockFree)
}

func (s *ReservationCommandsTestSuite) TestReserve_CompensationErrorReachesCaller() {
	debitErr := errs.Mark(errs.New("ledger down"), errs.ErrTransientFailure)
	s.committed.On("OnReservationCommitted", mock.Anything, mock.Anything).Return(debitErr).Once()

	res, err := s.cmds.Reserve(s.ctx, s.command(reservation.LockNone, 100, 4))

	s.Nil(res)
	s.True(errs.Is(err, errs.ErrTransientFailure))
	// forward recovery only: the reservation stays committed
	s.Equal(1, s.db.ReservationCount())
	s.Equal(1, s.db.HeldSeats(4))
}

func (s *ReservationCommandsTestSuite) TestExpireUnpaid() {
	s.committed.On("OnReservationCommitted", mock.Anything, mock.Anything).Return(nil)

	var ids []int64
	for _, seat := range []int64{1, 2, 3} {
		res, err := s.cmds.Reserve(s.ctx, s.command(reservation.LockNone, 100, seat))
		s.Require().NoError(err)
		ids = append(ids, res.ID())
	}
	s.db.MarkPaid(ids[1])

	// inside the window nothing is cancelled
	s.clock.Add(s.cfg.UnpaidWindow)
	cancelled, err := s.cmds.ExpireUnpaid(s.ctx)
	s.Require().NoError(err)
	s.Empty(cancelled)

	s.clock.Add(time.Second)
	cancelled, err = s.cmds.ExpireUnpaid(s.ctx)
	s.Require().NoError(err)
	s.Equal([]int64{ids[0], ids[2]}, cancelled)

	s.Equal(reservation.StatusCancelled, s.db.Reservation(ids[0]).Status())
	s.Equal(reservation.StatusActive, s.db.Reservation(ids[1]).Status())
	s.Zero(s.db.HeldSeats(1))
	s.Equal(1, s.db.HeldSeats(2))

	cancelled, err = s.cmds.ExpireUnpaid(s.ctx)
	s.Require().NoError(err)
	s.Empty(cancelled)
}

func (s *ReservationCommandsTestSuite) TestExpireUnpaid_BatchIsOldestFirst() {
	s.cfg.ExpireBatchSize = 2
	s.rebuild()
	s.committed.On("OnReservationCommitted", mock.Anything, mock.Anything).Return(nil)

	var ids []int64
	for _, seat := range []int64{1, 2, 3} {
		res, err := s.cmds.Reserve(s.ctx, s.command(reservation.LockNone, 100, seat))
		s.Require().NoError(err)
		ids = append(ids, res.ID())
	}
	s.clock.Add(s.cfg.UnpaidWindow + time.Second)

	cancelled, err := s.cmds.ExpireUnpaid(s.ctx)
	s.Require().NoError(err)
	s.Equal(ids[:2], cancelled)

	cancelled, err = s.cmds.ExpireUnpaid(s.ctx)
	s.Require().NoError(err)
	s.Equal(ids[2:], cancelled)
}

func (s *ReservationCommandsTestSuite) TestExpireUnpaid_PaidReservationsDoNotFillTheBatch() {
	s.cfg.ExpireBatchSize = 2
	s.rebuild()
	s.committed.On("OnReservationCommitted", mock.Anything, mock.Anything).Return(nil)

	var ids []int64
	for _, seat := range []int64{1, 2, 3} {
		res, err := s.cmds.Reserve(s.ctx, s.command(reservation.LockNone, 100, seat))
		s.Require().NoError(err)
		ids = append(ids, res.ID())
	}
	s.db.MarkPaid(ids[0])
	s.db.MarkPaid(ids[1])
	s.clock.Add(s.cfg.UnpaidWindow + time.Second)

	cancelled, err := s.cmds.ExpireUnpaid(s.ctx)
	s.Require().NoError(err)
	s.Equal([]int64{ids[2]}, cancelled)

	s.Equal(reservation.StatusCancelled, s.db.Reservation(ids[2]).Status())
	s.Equal(reservation.StatusActive, s.db.Reservation(ids[0]).Status())
	s.Equal(reservation.StatusActive, s.db.Reservation(ids[1]).Status())
	s.Zero(s.db.HeldSeats(3))
}
