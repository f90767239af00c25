//go:build unit

package commands_test

import (
	"context"
	"log/slog"
	"testing"

	"concert-reservation/internal/domain/reservation"
	"concert-reservation/internal/infra/lock"
	"concert-reservation/internal/infra/queuestore"
	"concert-reservation/internal/pkg/clock"
	"concert-reservation/internal/pkg/config"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/commands"
	"concert-reservation/tests/common/fakes"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	clock   *clock.MockClock
	db      *fakes.Store
	store   *queuestore.MemoryStore
	queue   commands.AdmissionQueue
	booking commands.BookingCommands
	cfg     config.Config
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	f := &bookingFixture{
		clock: clock.NewMockClock(baseTime),
		db:    fakes.NewStore(),
		store: queuestore.NewMemoryStore(logger),
		cfg:   config.NewTestConfig(),
	}
	f.db.AddSeats(scheduleID, 1, 2, 3)

	committed := new(MockCommittedHandler)
	committed.On("OnReservationCommitted", mock.Anything, mock.Anything).Return(nil)

	f.queue = commands.NewAdmissionQueue(f.store, f.db.AccountFinder(), f.cfg.Queue, f.clock, logger)
	reservations := commands.NewReservationCommands(f.db, lock.NewMemoryLocker(), committed, f.cfg.Reservation, f.clock, logger)
	f.booking = commands.NewBookingCommands(f.queue, reservations, logger)
	return f
}

func (f *bookingFixture) activeToken(t *testing.T, accountID uuid.UUID) string {
	t.Helper()
	ctx := context.Background()
	f.db.AddAccount(accountID, "booker", 10_000)
	tok, err := f.queue.Admit(ctx, accountID)
	require.NoError(t, err)
	_, err = f.queue.Sweep(ctx)
	require.NoError(t, err)
	return tok.ID()
}

func reserveCommand(t *testing.T, accountID uuid.UUID, seats ...int64) commands.ReserveCommand {
	t.Helper()
	sel, err := reservation.NewSeatSelection(scheduleID, seats)
	require.NoError(t, err)
	price, err := reservation.NewPoints(4000)
	require.NoError(t, err)
	return commands.ReserveCommand{AccountID: accountID, Selection: sel, Price: price, Strategy: reservation.LockReadExclusive}
}

func TestMakeReservation_RenewsTokenDeadline(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	accountID := uuid.New()
	tokenID := f.activeToken(t, accountID)

	f.clock.Add(3 * f.cfg.Queue.ActiveWindow / 5)
	res, err := f.booking.MakeReservation(ctx, tokenID, reserveCommand(t, accountID, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, res.Selection().SeatIDs())

	tok, err := f.store.Get(ctx, tokenID)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(f.cfg.Queue.ActiveWindow), tok.Deadline())
}

func TestMakeReservation_RejectsUnusableTokens(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	tokenID := f.activeToken(t, owner)

	waitingAccount := uuid.New()
	f.db.AddAccount(waitingAccount, "late", 0)
	waiting, err := f.queue.Admit(ctx, waitingAccount)
	require.NoError(t, err)

	tests := []struct {
		name    string
		tokenID string
		account uuid.UUID
	}{
		{name: "token of another account", tokenID: tokenID, account: uuid.New()},
		{name: "waiting token", tokenID: waiting.ID(), account: waitingAccount},
		{name: "unknown token", tokenID: "ffffffffffffffffffffffffffffffff", account: owner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.booking.MakeReservation(ctx, tt.tokenID, reserveCommand(t, tt.account, 3))
			assert.True(t, errs.Is(err, errs.ErrUnauthorized), "got %v", err)
		})
	}
	assert.Zero(t, f.db.ReservationCount())
}
