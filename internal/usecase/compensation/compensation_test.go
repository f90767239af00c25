//go:build unit

package compensation_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"concert-reservation/internal/domain/account"
	"concert-reservation/internal/domain/event"
	"concert-reservation/internal/domain/reservation"
	"concert-reservation/internal/infra/eventbus"
	"concert-reservation/internal/infra/ledger"
	"concert-reservation/internal/infra/lock"
	"concert-reservation/internal/pkg/clock"
	"concert-reservation/internal/pkg/config"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/commands"
	"concert-reservation/internal/usecase/compensation"
	"concert-reservation/tests/common/fakes"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Debit(ctx context.Context, accountID uuid.UUID, reference string, amount int64) error {
	return m.Called(ctx, accountID, reference, amount).Error(0)
}

func (m *MockLedger) Charge(ctx context.Context, accountID uuid.UUID, reference string, amount int64) (int64, error) {
	args := m.Called(ctx, accountID, reference, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedger) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

type recordingPublisher struct {
	events []event.PaymentRecover
	err    error
}

func (p *recordingPublisher) PublishRecover(_ context.Context, evt event.PaymentRecover) error {
	p.events = append(p.events, evt)
	return p.err
}

func TestCoordinator_OnReservationCommitted(t *testing.T) {
	committed := event.ReservationCommitted{
		ReservationID: 11,
		PaymentID:     12,
		AccountID:     uuid.New(),
		Price:         4000,
	}

	tests := []struct {
		name         string
		debitErr     error
		publishErr   error
		wantEvents   int
		wantReason   string
		wantCategory error
	}{
		{
			name: "debit succeeds",
		},
		{
			name:         "insufficient points",
			debitErr:     errs.Mark(errs.Wrap(account.ErrInsufficientPoints, "debit"), errs.ErrConflict),
			wantEvents:   1,
			wantReason:   compensation.ReasonInsufficientPoints,
			wantCategory: errs.ErrConflict,
		},
		{
			name:         "ledger unavailable",
			debitErr:     errs.New("connection refused"),
			wantEvents:   1,
			wantReason:   compensation.ReasonDebitFailed,
			wantCategory: errs.ErrTransientFailure,
		},
		{
			name:         "publish fails too",
			debitErr:     errs.New("connection refused"),
			publishErr:   errs.New("redis down"),
			wantEvents:   1,
			wantReason:   compensation.ReasonDebitFailed,
			wantCategory: errs.ErrTransientFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledgerMock := new(MockLedger)
			ledgerMock.On("Debit", mock.Anything, committed.AccountID, "reservation:11", int64(4000)).
				Return(tt.debitErr).Once()
			publisher := &recordingPublisher{err: tt.publishErr}
			c := compensation.NewCoordinator(ledgerMock, publisher, clock.NewMockClock(now), slog.New(slog.DiscardHandler))

			err := c.OnReservationCommitted(context.Background(), committed)

			require.Len(t, publisher.events, tt.wantEvents)
			if tt.wantCategory == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errs.Is(err, tt.wantCategory), "got %v", err)

			want := event.PaymentRecover{
				ReservationID: 11,
				PaymentID:     12,
				AccountID:     committed.AccountID,
				Reason:        tt.wantReason,
				OccurredAt:    now,
			}
			if diff := cmp.Diff(want, publisher.events[0]); diff != "" {
				t.Errorf("PaymentRecover mismatch (-want +got):\n%s", diff)
			}
			ledgerMock.AssertExpectations(t)
		})
	}
}

func TestCoordinator_PublishesWithCancelledRequestContext(t *testing.T) {
	ledgerMock := new(MockLedger)
	ledgerMock.On("Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errs.New("boom"))

	var published context.Context
	bus := eventbus.NewMemoryBus(slog.New(slog.DiscardHandler))
	bus.Subscribe(func(ctx context.Context, _ event.PaymentRecover) error {
		published = ctx
		return nil
	})
	c := compensation.NewCoordinator(ledgerMock, bus, clock.NewMockClock(now), slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.OnReservationCommitted(ctx, event.ReservationCommitted{ReservationID: 1, PaymentID: 2, AccountID: uuid.New(), Price: 1})

	require.Error(t, err)
	require.NotNil(t, published)
	assert.NoError(t, published.Err())
}

// End to end through the in-memory stack: a reservation whose debit fails is
// cancelled by the recovery consumer and its seats become free again.
func TestCompensationFlow_DebitFailureCancelsReservation(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	clk := clock.NewMockClock(now)
	db := fakes.NewStore()
	db.AddSeats(1, 1, 2)
	poor := uuid.New()
	db.AddAccount(poor, "poor", 100)

	bus := eventbus.NewMemoryBus(logger)
	recovery := compensation.NewRecovery(db, clk, logger)
	bus.Subscribe(recovery.HandlePaymentRecover)
	coordinator := compensation.NewCoordinator(ledger.NewPostgresLedger(db, logger), bus, clk, logger)
	reservations := commands.NewReservationCommands(db, lock.NewMemoryLocker(), coordinator,
		config.NewTestConfig().Reservation, clk, logger)

	sel, err := reservation.NewSeatSelection(1, []int64{1, 2})
	require.NoError(t, err)
	price, err := reservation.NewPoints(4000)
	require.NoError(t, err)

	_, err = reservations.Reserve(ctx, commands.ReserveCommand{
		AccountID: poor, Selection: sel, Price: price, Strategy: reservation.LockDistributed,
	})

	require.Error(t, err)
	assert.True(t, errs.Is(err, account.ErrInsufficientPoints))
	assert.Equal(t, int64(100), db.Balance(poor))
	assert.Zero(t, db.HeldSeats(1))
	assert.Zero(t, db.HeldSeats(2))

	// reservation id 1, payment id 2 in the fake's shared sequence
	assert.Equal(t, reservation.StatusCancelled, db.Reservation(1).Status())
	payment, ok := db.Payment(2)
	require.True(t, ok)
	assert.Equal(t, "FAILED", payment.Status)
	assert.Equal(t, compensation.ReasonInsufficientPoints, payment.Reason)
}

func TestRecovery_Idempotent(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	clk := clock.NewMockClock(now)
	db := fakes.NewStore()
	db.AddSeats(1, 7)
	accountID := uuid.New()
	db.AddAccount(accountID, "a", 0)

	reservations := commands.NewReservationCommands(db, lock.NewMemoryLocker(), nil,
		config.NewTestConfig().Reservation, clk, logger)
	sel, err := reservation.NewSeatSelection(1, []int64{7})
	require.NoError(t, err)
	res, err := reservations.Reserve(ctx, commands.ReserveCommand{AccountID: accountID, Selection: sel, Strategy: reservation.LockNone})
	require.NoError(t, err)

	recovery := compensation.NewRecovery(db, clk, logger)
	evt := event.PaymentRecover{ReservationID: res.ID(), PaymentID: res.ID() + 1, AccountID: accountID, Reason: "x"}
	for range 3 {
		require.NoError(t, recovery.HandlePaymentRecover(ctx, evt))
	}

	assert.Equal(t, reservation.StatusCancelled, db.Reservation(res.ID()).Status())
	assert.Zero(t, db.HeldSeats(7))
	payment, ok := db.Payment(res.ID() + 1)
	require.True(t, ok)
	assert.Equal(t, "FAILED", payment.Status)
}
