//go:build unit || e2e

package fakes

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"concert-reservation/internal/domain/account"
	"concert-reservation/internal/domain/reservation"
	"concert-reservation/internal/infra"
	"concert-reservation/internal/usecase/shared"

	"github.com/google/uuid"
)

type accountRow struct {
	name    string
	balance int64
}

type allocationRow struct {
	seatID        int64
	reservationID int64
	released      bool
}

type PaymentRow struct {
	ReservationID int64
	AccountID     uuid.UUID
	Amount        int64
	Status        string
	Reason        string
}

type state struct {
	accounts     map[uuid.UUID]accountRow
	seats        map[int64]int64 // seat id -> schedule id
	reservations map[int64]*reservation.Reservation
	allocations  []allocationRow
	payments     map[int64]PaymentRow
	references   map[string]bool
	nextID       int64
}

func (s state) clone() state {
	return state{
		accounts:     maps.Clone(s.accounts),
		seats:        maps.Clone(s.seats),
		reservations: maps.Clone(s.reservations),
		allocations:  slices.Clone(s.allocations),
		payments:     maps.Clone(s.payments),
		references:   maps.Clone(s.references),
		nextID:       s.nextID,
	}
}

// Store is an in-memory UnitOfWork. Transactions run one at a time and roll back
// to a snapshot on error; commit hooks run after the store is unlocked.
type Store struct {
	mu    sync.Mutex
	state state

	// AllocateErr, when set, is returned by Seats().Allocate.
	AllocateErr error

	LockForUpdateCalls atomic.Int32
	Commits            atomic.Int32
}

func NewStore() *Store {
	return &Store{state: state{
		accounts:     map[uuid.UUID]accountRow{},
		seats:        map[int64]int64{},
		reservations: map[int64]*reservation.Reservation{},
		payments:     map[int64]PaymentRow{},
		references:   map[string]bool{},
	}}
}

func (s *Store) AddAccount(id uuid.UUID, name string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.accounts[id] = accountRow{name: name, balance: balance}
}

func (s *Store) AddSeats(scheduleID int64, seatIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range seatIDs {
		s.state.seats[id] = scheduleID
	}
}

func (s *Store) Balance(id uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.accounts[id].balance
}

func (s *Store) Reservation(id int64) *reservation.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.reservations[id]
}

func (s *Store) ReservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.reservations)
}

func (s *Store) Payment(id int64) (PaymentRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.payments[id]
	return p, ok
}

// HeldSeats counts unreleased allocations of the given seat.
func (s *Store) HeldSeats(seatID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.state.allocations {
		if a.seatID == seatID && !a.released {
			n++
		}
	}
	return n
}

// MarkPaid flips a reservation to PAID, as a completed payment would.
func (s *Store) MarkPaid(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.state.reservations[id]
	s.state.reservations[id] = reservation.ReconstructReservation(
		r.ID(), r.AccountID(), r.Selection(), r.Price(), reservation.PaymentPaid, r.Status(), r.CreatedAt())
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	snapshot := s.state.clone()
	tx := &fakeTx{store: s}

	if err := fn(ctx, tx); err != nil {
		s.state = snapshot
		s.mu.Unlock()
		return err
	}
	s.Commits.Add(1)
	s.mu.Unlock()

	var first error
	for _, hook := range tx.hooks {
		if err := hook(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type fakeTx struct {
	store *Store
	hooks []shared.CommitHook
}

func (t *fakeTx) Reservations() shared.ReservationRepository { return reservationRepo{t.store} }
func (t *fakeTx) Seats() shared.SeatRepository               { return seatRepo{t.store} }
func (t *fakeTx) Accounts() shared.AccountRepository         { return accountRepo{t.store} }
func (t *fakeTx) Payments() shared.PaymentRepository         { return paymentRepo{t.store} }
func (t *fakeTx) AfterCommit(hook shared.CommitHook)         { t.hooks = append(t.hooks, hook) }

func notFound(msg string) error {
	return infra.WrapRepoErr(nil, infra.KindNotFound, msg, nil)
}

// Repositories below run with Store.mu held by Within.

type reservationRepo struct{ s *Store }

func (r reservationRepo) Create(_ context.Context, res *reservation.Reservation) (*reservation.Reservation, error) {
	if _, ok := r.s.state.accounts[res.AccountID()]; !ok {
		return nil, infra.WrapRepoErr(nil, infra.KindForeignKeyViolated, "account missing", nil)
	}
	r.s.state.nextID++
	saved := res.Persisted(r.s.state.nextID, res.CreatedAt())
	r.s.state.reservations[saved.ID()] = saved
	return saved, nil
}

func (r reservationRepo) FindByID(_ context.Context, id int64) (*reservation.Reservation, error) {
	res, ok := r.s.state.reservations[id]
	if !ok {
		return nil, notFound("reservation not found")
	}
	return res, nil
}

func (r reservationRepo) ListOldestUnpaid(_ context.Context, limit int) ([]*reservation.Reservation, error) {
	ids := slices.Sorted(maps.Keys(r.s.state.reservations))
	var out []*reservation.Reservation
	for _, id := range ids {
		res := r.s.state.reservations[id]
		if res.Status() != reservation.StatusActive || res.PaymentStatus() != reservation.PaymentNotPaid {
			continue
		}
		out = append(out, res)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r reservationRepo) Cancel(_ context.Context, id int64) (bool, error) {
	res, ok := r.s.state.reservations[id]
	if !ok || res.Status() != reservation.StatusActive {
		return false, nil
	}
	cancelled, err := res.Cancelled()
	if err != nil {
		return false, nil
	}
	r.s.state.reservations[id] = cancelled
	return true, nil
}

type seatRepo struct{ s *Store }

func (r seatRepo) held(seatID int64) bool {
	for _, a := range r.s.state.allocations {
		if a.seatID == seatID && !a.released {
			return true
		}
	}
	return false
}

func (r seatRepo) FindUnallocated(_ context.Context, sel reservation.SeatSelection) ([]int64, error) {
	var free []int64
	for _, id := range sel.SeatIDs() {
		if r.s.state.seats[id] != sel.ScheduleID() {
			return nil, notFound("seat not found")
		}
		if !r.held(id) {
			free = append(free, id)
		}
	}
	return free, nil
}

func (r seatRepo) LockForUpdate(context.Context, reservation.SeatSelection, time.Duration) error {
	r.s.LockForUpdateCalls.Add(1)
	return nil
}

func (r seatRepo) Allocate(_ context.Context, reservationID int64, sel reservation.SeatSelection) error {
	if r.s.AllocateErr != nil {
		return r.s.AllocateErr
	}
	for _, id := range sel.SeatIDs() {
		if r.held(id) {
			return infra.WrapRepoErr(nil, infra.KindDuplicateKey, "seat already allocated", nil)
		}
		r.s.state.allocations = append(r.s.state.allocations, allocationRow{seatID: id, reservationID: reservationID})
	}
	return nil
}

func (r seatRepo) Release(_ context.Context, reservationID int64, _ time.Time) (int64, error) {
	var n int64
	for i, a := range r.s.state.allocations {
		if a.reservationID == reservationID && !a.released {
			r.s.state.allocations[i].released = true
			n++
		}
	}
	return n, nil
}

type accountRepo struct{ s *Store }

func (r accountRepo) FindByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	row, ok := r.s.state.accounts[id]
	if !ok {
		return nil, notFound("account not found")
	}
	return account.ReconstructAccount(id, row.name, row.balance, time.Time{}), nil
}

func (r accountRepo) DebitPoints(_ context.Context, id uuid.UUID, amount int64) (int64, error) {
	row, ok := r.s.state.accounts[id]
	if !ok {
		return 0, notFound("account not found")
	}
	if row.balance < amount {
		return 0, infra.WrapRepoErr(nil, infra.KindCheckViolated, "insufficient point balance", account.ErrInsufficientPoints)
	}
	row.balance -= amount
	r.s.state.accounts[id] = row
	return row.balance, nil
}

func (r accountRepo) CreditPoints(_ context.Context, id uuid.UUID, amount int64) (int64, error) {
	row, ok := r.s.state.accounts[id]
	if !ok {
		return 0, notFound("account not found")
	}
	row.balance += amount
	r.s.state.accounts[id] = row
	return row.balance, nil
}

func (r accountRepo) RecordTransaction(_ context.Context, id uuid.UUID, reference string, _ int64) (bool, error) {
	if _, ok := r.s.state.accounts[id]; !ok {
		return false, infra.WrapRepoErr(nil, infra.KindForeignKeyViolated, "account missing", nil)
	}
	if r.s.state.references[reference] {
		return false, nil
	}
	r.s.state.references[reference] = true
	return true, nil
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) CreatePending(_ context.Context, reservationID int64, accountID uuid.UUID, amount int64) (int64, error) {
	r.s.state.nextID++
	id := r.s.state.nextID
	r.s.state.payments[id] = PaymentRow{ReservationID: reservationID, AccountID: accountID, Amount: amount, Status: "PENDING"}
	return id, nil
}

func (r paymentRepo) MarkFailed(_ context.Context, paymentID int64, reason string) (bool, error) {
	p, ok := r.s.state.payments[paymentID]
	if !ok || p.Status != "PENDING" {
		return false, nil
	}
	p.Status = "FAILED"
	p.Reason = reason
	r.s.state.payments[paymentID] = p
	return true, nil
}

// AccountFinder reads accounts outside of a transaction.
type AccountFinder struct{ s *Store }

func (s *Store) AccountFinder() AccountFinder { return AccountFinder{s: s} }

func (f AccountFinder) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return accountRepo{f.s}.FindByID(ctx, id)
}
