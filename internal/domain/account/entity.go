package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidAmount      = errors.New("point amount must be positive")
)

// Account is the booking customer as the reservation core sees it: an identity and a point balance.
type Account struct {
	id           uuid.UUID
	name         string
	pointBalance int64
	createdAt    time.Time
}

func ReconstructAccount(id uuid.UUID, name string, pointBalance int64, createdAt time.Time) *Account {
	return &Account{
		id:           id,
		name:         name,
		pointBalance: pointBalance,
		createdAt:    createdAt,
	}
}

func (a *Account) ID() uuid.UUID        { return a.id }
func (a *Account) Name() string         { return a.name }
func (a *Account) PointBalance() int64  { return a.pointBalance }
func (a *Account) CreatedAt() time.Time { return a.createdAt }

// CanAfford reports whether a debit of amount would keep the balance non-negative.
func (a *Account) CanAfford(amount int64) bool {
	return amount >= 0 && a.pointBalance >= amount
}

func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
