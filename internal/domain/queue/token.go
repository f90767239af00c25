package queue

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid token status transition")
	ErrTokenNotActive    = errors.New("token is not active")
	ErrInvalidTokenID    = errors.New("invalid token id")
)

// Token is an account's ticket through the admission queue.
type Token struct {
	id        string
	accountID uuid.UUID
	status    Status
	deadline  time.Time
	createdAt time.Time
}

// NewToken issues a WAIT token. The id is random and carries no account information.
func NewToken(accountID uuid.UUID, now time.Time) *Token {
	return &Token{
		id:        strings.ReplaceAll(uuid.NewString(), "-", ""),
		accountID: accountID,
		status:    StatusWait,
		createdAt: now,
	}
}

func ReconstructToken(id string, accountID uuid.UUID, status Status, deadline, createdAt time.Time) *Token {
	return &Token{
		id:        id,
		accountID: accountID,
		status:    status,
		deadline:  deadline,
		createdAt: createdAt,
	}
}

func ValidateTokenID(id string) error {
	if len(id) != 32 {
		return ErrInvalidTokenID
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return ErrInvalidTokenID
		}
	}
	return nil
}

func (t *Token) ID() string           { return t.id }
func (t *Token) AccountID() uuid.UUID { return t.accountID }
func (t *Token) Status() Status       { return t.status }
func (t *Token) Deadline() time.Time  { return t.deadline }
func (t *Token) CreatedAt() time.Time { return t.createdAt }

// IsUsableAt is true only for an ACTIVE token whose deadline has not passed.
func (t *Token) IsUsableAt(now time.Time) bool {
	return t.status == StatusActive && !now.After(t.deadline)
}

// IsOverdueAt is true for an ACTIVE token whose deadline plus grace lies before now.
func (t *Token) IsOverdueAt(now time.Time, grace time.Duration) bool {
	return t.status == StatusActive && t.deadline.Add(grace).Before(now)
}

// Transition is a compare-and-set request: it applies only while the token is still in From.
type Transition struct {
	TokenID  string
	From     Status
	To       Status
	Deadline time.Time
}

func (t *Token) transition(to Status, deadline time.Time) (Transition, error) {
	if !t.status.CanTransitionTo(to) {
		return Transition{}, ErrInvalidTransition
	}
	return Transition{TokenID: t.id, From: t.status, To: to, Deadline: deadline}, nil
}

// Promote moves a WAIT token to ACTIVE with a deadline window from now.
func (t *Token) Promote(now time.Time, window time.Duration) (Transition, error) {
	if t.status != StatusWait {
		return Transition{}, ErrInvalidTransition
	}
	return t.transition(StatusActive, now.Add(window))
}

// Renew pushes an ACTIVE token's deadline to now plus window.
func (t *Token) Renew(now time.Time, window time.Duration) (Transition, error) {
	if t.status != StatusActive {
		return Transition{}, ErrTokenNotActive
	}
	return t.transition(StatusActive, now.Add(window))
}

// Expire ends a live token. The deadline is cleared.
func (t *Token) Expire() (Transition, error) {
	return t.transition(StatusExpired, time.Time{})
}

// Apply returns the token as it looks after tr. The receiver is not modified.
func (t *Token) Apply(tr Transition) (*Token, error) {
	if tr.TokenID != t.id || tr.From != t.status || !tr.From.CanTransitionTo(tr.To) {
		return nil, ErrInvalidTransition
	}
	next := *t
	next.status = tr.To
	next.deadline = tr.Deadline
	return &next, nil
}
