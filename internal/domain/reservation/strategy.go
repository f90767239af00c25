package reservation

import (
	"errors"
	"strings"
)

var ErrUnknownLockStrategy = errors.New("unknown lock strategy")

// LockStrategy selects how concurrent allocations of the same seats are serialized.
type LockStrategy int

const (
	// LockNone relies on the seat allocation unique constraint alone.
	LockNone LockStrategy = iota
	// LockReadExclusive takes row locks on the targeted seats for the transaction.
	LockReadExclusive
	// LockDistributed serializes on an external lock keyed by the concert schedule.
	LockDistributed
)

var strategyNames = map[LockStrategy]string{
	LockNone:          "none",
	LockReadExclusive: "read_exclusive",
	LockDistributed:   "distributed",
}

func (s LockStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s LockStrategy) IsValid() bool {
	_, ok := strategyNames[s]
	return ok
}

// ParseLockStrategy accepts the lower-case names and the upper-case enum spelling.
// An empty string selects LockNone.
func ParseLockStrategy(raw string) (LockStrategy, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return LockNone, nil
	}
	for s, name := range strategyNames {
		if name == normalized {
			return s, nil
		}
	}
	return LockNone, ErrUnknownLockStrategy
}
