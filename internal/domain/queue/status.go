package queue

type Status string

const (
	StatusWait    Status = "WAIT"
	StatusActive  Status = "ACTIVE"
	StatusExpired Status = "EXPIRED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusWait, StatusActive, StatusExpired:
		return true
	default:
		return false
	}
}

// IsLive reports whether a token in this status still occupies the account's single slot.
func (s Status) IsLive() bool {
	return s == StatusWait || s == StatusActive
}

// CanTransitionTo enforces the monotonic lifecycle WAIT -> ACTIVE -> EXPIRED.
// ACTIVE -> ACTIVE is the deadline renewal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusWait:
		return next == StatusActive || next == StatusExpired
	case StatusActive:
		return next == StatusActive || next == StatusExpired
	default:
		return false
	}
}
