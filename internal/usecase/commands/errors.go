package commands

import "concert-reservation/internal/pkg/errs"

var (
	ErrAccountNotFound    = errs.New("account not found")
	ErrAlreadyQueued      = errs.New("account already holds a live queue token")
	ErrTokenNotFound      = errs.New("queue token not found")
	ErrTokenNotUsable     = errs.New("queue token is not active")
	ErrTokenNotOwned      = errs.New("queue token belongs to another account")
	ErrRenewRejected      = errs.New("queue token deadline could not be renewed")
	ErrReleaseContended   = errs.New("queue token kept changing during release")
	ErrSeatsUnavailable   = errs.New("one or more seats are already reserved")
	ErrSeatsNotFound      = errs.New("one or more seats do not exist in the schedule")
	ErrInvalidReservation = errs.New("invalid reservation request")
)

// fail attaches both the command-level sentinel and the caller-facing category.
func fail(err, sentinel, category error) error {
	if err == nil {
		err = sentinel
	}
	return errs.Mark(errs.Mark(err, sentinel), category)
}
