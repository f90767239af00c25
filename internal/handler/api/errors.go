package api

import "concert-reservation/internal/pkg/errs"

var (
	errMissingAccount    = errs.New("account id missing from context")
	errMissingQueueToken = errs.New("queue token header missing")
	errInvalidID         = errs.New("invalid id")
)
