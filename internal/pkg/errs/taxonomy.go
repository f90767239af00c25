package errs

// Error categories surfaced to callers. Lower layers attach one of these with Mark
// so the handler layer can map them without knowing where the failure came from.
var (
	ErrNotFound         = New("not found")
	ErrConflict         = New("conflict")
	ErrLockTimeout      = New("lock timeout")
	ErrUnauthorized     = New("unauthorized")
	ErrTransientFailure = New("transient failure")
	ErrInvalidArgument  = New("invalid argument")
)

var categories = []error{
	ErrNotFound,
	ErrConflict,
	ErrLockTimeout,
	ErrUnauthorized,
	ErrTransientFailure,
	ErrInvalidArgument,
}

// Category returns the first category marked on err, or nil for an unclassified error.
func Category(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range categories {
		if Is(err, c) {
			return c
		}
	}
	return nil
}
