package infra

import (
	"context"
	"errors"
	"log/slog"

	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/pkg/pgconv"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// WrapRepoErr logs at Error only for DB_FAILURE; the other kinds are expected
// outcomes under contention and go to Debug.
func WrapRepoErr(slogger *slog.Logger, kind RepositoryErrorKind, msg string, err error) error {
	logArgs := []any{
		slog.String("kind", string(kind)),
	}
	if err != nil {
		logArgs = append(logArgs, slog.String("error", err.Error()))
	}

	level := slog.LevelDebug
	if kind == KindDBFailure {
		level = slog.LevelError
	}
	if slogger == nil {
		slogger = slog.Default()
	}
	slogger.Log(context.Background(), level, "Repository error: "+msg, logArgs...)

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return RepositoryError{Kind: kind, msg: msg, err: err}
}

// WrapPgErr picks the kind from the PostgreSQL error code.
func WrapPgErr(slogger *slog.Logger, msg string, err error) error {
	return WrapRepoErr(slogger, KindFromPg(err), msg, err)
}

func KindFromPg(err error) RepositoryErrorKind {
	switch {
	case pgconv.IsNoRows(err):
		return KindNotFound
	case pgconv.IsLockNotAvailable(err):
		return KindLockNotAvailable
	}
	switch pgconv.PgErrorCode(err) {
	case pgconv.CodeUniqueViolation:
		return KindDuplicateKey
	case pgconv.CodeForeignKeyViolation:
		return KindForeignKeyViolated
	case pgconv.CodeCheckViolation:
		return KindCheckViolated
	default:
		return KindDBFailure
	}
}

// Categorize marks err with the caller-facing category matching its repository kind.
// Errors that already carry a category are returned unchanged.
func Categorize(err error) error {
	if err == nil || errs.Category(err) != nil {
		return err
	}
	switch {
	case IsKind(err, KindNotFound), IsKind(err, KindForeignKeyViolated):
		return errs.Mark(err, errs.ErrNotFound)
	case IsKind(err, KindDuplicateKey), IsKind(err, KindCheckViolated):
		return errs.Mark(err, errs.ErrConflict)
	case IsKind(err, KindLockNotAvailable):
		return errs.Mark(err, errs.ErrLockTimeout)
	default:
		return errs.Mark(err, errs.ErrTransientFailure)
	}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	KindCheckViolated      RepositoryErrorKind = "CHECK_VIOLATED"
	KindLockNotAvailable   RepositoryErrorKind = "LOCK_NOT_AVAILABLE"
)
