//go:build unit

package infra_test

import (
	"errors"
	"log/slog"
	"testing"

	"concert-reservation/internal/infra"
	"concert-reservation/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapPgErr(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	testCases := []struct {
		name       string
		err        error
		expectKind infra.RepositoryErrorKind
		expectCat  error
	}{
		{name: "no rows", err: pgx.ErrNoRows, expectKind: infra.KindNotFound, expectCat: errs.ErrNotFound},
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, expectKind: infra.KindDuplicateKey, expectCat: errs.ErrConflict},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, expectKind: infra.KindForeignKeyViolated, expectCat: errs.ErrNotFound},
		{name: "check", err: &pgconn.PgError{Code: "23514"}, expectKind: infra.KindCheckViolated, expectCat: errs.ErrConflict},
		{name: "lock timeout", err: &pgconn.PgError{Code: "55P03"}, expectKind: infra.KindLockNotAvailable, expectCat: errs.ErrLockTimeout},
		{name: "anything else", err: errors.New("connection reset"), expectKind: infra.KindDBFailure, expectCat: errs.ErrTransientFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := infra.WrapPgErr(logger, "op", tc.err)

			assert.True(t, infra.IsKind(wrapped, tc.expectKind))
			assert.ErrorIs(t, wrapped, tc.err)

			categorized := infra.Categorize(wrapped)
			assert.True(t, errs.Is(categorized, tc.expectCat))
			assert.True(t, infra.IsKind(categorized, tc.expectKind), "kind must survive categorization")
		})
	}
}

func TestCategorize_KeepsExistingCategory(t *testing.T) {
	err := errs.Mark(errors.New("queue token expired"), errs.ErrUnauthorized)
	assert.Same(t, err, infra.Categorize(err))
	assert.Nil(t, infra.Categorize(nil))
}
