//go:build unit

package pgconv_test

import (
	"errors"
	"testing"
	"time"

	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassification(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectUnique bool
		expectLock   bool
	}{
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, expectUnique: true},
		{name: "wrapped unique violation", err: errs.Wrap(&pgconn.PgError{Code: "23505"}, "insert"), expectUnique: true},
		{name: "lock not available", err: &pgconn.PgError{Code: "55P03"}, expectLock: true},
		{name: "statement canceled", err: &pgconn.PgError{Code: "57014"}, expectLock: true},
		{name: "other server error", err: &pgconn.PgError{Code: "42P01"}},
		{name: "non pg error", err: errors.New("boom")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectUnique, pgconv.IsUniqueViolation(tc.err))
			assert.Equal(t, tc.expectLock, pgconv.IsLockNotAvailable(tc.err))
		})
	}
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, pgconv.IsNoRows(pgx.ErrNoRows))
	assert.True(t, pgconv.IsNoRows(errs.Wrap(pgx.ErrNoRows, "find")))
	assert.False(t, pgconv.IsNoRows(errors.New("x")))
}

func TestPgtypeRoundTrip(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, pgconv.UUIDFromPgtype(pgconv.UUIDToPgtype(id)))
	assert.Equal(t, uuid.Nil, pgconv.UUIDFromPgtype(pgtype.UUID{}))

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, now, pgconv.TimeFromPgtype(pgconv.TimeToPgtype(now)))
	assert.Nil(t, pgconv.TimePtrFromPgtype(pgtype.Timestamptz{}))
}
