//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"concert-reservation/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestCategory(t *testing.T) {
	base := errors.New("duplicate key value violates unique constraint")

	testCases := []struct {
		name   string
		err    error
		expect error
	}{
		{name: "nil", err: nil, expect: nil},
		{name: "unclassified", err: base, expect: nil},
		{name: "marked conflict", err: errs.Mark(base, errs.ErrConflict), expect: errs.ErrConflict},
		{name: "wrapped after mark", err: errs.Wrap(errs.Mark(base, errs.ErrLockTimeout), "reserve"), expect: errs.ErrLockTimeout},
		{name: "sentinel itself", err: errs.ErrUnauthorized, expect: errs.ErrUnauthorized},
		{name: "mark on nil returns mark", err: errs.Mark(nil, errs.ErrNotFound), expect: errs.ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := errs.Category(tc.err)
			if tc.expect == nil {
				assert.Nil(t, got)
				return
			}
			assert.True(t, errs.Is(got, tc.expect))
		})
	}
}

func TestMarkKeepsOriginalMessage(t *testing.T) {
	err := errs.Mark(errors.New("row lock not available"), errs.ErrLockTimeout)

	assert.Contains(t, err.Error(), "row lock not available")
	assert.True(t, errs.Is(err, errs.ErrLockTimeout))
	assert.False(t, errs.Is(err, errs.ErrConflict))
}
