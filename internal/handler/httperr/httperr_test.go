//go:build unit

package httperr_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"concert-reservation/internal/handler/httperr"
	"concert-reservation/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	base := errs.New("boom")

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid argument", errs.Mark(base, errs.ErrInvalidArgument), http.StatusBadRequest},
		{"unauthorized", errs.Mark(base, errs.ErrUnauthorized), http.StatusForbidden},
		{"not found", errs.Mark(base, errs.ErrNotFound), http.StatusNotFound},
		{"conflict", errs.Mark(base, errs.ErrConflict), http.StatusConflict},
		{"lock timeout", errs.Mark(base, errs.ErrLockTimeout), http.StatusServiceUnavailable},
		{"transient", errs.Mark(base, errs.ErrTransientFailure), http.StatusServiceUnavailable},
		{"wrapped category survives", errs.Wrap(errs.Mark(base, errs.ErrNotFound), "load"), http.StatusNotFound},
		{"unclassified", base, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := httperr.StatusOf(tt.err)
			assert.Equal(t, tt.expected, status)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestAbort_LockTimeoutIsRetryable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantRetry  string
	}{
		{"lock timeout", errs.Wrap(errs.Mark(errs.New("busy"), errs.ErrLockTimeout), "reserve"), http.StatusServiceUnavailable, "1"},
		{"conflict is final", errs.Mark(errs.New("taken"), errs.ErrConflict), http.StatusConflict, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			httperr.Abort(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantRetry, w.Header().Get("Retry-After"))
		})
	}
}
