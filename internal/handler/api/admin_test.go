//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"concert-reservation/internal/handler/api"
	resdto "concert-reservation/internal/handler/dto/response"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/commands"
	"concert-reservation/internal/usecase/scheduler"
	"concert-reservation/tests/common/httptest"
	apimock "concert-reservation/tests/mock/api"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestAdminHandler_Sweep(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		path       string
		job        string
		result     scheduler.RunResult
		err        error
		expectCode int
		expectRan  bool
	}{
		{
			name:       "queue sweep runs",
			path:       "/admin/sweeps/queue",
			job:        scheduler.JobQueueSweep,
			result:     scheduler.RunResult{Job: scheduler.JobQueueSweep, Ran: true, Result: commands.SweepResult{Promoted: 3}, Duration: 2 * time.Millisecond},
			expectCode: http.StatusOK,
			expectRan:  true,
		},
		{
			name:       "reservation sweep already running elsewhere",
			path:       "/admin/sweeps/reservations",
			job:        scheduler.JobReservationExpiry,
			result:     scheduler.RunResult{Job: scheduler.JobReservationExpiry},
			expectCode: http.StatusOK,
		},
		{
			name:       "sweep failure",
			path:       "/admin/sweeps/queue",
			job:        scheduler.JobQueueSweep,
			err:        errs.Mark(errs.New("redis down"), errs.ErrTransientFailure),
			expectCode: http.StatusServiceUnavailable,
		},
		{
			name:       "unknown sweep",
			path:       "/admin/sweeps/everything",
			expectCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			runner := apimock.NewMockJobRunner(ctrl)
			if tt.job != "" {
				runner.EXPECT().RunNow(gomock.Any(), tt.job).Return(tt.result, tt.err).Times(1)
			}
			router := gin.New()
			router.POST("/admin/sweeps/:job", api.NewAdminHandler(runner).Sweep)

			rec := httptest.PerformRequest(t, router, http.MethodPost, tt.path, nil, "bearer-token")

			if tt.expectCode != http.StatusOK {
				httptest.AssertErrorResponse(t, rec, tt.expectCode, "")
				return
			}
			var body resdto.SweepResponse
			httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
			assert.Equal(t, tt.job, body.Job)
			assert.Equal(t, tt.expectRan, body.Ran)
		})
	}
}
