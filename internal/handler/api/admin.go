package api

import (
	"context"
	"net/http"

	resdto "concert-reservation/internal/handler/dto/response"
	"concert-reservation/internal/handler/httperr"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/scheduler"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=admin.go -destination=../../../tests/mock/api/admin.go -package=apimock

type JobRunner interface {
	RunNow(ctx context.Context, name string) (scheduler.RunResult, error)
}

var sweepJobs = map[string]string{
	"queue":        scheduler.JobQueueSweep,
	"reservations": scheduler.JobReservationExpiry,
}

type AdminHandler struct {
	runner JobRunner
}

func NewAdminHandler(runner JobRunner) *AdminHandler {
	return &AdminHandler{runner: runner}
}

// @Summary Trigger a sweep
// @Description Run the queue sweep or the unpaid-reservation expiry now. A sweep already
// @Description running anywhere is not started twice; the response then reports ran=false.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param job path string true "Sweep" Enums(queue, reservations)
// @Success 200 {object} resdto.SweepResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/admin/sweeps/{job} [post]
func (h *AdminHandler) Sweep(c *gin.Context) {
	name, ok := sweepJobs[c.Param("job")]
	if !ok {
		httperr.AbortWithError(c, http.StatusNotFound, errs.Wrapf(scheduler.ErrUnknownJob, "%q", c.Param("job")), "Unknown sweep", nil)
		return
	}
	result, err := h.runner.RunNow(c.Request.Context(), name)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	resp, err := resdto.FromRunResult(result)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}
