package api

import (
	"net/http"

	resdto "concert-reservation/internal/handler/dto/response"
	"concert-reservation/internal/handler/httperr"
	"concert-reservation/internal/handler/middleware"
	"concert-reservation/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type QueueHandler struct {
	queue commands.AdmissionQueue
}

func NewQueueHandler(queue commands.AdmissionQueue) *QueueHandler {
	return &QueueHandler{queue: queue}
}

// @Summary Enter the queue
// @Description Issue a WAIT token for the authenticated account
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Success 201 {object} resdto.TokenResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/queue/tokens [post]
func (h *QueueHandler) Admit(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAccount, "Unauthorized", nil)
		return
	}
	token, err := h.queue.Admit(c.Request.Context(), accountID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromToken(token))
}

// @Summary Queue status
// @Description Get the live token of the authenticated account
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.TokenResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/queue/tokens [get]
func (h *QueueHandler) Status(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAccount, "Unauthorized", nil)
		return
	}
	token, err := h.queue.Status(c.Request.Context(), accountID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromToken(token))
}

// @Summary Leave the queue
// @Description Expire the live token of the authenticated account
// @Tags queue
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/queue/tokens [delete]
func (h *QueueHandler) Release(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAccount, "Unauthorized", nil)
		return
	}
	token, err := h.queue.Status(c.Request.Context(), accountID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	if err := h.queue.Release(c.Request.Context(), token.ID()); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
