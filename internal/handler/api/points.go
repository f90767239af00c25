package api

import (
	"net/http"

	reqdto "concert-reservation/internal/handler/dto/request"
	resdto "concert-reservation/internal/handler/dto/response"
	"concert-reservation/internal/handler/httperr"
	"concert-reservation/internal/handler/middleware"
	"concert-reservation/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type PointHandler struct {
	cmds commands.PointCommands
}

func NewPointHandler(cmds commands.PointCommands) *PointHandler {
	return &PointHandler{cmds: cmds}
}

// @Summary Charge points
// @Tags points
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ChargePointsRequest true "Charge request"
// @Success 200 {object} resdto.BalanceResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/points/charge [post]
func (h *PointHandler) Charge(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAccount, "Unauthorized", nil)
		return
	}
	var req reqdto.ChargePointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	balance, err := h.cmds.Charge(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.BalanceResponse{AccountID: accountID, Balance: balance})
}

// @Summary Point balance
// @Tags points
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.BalanceResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/points [get]
func (h *PointHandler) Balance(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAccount, "Unauthorized", nil)
		return
	}
	balance, err := h.cmds.Balance(c.Request.Context(), accountID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.BalanceResponse{AccountID: accountID, Balance: balance})
}
