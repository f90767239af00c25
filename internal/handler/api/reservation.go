package api

import (
	"net/http"
	"strconv"

	"concert-reservation/internal/domain/reservation"
	reqdto "concert-reservation/internal/handler/dto/request"
	resdto "concert-reservation/internal/handler/dto/response"
	"concert-reservation/internal/handler/httperr"
	"concert-reservation/internal/handler/middleware"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/commands"
	"concert-reservation/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	booking commands.BookingCommands
	q       queries.ReservationQueries
}

func NewReservationHandler(booking commands.BookingCommands, q queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{booking: booking, q: q}
}

// @Summary Reserve seats
// @Description Reserve seats of one concert schedule with an ACTIVE queue token.
// @Description The point debit runs after commit; when it fails the reservation is
// @Description cancelled asynchronously and the debit error is returned.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Queue-Token header string true "ACTIVE queue token"
// @Param lock query string false "Lock strategy" Enums(none, read_exclusive, distributed)
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAccount, "Unauthorized", nil)
		return
	}
	tokenID, ok := middleware.GetQueueToken(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusBadRequest, errMissingQueueToken, "Queue token required", nil)
		return
	}
	strategy, err := reservation.ParseLockStrategy(c.Query("lock"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unknown lock strategy", nil)
		return
	}
	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	cmd, err := req.ToCommand(accountID, strategy)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid seat selection", nil)
		return
	}

	res, err := h.booking.MakeReservation(c.Request.Context(), tokenID, cmd)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/api/reservations/"+strconv.FormatInt(res.ID(), 10))
	c.JSON(http.StatusCreated, resdto.FromReservation(res))
}

// @Summary Get reservation
// @Description Get one of the caller's reservations with its payment
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAccount, "Unauthorized", nil)
		return
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), accountID, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	resp, err := resdto.FromReservationView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List reservations
// @Description List the caller's reservations, newest first
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (1-200)"
// @Success 200 {array} resdto.ReservationListResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAccount, "Unauthorized", nil)
		return
	}
	var query reqdto.ListReservationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	items, err := h.q.ListByAccount(c.Request.Context(), accountID, query.Limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	resp, err := resdto.FromReservationListItems(items)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errs.Wrap(errInvalidID, err.Error())
	}
	if id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
