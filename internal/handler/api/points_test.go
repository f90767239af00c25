//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"concert-reservation/internal/handler/api"
	reqdto "concert-reservation/internal/handler/dto/request"
	resdto "concert-reservation/internal/handler/dto/response"
	"concert-reservation/internal/handler/middleware"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/tests/common/httptest"
	"concert-reservation/tests/common/testutil"
	commandsmock "concert-reservation/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PointHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockPointCommands
	accountID    uuid.UUID
}

func (s *PointHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockPointCommands(s.mockCtrl)
	handler := api.NewPointHandler(s.mockCommands)
	s.accountID = uuid.New()

	authMiddleware := func(c *gin.Context) {
		middleware.SetAccountID(c, s.accountID)
		c.Next()
	}

	s.router.POST("/points/charge", authMiddleware, handler.Charge)
	s.router.GET("/points", authMiddleware, handler.Balance)
}

func (s *PointHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPointHandlerSuite(t *testing.T) {
	suite.Run(t, new(PointHandlerTestSuite))
}

func (s *PointHandlerTestSuite) TestCharge() {
	reqBody := reqdto.ChargePointsRequest{Amount: 5000}

	s.Run("success: returns the new balance", func() {
		s.mockCommands.EXPECT().Charge(gomock.Any(), s.accountID, int64(5000)).Return(int64(9000), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/points/charge", reqBody, "bearer-token")

		var body resdto.BalanceResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(int64(9000), body.Balance)
		s.Equal(s.accountID, body.AccountID)
	})

	s.Run("error: 400 on non-positive amounts", func() {
		for _, amount := range []any{0, -100, nil} {
			body := testutil.DtoMap(s.T(), reqBody, testutil.Field("amount", amount))
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/points/charge", body, "bearer-token")
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
		}
	})

	s.Run("error: 404 for an unknown account", func() {
		s.mockCommands.EXPECT().Charge(gomock.Any(), s.accountID, int64(5000)).
			Return(int64(0), errs.Mark(errs.New("account not found"), errs.ErrNotFound)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/points/charge", reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})
}

func (s *PointHandlerTestSuite) TestBalance() {
	s.mockCommands.EXPECT().Balance(gomock.Any(), s.accountID).Return(int64(1200), nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/points", nil, "bearer-token")

	var body resdto.BalanceResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Equal(int64(1200), body.Balance)
}
