//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"concert-reservation/internal/domain/queue"
	"concert-reservation/internal/handler/api"
	resdto "concert-reservation/internal/handler/dto/response"
	"concert-reservation/internal/handler/middleware"
	"concert-reservation/internal/pkg/errs"
	"concert-reservation/tests/common/httptest"
	commandsmock "concert-reservation/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type QueueHandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	mockCtrl  *gomock.Controller
	mockQueue *commandsmock.MockAdmissionQueue
	accountID uuid.UUID
}

func (s *QueueHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockQueue = commandsmock.NewMockAdmissionQueue(s.mockCtrl)
	handler := api.NewQueueHandler(s.mockQueue)
	s.accountID = uuid.New()

	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		middleware.SetAccountID(c, s.accountID)
		c.Next()
	}

	s.router.POST("/queue/tokens", authMiddleware, handler.Admit)
	s.router.GET("/queue/tokens", authMiddleware, handler.Status)
	s.router.DELETE("/queue/tokens", authMiddleware, handler.Release)
}

func (s *QueueHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestQueueHandlerSuite(t *testing.T) {
	suite.Run(t, new(QueueHandlerTestSuite))
}

func (s *QueueHandlerTestSuite) TestAdmit() {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s.Run("success: 201 with a WAIT token", func() {
		token := queue.NewToken(s.accountID, now)
		s.mockQueue.EXPECT().Admit(gomock.Any(), s.accountID).Return(token, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/queue/tokens", nil, "bearer-token")

		var body resdto.TokenResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(token.ID(), body.Token)
		s.Equal("WAIT", body.Status)
		s.Equal(s.accountID, body.AccountID)
	})

	s.Run("error: 409 when a live token exists", func() {
		s.mockQueue.EXPECT().Admit(gomock.Any(), s.accountID).
			Return(nil, errs.Mark(errs.New("already queued"), errs.ErrConflict)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/queue/tokens", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Conflict")
	})

	s.Run("error: 404 for an unknown account", func() {
		s.mockQueue.EXPECT().Admit(gomock.Any(), s.accountID).
			Return(nil, errs.Mark(errs.New("account not found"), errs.ErrNotFound)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/queue/tokens", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Not found")
	})

	s.Run("error: 401 when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/queue/tokens", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})
}

func (s *QueueHandlerTestSuite) TestStatus() {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token := queue.ReconstructToken("0123456789abcdef0123456789abcdef", s.accountID, queue.StatusActive, now.Add(5*time.Minute), now)

	s.mockQueue.EXPECT().Status(gomock.Any(), s.accountID).Return(token, nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/queue/tokens", nil, "bearer-token")

	var body resdto.TokenResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Equal("ACTIVE", body.Status)
	s.True(token.Deadline().Equal(body.Deadline))
}

func (s *QueueHandlerTestSuite) TestRelease() {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token := queue.ReconstructToken("0123456789abcdef0123456789abcdef", s.accountID, queue.StatusActive, now, now)

	s.Run("success: releases the account's live token", func() {
		gomock.InOrder(
			s.mockQueue.EXPECT().Status(gomock.Any(), s.accountID).Return(token, nil),
			s.mockQueue.EXPECT().Release(gomock.Any(), token.ID()).Return(nil),
		)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/queue/tokens", nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 404 without a live token", func() {
		s.mockQueue.EXPECT().Status(gomock.Any(), s.accountID).
			Return(nil, errs.Mark(errs.New("token not found"), errs.ErrNotFound)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/queue/tokens", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})
}
