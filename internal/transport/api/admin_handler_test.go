package api

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/logger"
	"github.com/fsdevblog/copytrade/internal/service/tokens"
	"github.com/fsdevblog/copytrade/internal/transport/api/mocks"
	"github.com/fsdevblog/copytrade/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type AdminHandlerTestSuite struct {
	suite.Suite
	router                *gin.Engine
	mockUserService       *mocks.MockUserServicer
	mockInvestmentService *mocks.MockInvestmentServicer
	mockTxService         *mocks.MockTransactionServicer
	jwtSecret             []byte
	adminToken            string
	userToken             string
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}

func (s *AdminHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockUserService = mocks.NewMockUserServicer(mockCtrl)
	s.mockInvestmentService = mocks.NewMockInvestmentServicer(mockCtrl)
	s.mockTxService = mocks.NewMockTransactionServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	router, err := New(RouterArgs{
		Logger:             logger.New(os.Stdout),
		UserService:        s.mockUserService,
		InvestmentService:  s.mockInvestmentService,
		TransactionService: s.mockTxService,
		JWTSecretKey:       s.jwtSecret,
	})
	s.Require().NoError(err)
	s.router = router

	adminToken, adminTokenErr := tokens.GenerateUserJWT(100, domain.RoleAdmin, time.Hour, s.jwtSecret)
	s.Require().NoError(adminTokenErr)
	s.adminToken = adminToken

	userToken, userTokenErr := tokens.GenerateUserJWT(1, domain.RoleUser, time.Hour, s.jwtSecret)
	s.Require().NoError(userTokenErr)
	s.userToken = userToken
}

func (s *AdminHandlerTestSuite) makeRequest(method, url, token string, payload []byte) *http.Response {
	var body *bytes.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: method,
		URL:    url,
		Body:   body,
	},
		testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", token)),
		testutils.WithHeader("Content-Type", "application/json"),
	)
	s.Require().NoError(err)
	return res
}

// Админские роуты недоступны с токеном обычного юзера.
func (s *AdminHandlerTestSuite) TestForbiddenForRegularUser() {
	res := s.makeRequest(http.MethodPost, RouteGroup+AdminGroup+"/investments/1/activate", s.userToken, nil)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusForbidden, res.StatusCode)
}

func (s *AdminHandlerTestSuite) TestActivateInvestment() {
	startedAt := time.Now()

	s.mockInvestmentService.EXPECT().
		Activate(gomock.Any(), int64(1)).
		Return(&domain.Investment{
			ID:        1,
			Status:    domain.InvestmentStatusActive,
			StartedAt: &startedAt,
		}, nil)
	s.mockInvestmentService.EXPECT().
		Activate(gomock.Any(), int64(2)).
		Return(nil, fmt.Errorf("investment 2: %w", domain.ErrInvalidStatusTransition))
	s.mockInvestmentService.EXPECT().
		Activate(gomock.Any(), int64(3)).
		Return(nil, domain.ErrRecordNotFound)

	cases := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{name: "ok", url: "/investments/1/activate", wantStatus: http.StatusOK},
		{name: "already active", url: "/investments/2/activate", wantStatus: http.StatusConflict},
		{name: "not found", url: "/investments/3/activate", wantStatus: http.StatusNotFound},
		{name: "bad id", url: "/investments/abc/activate", wantStatus: http.StatusBadRequest},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeRequest(http.MethodPost, RouteGroup+AdminGroup+t.url, s.adminToken, nil)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *AdminHandlerTestSuite) TestSetTransactionStatus() {
	s.mockTxService.EXPECT().
		SetStatus(gomock.Any(), int64(5), domain.TransactionStatusCompleted).
		Return(&domain.Transaction{
			ID:     5,
			Type:   domain.TransactionTypeDeposit,
			Amount: decimal.NewFromInt(500),
			Status: domain.TransactionStatusCompleted,
		}, nil)
	s.mockTxService.EXPECT().
		SetStatus(gomock.Any(), int64(6), domain.TransactionStatusFailed).
		Return(nil, fmt.Errorf("transaction 6: %w", domain.ErrInvalidStatusTransition))

	cases := []struct {
		name       string
		url        string
		payload    string
		wantStatus int
	}{
		{name: "confirm deposit", url: "/transactions/5/status", payload: `{"status":"completed"}`, wantStatus: http.StatusOK},
		{name: "already processed", url: "/transactions/6/status", payload: `{"status":"failed"}`, wantStatus: http.StatusConflict},
		{name: "status out of enum", url: "/transactions/5/status", payload: `{"status":"pending"}`, wantStatus: http.StatusBadRequest},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeRequest(http.MethodPatch, RouteGroup+AdminGroup+t.url, s.adminToken, []byte(t.payload))
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *AdminHandlerTestSuite) TestSetUserKYC() {
	s.mockUserService.EXPECT().
		VerifyKYC(gomock.Any(), int64(1), true).
		Return(&domain.User{ID: 1, KYCVerified: true}, nil)

	res := s.makeRequest(http.MethodPatch, RouteGroup+AdminGroup+"/users/1/kyc", s.adminToken, []byte(`{"verified":true}`))
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusOK, res.StatusCode)
}

func (s *AdminHandlerTestSuite) TestAdjustUserBalance() {
	s.mockTxService.EXPECT().
		AdminAdjust(gomock.Any(), int64(1), gomock.Any(), "promo bonus").
		DoAndReturn(func(_ any, _ int64, delta decimal.Decimal, _ string) (*domain.Transaction, error) {
			s.True(decimal.NewFromInt(100).Equal(delta))
			return &domain.Transaction{
				ID:     10,
				UserID: 1,
				Type:   domain.TransactionTypeAdminAdjustment,
				Amount: delta,
				Status: domain.TransactionStatusCompleted,
			}, nil
		})
	s.mockTxService.EXPECT().
		AdminAdjust(gomock.Any(), int64(2), gomock.Any(), "chargeback").
		Return(nil, domain.ErrNotEnoughBalance)

	cases := []struct {
		name       string
		url        string
		payload    string
		wantStatus int
	}{
		{name: "credit", url: "/users/1/balance", payload: `{"delta":100,"reason":"promo bonus"}`, wantStatus: http.StatusOK},
		{name: "debit below zero", url: "/users/2/balance", payload: `{"delta":-500,"reason":"chargeback"}`, wantStatus: http.StatusPaymentRequired},
		{name: "missing reason", url: "/users/1/balance", payload: `{"delta":100}`, wantStatus: http.StatusBadRequest},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeRequest(http.MethodPost, RouteGroup+AdminGroup+t.url, s.adminToken, []byte(t.payload))
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}
