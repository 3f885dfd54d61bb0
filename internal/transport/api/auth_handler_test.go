package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/logger"
	"github.com/fsdevblog/copytrade/internal/service"
	"github.com/fsdevblog/copytrade/internal/service/tokens"
	"github.com/fsdevblog/copytrade/internal/transport/api/mocks"
	"github.com/fsdevblog/copytrade/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	router                *gin.Engine
	mockUserService       *mocks.MockUserServicer
	mockInvestmentService *mocks.MockInvestmentServicer
	mockTxService         *mocks.MockTransactionServicer
	jwtSecret             []byte
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) SetupTest() {
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
}

func (s *AuthHandlerTestSuite) marshalParams(login, password string) string {
	payload, marshalErr := json.Marshal(gin.H{"login": login, "password": password})
	s.Require().NoError(marshalErr)
	return string(payload)
}

func (s *AuthHandlerTestSuite) TestRegister() {
	validParams := service.RegisterUserArgs{Username: "investor", Password: "secret-pass"}
	duplicateParams := service.RegisterUserArgs{Username: "duplicate", Password: "secret-pass"}
	// длина в рунах проходит валидацию, в байтах - нет (лимит bcrypt).
	overBytesPassword := testutils.GenerateOverBytesUnderRunes(30)

	s.mockUserService.EXPECT().
		Register(gomock.Any(), validParams).
		Return(&domain.User{ID: 1, Username: validParams.Username}, "jwt-token", nil).Times(1)
	s.mockUserService.EXPECT().
		Register(gomock.Any(), duplicateParams).
		Return(nil, "", domain.ErrDuplicateKey).Times(1)

	cases := []struct {
		name       string
		payload    string
		wantStatus int
		wantToken  bool
	}{
		{
			name:       "ok",
			payload:    s.marshalParams(validParams.Username, validParams.Password),
			wantStatus: http.StatusOK,
			wantToken:  true,
		}, {
			name:       "duplicate login",
			payload:    s.marshalParams(duplicateParams.Username, duplicateParams.Password),
			wantStatus: http.StatusConflict,
		}, {
			name:       "password over byte limit",
			payload:    s.marshalParams("bytes", overBytesPassword),
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "short password",
			payload:    `{"login":"short","password":"123"}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "malformed json",
			payload:    `{"login":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + RegisterRoute,
				Body:   bytes.NewReader([]byte(t.payload)),
			}, testutils.WithHeader("Content-Type", "application/json"))
			s.Require().NoError(err)

			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
			if t.wantToken {
				s.Equal("Bearer jwt-token", res.Header.Get("Authorization"))
			}
		})
	}
}

func (s *AuthHandlerTestSuite) TestLogin() {
	okParams := service.LoginUserArgs{Username: "investor", Password: "secret-pass"}
	wrongParams := service.LoginUserArgs{Username: "investor", Password: "wrong-pass"}

	s.mockUserService.EXPECT().
		Login(gomock.Any(), okParams).
		Return(&domain.User{ID: 1, Username: okParams.Username}, "jwt-token", nil).Times(1)
	s.mockUserService.EXPECT().
		Login(gomock.Any(), wrongParams).
		Return(nil, "", fmt.Errorf("logging in user: %w", domain.ErrPasswordMissMatch)).Times(1)

	cases := []struct {
		name       string
		payload    string
		wantStatus int
	}{
		{
			name:       "ok",
			payload:    s.marshalParams(okParams.Username, okParams.Password),
			wantStatus: http.StatusOK,
		}, {
			name:       "invalid credentials",
			payload:    s.marshalParams(wrongParams.Username, wrongParams.Password),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			res, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + LoginRoute,
				Body:   bytes.NewReader([]byte(t.payload)),
			}, testutils.WithHeader("Content-Type", "application/json"))
			s.Require().NoError(err)

			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

// Повторная авторизация с действительным токеном запрещена.
func (s *AuthHandlerTestSuite) TestLogin_AlreadyAuthorized() {
	token, tokenErr := tokens.GenerateUserJWT(1, domain.RoleUser, time.Hour, s.jwtSecret)
	s.Require().NoError(tokenErr)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + LoginRoute,
		Body:   bytes.NewReader([]byte(`{"login":"investor","password":"secret-pass"}`)),
	},
		testutils.WithHeader("Content-Type", "application/json"),
		testutils.WithHeader("Authorization", "Bearer "+token),
	)
	s.Require().NoError(err)

	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Equal(http.StatusUnauthorized, res.StatusCode)
}

func (s *AuthHandlerTestSuite) TestProfile() {
	var userID int64 = 1
	token, tokenErr := tokens.GenerateUserJWT(userID, domain.RoleUser, time.Hour, s.jwtSecret)
	s.Require().NoError(tokenErr)

	s.mockUserService.EXPECT().
		GetByID(gomock.Any(), userID).
		Return(&domain.User{ID: userID, Username: "investor", KYCVerified: true}, nil)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + ProfileRoute,
	}, testutils.WithHeader("Authorization", "Bearer "+token))
	s.Require().NoError(err)

	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)

	var response struct {
		User UserResponse `json:"user"`
	}
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	s.Equal(userID, response.User.ID)
	s.True(response.User.KYCVerified)
}
