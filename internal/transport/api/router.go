package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/copytrade/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup           = "/api"
	RegisterRoute        = "/user/register"
	LoginRoute           = "/user/login"
	ProfileRoute         = "/user/profile"
	BalanceRoute         = "/user/balance"
	BalanceWithdrawRoute = "/user/balance/withdraw"
	WithdrawalsRoute     = "/user/withdrawals"
	DepositRoute         = "/user/deposit"
	InvestmentsRoute     = "/user/investments"
	TransactionsRoute    = "/user/transactions"
	PlansRoute           = "/plans"

	AdminGroup                 = "/admin"
	AdminInvestmentActivate    = "/investments/:id/activate"
	AdminInvestmentCancel      = "/investments/:id/cancel"
	AdminTransactionStatus     = "/transactions/:id/status"
	AdminUserKYC               = "/users/:id/kyc"
	AdminUserBalanceAdjustment = "/users/:id/balance"
)

type RouterArgs struct {
	Logger             *logrus.Logger
	UserService        UserServicer
	InvestmentService  InvestmentServicer
	TransactionService TransactionServicer
	JWTSecretKey       []byte
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	investmentsHandler := NewInvestmentsHandler(args.InvestmentService)
	transactionsHandler := NewTransactionsHandler(args.TransactionService)
	adminHandler := NewAdminHandler(args.UserService, args.InvestmentService, args.TransactionService)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)
	api.GET(PlansRoute, investmentsHandler.Plans)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(ProfileRoute, authHandler.Profile)

	api.GET(BalanceRoute, transactionsHandler.Balance)
	api.POST(DepositRoute, transactionsHandler.Deposit)
	api.POST(BalanceWithdrawRoute, transactionsHandler.Withdraw)
	api.GET(WithdrawalsRoute, transactionsHandler.Withdrawals)
	api.GET(TransactionsRoute, transactionsHandler.Index)

	api.POST(InvestmentsRoute, investmentsHandler.Create)
	api.GET(InvestmentsRoute, investmentsHandler.Index)

	admin := api.Group(AdminGroup, middlewares.AdminRequired())
	admin.POST(AdminInvestmentActivate, adminHandler.ActivateInvestment)
	admin.POST(AdminInvestmentCancel, adminHandler.CancelInvestment)
	admin.PATCH(AdminTransactionStatus, adminHandler.SetTransactionStatus)
	admin.PATCH(AdminUserKYC, adminHandler.SetUserKYC)
	admin.POST(AdminUserBalanceAdjustment, adminHandler.AdjustUserBalance)

	return r, nil
}
