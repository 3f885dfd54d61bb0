package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
	GetByID(ctx context.Context, userID int64) (*domain.User, error)
	VerifyKYC(ctx context.Context, userID int64, verified bool) (*domain.User, error)
}

type InvestmentServicer interface {
	Create(ctx context.Context, args service.CreateInvestmentArgs) (*domain.Investment, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Investment, error)
	Activate(ctx context.Context, investmentID int64) (*domain.Investment, error)
	Cancel(ctx context.Context, investmentID int64) (*domain.Investment, error)
	Plans(ctx context.Context) ([]domain.Plan, error)
}

type TransactionServicer interface {
	GetUserBalance(ctx context.Context, userID int64) (*service.UserBalance, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.Transaction, error)
	Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.Transaction, error)
	SetStatus(ctx context.Context, transactionID int64, status domain.TransactionStatusType) (*domain.Transaction, error)
	AdminAdjust(ctx context.Context, userID int64, delta decimal.Decimal, reason string) (*domain.Transaction, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error)
	GetByType(ctx context.Context, userID int64, transactionType domain.TransactionType) ([]domain.Transaction, error)
}
