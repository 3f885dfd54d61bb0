package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

type UserRepository interface {
	CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	IncrementBalance(ctx context.Context, userID int64, delta decimal.Decimal) (*domain.User, error)
	SetKYCVerified(ctx context.Context, userID int64, verified bool) (*domain.User, error)
}

type PlanRepository interface {
	GetAll(ctx context.Context) ([]domain.Plan, error)
	FindByName(ctx context.Context, name string) (*domain.Plan, error)
}

type InvestmentRepository interface {
	Create(ctx context.Context, args repoargs.InvestmentCreate) (*domain.Investment, error)
	FindByID(ctx context.Context, id int64) (*domain.Investment, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Investment, error)
	GetActiveByUserID(ctx context.Context, userID int64) ([]domain.Investment, error)
	ActiveUserIDs(ctx context.Context, limit uint) ([]int64, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.InvestmentStatusType) (*domain.Investment, error)
	Activate(ctx context.Context, id int64, startedAt time.Time) (*domain.Investment, error)
	Complete(ctx context.Context, id int64, at time.Time) (*domain.Investment, error)
	UpdateLastPayout(ctx context.Context, id int64, at time.Time) error
}

type TransactionRepository interface {
	Create(ctx context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error)
	FindByID(ctx context.Context, id int64) (*domain.Transaction, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error)
	GetByType(ctx context.Context, userID int64, transactionType domain.TransactionType) ([]domain.Transaction, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.TransactionStatusType) (*domain.Transaction, error)
	SumByType(ctx context.Context, userID int64) (*repoargs.TransactionTotals, error)
}
