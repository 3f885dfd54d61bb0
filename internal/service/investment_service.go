package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/repository/repoargs"
	"github.com/fsdevblog/copytrade/pkg/uow"
)

type InvestmentService struct {
	uow            uow.UOW
	investmentRepo InvestmentRepository
	planRepo       PlanRepository
}

func NewInvestmentService(u uow.UOW) (*InvestmentService, error) {
	investmentRepo, investmentRepoErr :=
		uow.GetRepositoryAs[InvestmentRepository](u, uow.RepositoryName(repoargs.InvestmentRepoName))
	if investmentRepoErr != nil {
		return nil, investmentRepoErr
	}
	planRepo, planRepoErr := uow.GetRepositoryAs[PlanRepository](u, uow.RepositoryName(repoargs.PlanRepoName))
	if planRepoErr != nil {
		return nil, planRepoErr
	}
	return &InvestmentService{
		uow:            u,
		investmentRepo: investmentRepo,
		planRepo:       planRepo,
	}, nil
}

type CreateInvestmentArgs struct {
	UserID   int64
	PlanName string
	Amount   decimal.Decimal
}

// Create создает инвестицию в статусе pending. Сумма проверяется на вхождение в границы
// плана, ставка и срок копируются из плана. Активация происходит отдельно, после
// подтверждения оплаты админом.
func (s *InvestmentService) Create(ctx context.Context, args CreateInvestmentArgs) (*domain.Investment, error) {
	if !args.Amount.IsPositive() {
		return nil, fmt.Errorf("creating investment: %w", domain.ErrNonPositiveAmount)
	}

	plan, planErr := s.planRepo.FindByName(ctx, args.PlanName)
	if planErr != nil {
		return nil, fmt.Errorf("creating investment: %w", planErr)
	}

	if args.Amount.LessThan(plan.MinAmount) || args.Amount.GreaterThan(plan.MaxAmount) {
		return nil, &domain.AmountOutOfPlanRangeError{
			PlanName:  plan.Name,
			Amount:    args.Amount,
			MinAmount: plan.MinAmount,
			MaxAmount: plan.MaxAmount,
		}
	}

	investment, createErr := s.investmentRepo.Create(ctx, repoargs.InvestmentCreate{
		UserID:    args.UserID,
		PlanName:  plan.Name,
		OrderCode: uuid.NewString(),
		Amount:    args.Amount,
		ROI:       plan.ROI,
		TermDays:  plan.TermDays,
	})
	if createErr != nil {
		return nil, fmt.Errorf("creating investment: %w", createErr)
	}
	return investment, nil
}

// GetByUserID возвращает инвестиции юзера, отсортированные по дате создания по убыванию.
func (s *InvestmentService) GetByUserID(ctx context.Context, userID int64) ([]domain.Investment, error) {
	investments, err := s.investmentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return investments, nil
}

// Activate переводит инвестицию pending -> active и выставляет якорь срока started_at.
// Если инвестиция не в статусе pending, возвращает domain.ErrInvalidStatusTransition.
func (s *InvestmentService) Activate(ctx context.Context, investmentID int64) (*domain.Investment, error) {
	investment, err := s.investmentRepo.Activate(ctx, investmentID, time.Now())
	if err != nil {
		return nil, s.convertTransitionErr(ctx, investmentID, err)
	}
	return investment, nil
}

// Cancel переводит инвестицию в терминальный статус cancelled. Разрешено только
// из pending и active, завершенную инвестицию отменить нельзя.
func (s *InvestmentService) Cancel(ctx context.Context, investmentID int64) (*domain.Investment, error) {
	investment, pendingErr := s.investmentRepo.UpdateStatus(
		ctx, investmentID, domain.InvestmentStatusPending, domain.InvestmentStatusCancelled)
	if pendingErr == nil {
		return investment, nil
	}

	investment, activeErr := s.investmentRepo.UpdateStatus(
		ctx, investmentID, domain.InvestmentStatusActive, domain.InvestmentStatusCancelled)
	if activeErr != nil {
		return nil, s.convertTransitionErr(ctx, investmentID, activeErr)
	}
	return investment, nil
}

// Plans возвращает все тарифные планы.
func (s *InvestmentService) Plans(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.planRepo.GetAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return plans, nil
}

// convertTransitionErr уточняет ошибку условного перехода статуса: если запись существует,
// но переход не сработал, значит инвестиция в недопустимом для перехода статусе.
func (s *InvestmentService) convertTransitionErr(ctx context.Context, investmentID int64, err error) error {
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return fmt.Errorf("investment %d: %w", investmentID, err)
	}
	if _, findErr := s.investmentRepo.FindByID(ctx, investmentID); findErr != nil {
		return fmt.Errorf("investment %d: %w", investmentID, findErr)
	}
	return fmt.Errorf("investment %d: %w", investmentID, domain.ErrInvalidStatusTransition)
}
