package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/repository/repoargs"
	"github.com/fsdevblog/copytrade/pkg/uow"
)

const (
	// payoutInterval минимальный интервал между выплатами по одной инвестиции.
	payoutInterval = 24 * time.Hour
	// accrualDivisor делитель месячной ставки. Зафиксирован на 30 независимо от
	// фактического срока инвестиции: ставка плана - месячная, дневная доходность
	// считается как месячная / 30.
	accrualDivisor = 30
)

// AccrualService движок начисления дневной доходности. Для каждой активной инвестиции
// юзера независимо решает: завершить ее (срок истек), выплатить дневную доходность
// (прошло 24 часа с последней выплаты) или пропустить до следующего цикла.
type AccrualService struct {
	uow            uow.UOW
	investmentRepo InvestmentRepository
	l              *logrus.Entry
}

func NewAccrualService(u uow.UOW, l *logrus.Logger) (*AccrualService, error) {
	investmentRepo, investmentRepoErr :=
		uow.GetRepositoryAs[InvestmentRepository](u, uow.RepositoryName(repoargs.InvestmentRepoName))
	if investmentRepoErr != nil {
		return nil, investmentRepoErr
	}
	return &AccrualService{
		uow:            u,
		investmentRepo: investmentRepo,
		l: l.WithFields(logrus.Fields{
			"component": "accrual",
			"module":    "service",
		}),
	}, nil
}

// CycleSummary итог одного цикла начисления по юзеру.
type CycleSummary struct {
	UserID    int64
	Payouts   int
	Completed int
	Skipped   int
	Anomalies int
	Failures  int
	Accrued   decimal.Decimal
}

type cycleAction int

const (
	actionSkip cycleAction = iota
	actionComplete
	actionPayout
)

type cycleDecision struct {
	Action cycleAction
	// DayNumber порядковый номер дня выплаты (1-based), попадает в описание транзакции.
	DayNumber int
	Amount    decimal.Decimal
}

// ActiveInvestorIDs возвращает id юзеров с хотя бы одной активной инвестицией.
func (a *AccrualService) ActiveInvestorIDs(ctx context.Context, limit uint) ([]int64, error) {
	ids, err := a.investmentRepo.ActiveUserIDs(ctx, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return ids, nil
}

// RunUserCycle выполняет один цикл начисления по всем активным инвестициям юзера.
// Инвестиции обрабатываются последовательно и независимо: аномалия или ошибка записи
// по одной инвестиции логируется и не прерывает обработку остальных. Ошибка возвращается
// только если не удалось получить сам список инвестиций.
func (a *AccrualService) RunUserCycle(ctx context.Context, userID int64) (*CycleSummary, error) {
	investments, listErr := a.investmentRepo.GetActiveByUserID(ctx, userID)
	if listErr != nil {
		return nil, fmt.Errorf("accrual cycle for user %d: %w", userID, listErr)
	}

	now := time.Now()
	summary := &CycleSummary{UserID: userID}

	for _, investment := range investments {
		decision, decisionErr := decideCycle(investment, now)
		if decisionErr != nil {
			summary.Anomalies++
			a.l.WithError(decisionErr).
				WithField("investmentID", investment.ID).
				Error("skipping malformed investment")
			continue
		}

		switch decision.Action {
		case actionComplete:
			if err := a.completeInvestment(ctx, investment, now); err != nil {
				summary.Failures++
				a.l.WithError(err).
					WithField("investmentID", investment.ID).
					Error("completing investment")
				continue
			}
			summary.Completed++
		case actionPayout:
			if err := a.applyPayout(ctx, investment, decision, now); err != nil {
				summary.Failures++
				a.l.WithError(err).
					WithField("investmentID", investment.ID).
					Error("applying payout")
				continue
			}
			summary.Payouts++
			summary.Accrued = summary.Accrued.Add(decision.Amount)
		case actionSkip:
			summary.Skipped++
		}
	}

	return summary, nil
}

// decideCycle чистая функция решения по одной инвестиции на момент now.
// Порядок проверок фиксирован, срабатывает первая подошедшая:
//  1. срок истек - завершение, без выплаты в этом же цикле;
//  2. выплат еще не было, либо с последней прошло >= 24 часов - выплата;
//  3. иначе - пропуск.
//
// Некорректная запись (отсутствующий якорь срока, неположительные сумма/ставка/срок,
// нулевая расчетная выплата) дает ошибку: по такой инвестиции ничего не начисляется.
func decideCycle(investment domain.Investment, now time.Time) (cycleDecision, error) {
	var decision cycleDecision

	if investment.StartedAt == nil || investment.StartedAt.IsZero() {
		return decision, fmt.Errorf("investment %d: missing start timestamp", investment.ID)
	}
	if investment.StartedAt.After(now) {
		return decision, fmt.Errorf("investment %d: start timestamp is in the future", investment.ID)
	}
	if !investment.Amount.IsPositive() || !investment.ROI.IsPositive() {
		return decision, fmt.Errorf("investment %d: non-positive amount or rate", investment.ID)
	}
	if investment.TermDays <= 0 {
		return decision, fmt.Errorf("investment %d: non-positive term", investment.ID)
	}

	daysSinceStart := int(now.Sub(*investment.StartedAt) / (24 * time.Hour))
	if daysSinceStart >= investment.TermDays {
		decision.Action = actionComplete
		return decision, nil
	}

	payoutAnchor := *investment.StartedAt
	if investment.LastPayout != nil {
		payoutAnchor = *investment.LastPayout
	}
	if investment.LastPayout != nil && now.Sub(payoutAnchor) < payoutInterval {
		decision.Action = actionSkip
		return decision, nil
	}

	amount := dailyReturn(investment.Amount, investment.ROI)
	if !amount.IsPositive() {
		return decision, fmt.Errorf("investment %d: non-positive computed payout", investment.ID)
	}

	decision.Action = actionPayout
	decision.DayNumber = daysSinceStart + 1
	decision.Amount = amount
	return decision, nil
}

// dailyReturn дневная доходность: amount * (roi / 100) / 30, округленная до 2 знаков
// (половина - вверх).
func dailyReturn(amount, roi decimal.Decimal) decimal.Decimal {
	return amount.
		Mul(roi).
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(accrualDivisor)).
		Round(2)
}

// completeInvestment условно переводит инвестицию в completed. Если другой воркер успел
// завершить ее первым, переход не затронет строк - это не ошибка, завершение идемпотентно.
func (a *AccrualService) completeInvestment(ctx context.Context, investment domain.Investment, now time.Time) error {
	err := a.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		investmentRepo, repoErr :=
			uow.GetAs[InvestmentRepository](tx, uow.RepositoryName(repoargs.InvestmentRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		_, completeErr := investmentRepo.Complete(c, investment.ID, now)
		return completeErr //nolint:wrapcheck
	})
	if errors.Is(err, domain.ErrRecordNotFound) {
		a.l.WithField("investmentID", investment.ID).Debug("investment already completed")
		return nil
	}
	return err
}

// applyPayout применяет дневную выплату одной транзакцией БД: атомарный инкремент баланса,
// запись roi транзакции и сдвиг якоря последней выплаты. При любой ошибке не применяется
// ничего, повторная попытка произойдет в следующем цикле.
func (a *AccrualService) applyPayout(
	ctx context.Context,
	investment domain.Investment,
	decision cycleDecision,
	now time.Time,
) error {
	return a.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		transactionRepo, transactionRepoErr :=
			uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if transactionRepoErr != nil {
			return transactionRepoErr //nolint:wrapcheck
		}
		investmentRepo, investmentRepoErr :=
			uow.GetAs[InvestmentRepository](tx, uow.RepositoryName(repoargs.InvestmentRepoName))
		if investmentRepoErr != nil {
			return investmentRepoErr //nolint:wrapcheck
		}

		if _, incErr := userRepo.IncrementBalance(c, investment.UserID, decision.Amount); incErr != nil {
			return incErr //nolint:wrapcheck
		}

		if _, createErr := transactionRepo.Create(c, repoargs.TransactionCreate{
			UserID:        investment.UserID,
			Type:          domain.TransactionTypeROI,
			Amount:        decision.Amount,
			Status:        domain.TransactionStatusCompleted,
			ReferenceCode: uuid.NewString(),
			Description: fmt.Sprintf(
				"Daily ROI from %s plan (Day %d of %d)",
				investment.PlanName, decision.DayNumber, investment.TermDays,
			),
		}); createErr != nil {
			return createErr //nolint:wrapcheck
		}

		return investmentRepo.UpdateLastPayout(c, investment.ID, now) //nolint:wrapcheck
	})
}
