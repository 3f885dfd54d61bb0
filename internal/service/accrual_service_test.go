package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/repository/repoargs"
	"github.com/fsdevblog/copytrade/internal/service/mocks"
	"github.com/fsdevblog/copytrade/pkg/uow"
	uowmocks "github.com/fsdevblog/copytrade/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type AccrualServiceTestSuite struct {
	suite.Suite
	mockCtrl            *gomock.Controller
	mockUOW             *uowmocks.MockUOW
	mockTX              *uowmocks.MockTX
	mockUserRepo        *mocks.MockUserRepository
	mockInvestmentRepo  *mocks.MockInvestmentRepository
	mockTransactionRepo *mocks.MockTransactionRepository
	service             *AccrualService
}

func TestAccrualServiceSuite(t *testing.T) {
	suite.Run(t, new(AccrualServiceTestSuite))
}

func (s *AccrualServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockInvestmentRepo = mocks.NewMockInvestmentRepository(s.mockCtrl)
	s.mockTransactionRepo = mocks.NewMockTransactionRepository(s.mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.InvestmentRepoName)).
		Return(s.mockInvestmentRepo, nil).AnyTimes()

	l := logrus.New()
	l.SetOutput(io.Discard)

	var err error
	s.service, err = NewAccrualService(s.mockUOW, l)
	s.Require().NoError(err)
}

func (s *AccrualServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// expectTxRepos настраивает выдачу репозиториев из мока транзакции.
func (s *AccrualServiceTestSuite) expectTxRepos() {
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.TransactionRepoName)).
		Return(s.mockTransactionRepo, nil).AnyTimes()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.InvestmentRepoName)).
		Return(s.mockInvestmentRepo, nil).AnyTimes()
}

// expectDo прокидывает callback UOW.Do в мок транзакции без реальной БД.
func (s *AccrualServiceTestSuite) expectDo(times int) {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(s.T().Context(), s.mockTX)
		},
	).Times(times)
}

func (s *AccrualServiceTestSuite) activeInvestment(id int64, startedAgo time.Duration) domain.Investment {
	startedAt := time.Now().Add(-startedAgo)
	return domain.Investment{
		ID:       id,
		UserID:   123,
		PlanName: "Growth",
		Amount:   decimal.NewFromInt(9000),
		ROI:      decimal.NewFromInt(15),
		Status:   domain.InvestmentStatusActive,
		TermDays: 30,

		StartedAt: &startedAt,
	}
}

func (s *AccrualServiceTestSuite) TestDailyReturn() {
	cases := []struct {
		name     string
		amount   decimal.Decimal
		roi      decimal.Decimal
		expected string
	}{
		{name: "whole result", amount: decimal.NewFromInt(9000), roi: decimal.NewFromInt(15), expected: "45"},
		{name: "repeating fraction", amount: decimal.NewFromInt(1000), roi: decimal.NewFromInt(10), expected: "3.33"},
		{name: "rounds half up", amount: decimal.NewFromInt(50), roi: decimal.NewFromInt(10), expected: "0.17"},
		{name: "min plan amount", amount: decimal.NewFromInt(100), roi: decimal.NewFromInt(5), expected: "0.17"},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			s.Equal(t.expected, dailyReturn(t.amount, t.roi).String())
		})
	}
}

func (s *AccrualServiceTestSuite) TestDecideCycle() {
	now := time.Now()

	cases := []struct {
		name       string
		investment func() domain.Investment
		action     cycleAction
		dayNumber  int
		wantErr    bool
	}{
		{
			name: "never paid pays immediately",
			investment: func() domain.Investment {
				return s.activeInvestment(1, 30*time.Minute)
			},
			action:    actionPayout,
			dayNumber: 1,
		},
		{
			name: "25h since last payout pays",
			investment: func() domain.Investment {
				inv := s.activeInvestment(1, 73*time.Hour)
				lastPayout := now.Add(-25 * time.Hour)
				inv.LastPayout = &lastPayout
				return inv
			},
			action:    actionPayout,
			dayNumber: 4,
		},
		{
			name: "23h since last payout skips",
			investment: func() domain.Investment {
				inv := s.activeInvestment(1, 73*time.Hour)
				lastPayout := now.Add(-23 * time.Hour)
				inv.LastPayout = &lastPayout
				return inv
			},
			action: actionSkip,
		},
		{
			name: "term expired completes without payout",
			investment: func() domain.Investment {
				inv := s.activeInvestment(1, 31*24*time.Hour)
				lastPayout := now.Add(-30 * time.Hour)
				inv.LastPayout = &lastPayout
				return inv
			},
			action: actionComplete,
		},
		{
			name: "exactly at term boundary completes",
			investment: func() domain.Investment {
				return s.activeInvestment(1, 30*24*time.Hour)
			},
			action: actionComplete,
		},
		{
			name: "missing start timestamp",
			investment: func() domain.Investment {
				inv := s.activeInvestment(1, time.Hour)
				inv.StartedAt = nil
				return inv
			},
			wantErr: true,
		},
		{
			name: "start timestamp in the future",
			investment: func() domain.Investment {
				return s.activeInvestment(1, -time.Hour)
			},
			wantErr: true,
		},
		{
			name: "non-positive amount",
			investment: func() domain.Investment {
				inv := s.activeInvestment(1, time.Hour)
				inv.Amount = decimal.Zero
				return inv
			},
			wantErr: true,
		},
		{
			name: "non-positive rate",
			investment: func() domain.Investment {
				inv := s.activeInvestment(1, time.Hour)
				inv.ROI = decimal.NewFromInt(-5)
				return inv
			},
			wantErr: true,
		},
		{
			name: "non-positive term",
			investment: func() domain.Investment {
				inv := s.activeInvestment(1, time.Hour)
				inv.TermDays = 0
				return inv
			},
			wantErr: true,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			decision, err := decideCycle(t.investment(), now)
			if t.wantErr {
				s.Require().Error(err)
				return
			}
			s.Require().NoError(err)
			s.Equal(t.action, decision.Action)
			if t.action == actionPayout {
				s.Equal(t.dayNumber, decision.DayNumber)
				s.True(decision.Amount.IsPositive())
			}
		})
	}
}

func (s *AccrualServiceTestSuite) TestRunUserCycle_PayoutApplied() {
	investment := s.activeInvestment(1, 73*time.Hour)
	lastPayout := time.Now().Add(-25 * time.Hour)
	investment.LastPayout = &lastPayout

	// 9000 * 15% / 30 = 45 в день.
	expectedAmount := decimal.NewFromInt(45)

	s.mockInvestmentRepo.EXPECT().
		GetActiveByUserID(gomock.Any(), investment.UserID).
		Return([]domain.Investment{investment}, nil)

	s.expectDo(1)
	s.expectTxRepos()

	s.mockUserRepo.EXPECT().
		IncrementBalance(gomock.Any(), investment.UserID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, delta decimal.Decimal) (*domain.User, error) {
			// на баланс уходит ровно расчетная дневная доходность.
			s.True(expectedAmount.Equal(delta))
			return &domain.User{ID: investment.UserID, Balance: delta}, nil
		}).Times(1)

	s.mockTransactionRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error) {
			s.Equal(investment.UserID, args.UserID)
			s.Equal(domain.TransactionTypeROI, args.Type)
			s.Equal(domain.TransactionStatusCompleted, args.Status)
			s.True(expectedAmount.Equal(args.Amount))
			s.NotEmpty(args.ReferenceCode)
			s.Equal("Daily ROI from Growth plan (Day 4 of 30)", args.Description)
			return &domain.Transaction{ID: 77, UserID: args.UserID, Amount: args.Amount}, nil
		}).Times(1)

	s.mockInvestmentRepo.EXPECT().
		UpdateLastPayout(gomock.Any(), investment.ID, gomock.Any()).
		Return(nil).Times(1)

	summary, err := s.service.RunUserCycle(s.T().Context(), investment.UserID)
	s.Require().NoError(err)

	s.Equal(1, summary.Payouts)
	s.Equal(0, summary.Completed)
	s.Equal(0, summary.Skipped)
	s.Equal(0, summary.Anomalies)
	s.Equal(0, summary.Failures)
	s.True(expectedAmount.Equal(summary.Accrued))
}

// Завершение и пропуск в одном цикле: по истекшей инвестиции нет выплаты,
// по недавно оплаченной нет движений вообще.
func (s *AccrualServiceTestSuite) TestRunUserCycle_CompletionWithoutPayout() {
	expired := s.activeInvestment(1, 31*24*time.Hour)
	expiredLastPayout := time.Now().Add(-30 * time.Hour)
	expired.LastPayout = &expiredLastPayout

	fresh := s.activeInvestment(2, 10*time.Hour)
	freshLastPayout := time.Now().Add(-time.Hour)
	fresh.LastPayout = &freshLastPayout

	s.mockInvestmentRepo.EXPECT().
		GetActiveByUserID(gomock.Any(), expired.UserID).
		Return([]domain.Investment{expired, fresh}, nil)

	s.expectDo(1)
	s.expectTxRepos()

	s.mockInvestmentRepo.EXPECT().
		Complete(gomock.Any(), expired.ID, gomock.Any()).
		Return(&expired, nil).Times(1)

	summary, err := s.service.RunUserCycle(s.T().Context(), expired.UserID)
	s.Require().NoError(err)

	s.Equal(1, summary.Completed)
	s.Equal(1, summary.Skipped)
	s.Equal(0, summary.Payouts)
	s.True(summary.Accrued.IsZero())
}

// Конкурирующий воркер успел завершить инвестицию первым: переход не находит строку,
// цикл не считает это ошибкой.
func (s *AccrualServiceTestSuite) TestRunUserCycle_IdempotentCompletion() {
	expired := s.activeInvestment(1, 31*24*time.Hour)

	s.mockInvestmentRepo.EXPECT().
		GetActiveByUserID(gomock.Any(), expired.UserID).
		Return([]domain.Investment{expired}, nil)

	s.expectDo(1)
	s.expectTxRepos()

	s.mockInvestmentRepo.EXPECT().
		Complete(gomock.Any(), expired.ID, gomock.Any()).
		Return(nil, domain.ErrRecordNotFound).Times(1)

	summary, err := s.service.RunUserCycle(s.T().Context(), expired.UserID)
	s.Require().NoError(err)

	s.Equal(1, summary.Completed)
	s.Equal(0, summary.Failures)
}

// Некорректная запись логируется и пропускается, остальные инвестиции юзера
// обрабатываются как обычно.
func (s *AccrualServiceTestSuite) TestRunUserCycle_MalformedDoesNotBlockOthers() {
	malformed := s.activeInvestment(1, time.Hour)
	malformed.StartedAt = nil

	due := s.activeInvestment(2, 73*time.Hour)
	dueLastPayout := time.Now().Add(-25 * time.Hour)
	due.LastPayout = &dueLastPayout

	s.mockInvestmentRepo.EXPECT().
		GetActiveByUserID(gomock.Any(), due.UserID).
		Return([]domain.Investment{malformed, due}, nil)

	s.expectDo(1)
	s.expectTxRepos()

	s.mockUserRepo.EXPECT().
		IncrementBalance(gomock.Any(), due.UserID, gomock.Any()).
		Return(&domain.User{ID: due.UserID}, nil).Times(1)
	s.mockTransactionRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&domain.Transaction{ID: 1}, nil).Times(1)
	s.mockInvestmentRepo.EXPECT().
		UpdateLastPayout(gomock.Any(), due.ID, gomock.Any()).
		Return(nil).Times(1)

	summary, err := s.service.RunUserCycle(s.T().Context(), due.UserID)
	s.Require().NoError(err)

	s.Equal(1, summary.Anomalies)
	s.Equal(1, summary.Payouts)
}

// Ошибка записи по одной инвестиции не прерывает цикл: выплата не применяется
// частично, следующая инвестиция обрабатывается.
func (s *AccrualServiceTestSuite) TestRunUserCycle_FailureIsolated() {
	failing := s.activeInvestment(1, 73*time.Hour)
	failing.Amount = decimal.NewFromInt(3000) // 3000 * 15% / 30 = 15
	failingLastPayout := time.Now().Add(-25 * time.Hour)
	failing.LastPayout = &failingLastPayout

	healthy := s.activeInvestment(2, 73*time.Hour)
	healthyLastPayout := time.Now().Add(-26 * time.Hour)
	healthy.LastPayout = &healthyLastPayout

	s.mockInvestmentRepo.EXPECT().
		GetActiveByUserID(gomock.Any(), failing.UserID).
		Return([]domain.Investment{failing, healthy}, nil)

	s.expectDo(2)
	s.expectTxRepos()

	failingAmount := decimal.NewFromInt(15)
	healthyAmount := decimal.NewFromInt(45)

	s.mockUserRepo.EXPECT().
		IncrementBalance(gomock.Any(), failing.UserID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, delta decimal.Decimal) (*domain.User, error) {
			if delta.Equal(failingAmount) {
				return nil, errors.New("connection reset")
			}
			return &domain.User{ID: failing.UserID}, nil
		}).Times(2)

	s.mockTransactionRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&domain.Transaction{ID: 1}, nil).Times(1)
	s.mockInvestmentRepo.EXPECT().
		UpdateLastPayout(gomock.Any(), healthy.ID, gomock.Any()).
		Return(nil).Times(1)

	summary, err := s.service.RunUserCycle(s.T().Context(), failing.UserID)
	s.Require().NoError(err)

	s.Equal(1, summary.Failures)
	s.Equal(1, summary.Payouts)
	s.True(healthyAmount.Equal(summary.Accrued))
}

func (s *AccrualServiceTestSuite) TestActiveInvestorIDs() {
	s.mockInvestmentRepo.EXPECT().
		ActiveUserIDs(gomock.Any(), uint(100)).
		Return([]int64{1, 2, 3}, nil)

	ids, err := s.service.ActiveInvestorIDs(s.T().Context(), 100)
	s.Require().NoError(err)
	s.Equal([]int64{1, 2, 3}, ids)
}
