package service

import (
	"context"
	"testing"
	"time"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/repository/repoargs"
	"github.com/fsdevblog/copytrade/internal/service/mocks"
	"github.com/fsdevblog/copytrade/pkg/uow"
	uowmocks "github.com/fsdevblog/copytrade/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvestmentServiceTestSuite struct {
	suite.Suite
	mockCtrl           *gomock.Controller
	mockUOW            *uowmocks.MockUOW
	mockInvestmentRepo *mocks.MockInvestmentRepository
	mockPlanRepo       *mocks.MockPlanRepository
	service            *InvestmentService
}

func TestInvestmentServiceSuite(t *testing.T) {
	suite.Run(t, new(InvestmentServiceTestSuite))
}

func (s *InvestmentServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockInvestmentRepo = mocks.NewMockInvestmentRepository(s.mockCtrl)
	s.mockPlanRepo = mocks.NewMockPlanRepository(s.mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.InvestmentRepoName)).
		Return(s.mockInvestmentRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.PlanRepoName)).
		Return(s.mockPlanRepo, nil).AnyTimes()

	var err error
	s.service, err = NewInvestmentService(s.mockUOW)
	s.Require().NoError(err)
}

func (s *InvestmentServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *InvestmentServiceTestSuite) growthPlan() *domain.Plan {
	return &domain.Plan{
		ID:        2,
		Name:      "Growth",
		ROI:       decimal.NewFromInt(10),
		MinAmount: decimal.NewFromInt(5000),
		MaxAmount: decimal.NewFromFloat(19999.99),
		TermDays:  30,
	}
}

func (s *InvestmentServiceTestSuite) TestCreate() {
	plan := s.growthPlan()
	args := CreateInvestmentArgs{
		UserID:   123,
		PlanName: plan.Name,
		Amount:   decimal.NewFromInt(9000),
	}

	s.mockPlanRepo.EXPECT().
		FindByName(gomock.Any(), plan.Name).
		Return(plan, nil)

	s.mockInvestmentRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, createArgs repoargs.InvestmentCreate) (*domain.Investment, error) {
			s.Equal(args.UserID, createArgs.UserID)
			s.Equal(plan.Name, createArgs.PlanName)
			s.NotEmpty(createArgs.OrderCode)
			s.True(args.Amount.Equal(createArgs.Amount))
			// ставка и срок копируются из плана на момент создания.
			s.True(plan.ROI.Equal(createArgs.ROI))
			s.Equal(plan.TermDays, createArgs.TermDays)
			return &domain.Investment{
				ID:       1,
				UserID:   createArgs.UserID,
				PlanName: createArgs.PlanName,
				Amount:   createArgs.Amount,
				Status:   domain.InvestmentStatusPending,
			}, nil
		})

	investment, err := s.service.Create(s.T().Context(), args)
	s.Require().NoError(err)
	s.Equal(domain.InvestmentStatusPending, investment.Status)
}

func (s *InvestmentServiceTestSuite) TestCreate_AmountOutOfRange() {
	plan := s.growthPlan()

	cases := []struct {
		name   string
		amount decimal.Decimal
	}{
		{name: "below minimum", amount: decimal.NewFromFloat(4999.99)},
		{name: "above maximum", amount: decimal.NewFromInt(20000)},
	}

	s.mockPlanRepo.EXPECT().
		FindByName(gomock.Any(), plan.Name).
		Return(plan, nil).Times(len(cases))

	for _, t := range cases {
		s.Run(t.name, func() {
			_, err := s.service.Create(s.T().Context(), CreateInvestmentArgs{
				UserID:   123,
				PlanName: plan.Name,
				Amount:   t.amount,
			})
			var rangeErr *domain.AmountOutOfPlanRangeError
			s.Require().ErrorAs(err, &rangeErr)
			s.Equal(plan.Name, rangeErr.PlanName)
		})
	}
}

func (s *InvestmentServiceTestSuite) TestCreate_UnknownPlan() {
	s.mockPlanRepo.EXPECT().
		FindByName(gomock.Any(), "Imperial").
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.service.Create(s.T().Context(), CreateInvestmentArgs{
		UserID:   123,
		PlanName: "Imperial",
		Amount:   decimal.NewFromInt(9000),
	})
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *InvestmentServiceTestSuite) TestActivate() {
	startedAt := time.Now()
	activated := domain.Investment{
		ID:        1,
		UserID:    123,
		Status:    domain.InvestmentStatusActive,
		StartedAt: &startedAt,
	}

	s.mockInvestmentRepo.EXPECT().
		Activate(gomock.Any(), activated.ID, gomock.Any()).
		Return(&activated, nil)

	investment, err := s.service.Activate(s.T().Context(), activated.ID)
	s.Require().NoError(err)
	s.Equal(domain.InvestmentStatusActive, investment.Status)
	s.NotNil(investment.StartedAt)
}

func (s *InvestmentServiceTestSuite) TestActivate_AlreadyActive() {
	investmentID := int64(1)

	s.mockInvestmentRepo.EXPECT().
		Activate(gomock.Any(), investmentID, gomock.Any()).
		Return(nil, domain.ErrRecordNotFound)
	s.mockInvestmentRepo.EXPECT().
		FindByID(gomock.Any(), investmentID).
		Return(&domain.Investment{ID: investmentID, Status: domain.InvestmentStatusActive}, nil)

	_, err := s.service.Activate(s.T().Context(), investmentID)
	s.Require().ErrorIs(err, domain.ErrInvalidStatusTransition)
}

func (s *InvestmentServiceTestSuite) TestCancel_Pending() {
	cancelled := domain.Investment{ID: 1, Status: domain.InvestmentStatusCancelled}

	s.mockInvestmentRepo.EXPECT().
		UpdateStatus(gomock.Any(), cancelled.ID, domain.InvestmentStatusPending, domain.InvestmentStatusCancelled).
		Return(&cancelled, nil)

	investment, err := s.service.Cancel(s.T().Context(), cancelled.ID)
	s.Require().NoError(err)
	s.Equal(domain.InvestmentStatusCancelled, investment.Status)
}

func (s *InvestmentServiceTestSuite) TestCancel_Active() {
	cancelled := domain.Investment{ID: 1, Status: domain.InvestmentStatusCancelled}

	s.mockInvestmentRepo.EXPECT().
		UpdateStatus(gomock.Any(), cancelled.ID, domain.InvestmentStatusPending, domain.InvestmentStatusCancelled).
		Return(nil, domain.ErrRecordNotFound)
	s.mockInvestmentRepo.EXPECT().
		UpdateStatus(gomock.Any(), cancelled.ID, domain.InvestmentStatusActive, domain.InvestmentStatusCancelled).
		Return(&cancelled, nil)

	investment, err := s.service.Cancel(s.T().Context(), cancelled.ID)
	s.Require().NoError(err)
	s.Equal(domain.InvestmentStatusCancelled, investment.Status)
}

func (s *InvestmentServiceTestSuite) TestCancel_Completed() {
	investmentID := int64(1)

	s.mockInvestmentRepo.EXPECT().
		UpdateStatus(gomock.Any(), investmentID, domain.InvestmentStatusPending, domain.InvestmentStatusCancelled).
		Return(nil, domain.ErrRecordNotFound)
	s.mockInvestmentRepo.EXPECT().
		UpdateStatus(gomock.Any(), investmentID, domain.InvestmentStatusActive, domain.InvestmentStatusCancelled).
		Return(nil, domain.ErrRecordNotFound)
	s.mockInvestmentRepo.EXPECT().
		FindByID(gomock.Any(), investmentID).
		Return(&domain.Investment{ID: investmentID, Status: domain.InvestmentStatusCompleted}, nil)

	_, err := s.service.Cancel(s.T().Context(), investmentID)
	s.Require().ErrorIs(err, domain.ErrInvalidStatusTransition)
}

func (s *InvestmentServiceTestSuite) TestPlans() {
	plans := []domain.Plan{*s.growthPlan()}

	s.mockPlanRepo.EXPECT().
		GetAll(gomock.Any()).
		Return(plans, nil)

	result, err := s.service.Plans(s.T().Context())
	s.Require().NoError(err)
	s.Len(result, 1)
	s.Equal("Growth", result[0].Name)
}
