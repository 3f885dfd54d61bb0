package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/copytrade/internal/service"
	"github.com/fsdevblog/copytrade/internal/worker/mocks"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type AccrualWorkerTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockServicer
	worker      *AccrualWorker
}

func TestAccrualWorkerSuite(t *testing.T) {
	suite.Run(t, new(AccrualWorkerTestSuite))
}

func (s *AccrualWorkerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockServicer(s.ctrl)

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	s.worker = New(s.mockService, logger).SetLimitPerIteration(10)
}

func (s *AccrualWorkerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AccrualWorkerTestSuite) TestRunOnce() {
	s.mockService.EXPECT().
		ActiveInvestorIDs(gomock.Any(), s.worker.limitPerIteration).
		Return([]int64{100, 101}, nil)

	s.mockService.EXPECT().
		RunUserCycle(gomock.Any(), int64(100)).
		Return(&service.CycleSummary{UserID: 100, Payouts: 1, Accrued: decimal.NewFromInt(45)}, nil)
	s.mockService.EXPECT().
		RunUserCycle(gomock.Any(), int64(101)).
		Return(&service.CycleSummary{UserID: 101, Skipped: 2}, nil)

	s.worker.runOnce(s.T().Context())
}

// Ошибка цикла по одному юзеру не прерывает проход по остальным.
func (s *AccrualWorkerTestSuite) TestRunOnce_CycleErrorContinues() {
	s.mockService.EXPECT().
		ActiveInvestorIDs(gomock.Any(), s.worker.limitPerIteration).
		Return([]int64{100, 101}, nil)

	s.mockService.EXPECT().
		RunUserCycle(gomock.Any(), int64(100)).
		Return(nil, errors.New("connection reset"))
	s.mockService.EXPECT().
		RunUserCycle(gomock.Any(), int64(101)).
		Return(&service.CycleSummary{UserID: 101, Payouts: 1, Accrued: decimal.NewFromInt(15)}, nil)

	s.worker.runOnce(s.T().Context())
}

func (s *AccrualWorkerTestSuite) TestRunOnce_NoActiveInvestments() {
	s.mockService.EXPECT().
		ActiveInvestorIDs(gomock.Any(), s.worker.limitPerIteration).
		Return([]int64{}, nil)

	s.worker.runOnce(s.T().Context())
}

// По отмене контекста цикл не запускается вовсе.
func (s *AccrualWorkerTestSuite) TestRunOnce_CancelledContext() {
	ctx, cancel := context.WithCancel(s.T().Context())
	cancel()

	s.worker.runOnce(ctx)
}

// Run выполняет немедленный цикл и завершается по отмене контекста.
func (s *AccrualWorkerTestSuite) TestRun_StopsOnContextCancel() {
	ctx, cancel := context.WithCancel(s.T().Context())

	s.mockService.EXPECT().
		ActiveInvestorIDs(gomock.Any(), s.worker.limitPerIteration).
		DoAndReturn(func(_ context.Context, _ uint) ([]int64, error) {
			cancel()
			return nil, nil
		})

	done := make(chan struct{})
	go func() {
		s.worker.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.Fail("worker did not stop after context cancellation")
	}
}
