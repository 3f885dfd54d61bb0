// Package worker запускает фоновые циклы начисления доходности по расписанию.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/copytrade/internal/service"
)

const (
	defaultInterval               = time.Hour
	defaultLimitPerIteration uint = 100
)

//go:generate mockgen -source=accrual_worker.go -destination=mocks/mocks.go -package=mocks

// Servicer интерфейс движка начислений, используемый воркером.
type Servicer interface {
	ActiveInvestorIDs(ctx context.Context, limit uint) ([]int64, error)
	RunUserCycle(ctx context.Context, userID int64) (*service.CycleSummary, error)
}

// AccrualWorker владеет расписанием циклов начисления: один цикл сразу при старте,
// далее с фиксированным интервалом до отмены контекста.
type AccrualWorker struct {
	svs               Servicer
	cron              *cron.Cron
	l                 *logrus.Entry
	interval          time.Duration
	limitPerIteration uint
}

func New(svs Servicer, l *logrus.Logger) *AccrualWorker {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "accrual",
		"module":    "worker",
	})

	return &AccrualWorker{
		svs:               svs,
		cron:              cron.New(),
		l:                 loggerEntry,
		interval:          defaultInterval,
		limitPerIteration: defaultLimitPerIteration,
	}
}

// SetInterval устанавливает период между циклами начисления.
func (w *AccrualWorker) SetInterval(interval time.Duration) *AccrualWorker {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// SetLimitPerIteration устанавливает кол-во юзеров, обрабатываемых за один цикл.
func (w *AccrualWorker) SetLimitPerIteration(limit uint) *AccrualWorker {
	w.limitPerIteration = limit
	return w
}

// Run блокируется до отмены контекста. Алгоритм работы:
//  1. Выполняет один цикл немедленно.
//  2. Регистрирует cron задачу с периодом interval.
//  3. По отмене контекста останавливает расписание и дожидается завершения
//     текущего цикла, если он выполняется.
func (w *AccrualWorker) Run(ctx context.Context) {
	w.l.WithFields(logrus.Fields{
		"interval":          w.interval.String(),
		"limitPerIteration": w.limitPerIteration,
	}).Info("Starting")

	w.runOnce(ctx)

	if _, err := w.cron.AddFunc(fmt.Sprintf("@every %s", w.interval), func() {
		w.runOnce(ctx)
	}); err != nil {
		// единственный источник ошибки - неразборчивый cron spec, а он собирается из Duration.
		w.l.WithError(err).Error("scheduling accrual job")
		return
	}
	w.cron.Start()

	<-ctx.Done()
	<-w.cron.Stop().Done()
	w.l.Info("Got stop signal, exiting...")
}

// runOnce один проход: получает юзеров с активными инвестициями и прогоняет цикл
// начисления по каждому последовательно. Ошибка по одному юзеру не прерывает проход.
func (w *AccrualWorker) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	userIDs, idsErr := w.svs.ActiveInvestorIDs(ctx, w.limitPerIteration)
	if idsErr != nil {
		w.l.WithError(idsErr).Error("getting active investors")
		return
	}
	if len(userIDs) == 0 {
		w.l.Debug("no active investments, nothing to do")
		return
	}

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		summary, cycleErr := w.svs.RunUserCycle(ctx, userID)
		if cycleErr != nil {
			w.l.WithError(cycleErr).WithField("userID", userID).Error("accrual cycle")
			continue
		}
		w.l.WithFields(logrus.Fields{
			"userID":    summary.UserID,
			"payouts":   summary.Payouts,
			"completed": summary.Completed,
			"skipped":   summary.Skipped,
			"anomalies": summary.Anomalies,
			"failures":  summary.Failures,
			"accrued":   summary.Accrued.String(),
		}).Info("cycle finished")
	}
}
