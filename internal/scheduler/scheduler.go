// Package scheduler runs recurring billing jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/diewo77/school-billing/internal/billing"
)

const jobTimeout = 4 * time.Minute

// GenerateFunc issues invoices for one period.
type GenerateFunc func(ctx context.Context, period billing.Period) error

// Scheduler wraps a cron runner. Overlapping runs of a job are skipped.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
	now  func() time.Time
}

func New(log *zap.Logger) *Scheduler {
	logger := cron.PrintfLogger(zap.NewStdLog(log.Named("cron")))
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		log:  log,
		now:  time.Now,
	}
}

// MonthlyInvoices registers invoice generation for the current period on
// spec, a standard five-field cron expression. An empty spec registers
// nothing.
func (s *Scheduler) MonthlyInvoices(spec string, run GenerateFunc) error {
	if spec == "" {
		s.log.Info("invoice schedule disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.generate(run) }); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	s.log.Info("invoice schedule registered", zap.String("spec", spec))
	return nil
}

func (s *Scheduler) generate(run GenerateFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	period := billing.PeriodOf(s.now())
	if err := run(ctx, period); err != nil {
		s.log.Error("scheduled generation failed", zap.Stringer("period", period), zap.Error(err))
		return
	}
	s.log.Info("scheduled generation done", zap.Stringer("period", period))
}

// Jobs reports the number of registered jobs.
func (s *Scheduler) Jobs() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for a running job until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}
