package tick

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"citytycoon-backend/internal/logger"
)

// Scheduler wraps a cron.Cron to run the tick Processor on a fixed cadence
// (spec.md §4.5: "the reference cadence is one tick per ten minutes; the
// cadence is a configuration value, not a contract"). Grounded on the
// cron-wrapper shape used elsewhere in the pack for background jobs, swapped
// to this module's zap logger.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New(), log: logger.Get().With(zap.String("component", "tick_scheduler"))}
}

// Start registers the processor's Run against cadence and starts the
// underlying cron loop.
func (s *Scheduler) Start(cadence string, p *Processor) error {
	_, err := s.cron.AddFunc(cadence, func() {
		s.log.Info("tick fired")
		if err := p.Run(); err != nil {
			s.log.Error("tick processing failed", zap.Error(err))
			return
		}
		s.log.Info("tick completed")
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("tick scheduler started", zap.String("cadence", cadence))
	return nil
}

// Stop drains any in-flight invocation before returning.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("tick scheduler stopped")
}
