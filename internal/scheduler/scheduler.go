// Package scheduler runs the daily calendar auto-mark sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// sweepTimeout bounds a single sweep run.
const sweepTimeout = 10 * time.Minute

// Sweeper auto-marks a date for every entry that covers it.
type Sweeper interface {
	AutoMarkForDate(ctx context.Context, date time.Time) (int, error)
}

// AutoMarkScheduler triggers the sweep on a cron spec.
type AutoMarkScheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	loc     *time.Location
	logger  *zap.Logger
}

// NewAutoMarkScheduler creates a scheduler whose spec is evaluated in loc.
func NewAutoMarkScheduler(sweeper Sweeper, loc *time.Location, logger *zap.Logger) *AutoMarkScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &AutoMarkScheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		sweeper: sweeper,
		loc:     loc,
		logger:  logger,
	}
}

// Start registers the sweep under spec and starts the cron loop.
// An empty spec leaves the scheduler idle.
func (s *AutoMarkScheduler) Start(spec string) error {
	if spec == "" {
		s.logger.Info("auto-mark sweep disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return fmt.Errorf("invalid auto-mark cron spec %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info("auto-mark sweep scheduled", zap.String("spec", spec), zap.String("timezone", s.loc.String()))
	return nil
}

// Stop waits for a running sweep to finish.
func (s *AutoMarkScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("auto-mark sweep stopped")
}

// Sweep auto-marks today in the scheduler's time zone.
func (s *AutoMarkScheduler) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	now := time.Now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	n, err := s.sweeper.AutoMarkForDate(ctx, today)
	if err != nil {
		s.logger.Error("auto-mark sweep failed", zap.String("date", today.Format("2006-01-02")), zap.Error(err))
		return
	}
	s.logger.Info("auto-mark sweep finished", zap.String("date", today.Format("2006-01-02")), zap.Int("entries", n))
}
