// Package jobs runs the clinic's scheduled background work.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

const reportTimeout = 2 * time.Minute

// DailyReporter sends the report of one day.
type DailyReporter interface {
	SendDailyReport(ctx context.Context, day time.Time) error
}

// Scheduler wraps a gocron scheduler running in local time.
type Scheduler struct {
	scheduler *gocron.Scheduler
	logger    zerolog.Logger
}

func NewScheduler(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		logger:    logger.With().Str("component", "jobs").Logger(),
	}
}

// ScheduleDailyReport sends the report of the current day every day at
// the HH:MM time at.
func (s *Scheduler) ScheduleDailyReport(at string, reporter DailyReporter) error {
	_, err := s.scheduler.Every(1).Day().At(at).Do(func() {
		runDailyReport(reporter, time.Now(), s.logger)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule daily report at %s: %w", at, err)
	}
	s.logger.Info().Str("at", at).Msg("daily report scheduled")
	return nil
}

// ScheduleEvery runs fn at a fixed interval.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, fn func()) error {
	if _, err := s.scheduler.Every(interval).Do(fn); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.logger.Info().Str("job", name).Dur("interval", interval).Msg("job scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func runDailyReport(reporter DailyReporter, day time.Time, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	logger.Info().Str("day", day.Format("2006-01-02")).Msg("sending daily report")
	if err := reporter.SendDailyReport(ctx, day); err != nil {
		logger.Error().Err(err).Msg("daily report failed")
	}
}
