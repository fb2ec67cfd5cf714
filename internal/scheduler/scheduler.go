package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/telegram-activity-bot/internal/models"
	"github.com/telegram-activity-bot/internal/report"
)

// Scheduler runs the daily and weekly reporting triggers on cron
// schedules in the configured timezone.
type Scheduler struct {
	dispatcher *report.Dispatcher
	config     *models.BotConfig
	timezone   *time.Location
	cron       *cron.Cron
	logger     zerolog.Logger
}

// New creates a scheduler with the daily and weekly jobs registered.
func New(
	dispatcher *report.Dispatcher,
	config *models.BotConfig,
	timezone *time.Location,
	logger zerolog.Logger,
) (*Scheduler, error) {
	s := &Scheduler{
		dispatcher: dispatcher,
		config:     config,
		timezone:   timezone,
		cron:       cron.New(cron.WithLocation(timezone)),
		logger:     logger.With().Str("component", "scheduler").Logger(),
	}

	if _, err := s.cron.AddFunc(config.DailyCronSpec, s.runDaily); err != nil {
		return nil, fmt.Errorf("invalid daily cron spec %q: %w", config.DailyCronSpec, err)
	}
	if _, err := s.cron.AddFunc(config.WeeklyCronSpec, s.runWeekly); err != nil {
		return nil, fmt.Errorf("invalid weekly cron spec %q: %w", config.WeeklyCronSpec, err)
	}

	return s, nil
}

// Start starts the cron loop and blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info().
		Str("daily_cron", s.config.DailyCronSpec).
		Str("weekly_cron", s.config.WeeklyCronSpec).
		Str("timezone", s.timezone.String()).
		Msg("Starting scheduler")

	s.cron.Start()

	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
	return ctx.Err()
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

// runDaily dispatches reports for today's single-day window
func (s *Scheduler) runDaily() {
	start, end := report.DayWindow(time.Now().In(s.timezone))
	s.run("daily", start, end)
}

// runWeekly dispatches reports for the trailing 7-day window
func (s *Scheduler) runWeekly() {
	start, end := report.WeekWindow(time.Now().In(s.timezone))
	s.run("weekly", start, end)
}

// run executes one scheduled reporting run. Failures are logged only:
// a failed run must never take the process down, and the next trigger
// recomputes everything from the store anyway.
func (s *Scheduler) run(trigger, start, end string) {
	logger := s.logger.With().
		Str("trigger", trigger).
		Str("start", start).
		Str("end", end).
		Logger()

	logger.Info().Msg("Scheduled reporting run starting")

	outcome, err := s.dispatcher.DispatchAll(context.Background(), start, end)
	if err != nil {
		logger.Error().Err(err).Msg("Scheduled reporting run failed")
		return
	}

	logger.Info().
		Int("sent", outcome.Sent).
		Int("failed", outcome.Failed).
		Msg("Scheduled reporting run completed")
}
