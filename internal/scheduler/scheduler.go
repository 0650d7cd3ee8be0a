package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Jobs are the operations the scheduler drives. Injected as functions
// so the scheduler stays free of domain wiring.
type Jobs struct {
	FetchWeeklyGames func(ctx context.Context) error
	UpdateScores     func(ctx context.Context) error
	GradeCompleted   func(ctx context.Context) error
}

// Scheduler runs the weekly acquisition on a cron schedule and polls
// for score updates and grading on a fixed ticker.
type Scheduler struct {
	jobs Jobs

	acquisitionCron    string
	gradingInterval    time.Duration
	acquisitionTimeout time.Duration
	gradingTimeout     time.Duration

	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
}

// Options configures the scheduler's cadence and per-run deadlines.
type Options struct {
	AcquisitionCron    string
	GradingInterval    time.Duration
	AcquisitionTimeout time.Duration
	GradingTimeout     time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(jobs Jobs, opts Options) *Scheduler {
	return &Scheduler{
		jobs:               jobs,
		acquisitionCron:    opts.AcquisitionCron,
		gradingInterval:    opts.GradingInterval,
		acquisitionTimeout: opts.AcquisitionTimeout,
		gradingTimeout:     opts.GradingTimeout,
		cron:               cron.New(),
		stopChan:           make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.acquisitionCron, func() {
		log.Info().Msg("Running weekly acquisition...")
		if err := s.runAcquisition(ctx); err != nil {
			log.Error().Err(err).Msg("Weekly acquisition failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule weekly acquisition: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.acquisitionCron).
		Msg("Weekly acquisition scheduled")

	s.ticker = time.NewTicker(s.gradingInterval)
	log.Info().
		Dur("interval", s.gradingInterval).
		Msg("Grading poll started")

	go s.pollGrading(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// pollGrading drives the score-update and grading loop.
func (s *Scheduler) pollGrading(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping grading poll")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping grading poll")
			return
		case <-s.ticker.C:
			if err := s.runGradingPass(ctx); err != nil {
				log.Error().Err(err).Msg("Grading pass failed")
			}
		}
	}
}

// runAcquisition runs one acquisition with its own deadline. An
// acquisition that overruns keeps whatever it managed to persist.
func (s *Scheduler) runAcquisition(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.acquisitionTimeout)
	defer cancel()
	return s.jobs.FetchWeeklyGames(ctx)
}

// runGradingPass updates scores then grades, under one deadline. The
// deadline aborts grading hard; the next tick starts clean.
func (s *Scheduler) runGradingPass(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.gradingTimeout)
	defer cancel()

	if err := s.jobs.UpdateScores(ctx); err != nil {
		return fmt.Errorf("score update: %w", err)
	}
	if err := s.jobs.GradeCompleted(ctx); err != nil {
		return fmt.Errorf("grading: %w", err)
	}

	log.Debug().
		Dur("duration", time.Since(start)).
		Msg("Grading pass complete")

	return nil
}
