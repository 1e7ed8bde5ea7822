// services/streak_sweep.go - Nightly stale streak reset
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// StreakSweeper applies the staleness reset to all users on a schedule, so
// streaks decay even for users who never open the app again.
type StreakSweeper struct {
	scheduler *gocron.Scheduler
	streaks   *StreakTracker
	cron      string
	timeout   time.Duration
	log       zerolog.Logger
}

func NewStreakSweeper(streaks *StreakTracker, clock *Clock, cron string, log zerolog.Logger) *StreakSweeper {
	return &StreakSweeper{
		scheduler: gocron.NewScheduler(clock.Location()),
		streaks:   streaks,
		cron:      cron,
		timeout:   time.Minute,
		log:       log.With().Str("component", "sweeper").Logger(),
	}
}

// Start schedules the sweep and runs the scheduler in the background.
func (s *StreakSweeper) Start() error {
	if _, err := s.scheduler.Cron(s.cron).SingletonMode().Do(s.Sweep); err != nil {
		return fmt.Errorf("schedule streak sweep (cron: %s): %w", s.cron, err)
	}
	s.scheduler.StartAsync()
	s.log.Info().Str("cron", s.cron).Msg("streak sweeper started")
	return nil
}

func (s *StreakSweeper) Stop() {
	s.scheduler.Stop()
	s.log.Info().Msg("streak sweeper stopped")
}

// Sweep runs one pass.
func (s *StreakSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.streaks.DecayStale(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("streak sweep failed")
		return
	}
	for i := int64(0); i < n; i++ {
		s.streaks.metrics.IncStreakTransition(StreakDecayed)
	}
	s.log.Info().Int64("reset", n).Msg("streak sweep finished")
}
