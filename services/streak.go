// services/streak.go - Consecutive-day study streaks
package services

import (
	"context"
	"errors"
	"fmt"

	"hangeul/metrics"
	"hangeul/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Streak transition kinds, also used as metric labels.
const (
	StreakStarted   = "started"
	StreakExtended  = "extended"
	StreakRestarted = "restarted"
	StreakDecayed   = "decayed"
)

// StreakTransition describes one change of current_streak.
type StreakTransition struct {
	Kind     string `json:"kind"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
}

type StreakStatus struct {
	CurrentStreak   int     `json:"current_streak"`
	LongestStreak   int     `json:"longest_streak"`
	LastSuccessDate *string `json:"last_success_date"`
	// Decay is set when this read reset a stale streak to zero.
	Decay *StreakTransition `json:"-"`
}

type StreakTracker struct {
	db      *gorm.DB
	clock   *Clock
	rules   Rules
	metrics metrics.Recorder
	log     zerolog.Logger
}

func NewStreakTracker(db *gorm.DB, clock *Clock, rules Rules, rec metrics.Recorder, log zerolog.Logger) *StreakTracker {
	return &StreakTracker{
		db:      db,
		clock:   clock,
		rules:   rules,
		metrics: rec,
		log:     log.With().Str("component", "streak").Logger(),
	}
}

// NextStreak is the threshold-cross rule: a success within graceDays of the
// previous one extends the streak, anything later restarts it at 1.
func NextStreak(current int, lastSuccess *string, today string, graceDays int) int {
	if lastSuccess == nil {
		return 1
	}
	if daysBetween(*lastSuccess, today) <= graceDays {
		return current + 1
	}
	return 1
}

func streakKind(previous int, lastSuccess *string, next int) string {
	switch {
	case lastSuccess == nil:
		return StreakStarted
	case next == previous+1:
		return StreakExtended
	default:
		return StreakRestarted
	}
}

// advance applies the threshold-cross transition for today inside tx. It
// returns nil when today's success was already recorded.
func (s *StreakTracker) advance(tx *gorm.DB, userID uint, today string) (*StreakTransition, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.StreakState{UserID: userID}).Error; err != nil {
		return nil, fmt.Errorf("ensure streak state (user_id: %d): %w", userID, err)
	}

	var state models.StreakState
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&state).Error; err != nil {
		return nil, fmt.Errorf("lock streak state (user_id: %d): %w", userID, err)
	}

	if state.LastSuccessDate != nil && *state.LastSuccessDate == today {
		return nil, nil
	}

	next := NextStreak(state.CurrentStreak, state.LastSuccessDate, today, s.rules.StreakGraceDays)
	longest := state.LongestStreak
	if next > longest {
		longest = next
	}

	// The date guard keeps a second crossing on the same day a no-op even
	// where the row lock is not honoured.
	res := tx.Model(&models.StreakState{}).
		Where("user_id = ? AND (last_success_date IS NULL OR last_success_date <> ?)", userID, today).
		Updates(map[string]interface{}{
			"current_streak":    next,
			"longest_streak":    longest,
			"last_success_date": today,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("advance streak (user_id: %d): %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	return &StreakTransition{
		Kind:     streakKind(state.CurrentStreak, state.LastSuccessDate, next),
		Previous: state.CurrentStreak,
		Current:  next,
	}, nil
}

// recordTransition is called once the transaction holding t has committed.
func (s *StreakTracker) recordTransition(userID uint, t *StreakTransition) {
	s.metrics.IncStreakTransition(t.Kind)
	s.log.Info().
		Uint("user_id", userID).
		Str("kind", t.Kind).
		Int("previous", t.Previous).
		Int("current", t.Current).
		Msg("streak changed")
}

// Current reads a user's streak, first resetting it to zero when the last
// success is older than the grace window. A user without a row has no streak.
func (s *StreakTracker) Current(ctx context.Context, userID uint) (*StreakStatus, error) {
	db := s.db.WithContext(ctx)
	cutoff := s.clock.AddDays(s.clock.Today(), -s.rules.StreakGraceDays)

	var previous int
	var decay *StreakTransition
	err := db.Transaction(func(tx *gorm.DB) error {
		var state models.StreakState
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND last_success_date IS NOT NULL AND last_success_date < ? AND current_streak <> 0", userID, cutoff).
			First(&state).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		previous = state.CurrentStreak

		res := tx.Model(&models.StreakState{}).
			Where("user_id = ? AND current_streak <> 0", userID).
			Update("current_streak", 0)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			decay = &StreakTransition{Kind: StreakDecayed, Previous: previous, Current: 0}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("check stale streak (user_id: %d): %w", userID, err)
	}
	if decay != nil {
		s.recordTransition(userID, decay)
	}

	var state models.StreakState
	err = db.Where("user_id = ?", userID).Limit(1).Find(&state).Error
	if err != nil {
		return nil, fmt.Errorf("read streak (user_id: %d): %w", userID, err)
	}

	return &StreakStatus{
		CurrentStreak:   state.CurrentStreak,
		LongestStreak:   state.LongestStreak,
		LastSuccessDate: state.LastSuccessDate,
		Decay:           decay,
	}, nil
}

// DecayStale applies the staleness reset to every user at once and returns
// how many streaks were cleared.
func (s *StreakTracker) DecayStale(ctx context.Context) (int64, error) {
	cutoff := s.clock.AddDays(s.clock.Today(), -s.rules.StreakGraceDays)

	res := s.db.WithContext(ctx).
		Model(&models.StreakState{}).
		Where("last_success_date IS NOT NULL AND last_success_date < ? AND current_streak <> 0", cutoff).
		Update("current_streak", 0)
	if res.Error != nil {
		return 0, fmt.Errorf("decay stale streaks: %w", res.Error)
	}
	return res.RowsAffected, nil
}
