// services/activity.go - Study time ledger and weekly rollup
package services

import (
	"context"
	"fmt"
	"time"

	"hangeul/metrics"
	"hangeul/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HeartbeatResult struct {
	Day           string `json:"day"`
	ActiveSeconds int    `json:"active_seconds"`
	Credited      int    `json:"credited"`
	WeekStart     string `json:"week_start"`
	WeekSeconds   int    `json:"week_seconds"`
	CurrentStreak int    `json:"current_streak"`
	// Streak is set when this heartbeat crossed the daily threshold and
	// advanced the streak.
	Streak *StreakTransition `json:"streak,omitempty"`
}

// ActivityLedger credits study time per user and business day.
type ActivityLedger struct {
	db      *gorm.DB
	clock   *Clock
	rules   Rules
	streaks *StreakTracker
	metrics metrics.Recorder
	log     zerolog.Logger
}

func NewActivityLedger(db *gorm.DB, clock *Clock, rules Rules, streaks *StreakTracker, rec metrics.Recorder, log zerolog.Logger) *ActivityLedger {
	return &ActivityLedger{
		db:      db,
		clock:   clock,
		rules:   rules,
		streaks: streaks,
		metrics: rec,
		log:     log.With().Str("component", "activity").Logger(),
	}
}

// creditFor converts the gap since the last heartbeat into seconds, never
// negative and never above max.
func creditFor(gap time.Duration, max int) int {
	secs := int(gap / time.Second)
	if secs < 0 {
		return 0
	}
	if secs > max {
		return max
	}
	return secs
}

// RecordHeartbeat credits the time since the previous heartbeat to today's
// row, advances the streak when the daily threshold is crossed and refreshes
// the weekly rollup, all in one transaction.
func (l *ActivityLedger) RecordHeartbeat(ctx context.Context, userID uint, now time.Time) (*HeartbeatResult, error) {
	now = now.UTC()
	day := l.clock.Day(now)
	weekStart := l.clock.WeekStart(day)
	result := &HeartbeatResult{Day: day, WeekStart: weekStart}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.ActivityDay{
			UserID:        userID,
			Day:           day,
			ActiveSeconds: l.rules.HeartbeatCredit,
			LastHeartbeat: now,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return fmt.Errorf("insert activity day: %w", res.Error)
		}

		var prev int
		if res.RowsAffected == 1 {
			result.Credited = l.rules.HeartbeatCredit
			result.ActiveSeconds = l.rules.HeartbeatCredit
		} else {
			var current models.ActivityDay
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("user_id = ? AND day = ?", userID, day).
				First(&current).Error; err != nil {
				return fmt.Errorf("lock activity day: %w", err)
			}

			credit := creditFor(now.Sub(current.LastHeartbeat), l.rules.HeartbeatMaxCredit)
			last := current.LastHeartbeat
			if now.After(last) {
				last = now
			}

			if err := tx.Model(&models.ActivityDay{}).
				Where("id = ?", current.ID).
				Updates(map[string]interface{}{
					"active_seconds": gorm.Expr("active_seconds + ?", credit),
					"last_heartbeat": last,
				}).Error; err != nil {
				return fmt.Errorf("credit activity day: %w", err)
			}

			prev = current.ActiveSeconds
			result.Credited = credit
			result.ActiveSeconds = current.ActiveSeconds + credit
		}

		if prev < l.rules.StreakThreshold && result.ActiveSeconds >= l.rules.StreakThreshold {
			transition, err := l.streaks.advance(tx, userID, day)
			if err != nil {
				return err
			}
			result.Streak = transition
		}

		total, err := l.refreshWeeklyRollup(tx, userID, weekStart)
		if err != nil {
			return err
		}
		result.WeekSeconds = total
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record heartbeat (user_id: %d): %w", userID, err)
	}

	l.metrics.ObserveHeartbeat(result.Credited)
	if result.Streak != nil {
		l.streaks.recordTransition(userID, result.Streak)
	}

	streak, err := l.streaks.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.CurrentStreak = streak.CurrentStreak

	l.log.Debug().
		Uint("user_id", userID).
		Str("day", day).
		Int("credited", result.Credited).
		Int("active_seconds", result.ActiveSeconds).
		Msg("heartbeat recorded")

	return result, nil
}

// RefreshWeeklyRollup recomputes the stored total for the week starting on
// weekStart and returns it.
func (l *ActivityLedger) RefreshWeeklyRollup(ctx context.Context, userID uint, weekStart string) (int, error) {
	var total int
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		total, err = l.refreshWeeklyRollup(tx, userID, weekStart)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("refresh weekly rollup (user_id: %d, week: %s): %w", userID, weekStart, err)
	}
	return total, nil
}

func (l *ActivityLedger) refreshWeeklyRollup(tx *gorm.DB, userID uint, weekStart string) (int, error) {
	var total int64
	if err := tx.Model(&models.ActivityDay{}).
		Select("COALESCE(SUM(active_seconds), 0)").
		Where("user_id = ? AND day >= ? AND day < ?", userID, weekStart, l.clock.AddDays(weekStart, 7)).
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum week: %w", err)
	}

	rollup := models.WeeklyRollup{
		UserID:       userID,
		WeekStart:    weekStart,
		TotalSeconds: int(total),
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_seconds", "updated_at"}),
	}).Create(&rollup).Error; err != nil {
		return 0, fmt.Errorf("upsert weekly rollup: %w", err)
	}
	return int(total), nil
}

// Today returns the user's active seconds for the current business day.
func (l *ActivityLedger) Today(ctx context.Context, userID uint) (int, error) {
	return l.SecondsOn(ctx, userID, l.clock.Today())
}

func (l *ActivityLedger) SecondsOn(ctx context.Context, userID uint, day string) (int, error) {
	var seconds int64
	err := l.db.WithContext(ctx).Model(&models.ActivityDay{}).
		Select("COALESCE(SUM(active_seconds), 0)").
		Where("user_id = ? AND day = ?", userID, day).
		Scan(&seconds).Error
	if err != nil {
		return 0, fmt.Errorf("read active seconds (user_id: %d, day: %s): %w", userID, day, err)
	}
	return int(seconds), nil
}

// Week returns the stored rollup for the week containing today, or zero.
func (l *ActivityLedger) Week(ctx context.Context, userID uint) (*models.WeeklyRollup, error) {
	weekStart := l.clock.WeekStart(l.clock.Today())
	var rollup models.WeeklyRollup
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		Limit(1).
		Find(&rollup).Error
	if err != nil {
		return nil, fmt.Errorf("read weekly rollup (user_id: %d): %w", userID, err)
	}
	if rollup.ID == 0 {
		rollup = models.WeeklyRollup{UserID: userID, WeekStart: weekStart}
	}
	return &rollup, nil
}
