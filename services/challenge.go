// services/challenge.go - Daily challenge evaluation
package services

import (
	"context"
	"fmt"
	"math"

	"hangeul/metrics"
	"hangeul/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChallengeGoals is the number of daily sub-goals.
const ChallengeGoals = 6

type ChallengeStatus struct {
	Day                string `json:"day"`
	GrammarQuiz        bool   `json:"grammar_quiz_completed"`
	VocabularyQuiz     bool   `json:"vocab_quiz_completed"`
	MixedQuiz          bool   `json:"mixed_quiz_completed"`
	GrammarQuantity    bool   `json:"grammar_quantity"`
	VocabularyQuantity bool   `json:"vocab_quantity"`
	TimeGoal           bool   `json:"time_goal"`

	GrammarCount    int `json:"grammar_count"`
	VocabularyCount int `json:"vocab_count"`
	ActiveSeconds   int `json:"active_seconds"`

	CompletedCount int `json:"completed_count"`
	Percent        int `json:"daily_progress_percent"`
}

func (s *ChallengeStatus) Complete() bool {
	return s.CompletedCount == ChallengeGoals
}

func (s *ChallengeStatus) tally() {
	n := 0
	for _, ok := range []bool{s.GrammarQuiz, s.VocabularyQuiz, s.MixedQuiz, s.GrammarQuantity, s.VocabularyQuantity, s.TimeGoal} {
		if ok {
			n++
		}
	}
	s.CompletedCount = n
	s.Percent = int(math.Round(float64(n) / ChallengeGoals * 100))
}

// ChallengeResult reports a completion check.
type ChallengeResult struct {
	Status *ChallengeStatus `json:"status"`
	// Counted is true only for the check that recorded today's perfect day.
	Counted     bool `json:"counted"`
	PerfectDays int  `json:"perfect_days"`
}

type ChallengeEvaluator struct {
	db      *gorm.DB
	clock   *Clock
	rules   Rules
	metrics metrics.Recorder
	log     zerolog.Logger
}

func NewChallengeEvaluator(db *gorm.DB, clock *Clock, rules Rules, rec metrics.Recorder, log zerolog.Logger) *ChallengeEvaluator {
	return &ChallengeEvaluator{
		db:      db,
		clock:   clock,
		rules:   rules,
		metrics: rec,
		log:     log.With().Str("component", "challenge").Logger(),
	}
}

// Status evaluates the six sub-goals for a user on day.
func (e *ChallengeEvaluator) Status(ctx context.Context, userID uint, day string) (*ChallengeStatus, error) {
	status, err := e.status(e.db.WithContext(ctx), userID, day)
	if err != nil {
		return nil, fmt.Errorf("daily challenge status (user_id: %d, day: %s): %w", userID, day, err)
	}
	return status, nil
}

func (e *ChallengeEvaluator) status(db *gorm.DB, userID uint, day string) (*ChallengeStatus, error) {
	status := &ChallengeStatus{Day: day}

	var done []models.QuizType
	if err := db.Model(&models.DailyQuizCompletion{}).
		Where("user_id = ? AND completed_day = ?", userID, day).
		Pluck("quiz_type", &done).Error; err != nil {
		return nil, err
	}
	for _, t := range done {
		switch t {
		case models.QuizGrammar:
			status.GrammarQuiz = true
		case models.QuizVocabulary:
			status.VocabularyQuiz = true
		case models.QuizMixed:
			status.MixedQuiz = true
		}
	}

	var grammar, vocabulary int64
	if err := db.Model(&models.GrammarItem{}).
		Where("user_id = ? AND created_day = ?", userID, day).
		Count(&grammar).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.VocabularyItem{}).
		Where("user_id = ? AND created_day = ?", userID, day).
		Count(&vocabulary).Error; err != nil {
		return nil, err
	}

	var seconds int64
	if err := db.Model(&models.ActivityDay{}).
		Select("COALESCE(SUM(active_seconds), 0)").
		Where("user_id = ? AND day = ?", userID, day).
		Scan(&seconds).Error; err != nil {
		return nil, err
	}

	status.GrammarCount = int(grammar)
	status.VocabularyCount = int(vocabulary)
	status.ActiveSeconds = int(seconds)
	status.GrammarQuantity = status.GrammarCount >= e.rules.GrammarDailyGoal
	status.VocabularyQuantity = status.VocabularyCount >= e.rules.VocabularyDailyGoal
	status.TimeGoal = status.ActiveSeconds >= e.rules.TimeGoalSeconds
	status.tally()

	return status, nil
}

// CheckCompletion counts today as a perfect day when all sub-goals are met.
// The perfect_days unique key makes repeated checks on the same day no-ops.
func (e *ChallengeEvaluator) CheckCompletion(ctx context.Context, userID uint) (*ChallengeResult, error) {
	today := e.clock.Today()
	result := &ChallengeResult{}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		status, err := e.status(tx, userID, today)
		if err != nil {
			return err
		}
		result.Status = status
		if !status.Complete() {
			return nil
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PerfectDay{UserID: userID, Day: today})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.DailyChallengeCounter{UserID: userID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.DailyChallengeCounter{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"current_number":       gorm.Expr("current_number + 1"),
				"last_incremented_day": today,
			}).Error; err != nil {
			return err
		}
		result.Counted = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("check daily challenge (user_id: %d): %w", userID, err)
	}

	result.PerfectDays, err = e.PerfectDays(ctx, userID)
	if err != nil {
		return nil, err
	}

	if result.Counted {
		e.metrics.IncPerfectDay()
		e.log.Info().
			Uint("user_id", userID).
			Str("day", today).
			Int("perfect_days", result.PerfectDays).
			Msg("daily challenge completed")
	}
	return result, nil
}

// PerfectDays returns the lifetime DailyChallengeCounter value.
func (e *ChallengeEvaluator) PerfectDays(ctx context.Context, userID uint) (int, error) {
	var counter models.DailyChallengeCounter
	if err := e.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&counter).Error; err != nil {
		return 0, fmt.Errorf("read perfect days (user_id: %d): %w", userID, err)
	}
	return counter.CurrentNumber, nil
}
