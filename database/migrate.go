// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"

	"hangeul/models"

	"gorm.io/gorm"
)

// Migrate creates or updates every table and the secondary indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.GrammarItem{},
		&models.VocabularyItem{},
		&models.ActivityDay{},
		&models.WeeklyRollup{},
		&models.StreakState{},
		&models.DailyQuizCompletion{},
		&models.QuizCount{},
		&models.DailyChallengeCounter{},
		&models.PerfectDay{},
		&models.Achievement{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return createIndexes(db)
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Daily counts and quiz selection
		"CREATE INDEX IF NOT EXISTS idx_grammar_items_user_day ON grammar_items(user_id, created_day)",
		"CREATE INDEX IF NOT EXISTS idx_grammar_items_user_asked ON grammar_items(user_id, asked)",
		"CREATE INDEX IF NOT EXISTS idx_vocabulary_items_user_day ON vocabulary_items(user_id, created_day)",
		"CREATE INDEX IF NOT EXISTS idx_vocabulary_items_user_asked ON vocabulary_items(user_id, asked)",

		// Staleness sweep
		"CREATE INDEX IF NOT EXISTS idx_streak_states_last_success ON streak_states(last_success_date)",

		"CREATE INDEX IF NOT EXISTS idx_achievements_user_status ON achievements(user_id, status)",
	}

	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
