package di

import (
	"fmt"

	"hangeul/config"
	"hangeul/database"
	"hangeul/metrics"
	"hangeul/services"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ProvideDB opens and migrates the database.
func ProvideDB(conf *config.Config, log zerolog.Logger) (*gorm.DB, func(), error) {
	db, cleanup, err := database.Open(conf, log)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, cleanup, nil
}

func ProvideClock(conf *config.Config) (*services.Clock, error) {
	return services.LoadClock(conf.Clock.Timezone)
}

func ProvideAchievementEngine(db *gorm.DB, clock *services.Clock, conf *config.Config, seeded services.SeedCache, rec metrics.Recorder, log zerolog.Logger) *services.AchievementEngine {
	return services.NewAchievementEngine(db, clock, conf.Achievements.TemplateUserID, seeded, rec, log)
}

func ProvideStreakSweeper(streaks *services.StreakTracker, clock *services.Clock, conf *config.Config, log zerolog.Logger) *services.StreakSweeper {
	return services.NewStreakSweeper(streaks, clock, conf.Sweep.Cron, log)
}

// ServiceSet builds the progression services on top of a database.
var ServiceSet = wire.NewSet(
	ProvideClock,
	services.RulesFromConfig,
	services.NewSeedCache,
	services.NewHub,
	services.NewStreakTracker,
	services.NewActivityLedger,
	services.NewChallengeEvaluator,
	services.NewQuizTracker,
	ProvideAchievementEngine,
	services.NewContentService,
	services.NewVocabularyImporter,
	services.NewEngine,
	ProvideStreakSweeper,
)
