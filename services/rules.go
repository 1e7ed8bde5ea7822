package services

import "hangeul/config"

// Rules are the thresholds of the progression engine.
type Rules struct {
	HeartbeatCredit     int
	HeartbeatMaxCredit  int
	StreakThreshold     int
	StreakGraceDays     int
	GrammarDailyGoal    int
	VocabularyDailyGoal int
	TimeGoalSeconds     int
	GeneralQuizSize     int
}

func DefaultRules() Rules {
	return Rules{
		HeartbeatCredit:     30,
		HeartbeatMaxCredit:  120,
		StreakThreshold:     3600,
		StreakGraceDays:     3,
		GrammarDailyGoal:    3,
		VocabularyDailyGoal: 20,
		TimeGoalSeconds:     2 * 3600,
		GeneralQuizSize:     100,
	}
}

func RulesFromConfig(conf *config.Config) Rules {
	p := conf.Progression
	return Rules{
		HeartbeatCredit:     p.HeartbeatCredit,
		HeartbeatMaxCredit:  p.HeartbeatMaxCredit,
		StreakThreshold:     p.StreakThreshold,
		StreakGraceDays:     p.StreakGraceDays,
		GrammarDailyGoal:    p.GrammarDailyGoal,
		VocabularyDailyGoal: p.VocabularyDailyGoal,
		TimeGoalSeconds:     p.TimeGoalHours * 3600,
		GeneralQuizSize:     p.GeneralQuizSize,
	}
}
