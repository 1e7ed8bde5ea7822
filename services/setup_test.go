package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"hangeul/metrics"
	"hangeul/models"
	"hangeul/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv wires every service against a fresh database and a movable clock.
type testEnv struct {
	t      *testing.T
	ctx    context.Context
	db     *gorm.DB
	now    time.Time
	clock  *Clock
	rules  Rules
	hub    *Hub
	engine *Engine

	activity     *ActivityLedger
	streaks      *StreakTracker
	challenges   *ChallengeEvaluator
	quizzes      *QuizTracker
	achievements *AchievementEngine
	content      *ContentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		t:     t,
		ctx:   context.Background(),
		db:    testutil.NewDB(t),
		now:   time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), // a Wednesday
		rules: DefaultRules(),
	}
	env.clock = NewClock(time.UTC).WithNow(func() time.Time { return env.now })

	log := zerolog.Nop()
	rec := metrics.Noop{}
	env.hub = NewHub(log)
	env.streaks = NewStreakTracker(env.db, env.clock, env.rules, rec, log)
	env.activity = NewActivityLedger(env.db, env.clock, env.rules, env.streaks, rec, log)
	env.challenges = NewChallengeEvaluator(env.db, env.clock, env.rules, rec, log)
	env.quizzes = NewQuizTracker(env.db, env.clock, env.rules, rec, log)
	env.achievements = NewAchievementEngine(env.db, env.clock, 0, noopSeedCache{}, rec, log)
	env.content = NewContentService(env.db, env.clock)
	env.engine = NewEngine(env.clock, env.activity, env.streaks, env.challenges, env.quizzes,
		env.achievements, env.content, env.hub, log)
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func (e *testEnv) today() string {
	return e.clock.Today()
}

func (e *testEnv) user(name string) uint {
	e.t.Helper()
	u := models.User{Username: name, Password: "x"}
	require.NoError(e.t, e.db.Create(&u).Error)
	return u.ID
}

func (e *testEnv) addGrammar(userID uint, n int, asked bool) []uint {
	e.t.Helper()
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		item := models.GrammarItem{
			UserID:      userID,
			Title:       fmt.Sprintf("rule %d", i),
			Explanation: "explanation",
			Asked:       asked,
			CreatedDay:  e.today(),
		}
		require.NoError(e.t, e.db.Create(&item).Error)
		ids = append(ids, item.ID)
	}
	return ids
}

func (e *testEnv) addVocabulary(userID uint, n int, asked bool) []uint {
	e.t.Helper()
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		item := models.VocabularyItem{
			UserID:     userID,
			Word:       fmt.Sprintf("단어%d", i),
			Meaning:    "word",
			Asked:      asked,
			CreatedDay: e.today(),
		}
		require.NoError(e.t, e.db.Create(&item).Error)
		ids = append(ids, item.ID)
	}
	return ids
}

func (e *testEnv) setActiveSeconds(userID uint, day string, seconds int) {
	e.t.Helper()
	row := models.ActivityDay{UserID: userID, Day: day, ActiveSeconds: seconds, LastHeartbeat: e.now}
	require.NoError(e.t, e.db.Create(&row).Error)
}

func (e *testEnv) setStreak(userID uint, current int, last string) {
	e.t.Helper()
	state := models.StreakState{UserID: userID, CurrentStreak: current, LongestStreak: current, LastSuccessDate: &last}
	require.NoError(e.t, e.db.Create(&state).Error)
}

func (e *testEnv) streakState(userID uint) models.StreakState {
	e.t.Helper()
	var state models.StreakState
	require.NoError(e.t, e.db.Where("user_id = ?", userID).First(&state).Error)
	return state
}

func (e *testEnv) unlocked(userID uint, title string) bool {
	e.t.Helper()
	var a models.Achievement
	require.NoError(e.t, e.db.Where("user_id = ? AND title = ?", userID, title).First(&a).Error)
	return a.Status
}
