package services

import (
	"testing"
	"time"

	"hangeul/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) completeQuiz(userID uint, quizType models.QuizType) {
	e.t.Helper()
	_, err := e.quizzes.Submit(e.ctx, userID, Submission{Type: quizType})
	require.NoError(e.t, err)
}

func (e *testEnv) satisfyAllGoals(userID uint) {
	e.t.Helper()
	e.completeQuiz(userID, models.QuizGrammar)
	e.completeQuiz(userID, models.QuizVocabulary)
	e.completeQuiz(userID, models.QuizMixed)
	e.addGrammar(userID, 3, false)
	e.addVocabulary(userID, 20, false)
	e.setActiveSeconds(userID, e.today(), 7200)
}

func TestChallengeStatusPartial(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")

	env.completeQuiz(userID, models.QuizGrammar)
	env.addGrammar(userID, 3, false)
	env.addVocabulary(userID, 19, false)
	env.setActiveSeconds(userID, env.today(), 7199)

	status, err := env.challenges.Status(env.ctx, userID, env.today())
	require.NoError(t, err)
	assert.True(t, status.GrammarQuiz)
	assert.False(t, status.VocabularyQuiz)
	assert.False(t, status.MixedQuiz)
	assert.True(t, status.GrammarQuantity)
	assert.False(t, status.VocabularyQuantity)
	assert.False(t, status.TimeGoal)
	assert.Equal(t, 2, status.CompletedCount)
	assert.Equal(t, 33, status.Percent)
	assert.False(t, status.Complete())
}

func TestChallengePercentRounding(t *testing.T) {
	want := []int{0, 17, 33, 50, 67, 83, 100}
	for n, p := range want {
		s := ChallengeStatus{}
		flags := []*bool{&s.GrammarQuiz, &s.VocabularyQuiz, &s.MixedQuiz, &s.GrammarQuantity, &s.VocabularyQuantity, &s.TimeGoal}
		for i := 0; i < n; i++ {
			*flags[i] = true
		}
		s.tally()
		assert.Equal(t, p, s.Percent, "n=%d", n)
	}
}

func TestCheckCompletionIdempotentPerDay(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")
	env.satisfyAllGoals(userID)

	res, err := env.challenges.CheckCompletion(env.ctx, userID)
	require.NoError(t, err)
	assert.True(t, res.Counted)
	assert.Equal(t, 1, res.PerfectDays)

	res, err = env.challenges.CheckCompletion(env.ctx, userID)
	require.NoError(t, err)
	assert.False(t, res.Counted)
	assert.Equal(t, 1, res.PerfectDays)

	var counter models.DailyChallengeCounter
	require.NoError(t, env.db.Where("user_id = ?", userID).First(&counter).Error)
	assert.Equal(t, 1, counter.CurrentNumber)
	require.NotNil(t, counter.LastIncrementedDay)
	assert.Equal(t, env.today(), *counter.LastIncrementedDay)
}

func TestCheckCompletionCountsLaterDays(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")

	env.satisfyAllGoals(userID)
	_, err := env.challenges.CheckCompletion(env.ctx, userID)
	require.NoError(t, err)

	// Skip two days; gaps do not reset the counter.
	env.advance(72 * time.Hour)
	env.satisfyAllGoals(userID)
	res, err := env.challenges.CheckCompletion(env.ctx, userID)
	require.NoError(t, err)
	assert.True(t, res.Counted)
	assert.Equal(t, 2, res.PerfectDays)
}

func TestCheckCompletionIncomplete(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")

	res, err := env.challenges.CheckCompletion(env.ctx, userID)
	require.NoError(t, err)
	assert.False(t, res.Counted)
	assert.Zero(t, res.PerfectDays)
	assert.Zero(t, res.Status.CompletedCount)
}
