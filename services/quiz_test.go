package services

import (
	"testing"

	"hangeul/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitGrammarQuiz(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")
	ids := env.addGrammar(userID, 5, false)

	res, err := env.quizzes.Submit(env.ctx, userID, Submission{
		Type:              models.QuizGrammar,
		CorrectGrammarIDs: ids[:3],
	})
	require.NoError(t, err)
	assert.True(t, res.FirstCompletionToday)
	assert.Equal(t, int64(3), res.MarkedGrammar)
	assert.Equal(t, 1, res.QuizCount)

	var asked int64
	require.NoError(t, env.db.Model(&models.GrammarItem{}).Where("user_id = ? AND asked = ?", userID, true).Count(&asked).Error)
	assert.Equal(t, int64(3), asked)

	// Repeat submissions count but do not add a second completion.
	res, err = env.quizzes.Submit(env.ctx, userID, Submission{Type: models.QuizGrammar, CorrectGrammarIDs: ids[:3]})
	require.NoError(t, err)
	assert.False(t, res.FirstCompletionToday)
	assert.Zero(t, res.MarkedGrammar)
	assert.Equal(t, 2, res.QuizCount)

	var completions int64
	require.NoError(t, env.db.Model(&models.DailyQuizCompletion{}).Where("user_id = ?", userID).Count(&completions).Error)
	assert.Equal(t, int64(1), completions)
}

func TestSubmitIgnoresOtherUsersItems(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user("owner")
	other := env.user("other")
	theirs := env.addVocabulary(owner, 3, false)

	res, err := env.quizzes.Submit(env.ctx, other, Submission{
		Type:                 models.QuizVocabulary,
		CorrectVocabularyIDs: theirs,
	})
	require.NoError(t, err)
	assert.Zero(t, res.MarkedVocabulary)

	var asked int64
	require.NoError(t, env.db.Model(&models.VocabularyItem{}).Where("asked = ?", true).Count(&asked).Error)
	assert.Zero(t, asked)
}

func TestSubmitIgnoresIDsOutsideQuizDomain(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")
	grammar := env.addGrammar(userID, 2, false)

	res, err := env.quizzes.Submit(env.ctx, userID, Submission{
		Type:              models.QuizVocabulary,
		CorrectGrammarIDs: grammar,
	})
	require.NoError(t, err)
	assert.Zero(t, res.MarkedGrammar)
}

func TestSubmitGeneralQuizPerfect(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")
	ids := env.addVocabulary(userID, 100, false)

	res, err := env.quizzes.Submit(env.ctx, userID, Submission{
		Type:                 models.QuizGeneral,
		CorrectVocabularyIDs: ids,
		TotalQuestions:       100,
	})
	require.NoError(t, err)
	assert.True(t, res.Perfect)
	assert.False(t, res.FirstCompletionToday)

	counts, err := env.quizzes.Counts(env.ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Count)
	assert.Equal(t, 1, counts.PerfectGeneralQuizzes)

	// 99 of 100 correct is not perfect.
	res, err = env.quizzes.Submit(env.ctx, userID, Submission{
		Type:                 models.QuizGeneral,
		CorrectVocabularyIDs: ids[:99],
		TotalQuestions:       100,
	})
	require.NoError(t, err)
	assert.False(t, res.Perfect)

	var completions int64
	require.NoError(t, env.db.Model(&models.DailyQuizCompletion{}).Count(&completions).Error)
	assert.Zero(t, completions)
}

func TestSubmitRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.quizzes.Submit(env.ctx, env.user("minji"), Submission{Type: "speaking"})
	assert.ErrorIs(t, err, ErrInvalidQuizType)
}

func TestResetAsked(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")
	other := env.user("other")
	env.addGrammar(userID, 4, true)
	env.addVocabulary(userID, 2, true)
	env.addGrammar(other, 2, true)

	n, err := env.quizzes.ResetAsked(env.ctx, userID, models.DomainGrammar)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	var asked int64
	require.NoError(t, env.db.Model(&models.GrammarItem{}).Where("asked = ?", true).Count(&asked).Error)
	assert.Equal(t, int64(2), asked, "other user's items are untouched")
	require.NoError(t, env.db.Model(&models.VocabularyItem{}).Where("asked = ?", true).Count(&asked).Error)
	assert.Equal(t, int64(2), asked, "other domain is untouched")

	_, err = env.quizzes.ResetAsked(env.ctx, userID, "kanji")
	assert.ErrorIs(t, err, ErrInvalidDomain)
}

func TestSelectPrefersUnasked(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")
	fresh := env.addVocabulary(userID, 3, false)
	env.addVocabulary(userID, 10, true)

	sel, err := env.quizzes.Select(env.ctx, userID, models.QuizVocabulary, 5)
	require.NoError(t, err)
	assert.Len(t, sel.Vocabulary, 5)
	assert.Equal(t, 3, sel.Unasked)
	assert.Equal(t, 2, sel.Reused)

	got := map[uint]bool{}
	for _, item := range sel.Vocabulary[:3] {
		got[item.ID] = true
	}
	for _, id := range fresh {
		assert.True(t, got[id])
	}
}

func TestSelectMixedSplitsDomains(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")
	env.addGrammar(userID, 10, false)
	env.addVocabulary(userID, 10, false)

	sel, err := env.quizzes.Select(env.ctx, userID, models.QuizMixed, 7)
	require.NoError(t, err)
	assert.Len(t, sel.Grammar, 3)
	assert.Len(t, sel.Vocabulary, 4)
	assert.Equal(t, 7, sel.Unasked)
	assert.Zero(t, sel.Reused)
}

func TestSelectWithTooFewItems(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")
	env.addGrammar(userID, 2, true)

	sel, err := env.quizzes.Select(env.ctx, userID, models.QuizGrammar, 0)
	require.NoError(t, err)
	assert.Len(t, sel.Grammar, 2)
	assert.Equal(t, 2, sel.Reused)
}

func TestCheckAnswer(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")
	item := models.VocabularyItem{UserID: userID, Word: "사과", Meaning: "apple; apology", CreatedDay: env.today()}
	require.NoError(t, env.db.Create(&item).Error)

	tests := []struct {
		direction string
		answer    string
		want      bool
	}{
		{DirectionKoreanToEnglish, "Apple", true},
		{DirectionKoreanToEnglish, "  apology ", true},
		{DirectionKoreanToEnglish, "pear", false},
		{DirectionKoreanToEnglish, "", false},
		{DirectionEnglishToKorean, "사과", true},
		{DirectionEnglishToKorean, "배", false},
	}
	for _, tt := range tests {
		got, err := env.quizzes.CheckAnswer(env.ctx, userID, item.ID, tt.direction, tt.answer)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Correct, "%s %q", tt.direction, tt.answer)
	}

	_, err := env.quizzes.CheckAnswer(env.ctx, env.user("other"), item.ID, DirectionKoreanToEnglish, "apple")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.quizzes.CheckAnswer(env.ctx, userID, item.ID, "fr-ko", "apple")
	assert.ErrorIs(t, err, ErrValidation)
}
