// models/quiz.go - Quiz completion tracking
package models

import "time"

type QuizType string

const (
	QuizGrammar    QuizType = "grammar"
	QuizVocabulary QuizType = "vocabulary"
	QuizMixed      QuizType = "mixed"
	// QuizGeneral is the long vocabulary run; it counts towards QuizCount
	// but is not one of the daily challenges.
	QuizGeneral QuizType = "general"
)

// DailyQuizTypes are the quiz types tracked by DailyQuizCompletion.
var DailyQuizTypes = []QuizType{QuizGrammar, QuizVocabulary, QuizMixed}

func (q QuizType) Valid() bool {
	switch q {
	case QuizGrammar, QuizVocabulary, QuizMixed, QuizGeneral:
		return true
	}
	return false
}

func (q QuizType) Daily() bool {
	return q == QuizGrammar || q == QuizVocabulary || q == QuizMixed
}

// UsesGrammar reports whether grammar items can be answered in this quiz type.
func (q QuizType) UsesGrammar() bool {
	return q == QuizGrammar || q == QuizMixed
}

func (q QuizType) UsesVocabulary() bool {
	return q == QuizVocabulary || q == QuizMixed || q == QuizGeneral
}

// DailyQuizCompletion exists when the user finished QuizType on CompletedDay.
type DailyQuizCompletion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_quiz_completions_key" json:"user_id"`
	QuizType     QuizType  `gorm:"not null;size:20;uniqueIndex:idx_quiz_completions_key" json:"quiz_type"`
	CompletedDay string    `gorm:"not null;size:10;uniqueIndex:idx_quiz_completions_key" json:"completed_day"`
	CreatedAt    time.Time `json:"created_at"`
}

// QuizCount is the lifetime submission counter of a user.
type QuizCount struct {
	UserID                uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Count                 int       `gorm:"not null;default:0" json:"count"`
	PerfectGeneralQuizzes int       `gorm:"not null;default:0" json:"perfect_general_quizzes"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (DailyQuizCompletion) TableName() string {
	return "daily_quiz_completions"
}

func (QuizCount) TableName() string {
	return "quiz_counts"
}
