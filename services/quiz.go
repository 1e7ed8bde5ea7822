// services/quiz.go - Quiz completion and answer tracking
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hangeul/metrics"
	"hangeul/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Submission is what a client reports when a quiz ends.
type Submission struct {
	Type                 models.QuizType
	CorrectGrammarIDs    []uint
	CorrectVocabularyIDs []uint
	// TotalQuestions is the number of questions presented; only the general
	// quiz uses it.
	TotalQuestions int
}

type SubmitResult struct {
	Type                 models.QuizType `json:"quiz_type"`
	Day                  string          `json:"day"`
	FirstCompletionToday bool            `json:"first_completion_today"`
	MarkedGrammar        int64           `json:"marked_grammar"`
	MarkedVocabulary     int64           `json:"marked_vocabulary"`
	QuizCount            int             `json:"quiz_count"`
	Perfect              bool            `json:"perfect"`
}

// QuizSelection is the content chosen for one quiz. Unasked items come first.
type QuizSelection struct {
	Type       models.QuizType         `json:"quiz_type"`
	Grammar    []models.GrammarItem    `json:"grammar,omitempty"`
	Vocabulary []models.VocabularyItem `json:"vocabulary,omitempty"`
	Unasked    int                     `json:"unasked"`
	Reused     int                     `json:"reused"`
}

// Answer directions for vocabulary checks.
const (
	DirectionKoreanToEnglish = "ko-en"
	DirectionEnglishToKorean = "en-ko"
)

type AnswerCheck struct {
	Correct  bool   `json:"correct"`
	Expected string `json:"expected"`
}

type QuizTracker struct {
	db      *gorm.DB
	clock   *Clock
	rules   Rules
	metrics metrics.Recorder
	log     zerolog.Logger
}

func NewQuizTracker(db *gorm.DB, clock *Clock, rules Rules, rec metrics.Recorder, log zerolog.Logger) *QuizTracker {
	return &QuizTracker{
		db:      db,
		clock:   clock,
		rules:   rules,
		metrics: rec,
		log:     log.With().Str("component", "quiz").Logger(),
	}
}

// Submit records a finished quiz: today's completion for daily types, the
// asked flag on the user's correctly answered items and the lifetime count.
// Ids the user does not own are ignored.
func (t *QuizTracker) Submit(ctx context.Context, userID uint, sub Submission) (*SubmitResult, error) {
	if !sub.Type.Valid() {
		return nil, ErrInvalidQuizType
	}

	today := t.clock.Today()
	result := &SubmitResult{Type: sub.Type, Day: today}

	grammarIDs := uniqueIDs(sub.CorrectGrammarIDs)
	vocabularyIDs := uniqueIDs(sub.CorrectVocabularyIDs)
	if !sub.Type.UsesGrammar() {
		grammarIDs = nil
	}
	if !sub.Type.UsesVocabulary() {
		vocabularyIDs = nil
	}

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sub.Type.Daily() {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.DailyQuizCompletion{
				UserID:       userID,
				QuizType:     sub.Type,
				CompletedDay: today,
			})
			if res.Error != nil {
				return fmt.Errorf("insert completion: %w", res.Error)
			}
			result.FirstCompletionToday = res.RowsAffected == 1
		}

		if len(grammarIDs) > 0 {
			res := tx.Model(&models.GrammarItem{}).
				Where("user_id = ? AND id IN ? AND asked = ?", userID, grammarIDs, false).
				Update("asked", true)
			if res.Error != nil {
				return fmt.Errorf("mark grammar asked: %w", res.Error)
			}
			result.MarkedGrammar = res.RowsAffected
		}
		if len(vocabularyIDs) > 0 {
			res := tx.Model(&models.VocabularyItem{}).
				Where("user_id = ? AND id IN ? AND asked = ?", userID, vocabularyIDs, false).
				Update("asked", true)
			if res.Error != nil {
				return fmt.Errorf("mark vocabulary asked: %w", res.Error)
			}
			result.MarkedVocabulary = res.RowsAffected
		}

		perfect, err := t.isPerfectGeneral(tx, userID, sub, vocabularyIDs)
		if err != nil {
			return err
		}
		result.Perfect = perfect

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.QuizCount{UserID: userID}).Error; err != nil {
			return fmt.Errorf("ensure quiz count: %w", err)
		}
		updates := map[string]interface{}{"count": gorm.Expr("count + 1")}
		if perfect {
			updates["perfect_general_quizzes"] = gorm.Expr("perfect_general_quizzes + 1")
		}
		if err := tx.Model(&models.QuizCount{}).
			Where("user_id = ?", userID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("increment quiz count: %w", err)
		}

		var count models.QuizCount
		if err := tx.Where("user_id = ?", userID).First(&count).Error; err != nil {
			return fmt.Errorf("read quiz count: %w", err)
		}
		result.QuizCount = count.Count
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit %s quiz (user_id: %d): %w", sub.Type, userID, err)
	}

	t.metrics.IncQuizSubmission(string(sub.Type))
	t.log.Info().
		Uint("user_id", userID).
		Str("quiz_type", string(sub.Type)).
		Int64("marked_grammar", result.MarkedGrammar).
		Int64("marked_vocabulary", result.MarkedVocabulary).
		Bool("perfect", result.Perfect).
		Msg("quiz submitted")

	return result, nil
}

// isPerfectGeneral reports whether sub is a full-size general quiz with every
// question answered correctly on the user's own items.
func (t *QuizTracker) isPerfectGeneral(tx *gorm.DB, userID uint, sub Submission, vocabularyIDs []uint) (bool, error) {
	size := t.rules.GeneralQuizSize
	if sub.Type != models.QuizGeneral || sub.TotalQuestions != size || len(vocabularyIDs) != size {
		return false, nil
	}

	var owned int64
	if err := tx.Model(&models.VocabularyItem{}).
		Where("user_id = ? AND id IN ?", userID, vocabularyIDs).
		Count(&owned).Error; err != nil {
		return false, fmt.Errorf("count owned vocabulary: %w", err)
	}
	return int(owned) == size, nil
}

// ResetAsked clears the asked flag on all of a user's items in domain.
func (t *QuizTracker) ResetAsked(ctx context.Context, userID uint, domain models.Domain) (int64, error) {
	var model interface{}
	switch domain {
	case models.DomainGrammar:
		model = &models.GrammarItem{}
	case models.DomainVocabulary:
		model = &models.VocabularyItem{}
	default:
		return 0, ErrInvalidDomain
	}

	res := t.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND asked = ?", userID, true).
		Update("asked", false)
	if res.Error != nil {
		return 0, fmt.Errorf("reset asked %s (user_id: %d): %w", domain, userID, res.Error)
	}
	return res.RowsAffected, nil
}

// DefaultQuizLength is the number of questions when the client does not ask
// for a specific count.
func (t *QuizTracker) DefaultQuizLength(quizType models.QuizType) int {
	switch quizType {
	case models.QuizGrammar:
		return 10
	case models.QuizGeneral:
		return t.rules.GeneralQuizSize
	default:
		return 20
	}
}

// Select picks up to count items for a quiz, preferring items not asked yet
// and topping up with random asked ones. Mixed quizzes split count between
// the two domains.
func (t *QuizTracker) Select(ctx context.Context, userID uint, quizType models.QuizType, count int) (*QuizSelection, error) {
	if !quizType.Valid() {
		return nil, ErrInvalidQuizType
	}
	if count <= 0 {
		count = t.DefaultQuizLength(quizType)
	}

	grammarN, vocabularyN := 0, 0
	switch quizType {
	case models.QuizGrammar:
		grammarN = count
	case models.QuizMixed:
		grammarN = count / 2
		vocabularyN = count - grammarN
	default:
		vocabularyN = count
	}

	db := t.db.WithContext(ctx)
	sel := &QuizSelection{Type: quizType}

	if grammarN > 0 {
		items, fresh, reused, err := pickItems[models.GrammarItem](db, userID, grammarN)
		if err != nil {
			return nil, fmt.Errorf("select grammar (user_id: %d): %w", userID, err)
		}
		sel.Grammar = items
		sel.Unasked += fresh
		sel.Reused += reused
	}
	if vocabularyN > 0 {
		items, fresh, reused, err := pickItems[models.VocabularyItem](db, userID, vocabularyN)
		if err != nil {
			return nil, fmt.Errorf("select vocabulary (user_id: %d): %w", userID, err)
		}
		sel.Vocabulary = items
		sel.Unasked += fresh
		sel.Reused += reused
	}

	return sel, nil
}

func pickItems[T any](db *gorm.DB, userID uint, n int) ([]T, int, int, error) {
	var fresh []T
	if err := db.Where("user_id = ? AND asked = ?", userID, false).
		Order("RANDOM()").
		Limit(n).
		Find(&fresh).Error; err != nil {
		return nil, 0, 0, err
	}
	if len(fresh) >= n {
		return fresh, len(fresh), 0, nil
	}

	var reused []T
	if err := db.Where("user_id = ? AND asked = ?", userID, true).
		Order("RANDOM()").
		Limit(n - len(fresh)).
		Find(&reused).Error; err != nil {
		return nil, 0, 0, err
	}
	return append(fresh, reused...), len(fresh), len(reused), nil
}

// CheckAnswer compares an answer against one of the user's vocabulary items.
func (t *QuizTracker) CheckAnswer(ctx context.Context, userID, itemID uint, direction, answer string) (*AnswerCheck, error) {
	var item models.VocabularyItem
	err := t.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load vocabulary %d (user_id: %d): %w", itemID, userID, err)
	}

	given := normalizeAnswer(answer)
	switch direction {
	case DirectionKoreanToEnglish:
		for _, meaning := range splitMeanings(item.Meaning) {
			if given != "" && given == meaning {
				return &AnswerCheck{Correct: true, Expected: item.Meaning}, nil
			}
		}
		return &AnswerCheck{Expected: item.Meaning}, nil
	case DirectionEnglishToKorean:
		return &AnswerCheck{
			Correct:  given != "" && given == normalizeAnswer(item.Word),
			Expected: item.Word,
		}, nil
	default:
		return nil, fmt.Errorf("%w: direction must be %s or %s", ErrValidation, DirectionKoreanToEnglish, DirectionEnglishToKorean)
	}
}

func normalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func splitMeanings(meaning string) []string {
	parts := strings.FieldsFunc(meaning, func(r rune) bool {
		return r == ',' || r == ';' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := normalizeAnswer(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Counts returns the user's lifetime quiz counters, zero when none exist.
func (t *QuizTracker) Counts(ctx context.Context, userID uint) (*models.QuizCount, error) {
	var count models.QuizCount
	if err := t.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&count).Error; err != nil {
		return nil, fmt.Errorf("read quiz count (user_id: %d): %w", userID, err)
	}
	count.UserID = userID
	return &count, nil
}
