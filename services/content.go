// services/content.go - Grammar and vocabulary storage
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hangeul/models"

	"gorm.io/gorm"
)

type GrammarInput struct {
	Title          string
	Explanation    string
	KoreanExample  string
	EnglishExample string
}

type VocabularyInput struct {
	Word       string
	Meaning    string
	MeaningGeo string
}

func (in VocabularyInput) normalized() VocabularyInput {
	return VocabularyInput{
		Word:       strings.TrimSpace(in.Word),
		Meaning:    strings.TrimSpace(in.Meaning),
		MeaningGeo: strings.TrimSpace(in.MeaningGeo),
	}
}

// ContentService stores the user's study material. Callers fire
// Engine.OnContentCreated or OnContentDeleted after a successful write.
type ContentService struct {
	db    *gorm.DB
	clock *Clock
}

func NewContentService(db *gorm.DB, clock *Clock) *ContentService {
	return &ContentService{db: db, clock: clock}
}

func (s *ContentService) CreateGrammar(ctx context.Context, userID uint, in GrammarInput) (*models.GrammarItem, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Explanation) == "" {
		return nil, fmt.Errorf("%w: title and explanation are required", ErrValidation)
	}

	now := s.clock.Now()
	item := &models.GrammarItem{
		UserID:         userID,
		Title:          strings.TrimSpace(in.Title),
		Explanation:    strings.TrimSpace(in.Explanation),
		KoreanExample:  strings.TrimSpace(in.KoreanExample),
		EnglishExample: strings.TrimSpace(in.EnglishExample),
		CreatedDay:     s.clock.Day(now),
		CreatedAt:      now,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, fmt.Errorf("create grammar (user_id: %d): %w", userID, err)
	}
	return item, nil
}

// UpdateGrammar rewrites the text of one of the user's rules. The creation
// day and the asked flag are left as they were.
func (s *ContentService) UpdateGrammar(ctx context.Context, userID, id uint, in GrammarInput) (*models.GrammarItem, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Explanation) == "" {
		return nil, fmt.Errorf("%w: title and explanation are required", ErrValidation)
	}

	var item models.GrammarItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
			return err
		}
		item.Title = strings.TrimSpace(in.Title)
		item.Explanation = strings.TrimSpace(in.Explanation)
		item.KoreanExample = strings.TrimSpace(in.KoreanExample)
		item.EnglishExample = strings.TrimSpace(in.EnglishExample)
		return tx.Model(&item).
			Select("title", "explanation", "korean_example", "english_example").
			Updates(&item).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update grammar %d (user_id: %d): %w", id, userID, err)
	}
	return &item, nil
}

func (s *ContentService) CreateVocabulary(ctx context.Context, userID uint, in VocabularyInput) (*models.VocabularyItem, error) {
	items, err := s.CreateVocabularyBatch(ctx, userID, []VocabularyInput{in})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// CreateVocabularyBatch inserts all entries in one transaction.
func (s *ContentService) CreateVocabularyBatch(ctx context.Context, userID uint, inputs []VocabularyInput) ([]models.VocabularyItem, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no vocabulary entries", ErrValidation)
	}

	now := s.clock.Now()
	day := s.clock.Day(now)
	items := make([]models.VocabularyItem, 0, len(inputs))
	for i, raw := range inputs {
		in := raw.normalized()
		if in.Word == "" || in.Meaning == "" {
			return nil, fmt.Errorf("%w: entry %d needs a word and a meaning", ErrValidation, i+1)
		}
		items = append(items, models.VocabularyItem{
			UserID:     userID,
			Word:       in.Word,
			Meaning:    in.Meaning,
			MeaningGeo: in.MeaningGeo,
			CreatedDay: day,
			CreatedAt:  now,
		})
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&items, 100).Error; err != nil {
		return nil, fmt.Errorf("create vocabulary (user_id: %d): %w", userID, err)
	}
	return items, nil
}

// ListGrammar returns the user's grammar rules, newest first. limit <= 0
// means no limit.
func (s *ContentService) ListGrammar(ctx context.Context, userID uint, day string, limit int) ([]models.GrammarItem, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if day != "" {
		q = q.Where("created_day = ?", day)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var items []models.GrammarItem
	if err := q.Order("id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list grammar (user_id: %d): %w", userID, err)
	}
	return items, nil
}

func (s *ContentService) ListVocabulary(ctx context.Context, userID uint, day string, limit int) ([]models.VocabularyItem, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if day != "" {
		q = q.Where("created_day = ?", day)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var items []models.VocabularyItem
	if err := q.Order("id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list vocabulary (user_id: %d): %w", userID, err)
	}
	return items, nil
}

// Delete removes one of the user's items. Another user's id is reported as
// not found.
func (s *ContentService) Delete(ctx context.Context, userID uint, domain models.Domain, id uint) error {
	var model interface{}
	switch domain {
	case models.DomainGrammar:
		model = &models.GrammarItem{}
	case models.DomainVocabulary:
		model = &models.VocabularyItem{}
	default:
		return ErrInvalidDomain
	}

	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("delete %s %d (user_id: %d): %w", domain, id, userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DailyCount is the number of items created on one day.
type DailyCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// CountsSince groups the user's items in domain by creation day, from since
// (inclusive) onwards.
func (s *ContentService) CountsSince(ctx context.Context, userID uint, domain models.Domain, since string) (map[string]int, error) {
	var model interface{}
	switch domain {
	case models.DomainGrammar:
		model = &models.GrammarItem{}
	case models.DomainVocabulary:
		model = &models.VocabularyItem{}
	default:
		return nil, ErrInvalidDomain
	}

	var rows []DailyCount
	if err := s.db.WithContext(ctx).Model(model).
		Select("created_day AS day, COUNT(*) AS count").
		Where("user_id = ? AND created_day >= ?", userID, since).
		Group("created_day").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count %s by day (user_id: %d): %w", domain, userID, err)
	}

	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Day] = r.Count
	}
	return out, nil
}
