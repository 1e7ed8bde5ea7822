// services/achievements.go - Achievement seeding and unlocking
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hangeul/metrics"
	"hangeul/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot reads a user's aggregates on first use and memoizes them for one
// evaluation pass.
type Snapshot struct {
	db       *gorm.DB
	userID   uint
	today    string
	counts   map[Input]int64
	unlocked map[string]bool
}

func newSnapshot(db *gorm.DB, userID uint, today string) *Snapshot {
	return &Snapshot{
		db:     db,
		userID: userID,
		today:  today,
		counts: make(map[Input]int64),
	}
}

func (s *Snapshot) memo(key Input, read func(*gorm.DB) (int64, error)) (int64, error) {
	if v, ok := s.counts[key]; ok {
		return v, nil
	}
	v, err := read(s.db)
	if err != nil {
		return 0, err
	}
	s.counts[key] = v
	return v, nil
}

func (s *Snapshot) countItems(model interface{}, query string, args ...interface{}) func(*gorm.DB) (int64, error) {
	return func(db *gorm.DB) (int64, error) {
		var n int64
		err := db.Model(model).Where(query, args...).Count(&n).Error
		return n, err
	}
}

func (s *Snapshot) column(model interface{}, column string) func(*gorm.DB) (int64, error) {
	return func(db *gorm.DB) (int64, error) {
		var n int64
		err := db.Model(model).
			Select(fmt.Sprintf("COALESCE(MAX(%s), 0)", column)).
			Where("user_id = ?", s.userID).
			Scan(&n).Error
		return n, err
	}
}

func (s *Snapshot) GrammarAsked() (int64, error) {
	return s.memo(InputGrammarAsked, s.countItems(&models.GrammarItem{}, "user_id = ? AND asked = ?", s.userID, true))
}

func (s *Snapshot) VocabularyAsked() (int64, error) {
	return s.memo(InputVocabularyAsked, s.countItems(&models.VocabularyItem{}, "user_id = ? AND asked = ?", s.userID, true))
}

func (s *Snapshot) GrammarTotal() (int64, error) {
	return s.memo(InputGrammarTotal, s.countItems(&models.GrammarItem{}, "user_id = ?", s.userID))
}

func (s *Snapshot) VocabularyTotal() (int64, error) {
	return s.memo(InputVocabularyTotal, s.countItems(&models.VocabularyItem{}, "user_id = ?", s.userID))
}

func (s *Snapshot) VocabularyToday() (int64, error) {
	return s.memo(InputVocabularyToday, s.countItems(&models.VocabularyItem{}, "user_id = ? AND created_day = ?", s.userID, s.today))
}

func (s *Snapshot) Streak() (int64, error) {
	return s.memo(InputStreak, s.column(&models.StreakState{}, "current_streak"))
}

func (s *Snapshot) PerfectDays() (int64, error) {
	return s.memo(InputPerfectDays, s.column(&models.DailyChallengeCounter{}, "current_number"))
}

func (s *Snapshot) QuizCount() (int64, error) {
	return s.memo(InputQuizCount, s.column(&models.QuizCount{}, "count"))
}

func (s *Snapshot) PerfectGeneralQuizzes() (int64, error) {
	return s.memo(InputPerfectGeneral, s.column(&models.QuizCount{}, "perfect_general_quizzes"))
}

// UnlockedTitles returns the set of titles with status true.
func (s *Snapshot) UnlockedTitles() (map[string]bool, error) {
	if s.unlocked != nil {
		return s.unlocked, nil
	}
	var titles []string
	if err := s.db.Model(&models.Achievement{}).
		Where("user_id = ? AND status = ?", s.userID, true).
		Pluck("title", &titles).Error; err != nil {
		return nil, err
	}
	s.unlocked = make(map[string]bool, len(titles))
	for _, t := range titles {
		s.unlocked[t] = true
	}
	return s.unlocked, nil
}

func (s *Snapshot) markUnlocked(title string) {
	if s.unlocked != nil {
		s.unlocked[title] = true
	}
}

// Unlock is an achievement that changed to unlocked in one evaluation.
type Unlock struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

type AchievementEngine struct {
	db       *gorm.DB
	clock    *Clock
	template uint
	seeded   SeedCache
	metrics  metrics.Recorder
	log      zerolog.Logger
}

// NewAchievementEngine builds the engine. templateUserID, when non-zero,
// names an account whose description and icon text override the built-in
// catalogue text at seeding time.
func NewAchievementEngine(db *gorm.DB, clock *Clock, templateUserID uint, seeded SeedCache, rec metrics.Recorder, log zerolog.Logger) *AchievementEngine {
	return &AchievementEngine{
		db:       db,
		clock:    clock,
		template: templateUserID,
		seeded:   seeded,
		metrics:  rec,
		log:      log.With().Str("component", "achievements").Logger(),
	}
}

// catalogueRows returns the catalogue as rows, with display text taken from
// the template user where present.
func (a *AchievementEngine) catalogueRows(db *gorm.DB, userID uint) ([]models.Achievement, error) {
	overrides := make(map[string]models.Achievement)
	if a.template != 0 && a.template != userID {
		var rows []models.Achievement
		if err := db.Where("user_id = ?", a.template).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("read template achievements: %w", err)
		}
		for _, r := range rows {
			overrides[r.Title] = r
		}
	}

	rows := make([]models.Achievement, 0, len(Catalogue))
	for _, def := range Catalogue {
		row := models.Achievement{
			UserID:      userID,
			Title:       def.Title,
			Description: def.Description,
			Icon:        def.Icon,
		}
		if o, ok := overrides[def.Title]; ok {
			if o.Description != "" {
				row.Description = o.Description
			}
			if o.Icon != "" {
				row.Icon = o.Icon
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// EnsureSeeded creates any missing catalogue rows for the user, all locked.
// It reports whether rows were inserted.
func (a *AchievementEngine) EnsureSeeded(ctx context.Context, userID uint) (bool, error) {
	if a.seeded.Seeded(userID) {
		return false, nil
	}

	db := a.db.WithContext(ctx)
	rows, err := a.catalogueRows(db, userID)
	if err != nil {
		return false, fmt.Errorf("seed achievements (user_id: %d): %w", userID, err)
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return false, fmt.Errorf("seed achievements (user_id: %d): %w", userID, res.Error)
	}

	a.seeded.MarkSeeded(userID)
	if res.RowsAffected > 0 {
		a.log.Info().Uint("user_id", userID).Int64("rows", res.RowsAffected).Msg("achievements seeded")
	}
	return res.RowsAffected > 0, nil
}

// Evaluate unlocks every locked achievement whose predicate reads one of the
// changed inputs and now holds. The capstone is checked last, after any
// unlock or when its own inputs changed. A failing predicate is logged and
// skipped.
func (a *AchievementEngine) Evaluate(ctx context.Context, userID uint, changed Input) ([]Unlock, error) {
	if changed == 0 {
		return nil, nil
	}
	if _, err := a.EnsureSeeded(ctx, userID); err != nil {
		a.log.Error().Err(err).Uint("user_id", userID).Msg("seeding achievements failed, evaluating existing rows")
	}

	db := a.db.WithContext(ctx)
	var locked []string
	if err := db.Model(&models.Achievement{}).
		Where("user_id = ? AND status = ?", userID, false).
		Pluck("title", &locked).Error; err != nil {
		return nil, fmt.Errorf("read locked achievements (user_id: %d): %w", userID, err)
	}
	if len(locked) == 0 {
		return nil, nil
	}
	isLocked := make(map[string]bool, len(locked))
	for _, t := range locked {
		isLocked[t] = true
	}

	snap := newSnapshot(db, userID, a.clock.Today())
	var unlocks []Unlock

	check := func(def Definition) {
		met, err := def.Met(snap)
		if err != nil {
			a.log.Error().Err(err).Uint("user_id", userID).Str("title", def.Title).Msg("achievement check failed")
			return
		}
		if !met {
			return
		}
		u, err := a.unlock(db, userID, def.Title)
		if err != nil {
			a.log.Error().Err(err).Uint("user_id", userID).Str("title", def.Title).Msg("achievement unlock failed")
			return
		}
		if u != nil {
			snap.markUnlocked(def.Title)
			unlocks = append(unlocks, *u)
		}
	}

	for _, def := range Catalogue {
		if def.Title == Capstone || !isLocked[def.Title] || def.Inputs&changed == 0 {
			continue
		}
		check(def)
	}

	if capstone, ok := Lookup(Capstone); ok && isLocked[Capstone] &&
		(len(unlocks) > 0 || capstone.Inputs&changed != 0) {
		check(capstone)
	}

	for _, u := range unlocks {
		a.metrics.IncAchievementUnlocked(u.Title)
		a.log.Info().Uint("user_id", userID).Str("title", u.Title).Msg("achievement unlocked")
	}
	return unlocks, nil
}

// unlock flips one row from locked to unlocked. It returns nil when the row
// was already unlocked or missing.
func (a *AchievementEngine) unlock(db *gorm.DB, userID uint, title string) (*Unlock, error) {
	now := a.clock.Now()
	res := db.Model(&models.Achievement{}).
		Where("user_id = ? AND title = ? AND status = ?", userID, title, false).
		Updates(map[string]interface{}{
			"status":      true,
			"unlocked_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var row models.Achievement
	if err := db.Where("user_id = ? AND title = ?", userID, title).First(&row).Error; err != nil {
		return nil, err
	}
	return &Unlock{Title: row.Title, Description: row.Description, Icon: row.Icon, UnlockedAt: now}, nil
}

// List returns the user's achievements in catalogue order. A user without
// rows sees the template user's rows, or the built-in catalogue, all locked.
func (a *AchievementEngine) List(ctx context.Context, userID uint) ([]models.Achievement, error) {
	db := a.db.WithContext(ctx)

	var rows []models.Achievement
	if err := db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list achievements (user_id: %d): %w", userID, err)
	}

	if len(rows) == 0 {
		fallback, err := a.catalogueRows(db, userID)
		if err != nil {
			return nil, fmt.Errorf("list achievements (user_id: %d): %w", userID, err)
		}
		rows = fallback
	}

	sortByCatalogue(rows)
	return rows, nil
}

func sortByCatalogue(rows []models.Achievement) {
	order := make(map[string]int, len(Catalogue))
	for i, def := range Catalogue {
		order[def.Title] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		oi, ok := order[rows[i].Title]
		if !ok {
			oi = len(Catalogue)
		}
		oj, ok := order[rows[j].Title]
		if !ok {
			oj = len(Catalogue)
		}
		return oi < oj
	})
}
