// services/dashboard.go - Progress read model
package services

import (
	"context"
	"fmt"

	"hangeul/models"
)

const (
	recentItemsLimit = 10
	chartDays        = 7
)

type ChartDay struct {
	Day        string `json:"day"`
	Label      string `json:"label"`
	Grammar    int    `json:"grammar"`
	Vocabulary int    `json:"vocabulary"`
}

type ContentTotals struct {
	Grammar    int `json:"grammar"`
	Vocabulary int `json:"vocabulary"`
}

type AchievementSummary struct {
	Unlocked int                  `json:"unlocked"`
	Total    int                  `json:"total"`
	Items    []models.Achievement `json:"items"`
}

type Dashboard struct {
	Day           string        `json:"day"`
	Streak        *StreakStatus `json:"streak"`
	TodaySeconds  int           `json:"today_seconds"`
	WeekStart     string        `json:"week_start"`
	WeekSeconds   int           `json:"week_seconds"`
	Today         ContentTotals `json:"today"`
	LastSevenDays ContentTotals `json:"last_seven_days"`

	Challenge             *ChallengeStatus   `json:"daily_challenge"`
	PerfectDays           int                `json:"perfect_days"`
	QuizCount             int                `json:"quiz_count"`
	PerfectGeneralQuizzes int                `json:"perfect_general_quizzes"`
	Achievements          AchievementSummary `json:"achievements"`

	RecentGrammar    []models.GrammarItem    `json:"recent_grammar"`
	RecentVocabulary []models.VocabularyItem `json:"recent_vocabulary"`
	Chart            []ChartDay              `json:"chart"`
	ActiveDays       int                     `json:"active_days"`
	Peak             int                     `json:"peak"`

	Unlocks []Unlock `json:"unlocks,omitempty"`
}

// Dashboard runs OnPageLoad and then assembles every read query of the
// progress page.
func (e *Engine) Dashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	unlocks := e.OnPageLoad(ctx, userID)

	today := e.clock.Today()
	d := &Dashboard{Day: today, Unlocks: unlocks}

	var err error
	if d.Streak, err = e.streaks.Current(ctx, userID); err != nil {
		return nil, err
	}
	if d.TodaySeconds, err = e.activity.Today(ctx, userID); err != nil {
		return nil, err
	}
	week, err := e.activity.Week(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.WeekStart, d.WeekSeconds = week.WeekStart, week.TotalSeconds

	if d.Challenge, err = e.challenges.Status(ctx, userID, today); err != nil {
		return nil, err
	}
	d.Today = ContentTotals{Grammar: d.Challenge.GrammarCount, Vocabulary: d.Challenge.VocabularyCount}
	if d.PerfectDays, err = e.challenges.PerfectDays(ctx, userID); err != nil {
		return nil, err
	}

	counts, err := e.quizzes.Counts(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.QuizCount, d.PerfectGeneralQuizzes = counts.Count, counts.PerfectGeneralQuizzes

	items, err := e.achievements.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.Achievements = AchievementSummary{Total: len(items), Items: items}
	for _, a := range items {
		if a.Status {
			d.Achievements.Unlocked++
		}
	}

	if d.RecentGrammar, err = e.content.ListGrammar(ctx, userID, today, recentItemsLimit); err != nil {
		return nil, err
	}
	if d.RecentVocabulary, err = e.content.ListVocabulary(ctx, userID, today, recentItemsLimit); err != nil {
		return nil, err
	}

	if err := e.fillChart(ctx, userID, today, d); err != nil {
		return nil, err
	}
	return d, nil
}

// fillChart builds the per-day creation counts for the seven days ending today.
func (e *Engine) fillChart(ctx context.Context, userID uint, today string, d *Dashboard) error {
	since := e.clock.AddDays(today, -(chartDays - 1))

	grammar, err := e.content.CountsSince(ctx, userID, models.DomainGrammar, since)
	if err != nil {
		return fmt.Errorf("dashboard chart: %w", err)
	}
	vocabulary, err := e.content.CountsSince(ctx, userID, models.DomainVocabulary, since)
	if err != nil {
		return fmt.Errorf("dashboard chart: %w", err)
	}

	d.Peak = 1
	d.Chart = make([]ChartDay, 0, chartDays)
	for i := 0; i < chartDays; i++ {
		day := e.clock.AddDays(since, i)
		c := ChartDay{
			Day:        day,
			Label:      e.clock.Weekday(day),
			Grammar:    grammar[day],
			Vocabulary: vocabulary[day],
		}
		d.Chart = append(d.Chart, c)

		d.LastSevenDays.Grammar += c.Grammar
		d.LastSevenDays.Vocabulary += c.Vocabulary
		if c.Grammar+c.Vocabulary > 0 {
			d.ActiveDays++
		}
		if c.Grammar > d.Peak {
			d.Peak = c.Grammar
		}
		if c.Vocabulary > d.Peak {
			d.Peak = c.Vocabulary
		}
	}
	return nil
}
