// models/challenge.go - Daily challenge bookkeeping
package models

import (
	"time"
)

// DailyChallengeCounter counts perfect days over the user's lifetime. Gaps do
// not reset it.
type DailyChallengeCounter struct {
	UserID             uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CurrentNumber      int       `gorm:"not null;default:0" json:"current_number"`
	LastIncrementedDay *string   `gorm:"size:10" json:"last_incremented_day"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// PerfectDay marks a day already counted in DailyChallengeCounter. The unique
// key makes the increment happen at most once per day.
type PerfectDay struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_perfect_days_user_day" json:"user_id"`
	Day       string    `gorm:"not null;size:10;uniqueIndex:idx_perfect_days_user_day" json:"day"`
	CreatedAt time.Time `json:"created_at"`
}

func (DailyChallengeCounter) TableName() string {
	return "daily_challenge_counters"
}

func (PerfectDay) TableName() string {
	return "perfect_days"
}
