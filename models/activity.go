// models/activity.go - Study time ledger
package models

import "time"

// ActivityDay holds one user's study time for one business day.
// ActiveSeconds and LastHeartbeat never decrease within a day.
type ActivityDay struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_activity_days_user_day" json:"user_id"`
	Day           string    `gorm:"not null;size:10;uniqueIndex:idx_activity_days_user_day" json:"day"`
	ActiveSeconds int       `gorm:"not null;default:0" json:"active_seconds"`
	LastHeartbeat time.Time `gorm:"not null" json:"last_heartbeat"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WeeklyRollup is the sum of ActivityDay seconds over the ISO week starting
// on WeekStart (a Monday).
type WeeklyRollup struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_weekly_rollups_user_week" json:"user_id"`
	WeekStart    string    `gorm:"not null;size:10;uniqueIndex:idx_weekly_rollups_user_week" json:"week_start"`
	TotalSeconds int       `gorm:"not null;default:0" json:"total_seconds"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StreakState is keyed by user. CurrentStreak is 0 unless LastSuccessDate is set.
type StreakState struct {
	UserID          uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CurrentStreak   int       `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak   int       `gorm:"not null;default:0" json:"longest_streak"`
	LastSuccessDate *string   `gorm:"size:10" json:"last_success_date"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (ActivityDay) TableName() string {
	return "activity_days"
}

func (WeeklyRollup) TableName() string {
	return "weekly_rollups"
}

func (StreakState) TableName() string {
	return "streak_states"
}
