// models/achievement.go
package models

import "time"

// Achievement is one user's unlock state for one catalogue title. Rows only
// ever move from Status=false to Status=true.
type Achievement struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_achievements_user_title" json:"user_id"`
	Title       string     `gorm:"not null;size:100;uniqueIndex:idx_achievements_user_title" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Icon        string     `gorm:"size:50" json:"icon"`
	Status      bool       `gorm:"not null;default:false" json:"status"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Achievement) TableName() string {
	return "achievements"
}
