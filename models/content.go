// models/content.go - User-owned study material
package models

import "time"

// Domain names the two kinds of study material.
type Domain string

const (
	DomainGrammar    Domain = "grammar"
	DomainVocabulary Domain = "vocabulary"
)

func (d Domain) Valid() bool {
	return d == DomainGrammar || d == DomainVocabulary
}

// GrammarItem is a grammar rule recorded by a user.
type GrammarItem struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	Title          string    `gorm:"not null;size:200" json:"title"`
	Explanation    string    `gorm:"type:text;not null" json:"explanation"`
	KoreanExample  string    `gorm:"type:text" json:"korean_example"`
	EnglishExample string    `gorm:"type:text" json:"english_example"`
	Asked          bool      `gorm:"not null;default:false" json:"asked"`
	CreatedDay     string    `gorm:"not null;size:10" json:"created_day"`
	CreatedAt      time.Time `json:"created_at"`
}

// VocabularyItem is a dictionary entry recorded by a user.
type VocabularyItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Word       string    `gorm:"not null;size:200" json:"word"`
	Meaning    string    `gorm:"type:text;not null" json:"meaning"`
	MeaningGeo string    `gorm:"type:text" json:"meaning_geo,omitempty"`
	Asked      bool      `gorm:"not null;default:false" json:"asked"`
	CreatedDay string    `gorm:"not null;size:10" json:"created_day"`
	CreatedAt  time.Time `json:"created_at"`
}

func (GrammarItem) TableName() string {
	return "grammar_items"
}

func (VocabularyItem) TableName() string {
	return "vocabulary_items"
}
