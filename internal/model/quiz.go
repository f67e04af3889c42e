package model

import (
	"encoding/json"
	"time"
)

type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionTrueFalse QuestionType = "true_false"
	QuestionEssay     QuestionType = "essay"
)

// IsObjective reports whether answers of this type are auto-gradable.
func (t QuestionType) IsObjective() bool {
	return t == QuestionMCQ || t == QuestionTrueFalse
}

type QuizStatus string

const (
	QuizDraft     QuizStatus = "draft"
	QuizPublished QuizStatus = "published"
	QuizArchived  QuizStatus = "archived"
)

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	ClassID         string          `gorm:"index;type:varchar(36)" json:"classId"`
	Topic           string          `gorm:"size:255;not null" json:"topic"`
	DurationMinutes int             `gorm:"default:0" json:"durationMinutes"`
	MaxAttempts     int             `gorm:"default:2" json:"maxAttempts"`
	Weight          int             `gorm:"default:1" json:"weight"`
	IsActive        bool            `gorm:"default:true" json:"isActive"`
	AvailableFrom   *time.Time      `json:"availableFrom,omitempty"`
	AvailableUntil  *time.Time      `json:"availableUntil,omitempty"`
	VisibleTo       json.RawMessage `gorm:"type:json" json:"visibleTo,omitempty"`
	Status          QuizStatus      `gorm:"size:20;default:'draft'" json:"status"`
	CreatorID       uint            `gorm:"index;type:bigint unsigned" json:"creatorId"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model Question
type Question struct {
	UUIDBase
	QuizID   string          `gorm:"index;type:varchar(36)" json:"quizId"`
	Type     QuestionType    `gorm:"size:20;not null" json:"type"`
	Text     string          `gorm:"type:text;not null" json:"text"`
	Options  json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	Answer   string          `gorm:"type:text" json:"answer,omitempty"`
	MaxScore int             `gorm:"default:1" json:"maxScore"`
	Order    int             `gorm:"default:0" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}
