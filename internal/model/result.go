package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress    AttemptStatus = "in_progress"
	AttemptPendingReview AttemptStatus = "pending_review"
	AttemptCompleted     AttemptStatus = "completed"
	AttemptCancelled     AttemptStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptCompleted || s == AttemptCancelled
}

// Result is one attempt by one student at one quiz. At most one result per
// (user, quiz) may have EndedAt == nil at any time; the composite unique
// index on (user, quiz, attempt_number) backstops concurrent starts.
//
// swagger:model Result
type Result struct {
	UUIDBase
	QuizID        string        `gorm:"type:varchar(36);index;uniqueIndex:idx_quiz_user_attempt" json:"quizId"`
	UserID        uint          `gorm:"type:bigint unsigned;index;uniqueIndex:idx_quiz_user_attempt" json:"userId"`
	AttemptNumber int           `gorm:"not null;uniqueIndex:idx_quiz_user_attempt" json:"attemptNumber"`
	Status        AttemptStatus `gorm:"size:20;default:'in_progress';index" json:"status"`
	Score         int           `gorm:"default:0" json:"score"`
	Total         int           `gorm:"default:0" json:"total"`
	StartedAt     time.Time     `json:"startedAt"`
	EndedAt       *time.Time    `json:"endedAt,omitempty"`
}

func (Result) TableName() string {
	return "results"
}

// QuizAnswer stores one submitted answer to an objective question.
// IsCorrect is computed at submission time.
type QuizAnswer struct {
	UUIDBase
	ResultID   string `gorm:"index;type:varchar(36)" json:"resultId"`
	QuestionID string `gorm:"index;type:varchar(36)" json:"questionId"`
	UserID     uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	Answer     string `gorm:"type:text" json:"answer"`
	IsCorrect  *bool  `json:"isCorrect"`
	Score      int    `gorm:"default:0" json:"score"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
