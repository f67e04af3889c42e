package model

import "time"

// EssaySubmission is a free-text answer awaiting manual grading.
// TeacherScore == nil means ungraded; the owning attempt stays in
// pending_review until every essay submission has a score.
type EssaySubmission struct {
	UUIDBase
	ResultID        string     `gorm:"index;type:varchar(36)" json:"resultId"`
	QuestionID      string     `gorm:"index;type:varchar(36)" json:"questionId"`
	UserID          uint       `gorm:"index;type:bigint unsigned" json:"userId"`
	Answer          string     `gorm:"type:text" json:"answer"`
	TeacherScore    *int       `json:"teacherScore"`
	TeacherFeedback string     `gorm:"type:text" json:"teacherFeedback"`
	GraderID        uint       `gorm:"type:bigint unsigned" json:"graderId"`
	GradedAt        *time.Time `json:"gradedAt,omitempty"`
}

func (EssaySubmission) TableName() string {
	return "essay_submissions"
}
