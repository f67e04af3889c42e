package model

// QuizCheckpoint holds the latest draft answer to one question during an
// in-progress attempt. Upserted on every save, bulk-deleted for the
// (user, quiz, attempt_number) tuple when the attempt ends.
type QuizCheckpoint struct {
	UUIDBase
	UserID        uint   `gorm:"type:bigint unsigned;uniqueIndex:idx_checkpoint_key" json:"userId"`
	QuizID        string `gorm:"type:varchar(36);uniqueIndex:idx_checkpoint_key" json:"quizId"`
	QuestionID    string `gorm:"type:varchar(36);uniqueIndex:idx_checkpoint_key" json:"questionId"`
	AttemptNumber int    `gorm:"not null;uniqueIndex:idx_checkpoint_key" json:"attemptNumber"`
	Answer        string `gorm:"type:text" json:"answer"`
}

func (QuizCheckpoint) TableName() string {
	return "quiz_checkpoints"
}
