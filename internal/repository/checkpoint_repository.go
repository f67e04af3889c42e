package repository

import (
	"classroom_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckpointRepository struct {
	DB *gorm.DB
}

func NewCheckpointRepository(db *gorm.DB) *CheckpointRepository {
	return &CheckpointRepository{DB: db}
}

// Upsert writes the latest draft answer for one question. Last write wins
// on the (user, quiz, question, attempt_number) key.
func (r *CheckpointRepository) Upsert(cp *model.QuizCheckpoint) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "quiz_id"}, {Name: "question_id"}, {Name: "attempt_number"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"answer", "updated_at"}),
	}).Create(cp).Error
}

func (r *CheckpointRepository) ListByAttempt(userID uint, quizID string, attemptNumber int) ([]model.QuizCheckpoint, error) {
	var checkpoints []model.QuizCheckpoint
	err := r.DB.
		Where("user_id = ? AND quiz_id = ? AND attempt_number = ?", userID, quizID, attemptNumber).
		Find(&checkpoints).Error
	return checkpoints, err
}

// ClearAttempt hard-deletes the drafts so the unique key is free if
// the same tuple ever comes back.
func (r *CheckpointRepository) ClearAttempt(userID uint, quizID string, attemptNumber int) error {
	return r.DB.Unscoped().
		Where("user_id = ? AND quiz_id = ? AND attempt_number = ?", userID, quizID, attemptNumber).
		Delete(&model.QuizCheckpoint{}).Error
}
