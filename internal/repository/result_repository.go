package repository

import (
	"classroom_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Create(result *model.Result) error {
	return r.DB.Create(result).Error
}

func (r *ResultRepository) Update(result *model.Result) error {
	return r.DB.Save(result).Error
}

func (r *ResultRepository) FindByID(id string) (*model.Result, error) {
	var result model.Result
	if err := r.DB.First(&result, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// FindOpen returns the user's in-progress attempt at the quiz, if any.
func (r *ResultRepository) FindOpen(userID uint, quizID string) (*model.Result, error) {
	var result model.Result
	err := r.DB.
		Where("user_id = ? AND quiz_id = ? AND ended_at IS NULL", userID, quizID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CountByUserAndQuiz counts every attempt regardless of status. Cancelled
// attempts still consume a slot against max_attempts.
func (r *ResultRepository) CountByUserAndQuiz(userID uint, quizID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Result{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	return count, err
}

func (r *ResultRepository) ListByUserAndQuiz(userID uint, quizID string) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempt_number ASC").
		Find(&results).Error
	return results, err
}

func (r *ResultRepository) ListByQuiz(quizID string) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.Where("quiz_id = ?", quizID).Order("user_id, attempt_number").Find(&results).Error
	return results, err
}

func (r *ResultRepository) ListByUser(userID uint) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&results).Error
	return results, err
}

// ListOpenByQuiz returns every attempt still running against the quiz.
// Feeds the deadline sweep for timed quizzes.
func (r *ResultRepository) ListOpenByQuiz(quizID string) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.
		Where("quiz_id = ? AND ended_at IS NULL", quizID).
		Find(&results).Error
	return results, err
}

func (r *ResultRepository) ListPendingReviewByQuiz(quizID string) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.
		Where("quiz_id = ? AND status = ?", quizID, model.AttemptPendingReview).
		Order("ended_at ASC").
		Find(&results).Error
	return results, err
}

func (r *ResultRepository) GetAnswersByResult(resultID string) ([]model.QuizAnswer, error) {
	var answers []model.QuizAnswer
	err := r.DB.Where("result_id = ?", resultID).Find(&answers).Error
	return answers, err
}

// BestCompletedScores returns, per quiz in quizIDs, the user's highest
// completed attempt as (score, total) pairs keyed by quiz id.
func (r *ResultRepository) BestCompletedScores(userID uint, quizIDs []string) (map[string]model.Result, error) {
	best := make(map[string]model.Result)
	if len(quizIDs) == 0 {
		return best, nil
	}
	var results []model.Result
	err := r.DB.
		Where("user_id = ? AND quiz_id IN ? AND status = ?", userID, quizIDs, model.AttemptCompleted).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		cur, ok := best[res.QuizID]
		if !ok || percentOf(res) > percentOf(cur) {
			best[res.QuizID] = res
		}
	}
	return best, nil
}

func percentOf(r model.Result) float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total)
}
