package repository

import (
	"classroom_backend/internal/model"

	"gorm.io/gorm"
)

type EssayRepository struct {
	DB *gorm.DB
}

func NewEssayRepository(db *gorm.DB) *EssayRepository {
	return &EssayRepository{DB: db}
}

func (r *EssayRepository) Create(submissions []model.EssaySubmission) error {
	if len(submissions) == 0 {
		return nil
	}
	return r.DB.Create(&submissions).Error
}

func (r *EssayRepository) FindByID(id string) (*model.EssaySubmission, error) {
	var sub model.EssaySubmission
	if err := r.DB.First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *EssayRepository) Update(sub *model.EssaySubmission) error {
	return r.DB.Save(sub).Error
}

func (r *EssayRepository) ListByResult(resultID string) ([]model.EssaySubmission, error) {
	var subs []model.EssaySubmission
	err := r.DB.Where("result_id = ?", resultID).Find(&subs).Error
	return subs, err
}

func (r *EssayRepository) CountUngraded(resultID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.EssaySubmission{}).
		Where("result_id = ? AND teacher_score IS NULL", resultID).
		Count(&count).Error
	return count, err
}

func (r *EssayRepository) ListUngradedByResults(resultIDs []string) ([]model.EssaySubmission, error) {
	var subs []model.EssaySubmission
	if len(resultIDs) == 0 {
		return subs, nil
	}
	err := r.DB.
		Where("result_id IN ? AND teacher_score IS NULL", resultIDs).
		Find(&subs).Error
	return subs, err
}
