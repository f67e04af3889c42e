package repository

import (
	"classroom_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MaterialRepository struct {
	DB *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{DB: db}
}

func (r *MaterialRepository) Create(material *model.Material) error {
	return r.DB.Create(material).Error
}

func (r *MaterialRepository) FindByID(id string) (*model.Material, error) {
	var m model.Material
	if err := r.DB.First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MaterialRepository) ListByClass(classID string) ([]model.Material, error) {
	var materials []model.Material
	err := r.DB.Where("class_id = ?", classID).Order("created_at DESC").Find(&materials).Error
	return materials, err
}

func (r *MaterialRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("material_id = ?", id).Delete(&model.MaterialProgress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Material{}, "id = ?", id).Error
	})
}

func (r *MaterialRepository) UpsertProgress(p *model.MaterialProgress) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "material_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(p).Error
}

func (r *MaterialRepository) CountByClass(classID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Material{}).Where("class_id = ?", classID).Count(&count).Error
	return count, err
}

func (r *MaterialRepository) CountCompleted(classID string, userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.MaterialProgress{}).
		Joins("JOIN materials ON materials.id = materials_progress.material_id").
		Where("materials.class_id = ? AND materials_progress.user_id = ? AND materials_progress.status = ?",
			classID, userID, model.MaterialCompleted).
		Count(&count).Error
	return count, err
}

func (r *MaterialRepository) ListProgress(userID uint) ([]model.MaterialProgress, error) {
	var progress []model.MaterialProgress
	err := r.DB.Where("user_id = ?", userID).Find(&progress).Error
	return progress, err
}
