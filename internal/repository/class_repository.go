package repository

import (
	"classroom_backend/internal/model"

	"gorm.io/gorm"
)

type ClassRepository struct {
	DB *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) Create(class *model.Class) error {
	return r.DB.Create(class).Error
}

func (r *ClassRepository) FindByID(id string) (*model.Class, error) {
	var class model.Class
	if err := r.DB.First(&class, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *ClassRepository) Update(class *model.Class) error {
	return r.DB.Save(class).Error
}

func (r *ClassRepository) ListByTeacher(teacherID uint) ([]model.Class, error) {
	var classes []model.Class
	err := r.DB.Where("teacher_id = ? AND archived = ?", teacherID, false).Order("created_at DESC").Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) ListForStudent(userID uint) ([]model.Class, error) {
	var classes []model.Class
	err := r.DB.
		Joins("JOIN class_members ON class_members.class_id = classes.id").
		Where("class_members.user_id = ? AND classes.archived = ?", userID, false).
		Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) AddMember(member *model.ClassMember) error {
	return r.DB.Create(member).Error
}

// RemoveMember hard-deletes the membership row; a soft-deleted row
// would keep holding the (class, user) unique key and block
// re-enrollment.
func (r *ClassRepository) RemoveMember(classID string, userID uint) error {
	return r.DB.Unscoped().Where("class_id = ? AND user_id = ?", classID, userID).Delete(&model.ClassMember{}).Error
}

func (r *ClassRepository) IsMember(classID string, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ClassMember{}).
		Where("class_id = ? AND user_id = ?", classID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ClassRepository) ListStudentIDs(classID string) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.ClassMember{}).
		Where("class_id = ?", classID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// DeleteCascade removes a class together with its quizzes, questions,
// attempts, answers, materials and checkpoints. Archiving a class deletes
// its content; quizzes carry no separate archive flag.
func (r *ClassRepository) DeleteCascade(classID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var quizIDs []string
		if err := tx.Model(&model.Quiz{}).Where("class_id = ?", classID).Pluck("id", &quizIDs).Error; err != nil {
			return err
		}
		if len(quizIDs) > 0 {
			var resultIDs []string
			if err := tx.Model(&model.Result{}).Where("quiz_id IN ?", quizIDs).Pluck("id", &resultIDs).Error; err != nil {
				return err
			}
			if len(resultIDs) > 0 {
				if err := tx.Where("result_id IN ?", resultIDs).Delete(&model.QuizAnswer{}).Error; err != nil {
					return err
				}
				if err := tx.Where("result_id IN ?", resultIDs).Delete(&model.EssaySubmission{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&model.Result{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&model.QuizCheckpoint{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&model.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Where("class_id = ?", classID).Delete(&model.Quiz{}).Error; err != nil {
				return err
			}
		}

		var materialIDs []string
		if err := tx.Model(&model.Material{}).Where("class_id = ?", classID).Pluck("id", &materialIDs).Error; err != nil {
			return err
		}
		if len(materialIDs) > 0 {
			if err := tx.Where("material_id IN ?", materialIDs).Delete(&model.MaterialProgress{}).Error; err != nil {
				return err
			}
			if err := tx.Where("class_id = ?", classID).Delete(&model.Material{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("class_id = ?", classID).Delete(&model.ClassMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Class{}, "id = ?", classID).Error
	})
}
