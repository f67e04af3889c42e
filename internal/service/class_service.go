package service

import (
	"errors"

	"classroom_backend/internal/model"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ClassService struct {
	ClassRepo *repository.ClassRepository
	UserRepo  *repository.UserRepository
	Access    *AccessChecker
}

func NewClassService(classRepo *repository.ClassRepository, userRepo *repository.UserRepository, access *AccessChecker) *ClassService {
	return &ClassService{ClassRepo: classRepo, UserRepo: userRepo, Access: access}
}

type ClassRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type EnrollRequest struct {
	StudentEmail string `json:"studentEmail" binding:"required,email"`
}

func (s *ClassService) Create(user *util.Claims, req ClassRequest) (*model.Class, error) {
	class := &model.Class{
		Name:        req.Name,
		Description: req.Description,
		TeacherID:   user.UserID,
	}
	if err := s.ClassRepo.Create(class); err != nil {
		return nil, err
	}
	logger.Log.Info("class created", zap.String("classId", class.ID), zap.Uint("teacherId", user.UserID))
	return class, nil
}

func (s *ClassService) Get(user *util.Claims, classID string) (*model.Class, error) {
	if err := s.Access.RequireMember(classID, user); err != nil {
		return nil, err
	}
	class, err := s.ClassRepo.FindByID(classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

func (s *ClassService) Update(user *util.Claims, classID string, req ClassRequest) (*model.Class, error) {
	if err := s.Access.RequireClassOwner(classID, user); err != nil {
		return nil, err
	}
	class, err := s.ClassRepo.FindByID(classID)
	if err != nil {
		return nil, err
	}
	class.Name = req.Name
	class.Description = req.Description
	if err := s.ClassRepo.Update(class); err != nil {
		return nil, err
	}
	return class, nil
}

// Archive hides a class from both rosters and listings. Content stays
// in place so reports keep working.
func (s *ClassService) Archive(user *util.Claims, classID string) error {
	if err := s.Access.RequireClassOwner(classID, user); err != nil {
		return err
	}
	class, err := s.ClassRepo.FindByID(classID)
	if err != nil {
		return err
	}
	class.Archived = true
	return s.ClassRepo.Update(class)
}

// Delete removes a class and everything under it. Admin only at the
// route level; the cascade covers quizzes, attempts and materials.
func (s *ClassService) Delete(user *util.Claims, classID string) error {
	if err := s.Access.RequireClassOwner(classID, user); err != nil {
		return err
	}
	logger.Log.Warn("class delete cascade", zap.String("classId", classID), zap.Uint("byUserId", user.UserID))
	return s.ClassRepo.DeleteCascade(classID)
}

// List returns the classes visible to the caller: taught classes for
// teachers, enrolled classes for students.
func (s *ClassService) List(user *util.Claims) ([]model.Class, error) {
	if user.Role == model.Teacher || user.Role == model.Admin {
		return s.ClassRepo.ListByTeacher(user.UserID)
	}
	return s.ClassRepo.ListForStudent(user.UserID)
}

// Enroll adds a student to the class roster by email.
func (s *ClassService) Enroll(user *util.Claims, classID string, req EnrollRequest) error {
	if err := s.Access.RequireClassOwner(classID, user); err != nil {
		return err
	}
	student, err := s.UserRepo.FindByEmail(req.StudentEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUserNotFound
		}
		return err
	}

	err = s.ClassRepo.AddMember(&model.ClassMember{ClassID: classID, UserID: student.ID})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return util.ErrAlreadyEnrolled
		}
		return err
	}
	logger.Log.Info("student enrolled",
		zap.String("classId", classID),
		zap.Uint("studentId", student.ID))
	return nil
}

func (s *ClassService) Unenroll(user *util.Claims, classID string, studentID uint) error {
	if err := s.Access.RequireClassOwner(classID, user); err != nil {
		return err
	}
	return s.ClassRepo.RemoveMember(classID, studentID)
}

// Roster returns the class's enrolled students.
func (s *ClassService) Roster(user *util.Claims, classID string) ([]model.User, error) {
	if err := s.Access.RequireMember(classID, user); err != nil {
		return nil, err
	}
	ids, err := s.ClassRepo.ListStudentIDs(classID)
	if err != nil {
		return nil, err
	}
	return s.UserRepo.FindByIDs(ids)
}
