package service

import (
	"encoding/json"
	"errors"
	"time"

	"classroom_backend/internal/model"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/util"

	"gorm.io/gorm"
)

// AccessChecker answers capability questions for class and quiz access.
// Controllers authenticate; services ask the checker before touching data.
type AccessChecker struct {
	ClassRepo *repository.ClassRepository
	QuizRepo  *repository.QuizRepository
}

func NewAccessChecker(classRepo *repository.ClassRepository, quizRepo *repository.QuizRepository) *AccessChecker {
	return &AccessChecker{ClassRepo: classRepo, QuizRepo: quizRepo}
}

// RequireMember ensures the user is enrolled in the class. Admins bypass
// enrollment.
func (a *AccessChecker) RequireMember(classID string, user *util.Claims) error {
	if user.Role == model.Admin {
		return nil
	}
	class, err := a.ClassRepo.FindByID(classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrClassNotFound
		}
		return err
	}
	if class.TeacherID == user.UserID {
		return nil
	}
	ok, err := a.ClassRepo.IsMember(classID, user.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrNotEnrolled
	}
	return nil
}

// RequireClassOwner ensures the user teaches the class. Admins bypass
// ownership.
func (a *AccessChecker) RequireClassOwner(classID string, user *util.Claims) error {
	class, err := a.ClassRepo.FindByID(classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrClassNotFound
		}
		return err
	}
	if user.Role == model.Admin || class.TeacherID == user.UserID {
		return nil
	}
	return util.ErrNotClassOwner
}

// QuizOpenFor checks whether a student may start or continue attempting
// the quiz right now: published, active, inside the availability window,
// and inside the visibility list when one is set.
func (a *AccessChecker) QuizOpenFor(quiz *model.Quiz, userID uint, now time.Time) error {
	if quiz.Status != model.QuizPublished || !quiz.IsActive {
		return util.ErrQuizNotAvailable
	}
	if quiz.AvailableFrom != nil && now.Before(*quiz.AvailableFrom) {
		return util.ErrQuizNotAvailable
	}
	if quiz.AvailableUntil != nil && now.After(*quiz.AvailableUntil) {
		return util.ErrQuizNotAvailable
	}
	if !quizVisibleTo(quiz, userID) {
		return util.ErrQuizNotVisible
	}
	return nil
}

// quizVisibleTo interprets the optional visible_to list. Empty or
// malformed means visible to the whole class.
func quizVisibleTo(quiz *model.Quiz, userID uint) bool {
	if len(quiz.VisibleTo) == 0 {
		return true
	}
	var ids []uint
	if err := json.Unmarshal(quiz.VisibleTo, &ids); err != nil || len(ids) == 0 {
		return true
	}
	for _, id := range ids {
		if id == userID {
			return true
		}
	}
	return false
}
