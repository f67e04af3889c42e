package service

import (
	"errors"
	"time"

	"classroom_backend/internal/model"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/util"

	"gorm.io/gorm"
)

// CheckpointService persists mid-attempt draft answers so a disconnect
// or tab close loses nothing. One row per question, last write wins.
type CheckpointService struct {
	QuizRepo       *repository.QuizRepository
	ResultRepo     *repository.ResultRepository
	CheckpointRepo *repository.CheckpointRepository
	Attempts       *AttemptService
}

func NewCheckpointService(
	quizRepo *repository.QuizRepository,
	resultRepo *repository.ResultRepository,
	checkpointRepo *repository.CheckpointRepository,
	attempts *AttemptService,
) *CheckpointService {
	return &CheckpointService{
		QuizRepo:       quizRepo,
		ResultRepo:     resultRepo,
		CheckpointRepo: checkpointRepo,
		Attempts:       attempts,
	}
}

type CheckpointRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
}

// Save stores one draft answer against the caller's open attempt.
// Requires a live in-progress attempt; saving after the deadline or
// after submission is rejected.
func (s *CheckpointService) Save(user *util.Claims, quizID string, req CheckpointRequest) error {
	quiz, err := s.Attempts.findQuiz(quizID)
	if err != nil {
		return err
	}

	attempt, err := s.ResultRepo.FindOpen(user.UserID, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrAttemptNotFound
		}
		return err
	}
	if expired, err := s.Attempts.expireIfDue(quiz, attempt, time.Now()); err != nil {
		return err
	} else if expired {
		return util.ErrAttemptAlreadyEnded
	}

	question, err := s.QuizRepo.FindQuestion(req.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuestionNotFound
		}
		return err
	}
	if question.QuizID != quizID {
		return util.ErrQuestionNotFound
	}

	return s.CheckpointRepo.Upsert(&model.QuizCheckpoint{
		UserID:        user.UserID,
		QuizID:        quizID,
		QuestionID:    req.QuestionID,
		AttemptNumber: attempt.AttemptNumber,
		Answer:        req.Answer,
	})
}

// Saved returns the caller's draft answers for their open attempt,
// keyed by question id.
func (s *CheckpointService) Saved(user *util.Claims, quizID string) (map[string]string, error) {
	attempt, err := s.ResultRepo.FindOpen(user.UserID, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	checkpoints, err := s.CheckpointRepo.ListByAttempt(user.UserID, quizID, attempt.AttemptNumber)
	if err != nil {
		return nil, err
	}
	answers := make(map[string]string, len(checkpoints))
	for _, cp := range checkpoints {
		answers[cp.QuestionID] = cp.Answer
	}
	return answers, nil
}
