package service

import (
	"context"
	"errors"
	"time"

	"classroom_backend/internal/model"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/logger"
	"classroom_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EssayGradingService handles manual review: per-essay grading with a
// score recompute on every grade, and the pending_review -> completed
// transition once nothing ungraded remains.
type EssayGradingService struct {
	QuizRepo   *repository.QuizRepository
	ResultRepo *repository.ResultRepository
	EssayRepo  *repository.EssayRepository
	Access     *AccessChecker
	DB         *gorm.DB

	// Reports, when set, has its class cache dropped after grading so
	// fresh scores show up without waiting out the TTL.
	Reports *DashboardService
}

func NewEssayGradingService(
	quizRepo *repository.QuizRepository,
	resultRepo *repository.ResultRepository,
	essayRepo *repository.EssayRepository,
	access *AccessChecker,
	db *gorm.DB,
) *EssayGradingService {
	return &EssayGradingService{
		QuizRepo:   quizRepo,
		ResultRepo: resultRepo,
		EssayRepo:  essayRepo,
		Access:     access,
		DB:         db,
	}
}

type GradeRequest struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// PendingReview is one attempt awaiting manual grading together with
// its essay submissions.
type PendingReview struct {
	Attempt     AttemptView             `json:"attempt"`
	StudentID   uint                    `json:"studentId"`
	Submissions []model.EssaySubmission `json:"submissions"`
}

// Grade records a teacher's score for one essay submission. Re-grading
// overwrites the previous score. When the last ungraded essay of the
// attempt gets a score the attempt completes automatically.
func (s *EssayGradingService) Grade(user *util.Claims, submissionID string, req GradeRequest) (*model.EssaySubmission, error) {
	sub, err := s.EssayRepo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}

	attempt, quiz, err := s.loadAttempt(sub.ResultID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.RequireClassOwner(quiz.ClassID, user); err != nil {
		return nil, err
	}

	question, err := s.QuizRepo.FindQuestion(sub.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	if req.Score < 0 || req.Score > question.MaxScore {
		return nil, util.ErrScoreOutOfRange
	}

	now := time.Now()
	score := req.Score
	sub.TeacherScore = &score
	sub.TeacherFeedback = req.Feedback
	sub.GraderID = user.UserID
	sub.GradedAt = &now
	if err := s.EssayRepo.Update(sub); err != nil {
		return nil, err
	}
	monitoring.EssayGrades.Inc()

	// The grade is only real once it shows in the attempt's score. A
	// failed recompute fails the call.
	if err := s.recompute(attempt); err != nil {
		return nil, err
	}

	if attempt.Status == model.AttemptPendingReview {
		ungraded, err := s.EssayRepo.CountUngraded(attempt.ID)
		if err != nil {
			return nil, err
		}
		if ungraded == 0 {
			if err := s.complete(attempt); err != nil {
				return nil, err
			}
		}
	}

	logger.Log.Info("essay graded",
		zap.String("submissionId", sub.ID),
		zap.String("resultId", attempt.ID),
		zap.Int("score", score),
		zap.Uint("graderId", user.UserID))

	if s.Reports != nil {
		s.Reports.InvalidateClassReport(context.Background(), quiz.ClassID)
	}
	return sub, nil
}

// Finalize forces an attempt out of pending_review. Ungraded essays
// keep contributing zero. Calling it on an already completed attempt
// just recomputes, so retries are harmless.
func (s *EssayGradingService) Finalize(user *util.Claims, resultID string) (*AttemptView, error) {
	attempt, quiz, err := s.loadAttempt(resultID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.RequireClassOwner(quiz.ClassID, user); err != nil {
		return nil, err
	}
	if attempt.Status == model.AttemptInProgress || attempt.Status == model.AttemptCancelled {
		return nil, util.ErrAttemptStillOpen
	}

	if err := s.recompute(attempt); err != nil {
		return nil, err
	}
	if attempt.Status == model.AttemptPendingReview {
		if err := s.complete(attempt); err != nil {
			return nil, err
		}
	}
	if s.Reports != nil {
		s.Reports.InvalidateClassReport(context.Background(), quiz.ClassID)
	}

	return &AttemptView{
		ID:            attempt.ID,
		QuizID:        attempt.QuizID,
		AttemptNumber: attempt.AttemptNumber,
		Status:        attempt.Status,
		Score:         attempt.Score,
		Total:         attempt.Total,
		Percentage:    Percentage(attempt.Score, attempt.Total),
		StartedAt:     attempt.StartedAt,
		EndedAt:       attempt.EndedAt,
	}, nil
}

// PendingReviews lists a quiz's attempts stuck in pending_review, each
// with its essay submissions, oldest submission first.
func (s *EssayGradingService) PendingReviews(user *util.Claims, quizID string) ([]PendingReview, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if err := s.Access.RequireClassOwner(quiz.ClassID, user); err != nil {
		return nil, err
	}

	attempts, err := s.ResultRepo.ListPendingReviewByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	reviews := make([]PendingReview, 0, len(attempts))
	for i := range attempts {
		attempt := &attempts[i]
		subs, err := s.EssayRepo.ListByResult(attempt.ID)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, PendingReview{
			Attempt: AttemptView{
				ID:            attempt.ID,
				QuizID:        attempt.QuizID,
				AttemptNumber: attempt.AttemptNumber,
				Status:        attempt.Status,
				Score:         attempt.Score,
				Total:         attempt.Total,
				Percentage:    Percentage(attempt.Score, attempt.Total),
				StartedAt:     attempt.StartedAt,
				EndedAt:       attempt.EndedAt,
			},
			StudentID:   attempt.UserID,
			Submissions: subs,
		})
	}
	return reviews, nil
}

// recompute rebuilds the attempt's score from stored rows: objective
// answer scores plus whatever teacher scores exist so far.
func (s *EssayGradingService) recompute(attempt *model.Result) error {
	answers, err := s.ResultRepo.GetAnswersByResult(attempt.ID)
	if err != nil {
		return err
	}
	subs, err := s.EssayRepo.ListByResult(attempt.ID)
	if err != nil {
		return err
	}

	score := 0
	for _, a := range answers {
		score += a.Score
	}
	for _, sub := range subs {
		if sub.TeacherScore != nil {
			score += *sub.TeacherScore
		}
	}

	attempt.Score = score
	return s.ResultRepo.Update(attempt)
}

func (s *EssayGradingService) complete(attempt *model.Result) error {
	attempt.Status = model.AttemptCompleted
	if err := s.ResultRepo.Update(attempt); err != nil {
		return err
	}
	monitoring.AttemptTransitions.WithLabelValues(string(model.AttemptCompleted)).Inc()
	return nil
}

func (s *EssayGradingService) loadAttempt(resultID string) (*model.Result, *model.Quiz, error) {
	attempt, err := s.ResultRepo.FindByID(resultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrAttemptNotFound
		}
		return nil, nil, err
	}
	quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrQuizNotFound
		}
		return nil, nil, err
	}
	return attempt, quiz, nil
}
