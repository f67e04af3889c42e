package service

import (
	"encoding/json"
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

// AttemptService drives the attempt lifecycle: start (with resume and the
// attempt limit), answer submission with auto-grading, cancellation, and
// the lazy deadline sweep for timed quizzes.
type AttemptService struct {
	QuizRepo       *repository.QuizRepository
	ResultRepo     *repository.ResultRepository
	CheckpointRepo *repository.CheckpointRepository
	EssayRepo      *repository.EssayRepository
	Access         *AccessChecker
	DB             *gorm.DB
}

func NewAttemptService(
	quizRepo *repository.QuizRepository,
	resultRepo *repository.ResultRepository,
	checkpointRepo *repository.CheckpointRepository,
	essayRepo *repository.EssayRepository,
	access *AccessChecker,
	db *gorm.DB,
) *AttemptService {
	return &AttemptService{
		QuizRepo:       quizRepo,
		ResultRepo:     resultRepo,
		CheckpointRepo: checkpointRepo,
		EssayRepo:      essayRepo,
		Access:         access,
		DB:             db,
	}
}

// QuestionView is a question as shown to a student mid-attempt. The
// reference answer never leaves the server.
type QuestionView struct {
	ID       string             `json:"id"`
	Type     model.QuestionType `json:"type"`
	Text     string             `json:"text"`
	Options  json.RawMessage    `json:"options,omitempty"`
	MaxScore int                `json:"maxScore"`
	Order    int                `json:"order"`
}

// AttemptView is the student-facing shape of one attempt.
type AttemptView struct {
	ID            string              `json:"id"`
	QuizID        string              `json:"quizId"`
	AttemptNumber int                 `json:"attemptNumber"`
	Status        model.AttemptStatus `json:"status"`
	Score         int                 `json:"score"`
	Total         int                 `json:"total"`
	Percentage    float64             `json:"percentage"`
	StartedAt     time.Time           `json:"startedAt"`
	EndedAt       *time.Time          `json:"endedAt,omitempty"`
	Deadline      *time.Time          `json:"deadline,omitempty"`
	Resumed       bool                `json:"resumed,omitempty"`
	Questions     []QuestionView      `json:"questions,omitempty"`
	SavedAnswers  map[string]string   `json:"savedAnswers,omitempty"`
	Answers       []AnswerView        `json:"answers,omitempty"`
}

// AnswerView is one recorded answer in an ended attempt's detail view.
// Essay answers report Graded=false until a teacher scores them.
type AnswerView struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	IsCorrect  *bool  `json:"isCorrect,omitempty"`
	Score      int    `json:"score"`
	Graded     bool   `json:"graded"`
	Feedback   string `json:"feedback,omitempty"`
}

type SubmitRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// StartAttempt opens a new attempt or resumes the caller's in-progress
// one. Starting while an attempt is open is not an error; the open
// attempt comes back with its saved checkpoints.
func (s *AttemptService) StartAttempt(user *util.Claims, quizID string) (*AttemptView, error) {
	quiz, err := s.findQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.RequireMember(quiz.ClassID, user); err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.Access.QuizOpenFor(quiz, user.UserID, now); err != nil {
		return nil, err
	}

	if open, err := s.ResultRepo.FindOpen(user.UserID, quizID); err == nil {
		if expired, ferr := s.expireIfDue(quiz, open, now); ferr != nil {
			return nil, ferr
		} else if !expired {
			return s.resumeView(quiz, open)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	taken, err := s.ResultRepo.CountByUserAndQuiz(user.UserID, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.MaxAttempts > 0 && taken >= int64(quiz.MaxAttempts) {
		return nil, util.ErrAttemptLimitReached
	}

	attempt := &model.Result{
		QuizID:        quizID,
		UserID:        user.UserID,
		AttemptNumber: int(taken) + 1,
		Status:        model.AttemptInProgress,
		StartedAt:     now,
	}
	if err := s.ResultRepo.Create(attempt); err != nil {
		// Two concurrent starts race for the same attempt number. The
		// unique index lets exactly one through; the loser resumes it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			open, rerr := s.ResultRepo.FindOpen(user.UserID, quizID)
			if rerr != nil {
				return nil, err
			}
			return s.resumeView(quiz, open)
		}
		return nil, err
	}

	monitoring.AttemptTransitions.WithLabelValues(string(model.AttemptInProgress)).Inc()
	logger.Log.Info("attempt started",
		zap.String("quizId", quizID),
		zap.Uint("userId", user.UserID),
		zap.Int("attemptNumber", attempt.AttemptNumber))

	view, err := s.resumeView(quiz, attempt)
	if err != nil {
		return nil, err
	}
	view.Resumed = false
	return view, nil
}

// SubmitAttempt grades the submitted answers and closes the attempt.
// Attempts holding essay questions land in pending_review; purely
// objective ones complete immediately.
func (s *AttemptService) SubmitAttempt(user *util.Claims, resultID string, answers map[string]string) (*AttemptView, error) {
	attempt, err := s.findAttempt(resultID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != user.UserID {
		return nil, util.ErrNotAttemptOwner
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptAlreadyEnded
	}

	quiz, err := s.findQuiz(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if expired, ferr := s.expireIfDue(quiz, attempt, now); ferr != nil {
		return nil, ferr
	} else if expired {
		return nil, util.ErrAttemptAlreadyEnded
	}

	if err := s.finalizeSubmission(quiz, attempt, answers, now); err != nil {
		return nil, err
	}
	return s.attemptView(quiz, attempt), nil
}

// CancelAttempt abandons an in-progress attempt. The slot stays spent:
// cancelled attempts still count against the quiz's attempt limit.
func (s *AttemptService) CancelAttempt(user *util.Claims, resultID string) (*AttemptView, error) {
	attempt, err := s.findAttempt(resultID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != user.UserID {
		return nil, util.ErrNotAttemptOwner
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptAlreadyEnded
	}

	now := time.Now()
	attempt.Status = model.AttemptCancelled
	attempt.EndedAt = &now
	if err := s.ResultRepo.Update(attempt); err != nil {
		return nil, err
	}
	monitoring.AttemptTransitions.WithLabelValues(string(model.AttemptCancelled)).Inc()
	s.clearCheckpoints(attempt)

	quiz, err := s.findQuiz(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	return s.attemptView(quiz, attempt), nil
}

// GetAttempt returns one attempt. Students see only their own; the class
// teacher and admins see any attempt at their quizzes.
func (s *AttemptService) GetAttempt(user *util.Claims, resultID string) (*AttemptView, error) {
	attempt, err := s.findAttempt(resultID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.findQuiz(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != user.UserID {
		if err := s.Access.RequireClassOwner(quiz.ClassID, user); err != nil {
			return nil, util.ErrNotAttemptOwner
		}
	}
	if _, err := s.expireIfDue(quiz, attempt, time.Now()); err != nil {
		return nil, err
	}

	view := s.attemptView(quiz, attempt)
	if attempt.Status != model.AttemptInProgress {
		answers, err := s.recordedAnswers(attempt.ID)
		if err != nil {
			return nil, err
		}
		view.Answers = answers
	}
	return view, nil
}

// recordedAnswers assembles the objective and essay rows of an ended
// attempt into one list.
func (s *AttemptService) recordedAnswers(resultID string) ([]AnswerView, error) {
	graded, err := s.ResultRepo.GetAnswersByResult(resultID)
	if err != nil {
		return nil, err
	}
	essays, err := s.EssayRepo.ListByResult(resultID)
	if err != nil {
		return nil, err
	}

	views := make([]AnswerView, 0, len(graded)+len(essays))
	for _, a := range graded {
		views = append(views, AnswerView{
			QuestionID: a.QuestionID,
			Answer:     a.Answer,
			IsCorrect:  a.IsCorrect,
			Score:      a.Score,
			Graded:     true,
		})
	}
	for _, sub := range essays {
		view := AnswerView{
			QuestionID: sub.QuestionID,
			Answer:     sub.Answer,
			Feedback:   sub.TeacherFeedback,
		}
		if sub.TeacherScore != nil {
			view.Score = *sub.TeacherScore
			view.Graded = true
		}
		views = append(views, view)
	}
	return views, nil
}

// History lists the caller's attempts at one quiz, oldest first.
func (s *AttemptService) History(user *util.Claims, quizID string) ([]AttemptView, error) {
	quiz, err := s.findQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.RequireMember(quiz.ClassID, user); err != nil {
		return nil, err
	}
	if err := s.SweepDeadlines(quiz); err != nil {
		return nil, err
	}

	attempts, err := s.ResultRepo.ListByUserAndQuiz(user.UserID, quizID)
	if err != nil {
		return nil, err
	}
	views := make([]AttemptView, 0, len(attempts))
	for i := range attempts {
		views = append(views, *s.attemptView(quiz, &attempts[i]))
	}
	return views, nil
}

// ListByQuiz gives the class teacher every attempt at a quiz.
func (s *AttemptService) ListByQuiz(user *util.Claims, quizID string) ([]AttemptView, error) {
	quiz, err := s.findQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.RequireClassOwner(quiz.ClassID, user); err != nil {
		return nil, err
	}
	if err := s.SweepDeadlines(quiz); err != nil {
		return nil, err
	}

	attempts, err := s.ResultRepo.ListByQuiz(quizID)
	if err != nil {
		return nil, err
	}
	views := make([]AttemptView, 0, len(attempts))
	for i := range attempts {
		views = append(views, *s.attemptView(quiz, &attempts[i]))
	}
	return views, nil
}

// SweepDeadlines reconciles a quiz's attempts with the clock. Timed
// attempts past their deadline get finalized from saved checkpoints;
// once the quiz's availability window has closed, attempts still in
// pending_review complete with whatever score has accumulated. There
// is no background scheduler; read paths trigger the sweep.
func (s *AttemptService) SweepDeadlines(quiz *model.Quiz) error {
	now := time.Now()

	if quiz.DurationMinutes > 0 {
		open, err := s.ResultRepo.ListOpenByQuiz(quiz.ID)
		if err != nil {
			return err
		}
		for i := range open {
			if _, err := s.expireIfDue(quiz, &open[i], now); err != nil {
				return err
			}
		}
	}

	if quiz.AvailableUntil == nil || now.Before(*quiz.AvailableUntil) {
		return nil
	}
	pending, err := s.ResultRepo.ListPendingReviewByQuiz(quiz.ID)
	if err != nil {
		return err
	}
	for i := range pending {
		attempt := &pending[i]
		attempt.Status = model.AttemptCompleted
		if err := s.ResultRepo.Update(attempt); err != nil {
			return err
		}
		monitoring.AttemptTransitions.WithLabelValues(string(model.AttemptCompleted)).Inc()
		logger.Log.Info("quiz closed, completing pending review",
			zap.String("resultId", attempt.ID),
			zap.Int("score", attempt.Score))
	}
	return nil
}

// expireIfDue finalizes a single overdue attempt from its checkpoints.
// Reports whether the attempt was (or had already been) expired.
func (s *AttemptService) expireIfDue(quiz *model.Quiz, attempt *model.Result, now time.Time) (bool, error) {
	deadline := attemptDeadline(quiz, attempt)
	if deadline == nil || attempt.Status != model.AttemptInProgress || now.Before(*deadline) {
		return false, nil
	}

	answers := make(map[string]string)
	checkpoints, err := s.CheckpointRepo.ListByAttempt(attempt.UserID, attempt.QuizID, attempt.AttemptNumber)
	if err != nil {
		return false, err
	}
	for _, cp := range checkpoints {
		answers[cp.QuestionID] = cp.Answer
	}

	logger.Log.Info("attempt expired, finalizing from checkpoints",
		zap.String("resultId", attempt.ID),
		zap.Int("savedAnswers", len(answers)))
	if err := s.finalizeSubmission(quiz, attempt, answers, *deadline); err != nil {
		return false, err
	}
	return true, nil
}

// finalizeSubmission is the single write path that ends an attempt with
// a grade. Result update and answer rows commit atomically; checkpoint
// cleanup afterwards is best effort.
func (s *AttemptService) finalizeSubmission(quiz *model.Quiz, attempt *model.Result, answers map[string]string, endedAt time.Time) error {
	questions, err := s.QuizRepo.GetQuestions(quiz.ID)
	if err != nil {
		return err
	}
	sheet := GradeSubmission(questions, answers)

	status := model.AttemptCompleted
	if sheet.HasEssays {
		status = model.AttemptPendingReview
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		attempt.Status = status
		attempt.Score = sheet.Score
		attempt.Total = sheet.Total
		attempt.EndedAt = &endedAt
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}

		if len(sheet.Objective) > 0 {
			rows := make([]model.QuizAnswer, 0, len(sheet.Objective))
			for _, g := range sheet.Objective {
				correct := g.IsCorrect
				rows = append(rows, model.QuizAnswer{
					ResultID:   attempt.ID,
					QuestionID: g.QuestionID,
					UserID:     attempt.UserID,
					Answer:     g.Answer,
					IsCorrect:  &correct,
					Score:      g.Score,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		for _, q := range questions {
			answer, ok := sheet.EssayByQID[q.ID]
			if !ok {
				continue
			}
			sub := model.EssaySubmission{
				ResultID:   attempt.ID,
				QuestionID: q.ID,
				UserID:     attempt.UserID,
				Answer:     answer,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	monitoring.AttemptTransitions.WithLabelValues(string(status)).Inc()
	logger.Log.Info("attempt submitted",
		zap.String("resultId", attempt.ID),
		zap.String("status", string(status)),
		zap.Int("score", sheet.Score),
		zap.Int("total", sheet.Total))

	s.clearCheckpoints(attempt)
	return nil
}

// clearCheckpoints drops saved drafts once an attempt ends. A failure
// here leaves stale rows behind but never fails the submission.
func (s *AttemptService) clearCheckpoints(attempt *model.Result) {
	if err := s.CheckpointRepo.ClearAttempt(attempt.UserID, attempt.QuizID, attempt.AttemptNumber); err != nil {
		logger.Log.Warn("checkpoint cleanup failed",
			zap.String("resultId", attempt.ID),
			zap.Error(err))
	}
}

func (s *AttemptService) resumeView(quiz *model.Quiz, attempt *model.Result) (*AttemptView, error) {
	view := s.attemptView(quiz, attempt)
	view.Resumed = true

	questions, err := s.QuizRepo.GetQuestions(quiz.ID)
	if err != nil {
		return nil, err
	}
	view.Questions = make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		view.Questions = append(view.Questions, QuestionView{
			ID:       q.ID,
			Type:     q.Type,
			Text:     q.Text,
			Options:  q.Options,
			MaxScore: q.MaxScore,
			Order:    q.Order,
		})
	}

	checkpoints, err := s.CheckpointRepo.ListByAttempt(attempt.UserID, attempt.QuizID, attempt.AttemptNumber)
	if err != nil {
		return nil, err
	}
	if len(checkpoints) > 0 {
		view.SavedAnswers = make(map[string]string, len(checkpoints))
		for _, cp := range checkpoints {
			view.SavedAnswers[cp.QuestionID] = cp.Answer
		}
	}
	return view, nil
}

func (s *AttemptService) attemptView(quiz *model.Quiz, attempt *model.Result) *AttemptView {
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
		Deadline:      attemptDeadline(quiz, attempt),
	}
}

func (s *AttemptService) findQuiz(id string) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

func (s *AttemptService) findAttempt(id string) (*model.Result, error) {
	attempt, err := s.ResultRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return attempt, nil
}

// attemptDeadline derives the hard stop for an attempt at a timed quiz.
// Untimed quizzes have none.
func attemptDeadline(quiz *model.Quiz, attempt *model.Result) *time.Time {
	if quiz.DurationMinutes <= 0 {
		return nil
	}
	d := attempt.StartedAt.Add(time.Duration(quiz.DurationMinutes) * time.Minute)
	return &d
}
