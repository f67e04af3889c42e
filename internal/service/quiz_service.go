package service

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"classroom_backend/internal/model"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo *repository.QuizRepository
	Access   *AccessChecker
}

func NewQuizService(quizRepo *repository.QuizRepository, access *AccessChecker) *QuizService {
	return &QuizService{QuizRepo: quizRepo, Access: access}
}

type QuestionRequest struct {
	Type     string          `json:"type" binding:"required"`
	Text     string          `json:"text" binding:"required"`
	Options  json.RawMessage `json:"options,omitempty"`
	Answer   string          `json:"answer,omitempty"`
	MaxScore int             `json:"maxScore"`
	Order    int             `json:"order"`
}

type QuizRequest struct {
	Topic           string            `json:"topic" binding:"required"`
	DurationMinutes int               `json:"durationMinutes"`
	MaxAttempts     int               `json:"maxAttempts"`
	Weight          int               `json:"weight"`
	AvailableFrom   *time.Time        `json:"availableFrom"`
	AvailableUntil  *time.Time        `json:"availableUntil"`
	VisibleTo       []uint            `json:"visibleTo"`
	Questions       []QuestionRequest `json:"questions" binding:"required"`
}

// QuizDetail is a quiz with its questions, shaped per role: students
// never see reference answers.
type QuizDetail struct {
	Quiz      *model.Quiz      `json:"quiz"`
	Questions []model.Question `json:"questions"`
}

func (s *QuizService) Create(user *util.Claims, classID string, req QuizRequest) (*model.Quiz, error) {
	if err := s.Access.RequireClassOwner(classID, user); err != nil {
		return nil, err
	}
	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 2
	}
	if maxAttempts < 1 {
		return nil, util.ErrMaxAttemptsInvalid
	}
	weight := req.Weight
	if weight <= 0 {
		weight = 1
	}

	quiz := &model.Quiz{
		ClassID:         classID,
		Topic:           req.Topic,
		DurationMinutes: req.DurationMinutes,
		MaxAttempts:     maxAttempts,
		Weight:          weight,
		IsActive:        true,
		AvailableFrom:   req.AvailableFrom,
		AvailableUntil:  req.AvailableUntil,
		Status:          model.QuizDraft,
		CreatorID:       user.UserID,
	}
	if len(req.VisibleTo) > 0 {
		raw, err := json.Marshal(req.VisibleTo)
		if err != nil {
			return nil, err
		}
		quiz.VisibleTo = raw
	}

	if err := s.QuizRepo.CreateWithQuestions(quiz, questions); err != nil {
		return nil, err
	}
	logger.Log.Info("quiz created",
		zap.String("quizId", quiz.ID),
		zap.String("classId", classID),
		zap.Int("questions", len(questions)))
	return quiz, nil
}

// Get returns a quiz with its questions. Teachers get the full set;
// students get sanitized questions with answers stripped.
func (s *QuizService) Get(user *util.Claims, quizID string) (*QuizDetail, error) {
	quiz, err := s.find(quizID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.RequireMember(quiz.ClassID, user); err != nil {
		return nil, err
	}

	questions, err := s.QuizRepo.GetQuestions(quizID)
	if err != nil {
		return nil, err
	}
	if !s.isOwner(quiz, user) {
		for i := range questions {
			questions[i].Answer = ""
		}
	}
	return &QuizDetail{Quiz: quiz, Questions: questions}, nil
}

// Update edits quiz metadata. The question set can only be replaced
// while no attempt exists; grades must stay explainable by the question
// set they were computed against.
func (s *QuizService) Update(user *util.Claims, quizID string, req QuizRequest) (*model.Quiz, error) {
	quiz, err := s.find(quizID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.RequireClassOwner(quiz.ClassID, user); err != nil {
		return nil, err
	}

	if req.MaxAttempts < 1 {
		return nil, util.ErrMaxAttemptsInvalid
	}

	if len(req.Questions) > 0 {
		attempted, err := s.QuizRepo.HasAttempts(quizID)
		if err != nil {
			return nil, err
		}
		if attempted {
			return nil, util.ErrQuizHasAttempts
		}
		questions, err := buildQuestions(req.Questions)
		if err != nil {
			return nil, err
		}
		if err := s.QuizRepo.ReplaceQuestions(quizID, questions); err != nil {
			return nil, err
		}
	}

	quiz.Topic = req.Topic
	quiz.DurationMinutes = req.DurationMinutes
	quiz.MaxAttempts = req.MaxAttempts
	if req.Weight > 0 {
		quiz.Weight = req.Weight
	}
	quiz.AvailableFrom = req.AvailableFrom
	quiz.AvailableUntil = req.AvailableUntil
	if len(req.VisibleTo) > 0 {
		raw, err := json.Marshal(req.VisibleTo)
		if err != nil {
			return nil, err
		}
		quiz.VisibleTo = raw
	} else {
		quiz.VisibleTo = nil
	}

	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// SetStatus moves a quiz between draft, published and archived.
func (s *QuizService) SetStatus(user *util.Claims, quizID string, status model.QuizStatus) (*model.Quiz, error) {
	switch status {
	case model.QuizDraft, model.QuizPublished, model.QuizArchived:
	default:
		return nil, util.ErrQuizStatusInvalid
	}
	quiz, err := s.find(quizID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.RequireClassOwner(quiz.ClassID, user); err != nil {
		return nil, err
	}
	quiz.Status = status
	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	logger.Log.Info("quiz status changed",
		zap.String("quizId", quizID), zap.String("status", string(status)))
	return quiz, nil
}

// ListByClass shows teachers everything and students only published
// active quizzes.
func (s *QuizService) ListByClass(user *util.Claims, classID string) ([]model.Quiz, error) {
	if err := s.Access.RequireMember(classID, user); err != nil {
		return nil, err
	}
	if s.ownsClass(classID, user) {
		return s.QuizRepo.ListByClass(classID)
	}
	quizzes, err := s.QuizRepo.ListPublishedByClass(classID)
	if err != nil {
		return nil, err
	}
	visible := quizzes[:0]
	for _, q := range quizzes {
		if quizVisibleTo(&q, user.UserID) {
			visible = append(visible, q)
		}
	}
	return visible, nil
}

func (s *QuizService) Delete(user *util.Claims, quizID string) error {
	quiz, err := s.find(quizID)
	if err != nil {
		return err
	}
	if err := s.Access.RequireClassOwner(quiz.ClassID, user); err != nil {
		return err
	}
	logger.Log.Warn("quiz deleted", zap.String("quizId", quizID), zap.Uint("byUserId", user.UserID))
	return s.QuizRepo.Delete(quizID)
}

func (s *QuizService) find(id string) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) isOwner(quiz *model.Quiz, user *util.Claims) bool {
	return s.ownsClass(quiz.ClassID, user)
}

func (s *QuizService) ownsClass(classID string, user *util.Claims) bool {
	return s.Access.RequireClassOwner(classID, user) == nil
}

func buildQuestions(reqs []QuestionRequest) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(reqs))
	for i, qr := range reqs {
		qt := model.QuestionType(qr.Type)
		switch qt {
		case model.QuestionMCQ, model.QuestionTrueFalse, model.QuestionEssay:
		default:
			return nil, util.ErrQuestionTypeInvalid
		}
		if qt == model.QuestionMCQ && len(qr.Options) == 0 {
			return nil, util.ErrOptionsRequired
		}
		if qt.IsObjective() && strings.TrimSpace(qr.Answer) == "" {
			return nil, util.ErrAnswerRequired
		}

		maxScore := qr.MaxScore
		if maxScore <= 0 {
			maxScore = 1
		}
		order := qr.Order
		if order == 0 {
			order = i + 1
		}
		questions = append(questions, model.Question{
			Type:     qt,
			Text:     qr.Text,
			Options:  qr.Options,
			Answer:   qr.Answer,
			MaxScore: maxScore,
			Order:    order,
		})
	}
	return questions, nil
}
