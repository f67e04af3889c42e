package service

import (
	"strconv"
	"testing"

	"classroom_backend/internal/model"
	"classroom_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateQuizValidatesQuestions(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	class := env.createClass(t, teacher)

	_, err := env.quizSvc.Create(claimsFor(teacher), class.ID, QuizRequest{
		Topic:     "Bad",
		Questions: []QuestionRequest{{Type: "ranking", Text: "?"}},
	})
	assert.ErrorIs(t, err, util.ErrQuestionTypeInvalid)

	_, err = env.quizSvc.Create(claimsFor(teacher), class.ID, QuizRequest{
		Topic:     "Bad",
		Questions: []QuestionRequest{{Type: "mcq", Text: "?", Answer: "a"}},
	})
	assert.ErrorIs(t, err, util.ErrOptionsRequired)

	_, err = env.quizSvc.Create(claimsFor(teacher), class.ID, QuizRequest{
		Topic:     "Bad",
		Questions: []QuestionRequest{{Type: "true_false", Text: "?"}},
	})
	assert.ErrorIs(t, err, util.ErrAnswerRequired)

	_, err = env.quizSvc.Create(claimsFor(teacher), class.ID, QuizRequest{
		Topic:       "Bad",
		MaxAttempts: -1,
		Questions:   []QuestionRequest{{Type: "essay", Text: "?"}},
	})
	assert.ErrorIs(t, err, util.ErrMaxAttemptsInvalid)
}

func TestCreateQuizDefaults(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	class := env.createClass(t, teacher)

	quiz, err := env.quizSvc.Create(claimsFor(teacher), class.ID, QuizRequest{
		Topic:     "Fractions",
		Questions: []QuestionRequest{{Type: "essay", Text: "Explain"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, quiz.MaxAttempts)
	assert.Equal(t, 1, quiz.Weight)
	assert.Equal(t, model.QuizDraft, quiz.Status)

	questions, err := env.quizzes.GetQuestions(quiz.ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, 1, questions[0].MaxScore)
}

func TestGetQuizStripsAnswersForStudents(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, objectiveQuestions())

	detail, err := env.quizSvc.Get(claimsFor(student), quiz.ID)
	require.NoError(t, err)
	for _, q := range detail.Questions {
		assert.Empty(t, q.Answer, "reference answers must not reach students")
	}

	detail, err = env.quizSvc.Get(claimsFor(teacher), quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "4", detail.Questions[0].Answer)
}

func TestUpdateQuestionsBlockedAfterAttempts(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, objectiveQuestions())

	_, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)

	_, err = env.quizSvc.Update(claimsFor(teacher), quiz.ID, QuizRequest{
		Topic:       "Fractions v2",
		MaxAttempts: 2,
		Questions:   []QuestionRequest{{Type: "essay", Text: "New"}},
	})
	assert.ErrorIs(t, err, util.ErrQuizHasAttempts)

	// Metadata-only updates stay allowed.
	updated, err := env.quizSvc.Update(claimsFor(teacher), quiz.ID, QuizRequest{
		Topic:       "Fractions v2",
		MaxAttempts: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fractions v2", updated.Topic)
	assert.Equal(t, 3, updated.MaxAttempts)
}

func TestListByClassFiltersForStudents(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	other := env.createUser(t, "other", model.Student)
	class := env.createClass(t, teacher, student, other)

	published := env.createQuiz(t, class, &model.Quiz{Topic: "Published"}, objectiveQuestions())
	draft := env.createQuiz(t, class, &model.Quiz{Topic: "Draft"}, objectiveQuestions())
	draft.Status = model.QuizDraft
	require.NoError(t, env.quizzes.Update(draft))

	restricted := env.createQuiz(t, class, &model.Quiz{Topic: "Restricted"}, objectiveQuestions())
	restricted.VisibleTo = []byte("[" + strconv.FormatUint(uint64(other.ID), 10) + "]")
	require.NoError(t, env.quizzes.Update(restricted))

	visible, err := env.quizSvc.ListByClass(claimsFor(student), class.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, published.ID, visible[0].ID)

	all, err := env.quizSvc.ListByClass(claimsFor(teacher), class.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
