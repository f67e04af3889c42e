package service

import (
	"testing"
	"time"

	"classroom_backend/internal/model"
	"classroom_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStartAttemptCreatesFirstAttempt(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, objectiveQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, view.AttemptNumber)
	assert.Equal(t, model.AttemptInProgress, view.Status)
	assert.Len(t, view.Questions, 2)
	assert.False(t, view.Resumed)
}

func TestStartAttemptResumesOpenAttempt(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, objectiveQuestions())

	first, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)

	questions, err := env.quizzes.GetQuestions(quiz.ID)
	require.NoError(t, err)
	require.NoError(t, env.checkpoint.Save(claimsFor(student), quiz.ID, CheckpointRequest{
		QuestionID: questions[0].ID,
		Answer:     "4",
	}))

	second, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "starting again must not open a second attempt")
	assert.True(t, second.Resumed)
	assert.Equal(t, "4", second.SavedAnswers[questions[0].ID])
}

func TestStartAttemptEnforcesLimit(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{MaxAttempts: 2}, objectiveQuestions())

	for i := 0; i < 2; i++ {
		view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
		require.NoError(t, err)
		_, err = env.attempt.SubmitAttempt(claimsFor(student), view.ID, map[string]string{})
		require.NoError(t, err)
	}

	_, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	assert.ErrorIs(t, err, util.ErrAttemptLimitReached)
}

func TestCancelledAttemptConsumesSlot(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{MaxAttempts: 1}, objectiveQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)

	cancelled, err := env.attempt.CancelAttempt(claimsFor(student), view.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.EndedAt)

	_, err = env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	assert.ErrorIs(t, err, util.ErrAttemptLimitReached)
}

func TestSubmitGradesObjectiveQuiz(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, objectiveQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)
	questions, err := env.quizzes.GetQuestions(quiz.ID)
	require.NoError(t, err)

	result, err := env.attempt.SubmitAttempt(claimsFor(student), view.ID, map[string]string{
		questions[0].ID: "4",
		questions[1].ID: "FALSE",
	})
	require.NoError(t, err)

	assert.Equal(t, model.AttemptCompleted, result.Status)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 66.67, result.Percentage)
	assert.NotNil(t, result.EndedAt)

	answers, err := env.results.GetAnswersByResult(view.ID)
	require.NoError(t, err)
	assert.Len(t, answers, 2)
}

func TestGetAttemptReturnsRecordedAnswers(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, mixedQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)
	questions, err := env.quizzes.GetQuestions(quiz.ID)
	require.NoError(t, err)

	// No answer detail while the attempt is still open.
	open, err := env.attempt.GetAttempt(claimsFor(student), view.ID)
	require.NoError(t, err)
	assert.Empty(t, open.Answers)

	_, err = env.attempt.SubmitAttempt(claimsFor(student), view.ID, map[string]string{
		questions[0].ID: "4",
		questions[2].ID: "my essay",
	})
	require.NoError(t, err)

	ended, err := env.attempt.GetAttempt(claimsFor(student), view.ID)
	require.NoError(t, err)
	require.Len(t, ended.Answers, 3)

	byQuestion := map[string]AnswerView{}
	for _, a := range ended.Answers {
		byQuestion[a.QuestionID] = a
	}
	assert.True(t, byQuestion[questions[0].ID].Graded)
	assert.Equal(t, 2, byQuestion[questions[0].ID].Score)
	assert.True(t, byQuestion[questions[1].ID].Graded)
	assert.Equal(t, 0, byQuestion[questions[1].ID].Score)
	assert.False(t, byQuestion[questions[2].ID].Graded)
	assert.Equal(t, "my essay", byQuestion[questions[2].ID].Answer)
}

func TestSubmitTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, objectiveQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)

	_, err = env.attempt.SubmitAttempt(claimsFor(student), view.ID, map[string]string{})
	require.NoError(t, err)

	_, err = env.attempt.SubmitAttempt(claimsFor(student), view.ID, map[string]string{})
	assert.ErrorIs(t, err, util.ErrAttemptAlreadyEnded)
}

func TestSubmitClearsCheckpoints(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, objectiveQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)
	questions, err := env.quizzes.GetQuestions(quiz.ID)
	require.NoError(t, err)

	require.NoError(t, env.checkpoint.Save(claimsFor(student), quiz.ID, CheckpointRequest{
		QuestionID: questions[0].ID,
		Answer:     "draft",
	}))

	_, err = env.attempt.SubmitAttempt(claimsFor(student), view.ID, map[string]string{})
	require.NoError(t, err)

	remaining, err := env.checkpoints.ListByAttempt(student.ID, quiz.ID, view.AttemptNumber)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSubmitWithEssaysGoesPendingReview(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, mixedQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)
	questions, err := env.quizzes.GetQuestions(quiz.ID)
	require.NoError(t, err)

	result, err := env.attempt.SubmitAttempt(claimsFor(student), view.ID, map[string]string{
		questions[0].ID: "4",
		questions[2].ID: "A prime has two divisors.",
	})
	require.NoError(t, err)

	assert.Equal(t, model.AttemptPendingReview, result.Status)
	assert.Equal(t, 2, result.Score, "essay contributes zero until graded")
	assert.Equal(t, 8, result.Total)

	subs, err := env.essays.ListByResult(view.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "A prime has two divisors.", subs[0].Answer)
	assert.Nil(t, subs[0].TeacherScore)
}

func TestSubmitWithBlankEssayCompletes(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, mixedQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)
	questions, err := env.quizzes.GetQuestions(quiz.ID)
	require.NoError(t, err)

	// Whitespace-only essay answers need no human review.
	result, err := env.attempt.SubmitAttempt(claimsFor(student), view.ID, map[string]string{
		questions[0].ID: "4",
		questions[2].ID: "   ",
	})
	require.NoError(t, err)

	assert.Equal(t, model.AttemptCompleted, result.Status)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 8, result.Total, "the blank essay's max score stays in the total")

	subs, err := env.essays.ListByResult(view.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSweepCompletesPendingReviewAfterWindowCloses(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, mixedQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)
	questions, err := env.quizzes.GetQuestions(quiz.ID)
	require.NoError(t, err)

	result, err := env.attempt.SubmitAttempt(claimsFor(student), view.ID, map[string]string{
		questions[0].ID: "4",
		questions[2].ID: "never graded",
	})
	require.NoError(t, err)
	require.Equal(t, model.AttemptPendingReview, result.Status)

	closed := time.Now().Add(-time.Hour)
	quiz.AvailableUntil = &closed
	require.NoError(t, env.quizzes.Update(quiz))

	listed, err := env.attempt.ListByQuiz(claimsFor(teacher), quiz.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, model.AttemptCompleted, listed[0].Status)
	assert.Equal(t, 2, listed[0].Score, "ungraded essays keep contributing zero")
}

func TestStartAttemptRejectsNonMember(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	outsider := env.createUser(t, "outsider", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, objectiveQuestions())

	_, err := env.attempt.StartAttempt(claimsFor(outsider), quiz.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
}

func TestStartAttemptRejectsDraftQuiz(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, objectiveQuestions())

	quiz.Status = model.QuizDraft
	require.NoError(t, env.quizzes.Update(quiz))

	_, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotAvailable)
}

func TestDuplicateAttemptNumberTranslates(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, objectiveQuestions())

	first := &model.Result{QuizID: quiz.ID, UserID: student.ID, AttemptNumber: 1, Status: model.AttemptInProgress, StartedAt: time.Now()}
	require.NoError(t, env.results.Create(first))

	dup := &model.Result{QuizID: quiz.ID, UserID: student.ID, AttemptNumber: 1, Status: model.AttemptInProgress, StartedAt: time.Now()}
	err := env.results.Create(dup)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey, "the resume-on-race path depends on this translation")
}

func TestDeadlineSweepFinalizesFromCheckpoints(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{DurationMinutes: 30}, objectiveQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)
	questions, err := env.quizzes.GetQuestions(quiz.ID)
	require.NoError(t, err)

	require.NoError(t, env.checkpoint.Save(claimsFor(student), quiz.ID, CheckpointRequest{
		QuestionID: questions[0].ID,
		Answer:     "4",
	}))

	// Backdate the attempt past its deadline.
	attempt, err := env.results.FindByID(view.ID)
	require.NoError(t, err)
	attempt.StartedAt = time.Now().Add(-time.Hour)
	require.NoError(t, env.results.Update(attempt))

	history, err := env.attempt.History(claimsFor(student), quiz.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	assert.Equal(t, model.AttemptCompleted, history[0].Status)
	assert.Equal(t, 2, history[0].Score, "the saved checkpoint answer was graded")
	assert.NotNil(t, history[0].EndedAt)
}

func TestSubmitAfterDeadlineRejected(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{DurationMinutes: 10}, objectiveQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)

	attempt, err := env.results.FindByID(view.ID)
	require.NoError(t, err)
	attempt.StartedAt = time.Now().Add(-time.Hour)
	require.NoError(t, env.results.Update(attempt))

	_, err = env.attempt.SubmitAttempt(claimsFor(student), view.ID, map[string]string{})
	assert.ErrorIs(t, err, util.ErrAttemptAlreadyEnded)
}

func TestAttemptOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	other := env.createUser(t, "other", model.Student)
	class := env.createClass(t, teacher, student, other)
	quiz := env.createQuiz(t, class, &model.Quiz{}, objectiveQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)

	_, err = env.attempt.SubmitAttempt(claimsFor(other), view.ID, map[string]string{})
	assert.ErrorIs(t, err, util.ErrNotAttemptOwner)

	_, err = env.attempt.GetAttempt(claimsFor(other), view.ID)
	assert.ErrorIs(t, err, util.ErrNotAttemptOwner)

	// The class teacher may read any attempt.
	_, err = env.attempt.GetAttempt(claimsFor(teacher), view.ID)
	assert.NoError(t, err)
}
