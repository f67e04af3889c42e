package service

import (
	"testing"

	"classroom_backend/internal/model"
	"classroom_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// submitMixed runs a student through a quiz with one essay and returns
// the pending attempt and its essay submission.
func submitMixed(t *testing.T, env *testEnv, student *model.User, quiz *model.Quiz, objectiveAnswer string) (*AttemptView, model.EssaySubmission) {
	t.Helper()
	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)
	questions, err := env.quizzes.GetQuestions(quiz.ID)
	require.NoError(t, err)

	result, err := env.attempt.SubmitAttempt(claimsFor(student), view.ID, map[string]string{
		questions[0].ID: objectiveAnswer,
		questions[2].ID: "essay text",
	})
	require.NoError(t, err)
	require.Equal(t, model.AttemptPendingReview, result.Status)

	subs, err := env.essays.ListByResult(result.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	return result, subs[0]
}

func TestGradeCompletesAttemptWhenNothingUngraded(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, mixedQuestions())

	result, sub := submitMixed(t, env, student, quiz, "4")

	graded, err := env.grading.Grade(claimsFor(teacher), sub.ID, GradeRequest{Score: 4, Feedback: "solid"})
	require.NoError(t, err)
	assert.Equal(t, 4, *graded.TeacherScore)
	assert.Equal(t, teacher.ID, graded.GraderID)
	assert.NotNil(t, graded.GradedAt)

	attempt, err := env.results.FindByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCompleted, attempt.Status)
	assert.Equal(t, 6, attempt.Score, "objective 2 plus teacher 4")
	assert.Equal(t, 8, attempt.Total)
}

func TestGradeRejectsOutOfRangeScore(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, mixedQuestions())

	_, sub := submitMixed(t, env, student, quiz, "4")

	_, err := env.grading.Grade(claimsFor(teacher), sub.ID, GradeRequest{Score: 6})
	assert.ErrorIs(t, err, util.ErrScoreOutOfRange)

	_, err = env.grading.Grade(claimsFor(teacher), sub.ID, GradeRequest{Score: -1})
	assert.ErrorIs(t, err, util.ErrScoreOutOfRange)
}

func TestGradeRequiresClassOwner(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	intruder := env.createUser(t, "intruder", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, mixedQuestions())

	_, sub := submitMixed(t, env, student, quiz, "4")

	_, err := env.grading.Grade(claimsFor(intruder), sub.ID, GradeRequest{Score: 3})
	assert.ErrorIs(t, err, util.ErrNotClassOwner)
}

func TestRegradeOverwrites(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, mixedQuestions())

	result, sub := submitMixed(t, env, student, quiz, "4")

	_, err := env.grading.Grade(claimsFor(teacher), sub.ID, GradeRequest{Score: 5})
	require.NoError(t, err)
	_, err = env.grading.Grade(claimsFor(teacher), sub.ID, GradeRequest{Score: 2, Feedback: "revised"})
	require.NoError(t, err)

	attempt, err := env.results.FindByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, attempt.Score, "the second grade replaces the first, not adds to it")
	assert.Equal(t, model.AttemptCompleted, attempt.Status)
}

func TestFinalizeForcesCompletionWithUngradedEssays(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, mixedQuestions())

	result, _ := submitMixed(t, env, student, quiz, "4")

	view, err := env.grading.Finalize(claimsFor(teacher), result.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCompleted, view.Status)
	assert.Equal(t, 2, view.Score, "ungraded essay stays at zero")

	// Idempotent: a second finalize changes nothing.
	again, err := env.grading.Finalize(claimsFor(teacher), result.ID)
	require.NoError(t, err)
	assert.Equal(t, view.Score, again.Score)
	assert.Equal(t, model.AttemptCompleted, again.Status)
}

func TestFinalizeRejectsOpenAttempt(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, mixedQuestions())

	view, err := env.attempt.StartAttempt(claimsFor(student), quiz.ID)
	require.NoError(t, err)

	_, err = env.grading.Finalize(claimsFor(teacher), view.ID)
	assert.ErrorIs(t, err, util.ErrAttemptStillOpen)
}

func TestPendingReviewsListsUngradedAttempts(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	class := env.createClass(t, teacher, student)
	quiz := env.createQuiz(t, class, &model.Quiz{}, mixedQuestions())

	result, sub := submitMixed(t, env, student, quiz, "4")

	reviews, err := env.grading.PendingReviews(claimsFor(teacher), quiz.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, result.ID, reviews[0].Attempt.ID)
	assert.Equal(t, student.ID, reviews[0].StudentID)
	require.Len(t, reviews[0].Submissions, 1)
	assert.Equal(t, sub.ID, reviews[0].Submissions[0].ID)

	// Grading the essay drains the queue.
	_, err = env.grading.Grade(claimsFor(teacher), sub.ID, GradeRequest{Score: 3})
	require.NoError(t, err)

	reviews, err = env.grading.PendingReviews(claimsFor(teacher), quiz.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
