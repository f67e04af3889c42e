package service

import (
	"testing"

	"classroom_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestAnswersMatch(t *testing.T) {
	assert.True(t, AnswersMatch("Paris", "paris"))
	assert.True(t, AnswersMatch("  true ", "TRUE"))
	assert.True(t, AnswersMatch("4", "4"))
	assert.False(t, AnswersMatch("par is", "paris"))
	assert.False(t, AnswersMatch("", "paris"))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, 100.0, Percentage(3, 3))
	assert.Equal(t, 66.67, Percentage(2, 3))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 0.0, Percentage(0, 10))
}

func TestGradeSubmissionObjectiveOnly(t *testing.T) {
	questions := []model.Question{
		{UUIDBase: model.UUIDBase{ID: "q1"}, Type: model.QuestionMCQ, Answer: "4", MaxScore: 2},
		{UUIDBase: model.UUIDBase{ID: "q2"}, Type: model.QuestionTrueFalse, Answer: "true", MaxScore: 1},
	}

	sheet := GradeSubmission(questions, map[string]string{"q1": " 4 ", "q2": "false"})

	assert.Equal(t, 2, sheet.Score)
	assert.Equal(t, 3, sheet.Total)
	assert.False(t, sheet.HasEssays)
	assert.Len(t, sheet.Objective, 2)
	assert.True(t, sheet.Objective[0].IsCorrect)
	assert.False(t, sheet.Objective[1].IsCorrect)
}

func TestGradeSubmissionEssayContributesZero(t *testing.T) {
	questions := []model.Question{
		{UUIDBase: model.UUIDBase{ID: "q1"}, Type: model.QuestionMCQ, Answer: "4", MaxScore: 2},
		{UUIDBase: model.UUIDBase{ID: "q2"}, Type: model.QuestionEssay, MaxScore: 5},
	}

	sheet := GradeSubmission(questions, map[string]string{"q1": "4", "q2": "Primes are..."})

	assert.Equal(t, 2, sheet.Score)
	assert.Equal(t, 7, sheet.Total, "essay max score is in the total")
	assert.True(t, sheet.HasEssays)
	assert.Equal(t, "Primes are...", sheet.EssayByQID["q2"])
}

func TestGradeSubmissionIgnoresBlankEssay(t *testing.T) {
	questions := []model.Question{
		{UUIDBase: model.UUIDBase{ID: "q1"}, Type: model.QuestionEssay, MaxScore: 5},
	}

	sheet := GradeSubmission(questions, map[string]string{"q1": "   "})

	assert.False(t, sheet.HasEssays)
	assert.Empty(t, sheet.EssayByQID)
	assert.Equal(t, 5, sheet.Total)
}

func TestGradeSubmissionUnansweredAndUnknown(t *testing.T) {
	questions := []model.Question{
		{UUIDBase: model.UUIDBase{ID: "q1"}, Type: model.QuestionMCQ, Answer: "4", MaxScore: 2},
	}

	sheet := GradeSubmission(questions, map[string]string{"ghost": "4"})

	assert.Equal(t, 0, sheet.Score)
	assert.Equal(t, 2, sheet.Total)
	assert.Len(t, sheet.Objective, 1, "unanswered questions still get a row")
	assert.False(t, sheet.Objective[0].IsCorrect)
}

func TestWeightedAverage(t *testing.T) {
	// 80% at weight 70 plus 50% at weight 30.
	avg := WeightedAverage([]WeightedScore{
		{Percent: 80, Weight: 70},
		{Percent: 50, Weight: 30},
	})
	assert.Equal(t, 71.0, avg)

	assert.Equal(t, 0.0, WeightedAverage(nil))
	assert.Equal(t, 0.0, WeightedAverage([]WeightedScore{{Percent: 90, Weight: 0}}))

	// A skipped quiz's weight does not dilute the average.
	onlyAttempted := WeightedAverage([]WeightedScore{{Percent: 60, Weight: 1}})
	assert.Equal(t, 60.0, onlyAttempted)
}
