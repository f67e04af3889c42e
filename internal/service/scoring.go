package service

import (
	"math"
	"strings"

	"classroom_backend/internal/model"
)

// NormalizeAnswer prepares a submitted or stored answer for comparison.
// Matching is whitespace-insensitive at the edges and case-insensitive.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AnswersMatch reports whether a submitted answer is correct for an
// objective question.
func AnswersMatch(submitted, expected string) bool {
	return NormalizeAnswer(submitted) == NormalizeAnswer(expected)
}

// Percentage converts a raw score into 0..100 rounded to two decimals.
// A zero total yields 0 rather than dividing by zero; an attempt with no
// gradable points has no meaningful percentage.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*100*100) / 100
}

// GradedAnswer pairs a question with the outcome of auto-grading one
// submitted answer.
type GradedAnswer struct {
	QuestionID string
	Answer     string
	IsCorrect  bool
	Score      int
}

// ScoreSheet is the result of grading a full submission against a quiz's
// question set. Essay answers are split out for manual review and carry
// zero points until graded.
type ScoreSheet struct {
	Score      int
	Total      int
	Objective  []GradedAnswer
	EssayByQID map[string]string
	HasEssays  bool
}

// GradeSubmission scores submitted answers against the question set.
// Total always includes essay max scores so a partially graded attempt
// reads as a fraction of the whole quiz. Questions with no submitted
// answer count as wrong; submitted answers to unknown question ids are
// ignored.
func GradeSubmission(questions []model.Question, answers map[string]string) ScoreSheet {
	sheet := ScoreSheet{EssayByQID: make(map[string]string)}
	for _, q := range questions {
		sheet.Total += q.MaxScore
		submitted, answered := answers[q.ID]

		if q.Type == model.QuestionEssay {
			// A blank essay needs no human review; only answered
			// essays hold the attempt open for grading.
			if answered && strings.TrimSpace(submitted) != "" {
				sheet.HasEssays = true
				sheet.EssayByQID[q.ID] = submitted
			}
			continue
		}

		graded := GradedAnswer{QuestionID: q.ID, Answer: submitted}
		if answered && AnswersMatch(submitted, q.Answer) {
			graded.IsCorrect = true
			graded.Score = q.MaxScore
			sheet.Score += q.MaxScore
		}
		sheet.Objective = append(sheet.Objective, graded)
	}
	return sheet
}

// WeightedScore is one quiz's best percentage with the quiz's weight.
type WeightedScore struct {
	Percent float64
	Weight  int
}

// WeightedAverage combines per-quiz percentages into one figure using
// only the weights of quizzes that were actually attempted. Returns 0
// when nothing was attempted or all weights are zero.
func WeightedAverage(scores []WeightedScore) float64 {
	var sum, weightSum float64
	for _, ws := range scores {
		sum += ws.Percent * float64(ws.Weight)
		weightSum += float64(ws.Weight)
	}
	if weightSum == 0 {
		return 0
	}
	return math.Round(sum/weightSum*100) / 100
}
