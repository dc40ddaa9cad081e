// Package grading turns a finished session into a PerformanceReport.
package grading

import (
	"math"

	"github.com/stemsi/clinsim-backend/internal/model"
)

const (
	WeightAction         = 0.4
	WeightDecision       = 0.4
	WeightTimeEfficiency = 0.1
	WeightCompletion     = 0.1

	TimeEfficiencyOnTime   = 100.0
	TimeEfficiencyTimedOut = 50.0
)

// Finalize grades s. It reads the session only; the caller stores the
// returned report.
func Finalize(s *model.Session) *model.PerformanceReport {
	sub := ComputeSubScores(s)
	overall := OverallScore(sub)

	finishedAt := s.StartedAt
	if s.FinishedAt != nil {
		finishedAt = *s.FinishedAt
	}

	return &model.PerformanceReport{
		SessionID:        s.ID,
		StudentID:        s.StudentID,
		ScenarioID:       s.Scenario.ID,
		Status:           s.Status,
		OverallScore:     overall,
		SubScores:        sub,
		Grade:            LetterGrade(overall),
		Feedback:         BuildFeedback(sub, overall),
		ActionsTaken:     len(s.Actions),
		DecisionsMade:    len(s.Decisions),
		CompletedActions: s.SatisfiedActions(),
		Duration:         finishedAt.Sub(s.StartedAt),
		GeneratedAt:      finishedAt,
	}
}

// ComputeSubScores derives the four report categories from the session.
func ComputeSubScores(s *model.Session) model.SubScores {
	var sub model.SubScores

	if n := len(s.Actions); n > 0 {
		total := 0.0
		for _, a := range s.Actions {
			total += a.Evaluation.Score
		}
		sub.Action = total / float64(n)
	}

	if n := len(s.Decisions); n > 0 {
		total := 0.0
		for _, d := range s.Decisions {
			total += d.Evaluation.Score
		}
		sub.Decision = total / float64(n)
	}

	sub.TimeEfficiency = TimeEfficiencyTimedOut
	if s.Status != model.SessionStatusTimedOut && s.TimeRemaining > 0 {
		sub.TimeEfficiency = TimeEfficiencyOnTime
	}

	if required := len(s.Scenario.RequiredActions); required > 0 {
		rate := float64(len(s.SatisfiedActions())) / float64(required) * 100
		sub.CompletionRate = math.Min(rate, 100)
	}

	return sub
}

// OverallScore weights the sub-scores and rounds to the nearest integer.
func OverallScore(sub model.SubScores) int {
	score := WeightAction*sub.Action +
		WeightDecision*sub.Decision +
		WeightTimeEfficiency*sub.TimeEfficiency +
		WeightCompletion*sub.CompletionRate
	return int(math.Round(score))
}

// LetterGrade maps an overall score to its grade band.
func LetterGrade(score int) model.Grade {
	switch {
	case score >= 90:
		return model.GradeAPlus
	case score >= 80:
		return model.GradeA
	case score >= 70:
		return model.GradeBPlus
	case score >= 60:
		return model.GradeB
	case score >= 50:
		return model.GradeC
	default:
		return model.GradeD
	}
}
