package grading

import (
	"fmt"

	"github.com/stemsi/clinsim-backend/internal/model"
)

const (
	StrengthThreshold = 80.0
	AreaThreshold     = 70.0
)

type category struct {
	name     string
	strength string
	area     string
	score    func(model.SubScores) float64
}

var categories = []category{
	{
		name:     "Clinical actions",
		strength: "Interventions were accurate and well targeted",
		area:     "Match interventions more closely to the required protocol steps",
		score:    func(s model.SubScores) float64 { return s.Action },
	},
	{
		name:     "Decision making",
		strength: "Clinical decisions were sound and well prioritised",
		area:     "Strengthen clinical reasoning behind key decisions",
		score:    func(s model.SubScores) float64 { return s.Decision },
	},
	{
		name:     "Time management",
		strength: "Completed the case within the time limit",
		area:     "Work faster; the case ran out of time",
		score:    func(s model.SubScores) float64 { return s.TimeEfficiency },
	},
	{
		name:     "Protocol completion",
		strength: "Covered all of the required actions",
		area:     "Several required actions were missed",
		score:    func(s model.SubScores) float64 { return s.CompletionRate },
	},
}

var recommendations = []string{
	"Review the learning objectives for this scenario.",
	"Practise prioritising time-critical interventions first.",
	"Repeat the scenario to consolidate the protocol.",
}

// BuildFeedback derives strengths, areas and next steps from the
// sub-scores alone.
func BuildFeedback(sub model.SubScores, overall int) model.Feedback {
	fb := model.Feedback{
		Strengths:       []string{},
		Areas:           []string{},
		Recommendations: append([]string(nil), recommendations...),
	}

	for _, c := range categories {
		score := c.score(sub)
		switch {
		case score >= StrengthThreshold:
			fb.Strengths = append(fb.Strengths, fmt.Sprintf("%s: %s (%.0f).", c.name, c.strength, score))
		case score < AreaThreshold:
			fb.Areas = append(fb.Areas, fmt.Sprintf("%s: %s (%.0f).", c.name, c.area, score))
		}
	}

	switch {
	case overall >= 80:
		fb.NextSteps = "Progress to a more advanced scenario in this category."
	case overall >= 60:
		fb.NextSteps = "Repeat this scenario focusing on the areas for improvement."
	default:
		fb.NextSteps = "Review the core protocol before attempting this scenario again."
	}

	return fb
}
