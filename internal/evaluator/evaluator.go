// Package evaluator scores submitted actions and decisions. Evaluators are
// pure: identical inputs always produce identical results.
package evaluator

import (
	"github.com/stemsi/clinsim-backend/internal/model"
)

// Score bands.
const (
	ScoreHigh            = 100.0
	ScoreMedium          = 75.0
	ScoreLow             = 25.0
	ScoreDefaultDecision = 50.0
)

// Band names the rule that produced a result.
type Band string

const (
	BandHigh    Band = "HIGH"
	BandMedium  Band = "MEDIUM"
	BandLow     Band = "LOW"
	BandRubric  Band = "RUBRIC"
	BandDefault Band = "DEFAULT"
)

// Result is the outcome of one evaluation. Matched is the required action
// (or rubric key) the submission satisfied, if any.
type Result struct {
	Score    float64
	Feedback string
	Band     Band
	Matched  string
}

// Evaluation converts the result into the record attached to a submission.
func (r Result) Evaluation() model.Evaluation {
	return model.Evaluation{Score: r.Score, Feedback: r.Feedback}
}

// ActionEvaluator scores a free-text action against the required actions.
type ActionEvaluator interface {
	EvaluateAction(submitted string, required []string) Result
}

// DecisionEvaluator scores a decision against a scenario rubric.
type DecisionEvaluator interface {
	EvaluateDecision(submitted string, rubric map[string]model.RubricEntry) Result
}

// Keyword implements both evaluators with case-insensitive substring and
// token-overlap heuristics.
type Keyword struct{}

// NewKeyword returns the keyword evaluator.
func NewKeyword() Keyword {
	return Keyword{}
}
