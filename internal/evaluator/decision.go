package evaluator

import (
	"sort"

	"github.com/stemsi/clinsim-backend/internal/model"
)

const (
	minNearMatchLen = 3

	defaultDecisionFeedback = "Decision noted. It is not covered by this scenario's rubric; justify it against the learning objectives."
	rubricMatchFeedback     = "Decision matches an expected option for this scenario."
)

// EvaluateDecision looks submitted up in rubric: an exact case-insensitive
// match first, then the longest rubric key contained in the decision. A
// decision that is only a fragment of a key does not match it. Unknown
// decisions get ScoreDefaultDecision. It never fails.
func (Keyword) EvaluateDecision(submitted string, rubric map[string]model.RubricEntry) Result {
	d := normalize(submitted)
	if d == "" || len(rubric) == 0 {
		return defaultDecision()
	}

	keys := make([]string, 0, len(rubric))
	for k := range rubric {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if normalize(k) == d {
			return rubricResult(k, rubric[k])
		}
	}

	if len(d) < minNearMatchLen {
		return defaultDecision()
	}

	best := ""
	for _, k := range keys {
		nk := normalize(k)
		if len(nk) < minNearMatchLen {
			continue
		}
		if containsPhrase(d, nk) && len(nk) > len(normalize(best)) {
			best = k
		}
	}
	if best != "" {
		return rubricResult(best, rubric[best])
	}

	return defaultDecision()
}

func rubricResult(key string, entry model.RubricEntry) Result {
	feedback := entry.Feedback
	if feedback == "" {
		feedback = rubricMatchFeedback
	}
	return Result{
		Score:    clamp(entry.Score),
		Band:     BandRubric,
		Matched:  key,
		Feedback: feedback,
	}
}

func defaultDecision() Result {
	return Result{
		Score:    ScoreDefaultDecision,
		Band:     BandDefault,
		Feedback: defaultDecisionFeedback,
	}
}

func clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
