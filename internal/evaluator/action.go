package evaluator

import "fmt"

// EvaluateAction scores submitted against required:
//   - a required label contained in the text scores ScoreHigh
//   - any shared token with a label scores ScoreMedium
//   - anything else scores ScoreLow
func (Keyword) EvaluateAction(submitted string, required []string) Result {
	text := normalize(submitted)
	if text == "" {
		return Result{
			Score:    ScoreLow,
			Band:     BandLow,
			Feedback: "No action was provided. State the intervention you want to perform.",
		}
	}

	for _, label := range required {
		l := normalize(label)
		if l != "" && containsPhrase(text, l) {
			return Result{
				Score:    ScoreHigh,
				Band:     BandHigh,
				Matched:  label,
				Feedback: fmt.Sprintf("Correct: %q is a required step for this patient.", label),
			}
		}
	}

	submittedTokens := tokenSet(text)
	best, bestOverlap := "", 0
	for _, label := range required {
		overlap := 0
		for tok := range tokenSet(normalize(label)) {
			if submittedTokens[tok] {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best, bestOverlap = label, overlap
		}
	}

	if bestOverlap > 0 {
		return Result{
			Score:    ScoreMedium,
			Band:     BandMedium,
			Feedback: fmt.Sprintf("Partially appropriate: this is close to %q. Be specific about the intervention.", best),
		}
	}

	return Result{
		Score:    ScoreLow,
		Band:     BandLow,
		Feedback: "This action is not part of the expected management. Reassess the patient and prioritise the protocol steps.",
	}
}
