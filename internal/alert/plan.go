package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/stemsi/clinsim-backend/internal/model"
)

// Template placeholders understood by Render.
const (
	PlaceholderScenario  = "{scenario}"
	PlaceholderRemaining = "{remaining}"
	PlaceholderElapsed   = "{elapsed}"
	PlaceholderPending   = "{pending}"
)

// DefaultPlan returns the alerts armed when a scenario has no plan of its
// own: at half time, a quarter remaining and a tenth remaining.
func DefaultPlan(limit time.Duration) []model.AlertSpec {
	if limit <= 0 {
		return nil
	}
	return []model.AlertSpec{
		{
			Offset:  limit / 2,
			Message: "Half of your time has elapsed in " + PlaceholderScenario + ". " + PlaceholderRemaining + " remaining.",
		},
		{
			Offset:  limit * 3 / 4,
			Message: PlaceholderRemaining + " remaining. Outstanding actions: " + PlaceholderPending + ".",
		},
		{
			Offset:  limit * 9 / 10,
			Message: "Final warning: " + PlaceholderRemaining + " left to complete " + PlaceholderScenario + ".",
		},
	}
}

// SplitByAnchor partitions specs by the instant their offsets are measured
// from. Specs without an anchor count as start-anchored.
func SplitByAnchor(specs []model.AlertSpec) (fromStart, fromDeadline []model.AlertSpec) {
	for _, spec := range specs {
		if spec.Anchor == model.AnchorDeadline {
			fromDeadline = append(fromDeadline, spec)
			continue
		}
		fromStart = append(fromStart, spec)
	}
	return fromStart, fromDeadline
}

// Render fills message placeholders from the session state.
func Render(message string, sess *model.Session) string {
	if !strings.Contains(message, "{") {
		return message
	}

	title := sess.Scenario.Title
	if title == "" {
		title = sess.Scenario.Name
	}

	pending := pendingActions(sess)
	pendingText := "none"
	if len(pending) > 0 {
		pendingText = strings.Join(pending, ", ")
	}

	limit := sess.Scenario.TimeLimit()
	r := strings.NewReplacer(
		PlaceholderScenario, title,
		PlaceholderRemaining, FormatDuration(sess.TimeRemaining),
		PlaceholderElapsed, FormatDuration(limit-sess.TimeRemaining),
		PlaceholderPending, pendingText,
	)
	return r.Replace(message)
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func pendingActions(sess *model.Session) []string {
	done := make(map[string]bool)
	for _, a := range sess.SatisfiedActions() {
		done[a] = true
	}
	var out []string
	for _, req := range sess.Scenario.RequiredActions {
		if !done[req] {
			out = append(out, req)
		}
	}
	return out
}
