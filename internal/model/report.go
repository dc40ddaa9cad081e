package model

import "time"

// Grade is a letter grade derived from the overall score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
)

// SubScores holds the per-category components of the overall score.
type SubScores struct {
	Action         float64 `json:"action"`
	Decision       float64 `json:"decision"`
	TimeEfficiency float64 `json:"time_efficiency"`
	CompletionRate float64 `json:"completion_rate"`
}

// Feedback is the structured narrative attached to a report.
type Feedback struct {
	Strengths       []string `json:"strengths"`
	Areas           []string `json:"areas_for_improvement"`
	Recommendations []string `json:"recommendations"`
	NextSteps       string   `json:"next_steps"`
}

// PerformanceReport is the final, immutable grade for a session.
type PerformanceReport struct {
	SessionID        string        `json:"session_id"`
	StudentID        string        `json:"student_id"`
	ScenarioID       string        `json:"scenario_id"`
	Status           SessionStatus `json:"status"`
	OverallScore     int           `json:"overall_score"`
	SubScores        SubScores     `json:"sub_scores"`
	Grade            Grade         `json:"grade"`
	Feedback         Feedback      `json:"feedback"`
	ActionsTaken     int           `json:"actions_taken"`
	DecisionsMade    int           `json:"decisions_made"`
	CompletedActions []string      `json:"completed_actions"`
	Duration         time.Duration `json:"-"`
	GeneratedAt      time.Time     `json:"generated_at"`
}

// Clone returns a deep copy of the report. A nil report clones to nil.
func (r *PerformanceReport) Clone() *PerformanceReport {
	if r == nil {
		return nil
	}
	c := *r
	c.CompletedActions = append([]string(nil), r.CompletedActions...)
	c.Feedback.Strengths = append([]string(nil), r.Feedback.Strengths...)
	c.Feedback.Areas = append([]string(nil), r.Feedback.Areas...)
	c.Feedback.Recommendations = append([]string(nil), r.Feedback.Recommendations...)
	return &c
}
