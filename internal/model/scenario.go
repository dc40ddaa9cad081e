package model

import (
	"strings"
	"time"
)

// Difficulty tags how demanding a scenario is.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
)

// RubricEntry is the score and feedback awarded for a known decision.
type RubricEntry struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// AlertAnchor names the instant an alert offset is measured from.
type AlertAnchor string

const (
	// AnchorStart measures from the session start. It is the default.
	AnchorStart AlertAnchor = "start"
	// AnchorDeadline measures from the instant the session runs out of time,
	// so a negative offset fires that long before the deadline.
	AnchorDeadline AlertAnchor = "deadline"
)

// AlertSpec describes one time-offset alert armed for a session.
// Offset is relative to the anchor and may be negative. In JSON the offset
// is carried as offset_seconds.
type AlertSpec struct {
	Offset   time.Duration `json:"-"`
	Anchor   AlertAnchor   `json:"anchor,omitempty"`
	Message  string        `json:"message"`
	Category string        `json:"category,omitempty"`
}

// Vitals is a snapshot of the simulated patient's vital signs.
type Vitals struct {
	HeartRate        int     `json:"heart_rate"`
	BloodPressure    string  `json:"blood_pressure"`
	RespiratoryRate  int     `json:"respiratory_rate"`
	OxygenSaturation int     `json:"oxygen_saturation"`
	Temperature      float64 `json:"temperature"`
}

// Patient is the clinical vignette presented to the student.
type Patient struct {
	Age                 int    `json:"age"`
	Sex                 string `json:"sex"`
	PresentingComplaint string `json:"presenting_complaint"`
	History             string `json:"history,omitempty"`
	Vitals              Vitals `json:"vitals"`
}

// Scenario is an immutable clinical case template.
type Scenario struct {
	ID                 string                 `json:"id"`
	Category           string                 `json:"category"`
	Name               string                 `json:"name"`
	Title              string                 `json:"title"`
	RequiredActions    []string               `json:"required_actions"`
	TimeLimitSeconds   int                    `json:"time_limit_seconds"`
	Difficulty         Difficulty             `json:"difficulty"`
	LearningObjectives []string               `json:"learning_objectives"`
	Rubric             map[string]RubricEntry `json:"rubric,omitempty"`
	Patient            Patient                `json:"patient"`
	AlertPlan          []AlertSpec            `json:"alert_plan,omitempty"`
}

// TimeLimit returns the scenario's time limit as a duration.
func (s *Scenario) TimeLimit() time.Duration {
	return time.Duration(s.TimeLimitSeconds) * time.Second
}

// ScenarioKey is the case-insensitive lookup key for a category/name pair.
func ScenarioKey(category, name string) string {
	return strings.ToLower(strings.TrimSpace(category)) + "/" + strings.ToLower(strings.TrimSpace(name))
}

// Clone returns a deep copy so callers cannot mutate a shared template.
func (s *Scenario) Clone() *Scenario {
	if s == nil {
		return nil
	}
	c := *s
	c.RequiredActions = append([]string(nil), s.RequiredActions...)
	c.LearningObjectives = append([]string(nil), s.LearningObjectives...)
	c.AlertPlan = append([]AlertSpec(nil), s.AlertPlan...)
	if s.Rubric != nil {
		c.Rubric = make(map[string]RubricEntry, len(s.Rubric))
		for k, v := range s.Rubric {
			c.Rubric[k] = v
		}
	}
	return &c
}

// ScenarioListItem is the catalog view of a scenario.
type ScenarioListItem struct {
	Category   string     `json:"category"`
	Name       string     `json:"name"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	TimeLimit  int        `json:"time_limit_seconds"`
}
