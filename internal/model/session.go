package model

import (
	"time"

	"github.com/stemsi/clinsim-backend/internal/clock"
)

// SessionStatus enumerates simulation session states.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusTimedOut  SessionStatus = "TIMED_OUT"
)

// IsTerminal reports whether no further transition can leave this status.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusTimedOut
}

// Evaluation is the score and feedback attached to a submission.
type Evaluation struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// ActionRecord is one action submitted during a session.
type ActionRecord struct {
	Action        string     `json:"action"`
	Details       string     `json:"details,omitempty"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	TimeRemaining float64    `json:"time_remaining"`
	MatchedAction string     `json:"matched_action,omitempty"`
	Evaluation    Evaluation `json:"evaluation"`
}

// DecisionRecord is one decision submitted during a session.
type DecisionRecord struct {
	Decision      string     `json:"decision"`
	Reasoning     string     `json:"reasoning,omitempty"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	TimeRemaining float64    `json:"time_remaining"`
	Evaluation    Evaluation `json:"evaluation"`
}

// Alert is a scheduled, time-offset notification owned by one session.
type Alert struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	Offset    time.Duration `json:"-"`
	FireAt    time.Time     `json:"fire_at"`
	Message   string        `json:"message"`
	Category  string        `json:"category"`
	Fired     bool          `json:"fired"`
	Cancelled bool          `json:"cancelled"`

	Handle clock.Timer `json:"-"`
}

// Pending reports whether the alert may still fire.
func (a *Alert) Pending() bool {
	return !a.Fired && !a.Cancelled
}

// Session is one running attempt of a scenario bound to a single student.
// All fields are guarded by the session store's per-session lock.
type Session struct {
	ID            string
	StudentID     string
	Scenario      *Scenario
	Briefing      string
	StartedAt     time.Time
	FinishedAt    *time.Time
	TimeRemaining time.Duration
	Actions       []ActionRecord
	Decisions     []DecisionRecord
	Status        SessionStatus
	Score         float64
	Alerts        []*Alert
	Report        *PerformanceReport

	// Timeout fires the TIMED_OUT transition.
	Timeout clock.Timer
}

// Deadline is the instant the session runs out of time.
func (s *Session) Deadline() time.Time {
	return s.StartedAt.Add(s.Scenario.TimeLimit())
}

// RefreshTimeRemaining recomputes the countdown at now. The stored value
// only ever decreases and never goes below zero.
func (s *Session) RefreshTimeRemaining(now time.Time) time.Duration {
	if s.Status != SessionStatusActive {
		return s.TimeRemaining
	}
	remaining := s.Deadline().Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	if remaining < s.TimeRemaining {
		s.TimeRemaining = remaining
	}
	return s.TimeRemaining
}

// SatisfiedActions returns the distinct required actions matched so far,
// in scenario order.
func (s *Session) SatisfiedActions() []string {
	matched := make(map[string]bool, len(s.Actions))
	for _, a := range s.Actions {
		if a.MatchedAction != "" {
			matched[a.MatchedAction] = true
		}
	}
	out := make([]string, 0, len(matched))
	for _, req := range s.Scenario.RequiredActions {
		if matched[req] {
			out = append(out, req)
		}
	}
	return out
}

// SessionView is a read-only copy of a session, safe to hand out of the store.
type SessionView struct {
	ID               string             `json:"id"`
	StudentID        string             `json:"student_id"`
	ScenarioID       string             `json:"scenario_id"`
	ScenarioCategory string             `json:"scenario_type"`
	ScenarioName     string             `json:"scenario_name"`
	Status           SessionStatus      `json:"status"`
	StartedAt        time.Time          `json:"started_at"`
	FinishedAt       *time.Time         `json:"finished_at,omitempty"`
	TimeLimit        int                `json:"time_limit"`
	TimeRemaining    float64            `json:"time_remaining"`
	RequiredActions  []string           `json:"required_actions"`
	CompletedActions []string           `json:"completed_actions"`
	Actions          []ActionRecord     `json:"actions"`
	Decisions        []DecisionRecord   `json:"decisions"`
	Score            float64            `json:"score"`
	Alerts           []Alert            `json:"alerts"`
	Report           *PerformanceReport `json:"report,omitempty"`
}

// View copies the session into a SessionView.
func (s *Session) View() *SessionView {
	v := &SessionView{
		ID:               s.ID,
		StudentID:        s.StudentID,
		ScenarioID:       s.Scenario.ID,
		ScenarioCategory: s.Scenario.Category,
		ScenarioName:     s.Scenario.Name,
		Status:           s.Status,
		StartedAt:        s.StartedAt,
		TimeLimit:        s.Scenario.TimeLimitSeconds,
		TimeRemaining:    s.TimeRemaining.Seconds(),
		RequiredActions:  append([]string(nil), s.Scenario.RequiredActions...),
		CompletedActions: s.SatisfiedActions(),
		Actions:          append([]ActionRecord(nil), s.Actions...),
		Decisions:        append([]DecisionRecord(nil), s.Decisions...),
		Score:            s.Score,
		Alerts:           make([]Alert, 0, len(s.Alerts)),
		Report:           s.Report.Clone(),
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		v.FinishedAt = &t
	}
	for _, a := range s.Alerts {
		c := *a
		c.Handle = nil
		v.Alerts = append(v.Alerts, c)
	}
	return v
}
