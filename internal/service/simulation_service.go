package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/clinsim-backend/internal/alert"
	"github.com/stemsi/clinsim-backend/internal/clock"
	"github.com/stemsi/clinsim-backend/internal/evaluator"
	"github.com/stemsi/clinsim-backend/internal/grading"
	"github.com/stemsi/clinsim-backend/internal/model"
	"github.com/stemsi/clinsim-backend/internal/narrative"
	"github.com/stemsi/clinsim-backend/internal/notification"
	"github.com/stemsi/clinsim-backend/internal/scenario"
	"github.com/stemsi/clinsim-backend/internal/session"
)

const sideEffectTimeout = 5 * time.Second

// ReportSink persists finished reports. Failures never affect the session.
type ReportSink interface {
	Persist(ctx context.Context, report *model.PerformanceReport) error
}

// Evaluator scores both actions and decisions.
type Evaluator interface {
	evaluator.ActionEvaluator
	evaluator.DecisionEvaluator
}

// SimulationService is the entry point for running timed clinical
// simulations.
type SimulationService struct {
	store     session.Store
	resolver  scenario.Resolver
	evaluator Evaluator
	alerts    *alert.Scheduler
	sink      notification.Sink
	reports   ReportSink
	narrator  narrative.Narrator
	clock     clock.Clock
	log       zerolog.Logger
}

// NewSimulationService creates a new SimulationService. reports may be nil.
func NewSimulationService(
	store session.Store,
	resolver scenario.Resolver,
	eval Evaluator,
	alerts *alert.Scheduler,
	sink notification.Sink,
	reports ReportSink,
	narrator narrative.Narrator,
	clk clock.Clock,
	log zerolog.Logger,
) *SimulationService {
	if narrator == nil {
		narrator = narrative.StaticNarrator{}
	}
	return &SimulationService{
		store:     store,
		resolver:  resolver,
		evaluator: eval,
		alerts:    alerts,
		sink:      sink,
		reports:   reports,
		narrator:  narrator,
		clock:     clk,
		log:       log.With().Str("component", "simulation_service").Logger(),
	}
}

// SessionSummary is returned when a session starts.
type SessionSummary struct {
	SessionID          string           `json:"session_id"`
	StudentID          string           `json:"student_id"`
	ScenarioID         string           `json:"scenario_id"`
	ScenarioType       string           `json:"scenario_type"`
	ScenarioName       string           `json:"scenario_name"`
	Title              string           `json:"title"`
	Difficulty         model.Difficulty `json:"difficulty"`
	Patient            model.Patient    `json:"patient"`
	Briefing           string           `json:"briefing"`
	RequiredActions    []string         `json:"required_actions"`
	LearningObjectives []string         `json:"learning_objectives"`
	TimeLimit          int              `json:"time_limit"`
	TimeRemaining      float64          `json:"time_remaining"`
	AlertsScheduled    int              `json:"alerts_scheduled"`
	StartedAt          time.Time        `json:"started_at"`
}

// SubmissionResult is the evaluation of one action or decision.
type SubmissionResult struct {
	SessionID        string   `json:"session_id"`
	Score            float64  `json:"score"`
	Feedback         string   `json:"feedback"`
	MatchedAction    string   `json:"matched_action,omitempty"`
	TimeRemaining    float64  `json:"time_remaining"`
	SessionScore     float64  `json:"session_score"`
	CompletedActions []string `json:"completed_actions"`
}

// StartSession resolves the scenario and opens a session for the student.
func (s *SimulationService) StartSession(ctx context.Context, studentID, category, name string) (*SessionSummary, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" || strings.TrimSpace(category) == "" || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: studentId, scenarioType and scenarioName are required", ErrInvalidInput)
	}

	// Expires a lapsed session whose timer has not fired yet.
	if _, err := s.GetActiveSession(ctx, studentID); err == nil {
		return nil, ErrSessionAlreadyActive
	}

	sc, err := s.resolver.Resolve(ctx, category, name)
	if err != nil {
		return nil, err
	}
	if sc.TimeLimitSeconds <= 0 {
		return nil, fmt.Errorf("%w: scenario %s has no time limit", ErrInvalidInput, sc.ID)
	}

	briefing, err := s.narrator.Briefing(ctx, sc)
	if err != nil {
		s.log.Warn().Err(err).Str("scenario_id", sc.ID).Msg("Briefing unavailable")
		briefing = narrative.StaticBriefing(sc)
	}

	plan := sc.AlertPlan
	if len(plan) == 0 {
		plan = alert.DefaultPlan(sc.TimeLimit())
	}
	fromStart, fromDeadline := alert.SplitByAnchor(plan)

	startedAt := s.clock.Now()
	armed := 0
	view, err := s.store.StartSession(studentID, sc, startedAt, func(sess *model.Session) error {
		sess.Briefing = briefing
		armed = s.alerts.ArmAlerts(sess, fromStart, startedAt) +
			s.alerts.ArmAlerts(sess, fromDeadline, sess.Deadline())
		sess.Timeout = s.clock.AfterFunc(sc.TimeLimit(), s.onTimeout(studentID, sess.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("student_id", studentID).
		Str("session_id", view.ID).
		Str("scenario_id", sc.ID).
		Int("alerts", armed).
		Msg("Simulation started")

	return &SessionSummary{
		SessionID:          view.ID,
		StudentID:          studentID,
		ScenarioID:         sc.ID,
		ScenarioType:       sc.Category,
		ScenarioName:       sc.Name,
		Title:              sc.Title,
		Difficulty:         sc.Difficulty,
		Patient:            sc.Patient,
		Briefing:           briefing,
		RequiredActions:    append([]string(nil), sc.RequiredActions...),
		LearningObjectives: append([]string(nil), sc.LearningObjectives...),
		TimeLimit:          sc.TimeLimitSeconds,
		TimeRemaining:      view.TimeRemaining,
		AlertsScheduled:    armed,
		StartedAt:          startedAt,
	}, nil
}

// TakeAction scores a free-text action and records it on the active session.
func (s *SimulationService) TakeAction(ctx context.Context, studentID, action, details string) (*SubmissionResult, error) {
	if strings.TrimSpace(studentID) == "" || strings.TrimSpace(action) == "" {
		return nil, fmt.Errorf("%w: studentId and action are required", ErrInvalidInput)
	}

	var res *SubmissionResult
	err := s.mutateActive(ctx, studentID, func(sess *model.Session, now time.Time) {
		result := s.evaluator.EvaluateAction(action, sess.Scenario.RequiredActions)
		sess.Actions = append(sess.Actions, model.ActionRecord{
			Action:        action,
			Details:       details,
			SubmittedAt:   now,
			TimeRemaining: sess.TimeRemaining.Seconds(),
			MatchedAction: result.Matched,
			Evaluation:    result.Evaluation(),
		})
		sess.Score += result.Score
		res = submission(sess, result)
		res.MatchedAction = result.Matched
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// MakeDecision scores a decision against the scenario rubric and records it.
func (s *SimulationService) MakeDecision(ctx context.Context, studentID, decision, reasoning string) (*SubmissionResult, error) {
	if strings.TrimSpace(studentID) == "" || strings.TrimSpace(decision) == "" {
		return nil, fmt.Errorf("%w: studentId and decision are required", ErrInvalidInput)
	}

	var res *SubmissionResult
	err := s.mutateActive(ctx, studentID, func(sess *model.Session, now time.Time) {
		result := s.evaluator.EvaluateDecision(decision, sess.Scenario.Rubric)
		sess.Decisions = append(sess.Decisions, model.DecisionRecord{
			Decision:      decision,
			Reasoning:     reasoning,
			SubmittedAt:   now,
			TimeRemaining: sess.TimeRemaining.Seconds(),
			Evaluation:    result.Evaluation(),
		})
		sess.Score += result.Score
		res = submission(sess, result)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func submission(sess *model.Session, r evaluator.Result) *SubmissionResult {
	return &SubmissionResult{
		SessionID:        sess.ID,
		Score:            r.Score,
		Feedback:         r.Feedback,
		TimeRemaining:    sess.TimeRemaining.Seconds(),
		SessionScore:     sess.Score,
		CompletedActions: sess.SatisfiedActions(),
	}
}

// CompleteSession ends the active session, cancels its alerts and returns
// the final report.
func (s *SimulationService) CompleteSession(ctx context.Context, studentID string) (*model.PerformanceReport, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, fmt.Errorf("%w: studentId is required", ErrInvalidInput)
	}

	view, err := s.store.Finalize(studentID, model.SessionStatusCompleted, s.clock.Now(), s.finalizeHook)
	if err != nil {
		return nil, err
	}

	s.afterFinalize(ctx, view)
	return view.Report, nil
}

// GetActiveSession returns the student's active session with a fresh
// countdown.
func (s *SimulationService) GetActiveSession(ctx context.Context, studentID string) (*model.SessionView, error) {
	var view *model.SessionView
	err := s.mutateActive(ctx, studentID, func(sess *model.Session, _ time.Time) {
		view = sess.View()
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// History returns the student's finished sessions, oldest first.
func (s *SimulationService) History(_ context.Context, studentID string) []*model.SessionView {
	return s.store.History(studentID)
}

func (s *SimulationService) ListNotifications(ctx context.Context, studentID string, unreadOnly bool) ([]model.Notification, error) {
	return s.sink.List(ctx, studentID, unreadOnly)
}

// MarkNotificationRead is idempotent.
func (s *SimulationService) MarkNotificationRead(ctx context.Context, studentID, notificationID string) error {
	if strings.TrimSpace(studentID) == "" || strings.TrimSpace(notificationID) == "" {
		return fmt.Errorf("%w: studentId and notification id are required", ErrInvalidInput)
	}
	return s.sink.MarkRead(ctx, studentID, notificationID)
}

func (s *SimulationService) ListScenarios(ctx context.Context) ([]model.ScenarioListItem, error) {
	return s.resolver.List(ctx)
}

// ActiveSessionCount reports how many students currently hold an ACTIVE session.
func (s *SimulationService) ActiveSessionCount() int {
	return len(s.store.ActiveStudents())
}

// Shutdown stops the timers of every active session. Sessions stay ACTIVE
// and no reports are produced.
func (s *SimulationService) Shutdown() {
	stopped := 0
	for _, studentID := range s.store.ActiveStudents() {
		_ = s.store.Mutate(studentID, func(sess *model.Session) error {
			stopped += s.alerts.CancelAll(sess)
			if sess.Timeout != nil {
				sess.Timeout.Stop()
			}
			return nil
		})
	}
	s.log.Info().Int("alerts_cancelled", stopped).Msg("Simulation timers stopped")
}

// mutateActive runs fn on the student's session after refreshing its
// countdown. A session whose time already ran out is timed out instead and
// reported as not found.
func (s *SimulationService) mutateActive(ctx context.Context, studentID string, fn func(sess *model.Session, now time.Time)) error {
	var sessionID string
	err := s.store.Mutate(studentID, func(sess *model.Session) error {
		now := s.clock.Now()
		if sess.RefreshTimeRemaining(now) <= 0 {
			sessionID = sess.ID
			return errExpired
		}
		fn(sess, now)
		return nil
	})
	if errors.Is(err, errExpired) {
		s.expire(ctx, studentID, sessionID)
		return ErrSessionNotFound
	}
	return err
}

func (s *SimulationService) onTimeout(studentID, sessionID string) func() {
	return func() {
		s.expire(context.Background(), studentID, sessionID)
	}
}

func (s *SimulationService) expire(ctx context.Context, studentID, sessionID string) {
	view, err := s.store.Expire(studentID, sessionID, s.clock.Now(), s.finalizeHook)
	if err != nil {
		// Completed or expired by someone else first.
		return
	}
	s.afterFinalize(ctx, view)
}

// finalizeHook runs under the session lock as part of the terminal
// transition.
func (s *SimulationService) finalizeHook(sess *model.Session) {
	s.alerts.CancelAll(sess)
	if sess.Timeout != nil {
		sess.Timeout.Stop()
	}
	sess.Report = grading.Finalize(sess)
}

func (s *SimulationService) afterFinalize(ctx context.Context, view *model.SessionView) {
	report := view.Report
	log := s.log.With().
		Str("student_id", view.StudentID).
		Str("session_id", view.ID).
		Str("status", string(view.Status)).
		Logger()

	log.Info().
		Int("overall_score", report.OverallScore).
		Str("grade", string(report.Grade)).
		Msg("Simulation finished")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.reports != nil {
		if err := s.reports.Persist(ctx, report); err != nil {
			log.Error().Err(err).Msg("Failed to persist report")
		}
	}

	category := model.NotificationCategoryReport
	message := fmt.Sprintf("%s finished: grade %s (%d/100).", view.ScenarioName, report.Grade, report.OverallScore)
	if view.Status == model.SessionStatusTimedOut {
		category = model.NotificationCategoryTimeout
		message = fmt.Sprintf("Time is up for %s. Final grade %s (%d/100).", view.ScenarioName, report.Grade, report.OverallScore)
	}

	if _, err := s.sink.Append(ctx, model.Notification{
		StudentID: view.StudentID,
		SessionID: view.ID,
		Message:   message,
		Category:  category,
		CreatedAt: s.clock.Now(),
	}); err != nil {
		log.Error().Err(err).Msg("Failed to store completion notification")
	}
}
