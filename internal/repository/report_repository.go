package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/clinsim-backend/internal/model"
)

// ReportRepository handles performance report persistence.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

type reportRow struct {
	sessionID, studentID, scenarioID, status, grade string
	overall, actions, decisions                     int
	durationMs                                      int64
	subScores, feedback, completed                  string
	generatedAt                                     time.Time
}

func toRow(r *model.PerformanceReport) (reportRow, error) {
	sub, err := json.Marshal(r.SubScores)
	if err != nil {
		return reportRow{}, err
	}
	fb, err := json.Marshal(r.Feedback)
	if err != nil {
		return reportRow{}, err
	}
	completed, err := json.Marshal(r.CompletedActions)
	if err != nil {
		return reportRow{}, err
	}
	return reportRow{
		sessionID:   r.SessionID,
		studentID:   r.StudentID,
		scenarioID:  r.ScenarioID,
		status:      string(r.Status),
		grade:       string(r.Grade),
		overall:     r.OverallScore,
		actions:     r.ActionsTaken,
		decisions:   r.DecisionsMade,
		durationMs:  r.Duration.Milliseconds(),
		subScores:   string(sub),
		feedback:    string(fb),
		completed:   string(completed),
		generatedAt: r.GeneratedAt,
	}, nil
}

// BulkInsert writes a batch of reports in one statement. Reports already
// stored for the same session are left untouched.
func (r *ReportRepository) BulkInsert(ctx context.Context, reports []*model.PerformanceReport) error {
	n := len(reports)
	if n == 0 {
		return nil
	}

	var (
		sessionIDs, studentIDs, scenarioIDs = make([]string, 0, n), make([]string, 0, n), make([]string, 0, n)
		statuses, grades                    = make([]string, 0, n), make([]string, 0, n)
		overalls, actions, decisions        = make([]int, 0, n), make([]int, 0, n), make([]int, 0, n)
		durations                           = make([]int64, 0, n)
		subScores, feedback, completed      = make([]string, 0, n), make([]string, 0, n), make([]string, 0, n)
		generatedAts                        = make([]time.Time, 0, n)
	)

	for _, rep := range reports {
		row, err := toRow(rep)
		if err != nil {
			return fmt.Errorf("encode report %s: %w", rep.SessionID, err)
		}
		sessionIDs = append(sessionIDs, row.sessionID)
		studentIDs = append(studentIDs, row.studentID)
		scenarioIDs = append(scenarioIDs, row.scenarioID)
		statuses = append(statuses, row.status)
		grades = append(grades, row.grade)
		overalls = append(overalls, row.overall)
		actions = append(actions, row.actions)
		decisions = append(decisions, row.decisions)
		durations = append(durations, row.durationMs)
		subScores = append(subScores, row.subScores)
		feedback = append(feedback, row.feedback)
		completed = append(completed, row.completed)
		generatedAts = append(generatedAts, row.generatedAt)
	}

	query := `
		INSERT INTO simulation_reports (
			session_id, student_id, scenario_id, status, grade,
			overall_score, actions_taken, decisions_made, duration_ms,
			sub_scores, feedback, completed_actions, generated_at
		)
		SELECT
			u.session_id, u.student_id, u.scenario_id, u.status, u.grade,
			u.overall_score, u.actions_taken, u.decisions_made, u.duration_ms,
			u.sub_scores::jsonb, u.feedback::jsonb, u.completed_actions::jsonb, u.generated_at
		FROM UNNEST(
			$1::text[], $2::text[], $3::text[], $4::text[], $5::text[],
			$6::int[], $7::int[], $8::int[], $9::bigint[],
			$10::text[], $11::text[], $12::text[], $13::timestamptz[]
		) AS u (
			session_id, student_id, scenario_id, status, grade,
			overall_score, actions_taken, decisions_made, duration_ms,
			sub_scores, feedback, completed_actions, generated_at
		)
		ON CONFLICT (session_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		sessionIDs, studentIDs, scenarioIDs, statuses, grades,
		overalls, actions, decisions, durations,
		subScores, feedback, completed, generatedAts,
	)
	return err
}

// Insert writes a single report.
func (r *ReportRepository) Insert(ctx context.Context, rep *model.PerformanceReport) error {
	row, err := toRow(rep)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", rep.SessionID, err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO simulation_reports (
			session_id, student_id, scenario_id, status, grade,
			overall_score, actions_taken, decisions_made, duration_ms,
			sub_scores, feedback, completed_actions, generated_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11::jsonb, $12::jsonb, $13)
		 ON CONFLICT (session_id) DO NOTHING`,
		row.sessionID, row.studentID, row.scenarioID, row.status, row.grade,
		row.overall, row.actions, row.decisions, row.durationMs,
		row.subScores, row.feedback, row.completed, row.generatedAt,
	)
	return err
}
