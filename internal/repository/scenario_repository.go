package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/clinsim-backend/internal/model"
)

// ScenarioRepository handles scenario template data access.
type ScenarioRepository struct {
	pool *pgxpool.Pool
}

// NewScenarioRepository creates a new ScenarioRepository.
func NewScenarioRepository(pool *pgxpool.Pool) *ScenarioRepository {
	return &ScenarioRepository{pool: pool}
}

const scenarioColumns = `id, category, name, title, difficulty, time_limit_seconds,
	required_actions, learning_objectives, rubric, patient, alert_plan`

// GetByKey retrieves a scenario by category and name, case-insensitively.
// Returns pgx.ErrNoRows when absent.
func (r *ScenarioRepository) GetByKey(ctx context.Context, category, name string) (*model.Scenario, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+scenarioColumns+`
		 FROM scenarios
		 WHERE category = $1 AND name = $2`,
		strings.ToLower(strings.TrimSpace(category)), strings.ToLower(strings.TrimSpace(name)),
	)
	return scanScenario(row)
}

// List retrieves every stored scenario ordered by category and name.
func (r *ScenarioRepository) List(ctx context.Context) ([]model.Scenario, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+scenarioColumns+` FROM scenarios ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Scenario
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Upsert inserts a scenario or replaces the stored copy with the same key.
func (r *ScenarioRepository) Upsert(ctx context.Context, s *model.Scenario) error {
	required, err := json.Marshal(s.RequiredActions)
	if err != nil {
		return fmt.Errorf("marshal required actions: %w", err)
	}
	objectives, err := json.Marshal(s.LearningObjectives)
	if err != nil {
		return fmt.Errorf("marshal learning objectives: %w", err)
	}
	rubric, err := json.Marshal(s.Rubric)
	if err != nil {
		return fmt.Errorf("marshal rubric: %w", err)
	}
	patient, err := json.Marshal(s.Patient)
	if err != nil {
		return fmt.Errorf("marshal patient: %w", err)
	}
	plan, err := json.Marshal(s.AlertPlan)
	if err != nil {
		return fmt.Errorf("marshal alert plan: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO scenarios (`+scenarioColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (category, name) DO UPDATE SET
		     id = EXCLUDED.id,
		     title = EXCLUDED.title,
		     difficulty = EXCLUDED.difficulty,
		     time_limit_seconds = EXCLUDED.time_limit_seconds,
		     required_actions = EXCLUDED.required_actions,
		     learning_objectives = EXCLUDED.learning_objectives,
		     rubric = EXCLUDED.rubric,
		     patient = EXCLUDED.patient,
		     alert_plan = EXCLUDED.alert_plan,
		     updated_at = NOW()`,
		s.ID, strings.ToLower(s.Category), strings.ToLower(s.Name), s.Title, string(s.Difficulty), s.TimeLimitSeconds,
		required, objectives, rubric, patient, plan,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(row rowScanner) (*model.Scenario, error) {
	var (
		s                                           model.Scenario
		difficulty                                  string
		required, objectives, rubric, patient, plan []byte
	)
	if err := row.Scan(&s.ID, &s.Category, &s.Name, &s.Title, &difficulty, &s.TimeLimitSeconds,
		&required, &objectives, &rubric, &patient, &plan); err != nil {
		return nil, err
	}
	s.Difficulty = model.Difficulty(difficulty)

	for _, f := range []struct {
		raw  []byte
		dest any
		name string
	}{
		{required, &s.RequiredActions, "required_actions"},
		{objectives, &s.LearningObjectives, "learning_objectives"},
		{rubric, &s.Rubric, "rubric"},
		{patient, &s.Patient, "patient"},
		{plan, &s.AlertPlan, "alert_plan"},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dest); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.name, err)
		}
	}
	return &s, nil
}
